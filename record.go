package leandb

import "time"

// Record is implemented by pointers to every record type a Repository manages.
// Normalize must copy the internal identifier into the public one and be
// idempotent.
type Record interface {
	Normalize()
}

// Model ties a record type T to its pointer type implementing Record.
type Model[T any] interface {
	*T
	Record
}

// Timestamped records carry a last-modified timestamp maintained on create and
// update.
type Timestamped interface {
	LastModified() time.Time
	Touch(now time.Time)
}

// Base is the identifier part of a record. Embed it inline:
//
//	type Note struct {
//		leandb.Base[primitive.ObjectID] `bson:",inline"`
//		leandb.Timestamps               `bson:",inline"`
//		Title string                    `bson:"title" json:"title"`
//	}
//
// InternalID is the store identifier; ID is its public, read-only alias and is
// never persisted.
type Base[I comparable] struct {
	InternalID I `bson:"_id,omitempty" json:"_id" gorm:"column:_id;primaryKey"`
	ID         I `bson:"-" json:"id" gorm:"-"`
}

// Normalize implements Record.
func (b *Base[I]) Normalize() {
	b.ID = b.InternalID
}

// Identifier returns the internal identifier.
func (b *Base[I]) Identifier() I {
	return b.InternalID
}

// Timestamps adds creation and last-modified timestamps to a record.
type Timestamps struct {
	CreatedAt time.Time `bson:"createdAt" json:"createdAt" gorm:"column:createdAt;autoCreateTime:false"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt" gorm:"column:updatedAt;autoUpdateTime:false"`
}

// LastModified implements Timestamped.
func (t *Timestamps) LastModified() time.Time {
	return t.UpdatedAt
}

func (t *Timestamps) Created() time.Time {
	return t.CreatedAt
}

// Touch implements Timestamped. CreatedAt is set only once.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}

	t.UpdatedAt = now
}

// Normalize prepares a record for leaving the repository.
func Normalize[T any, PT Model[T]](record *T) *T {
	if record != nil {
		PT(record).Normalize()
	}

	return record
}

// NormalizeAll normalizes every record of the slice in place.
func NormalizeAll[T any, PT Model[T]](records []T) []T {
	for i := range records {
		PT(&records[i]).Normalize()
	}

	return records
}

var (
	_ Record      = (*Base[string])(nil)
	_ Timestamped = (*Timestamps)(nil)
)
