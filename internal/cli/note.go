package cli

import (
	"github.com/Alp4ka/leandb"
)

// Note is the record managed by the notes commands.
type Note struct {
	leandb.Base[string] `bson:",inline"`
	leandb.Timestamps   `bson:",inline"`
	Title               string `bson:"title" json:"title" gorm:"column:title"`
	Body                string `bson:"body" json:"body" gorm:"column:body"`
}

func (Note) TableName() string {
	return "notes"
}

var (
	NoteID        = leandb.InternalID[Note, string]()
	NoteTitle     = leandb.NewField("title", func(n *Note) string { return n.Title })
	NoteBody      = leandb.NewField("body", func(n *Note) string { return n.Body })
	NoteCreatedAt = leandb.CreatedAt[Note]()
	NoteUpdatedAt = leandb.UpdatedAt[Note]()
)

var _sortableFields = []leandb.FieldRef[Note]{NoteUpdatedAt, NoteCreatedAt, NoteTitle}

// noteDocument renders the fields the view carries.
func noteDocument(v leandb.View[Note]) map[string]any {
	doc := make(map[string]any)
	pluckInto(doc, v, NoteID)
	pluckInto(doc, v, NoteTitle)
	pluckInto(doc, v, NoteBody)
	pluckInto(doc, v, NoteCreatedAt)
	pluckInto(doc, v, NoteUpdatedAt)

	return doc
}

func pluckInto[V any](doc map[string]any, v leandb.View[Note], field leandb.Field[Note, V]) {
	if value, err := leandb.Pluck(v, field); err == nil {
		doc[field.Name()] = value
	}
}
