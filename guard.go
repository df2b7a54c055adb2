package leandb

// ExistsOrFail passes a present value through unchanged and turns an absent one
// into ErrNotFound. Every single-record fetch, update and delete goes through it.
func ExistsOrFail[T any](value *T) (*T, error) {
	if value == nil {
		return nil, ErrNotFound
	}

	return value, nil
}

// EnsureFound is ExistsOrFail for comma-ok lookups.
func EnsureFound[T any](value T, found bool) (T, error) {
	if !found {
		var zero T
		return zero, ErrNotFound
	}

	return value, nil
}
