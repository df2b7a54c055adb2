// Package leandb provides a typed data-access layer with keyset pagination over
// a document store.
//
// Overview
//
// Records are plain structs embedding Base (identifier) and optionally
// Timestamps. Their persisted attributes are declared once as Field values, and
// every filter, projection, patch and cursor is built from those fields, so a
// condition on an undeclared field or with a value of the wrong type does not
// compile. Hand-built values are still checked against the record Schema
// before any query reaches the store.
//
// Key concepts
//   - Repository: CRUD operations plus Paginate / PaginateBy over a Store.
//   - Store, Query: the document-store client contract. mongostore and
//     gormstore ship implementations for MongoDB and SQL databases.
//   - Cursor: the resumable position of a pagination session (field, last seen
//     value, page size). Pages are walked in descending field order; only the
//     resume value advances between pages.
//   - RawCursor and Cursor.Token: the transport forms of a cursor.
//   - View and Pluck: typed access to records read through a Projection.
//
// Pagination walks strictly below the last seen value of a single field. Page
// by a field whose values are distinct, or accept that records sharing a value
// at a page boundary may be skipped or repeated.
package leandb
