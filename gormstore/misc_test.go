package gormstore

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Alp4ka/leandb"
)

type note struct {
	leandb.Base[int64] `bson:",inline"`
	leandb.Timestamps  `bson:",inline"`
	Title              string `bson:"title" gorm:"column:title"`
}

var (
	noteTitle     = leandb.NewField("title", func(n *note) string { return n.Title })
	noteUpdatedAt = leandb.UpdatedAt[note]()
)

var _noteColumns = []string{"_id", "createdAt", "updatedAt", "title"}

func noteRows(notes ...note) *sqlmock.Rows {
	rows := sqlmock.NewRows(_noteColumns)
	for _, n := range notes {
		rows.AddRow(n.InternalID, n.CreatedAt, n.UpdatedAt, n.Title)
	}

	return rows
}

func newNote(id int64, title string, updatedAt time.Time) note {
	var n note
	n.InternalID = id
	n.Title = title
	n.CreatedAt = updatedAt
	n.UpdatedAt = updatedAt

	return n
}

type mockDB struct {
	dialect string
	db      *gorm.DB
	mock    sqlmock.Sqlmock
}

type mockDBFactory struct {
	dialect string
	open    func(conn gorm.ConnPool) gorm.Dialector
}

var _mockDBFactories = []mockDBFactory{
	{
		dialect: "mysql",
		open: func(conn gorm.ConnPool) gorm.Dialector {
			return mysql.New(mysql.Config{
				Conn:                      conn,
				SkipInitializeWithVersion: true,
			})
		},
	},
	{
		dialect: "postgres",
		open: func(conn gorm.ConnPool) gorm.Dialector {
			return postgres.New(postgres.Config{
				Conn: conn,
			})
		},
	},
}

func openMockDB(t *testing.T, factory mockDBFactory) mockDB {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(factory.open(conn), &gorm.Config{})
	require.NoError(t, err)

	return mockDB{
		dialect: factory.dialect,
		db:      db.Debug(),
		mock:    mock,
	}
}

// forEachDialect runs fn once per supported dialect against a fresh sqlmock
// connection and checks every expectation was met afterwards.
func forEachDialect(t *testing.T, name string, fn func(t *testing.T, m mockDB)) {
	for _, factory := range _mockDBFactories {
		t.Run(factory.dialect+" "+name, func(t *testing.T) {
			m := openMockDB(t, factory)
			fn(t, m)

			require.NoError(t, m.mock.ExpectationsWereMet())
		})
	}
}
