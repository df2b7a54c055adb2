package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Alp4ka/leandb"
	"github.com/Alp4ka/leandb/gormstore"
	"github.com/Alp4ka/leandb/mongostore"
)

type NotesRepository = leandb.Repository[Note, *Note]

// OpenNotes connects to the configured backend. The returned function releases
// the connection.
func OpenNotes(ctx context.Context, cfg StoreConfig, logger *logrus.Logger) (*NotesRepository, func() error, error) {
	entry := logger.WithField("driver", cfg.Driver)
	opts := []leandb.Option{
		leandb.WithLogger(entry),
		leandb.WithName(cfg.Collection),
	}

	if cfg.Driver == DriverMongoDB {
		client, coll, err := mongostore.Connect(ctx, cfg.mongo())
		if err != nil {
			return nil, nil, err
		}

		entry.WithField("collection", coll.Name()).Debug("connected")

		closer := func() error {
			return client.Disconnect(context.Background())
		}

		return leandb.NewRepository[Note](mongostore.New[Note](coll), opts...), closer, nil
	}

	dialector, err := sqlDialector(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: sqlLogger(logger)})
	if err != nil {
		return nil, nil, fmt.Errorf("%s connect error: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Migrate {
		if err = db.WithContext(ctx).AutoMigrate(&Note{}); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to migrate notes table: %w", err)
		}
	}

	entry.Debug("connected")

	return leandb.NewRepository[Note](gormstore.New[Note](db), opts...), sqlDB.Close, nil
}

func sqlDialector(cfg StoreConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case DriverMySQL:
		return mysql.Open(cfg.DSN), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unknown store driver '%s'", cfg.Driver)
	}
}
