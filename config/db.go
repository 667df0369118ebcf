package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"library-api/models"
)

// OpenDB connects to the store described by cfg. postgres:// and
// postgresql:// urls use the pgx-backed postgres driver, sqlite://<path> the
// pure-go sqlite driver. gorm's warnings and errors go to log; a nil log
// discards them.
func OpenDB(cfg StoreConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.URL)
	if err != nil {
		return nil, err
	}
	gormLog, err := newGormLogger(log)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		// single connection: sqlite has one writer, and :memory: databases
		// exist per connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}
	return db, nil
}

// newGormLogger reports slow queries and failures at warn level. Lookups
// that find nothing are expected and stay quiet.
func newGormLogger(log *zap.Logger) (gormlogger.Interface, error) {
	if log == nil {
		log = zap.NewNop()
	}
	std, err := zap.NewStdLogAt(log.Named("gorm"), zap.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("gorm logger: %w", err)
	}
	return gormlogger.New(std, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	}), nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	default:
		return nil, fmt.Errorf("unsupported store url %q: want postgres:// or sqlite://", url)
	}
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Identity{},
		&models.Book{},
		&models.Reservation{},
		&models.RevokedSession{},
	)
	if err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	return nil
}
