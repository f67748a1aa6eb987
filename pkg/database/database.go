package database

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/config"
	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	embeddedPort     = 5433
	embeddedPassword = "postgres"
)

// DB is the global database instance
var DB *gorm.DB

var embedded *embeddedpostgres.EmbeddedPostgres

// InitDB initializes the database connection with configuration
func InitDB(dbConfig *config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	cfg := *dbConfig

	if cfg.Embedded {
		log.Info("Starting embedded PostgreSQL", zap.String("data_path", cfg.EmbeddedPath), zap.Int("port", embeddedPort))

		embedded = embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
			DataPath(cfg.EmbeddedPath).
			Port(uint32(embeddedPort)).
			Database(cfg.DBName).
			Username(cfg.User).
			Password(embeddedPassword))
		if err := embedded.Start(); err != nil {
			embedded = nil
			return nil, fmt.Errorf("failed to start embedded database: %w", err)
		}

		cfg.Host = "localhost"
		cfg.Port = strconv.Itoa(embeddedPort)
		cfg.Password = embeddedPassword
		cfg.SSLMode = "disable"
	}

	pgConfig := postgres.Config{
		DSN:                  cfg.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		stopEmbedded()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		stopEmbedded()
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	DB = db
	return DB, nil
}

// Migrate creates or updates every ERP table and the partial unique indexes that
// keep natural keys unique among rows that are not soft-deleted.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	// Foreign keys stay plain integer columns.
	db.Config.DisableForeignKeyConstraintWhenMigrating = true

	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	for _, key := range model.NaturalKeys() {
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s) WHERE deleted_at IS NULL AND %s <> ''",
			key.IndexName(), key.Table, key.Column, key.Column,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", key.IndexName(), err)
		}
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// Close closes the pool and stops the embedded server when one was started.
func Close() error {
	defer stopEmbedded()

	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func stopEmbedded() {
	if embedded != nil {
		_ = embedded.Stop()
		embedded = nil
	}
}
