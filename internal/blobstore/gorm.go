package blobstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStore keeps snapshots in the blob_entry table.
type GormStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to postgres and migrates the blob table.
func NewPostgresStore(dsn string, debug bool) (*GormStore, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return NewGormStore(db)
}

// NewGormStore wraps an existing connection, which is useful when the
// host application already owns one.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.Migrator().AutoMigrate(domain.Tables...); err != nil {
		return nil, errors.Wrap(err, "migrate blob tables")
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry domain.BlobEntry
	err := g.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select blob %s", key)
	}
	return entry.Value, nil
}

func (g *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := domain.BlobEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	return errors.Wrapf(err, "upsert blob %s", key)
}

func (g *GormStore) Ping(ctx context.Context) bool {
	sqlDB, err := g.db.DB()
	if err != nil {
		return false
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		zap.L().Warn("postgres blob store ping failed", zap.Error(err))
		return false
	}
	return true
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
