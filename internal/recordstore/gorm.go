package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionRow is the table layout used by GormBackend
type CollectionRow struct {
	Key       string         `gorm:"primaryKey;type:varchar(200)"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (CollectionRow) TableName() string { return "collections" }

// GormBackend stores collections in a relational database through gorm.
// It is used with the postgres driver in production.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend migrates the collections table and returns the backend
func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&CollectionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate collections table: %w", err)
	}
	return &GormBackend{db: db}, nil
}

func (g *GormBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row CollectionRow
	err := g.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(row.Payload), true, nil
}

func (g *GormBackend) Put(ctx context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	row := CollectionRow{Key: key, Payload: datatypes.JSON(data), UpdatedAt: time.Now().UTC()}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
}

func (g *GormBackend) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("key = ?", key).Delete(&CollectionRow{}).Error
}

func (g *GormBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := g.db.WithContext(ctx).Model(&CollectionRow{}).Order("key").Pluck("key", &keys).Error
	return keys, err
}

func (g *GormBackend) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
