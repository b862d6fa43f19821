package localstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the local storage table.
type Entry struct {
	Key   string `gorm:"column:storage_key;primaryKey;type:varchar(255)"`
	Value string `gorm:"column:storage_value;type:text;not null"`
}

// TableName pins the table name independent of naming strategy.
func (Entry) TableName() string {
	return "local_storage"
}

// SQLiteKV persists entries in a gorm-managed table, normally a SQLite file
// next to the client.
type SQLiteKV struct {
	db *gorm.DB
}

// NewSQLiteKV migrates the local storage table and returns the KV.
func NewSQLiteKV(db *gorm.DB) (*SQLiteKV, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local storage: %w", err)
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"storage_value"}),
	}).Create(&Entry{Key: key, Value: value}).Error
}

func (s *SQLiteKV) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&Entry{}).Error
}

func (s *SQLiteKV) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := s.db.WithContext(ctx).
		Model(&Entry{}).
		Where("storage_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("storage_key ASC").
		Pluck("storage_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern. Marker keys
// contain underscores, which LIKE would otherwise treat as wildcards.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
