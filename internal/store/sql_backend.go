package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatasetDocument stores one serialized dataset per row
type DatasetDocument struct {
	Kind      string    `gorm:"primaryKey;size:64"`
	Payload   []byte    `gorm:"type:longblob;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name
func (DatasetDocument) TableName() string {
	return "dataset_documents"
}

// OpenMySQL connects to MySQL and migrates the dataset table. The connection
// is closed again when migration fails.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&DatasetDocument{}); err != nil {
		return nil, errors.Join(err, CloseDB(db))
	}

	return db, nil
}

// CloseDB closes the pool under db. Pools that are not a *sql.DB are closed
// through io.Closer when they implement it.
func CloseDB(db *gorm.DB) error {
	if sqlDB, err := db.DB(); err == nil {
		return sqlDB.Close()
	}
	if closer, ok := db.ConnPool.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SQLBackend keeps dataset documents in a relational table. Writes replace
// the whole document, same as the file backend.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Read(ctx context.Context, kind Kind) ([]byte, error) {
	var doc DatasetDocument
	err := b.db.WithContext(ctx).Where("kind = ?", string(kind)).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	return doc.Payload, nil
}

func (b *SQLBackend) Write(ctx context.Context, kind Kind, data []byte) error {
	doc := DatasetDocument{Kind: string(kind), Payload: data}
	err := b.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&doc).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", kind, err)
	}
	return nil
}
