// Package storage persists mix history to a local sqlite database via
// gorm. The store keeps summaries only; rendered audio lives on disk
// at the path each record points to.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ishatailor/AI-DJ/pkg/models"
)

// DefaultDBFile is used when no path is configured.
const DefaultDBFile = "aidj.sqlite3"

// ErrNotFound is returned when a mix id has no record.
var ErrNotFound = errors.New("storage: mix not found")

var errStoreNil = errors.New("storage: store is nil")

// mixRow is the gorm table shape for a persisted mix.
type mixRow struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	Track1Name       string `gorm:"index:idx_mix_tracks,priority:1"`
	Track2Name       string `gorm:"index:idx_mix_tracks,priority:2"`
	Score            int
	KeyCompatibility string
	Duration         float64
	OutputPath       string
	TimelineJSON     string
	CreatedAt        time.Time
}

func (mixRow) TableName() string { return "mixes" }

// Store wraps a sqlite-backed mix history.
type Store struct {
	DB *gorm.DB
	db *sql.DB
}

// Open creates or opens the database at dbPath, creating parent
// directories as needed, and migrates the schema.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&mixRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Store{DB: db, db: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveMix inserts a record. The record's ID must already be set.
func (s *Store) SaveMix(rec models.MixRecord) error {
	if s == nil || s.DB == nil {
		return errStoreNil
	}
	row := mixRow{
		ID:               rec.ID,
		Track1Name:       rec.Track1Name,
		Track2Name:       rec.Track2Name,
		Score:            rec.Score,
		KeyCompatibility: string(rec.KeyCompatibility),
		Duration:         rec.Duration,
		OutputPath:       rec.OutputPath,
		TimelineJSON:     rec.TimelineJSON,
		CreatedAt:        rec.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("creating mix record: %w", err)
	}
	return nil
}

// ListMixes returns records newest first, up to limit. A limit of 0
// means no cap.
func (s *Store) ListMixes(limit int) ([]models.MixRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errStoreNil
	}
	q := s.DB.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []mixRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing mixes: %w", err)
	}
	out := make([]models.MixRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRecord())
	}
	return out, nil
}

// GetMixByID fetches one record, ErrNotFound when absent.
func (s *Store) GetMixByID(id string) (models.MixRecord, error) {
	if s == nil || s.DB == nil {
		return models.MixRecord{}, errStoreNil
	}
	var row mixRow
	err := s.DB.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.MixRecord{}, ErrNotFound
	}
	if err != nil {
		return models.MixRecord{}, fmt.Errorf("querying mix %s: %w", id, err)
	}
	return row.toRecord(), nil
}

// DeleteMix removes a record. Deleting a missing id is not an error.
func (s *Store) DeleteMix(id string) error {
	if s == nil || s.DB == nil {
		return errStoreNil
	}
	if err := s.DB.Where("id = ?", id).Delete(&mixRow{}).Error; err != nil {
		return fmt.Errorf("deleting mix %s: %w", id, err)
	}
	return nil
}

func (r mixRow) toRecord() models.MixRecord {
	return models.MixRecord{
		ID:               r.ID,
		Track1Name:       r.Track1Name,
		Track2Name:       r.Track2Name,
		Score:            r.Score,
		KeyCompatibility: models.KeyCompatibility(r.KeyCompatibility),
		Duration:         r.Duration,
		OutputPath:       r.OutputPath,
		TimelineJSON:     r.TimelineJSON,
		CreatedAt:        r.CreatedAt,
	}
}
