package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kdimtricp/damagecheck/internal/models"
)

const defaultJournalLimit = 20

// JournalEntry is one assessment finished on this console.
type JournalEntry struct {
	ID           string
	CreatedAt    time.Time
	ImageCount   int
	ThumbnailURL string
	Result       *models.AssessmentResult
}

// assessmentRecord is the assessments row; the postgres table is created by migrations.
type assessmentRecord struct {
	ID           string    `gorm:"primaryKey;column:id"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;index:idx_assessments_created_at"`
	CarType      string    `gorm:"column:car_type;not null"`
	Severity     string    `gorm:"column:severity;not null"`
	MinCost      float64   `gorm:"column:min_cost;not null"`
	MaxCost      float64   `gorm:"column:max_cost;not null"`
	ImageCount   int       `gorm:"column:image_count;not null"`
	ThumbnailURL *string   `gorm:"column:thumbnail_url"`
	Result       string    `gorm:"column:result;not null"`
}

func (assessmentRecord) TableName() string {
	return "assessments"
}

type JournalRepository struct {
	db  *DB
	now func() time.Time
}

func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db, now: time.Now}
}

// Record appends the result to the journal.
func (r *JournalRepository) Record(ctx context.Context, result *models.AssessmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	record := assessmentRecord{
		ID:         uuid.NewString(),
		CreatedAt:  r.now().UTC(),
		CarType:    result.CarType,
		Severity:   string(result.Severity),
		MinCost:    result.EstimatedCost.MinCost,
		MaxCost:    result.EstimatedCost.MaxCost,
		ImageCount: len(result.ImageResults),
		Result:     string(payload),
	}
	if len(result.ImageResults) > 0 {
		thumbnail := result.ImageResults[0].DisplayURL()
		record.ThumbnailURL = &thumbnail
	}

	if err := r.db.gorm.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first.
func (r *JournalRepository) ListRecent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = defaultJournalLimit
	}

	var records []assessmentRecord
	err := r.db.gorm.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	entries := make([]JournalEntry, 0, len(records))
	for _, rec := range records {
		var result models.AssessmentResult
		if err := json.Unmarshal([]byte(rec.Result), &result); err != nil {
			return nil, fmt.Errorf("failed to decode assessment %s: %w", rec.ID, err)
		}

		e := JournalEntry{
			ID:         rec.ID,
			CreatedAt:  rec.CreatedAt,
			ImageCount: rec.ImageCount,
			Result:     &result,
		}
		if rec.ThumbnailURL != nil {
			e.ThumbnailURL = *rec.ThumbnailURL
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func (r *JournalRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.gorm.WithContext(ctx).Model(&assessmentRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return int(n), nil
}
