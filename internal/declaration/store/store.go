package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/utils"
)

var (
	ErrDeclarationNotFound = errors.New("declaration not found")
	ErrRunNotFound         = errors.New("validation run not found")
	ErrHSCodeNotFound      = errors.New("hs code not found")
)

// DeclarationStore persists declaration drafts and their validation runs.
type DeclarationStore struct {
	db    *gorm.DB
	pages utils.Pagination
}

func NewDeclarationStore(db *gorm.DB) *DeclarationStore {
	return &DeclarationStore{db: db, pages: utils.DefaultPagination}
}

// WithPagination sets the page size limits applied by List.
func (s *DeclarationStore) WithPagination(p utils.Pagination) *DeclarationStore {
	s.pages = p
	return s
}

// Create inserts a new draft.
func (s *DeclarationStore) Create(ctx context.Context, d *model.Declaration) error {
	if d.Status == "" {
		d.Status = model.DeclarationStatusDraft
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create declaration: %w", err)
	}
	return nil
}

// GetByID retrieves a declaration by its ID.
func (s *DeclarationStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Declaration, error) {
	var d model.Declaration
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&d)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDeclarationNotFound
		}
		return nil, fmt.Errorf("failed to retrieve declaration: %w", result.Error)
	}
	return &d, nil
}

// List returns declarations matching the filter, newest first.
func (s *DeclarationStore) List(ctx context.Context, filter model.DeclarationFilter) (*model.DeclarationListResult, error) {
	var declarations []model.Declaration
	var totalCount int64

	query := s.db.WithContext(ctx).Model(&model.Declaration{})
	if filter.TraineeID != nil && *filter.TraineeID != "" {
		query = query.Where("trainee_id = ?", *filter.TraineeID)
	}
	if filter.Status != nil && *filter.Status != "" {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count declarations: %w", err)
	}

	offset, limit := s.pages.Params(filter.Offset, filter.Limit)
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&declarations).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve declarations: %w", err)
	}

	return &model.DeclarationListResult{
		TotalCount:   totalCount,
		Declarations: declarations,
		Offset:       offset,
		Limit:        limit,
	}, nil
}

// UpdateRecord replaces the record and title of a draft. A nil title keeps the current one.
func (s *DeclarationStore) UpdateRecord(ctx context.Context, id uuid.UUID, title *string, record model.DeclarationRecord) (*model.Declaration, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Record = record
	if title != nil {
		d.Title = *title
	}
	if err := s.db.WithContext(ctx).Save(d).Error; err != nil {
		return nil, fmt.Errorf("failed to update declaration: %w", err)
	}
	return d, nil
}

// RecordVerdict stores the outcome of the latest validation on the draft.
func (s *DeclarationStore) RecordVerdict(ctx context.Context, id uuid.UUID, status model.OverallStatus, customsReady bool) error {
	result := s.db.WithContext(ctx).Model(&model.Declaration{}).Where("id = ?", id).Updates(map[string]any{
		"last_status":   status,
		"customs_ready": customsReady,
		"updated_at":    time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to record validation verdict: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDeclarationNotFound
	}
	return nil
}

// MarkSubmitted freezes a draft.
func (s *DeclarationStore) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&model.Declaration{}).Where("id = ?", id).Updates(map[string]any{
		"status":       model.DeclarationStatusSubmitted,
		"submitted_at": at,
		"updated_at":   time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to submit declaration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDeclarationNotFound
	}
	return nil
}

// CreateRun persists a validation run.
func (s *DeclarationStore) CreateRun(ctx context.Context, run *model.ValidationRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create validation run: %w", err)
	}
	return nil
}

// ListRuns returns the runs of a declaration, newest first.
func (s *DeclarationStore) ListRuns(ctx context.Context, declarationID uuid.UUID) ([]model.ValidationRun, error) {
	var runs []model.ValidationRun
	err := s.db.WithContext(ctx).
		Where("declaration_id = ?", declarationID).
		Order("created_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve validation runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a single validation run.
func (s *DeclarationStore) GetRun(ctx context.Context, id uuid.UUID) (*model.ValidationRun, error) {
	var run model.ValidationRun
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&run)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to retrieve validation run: %w", result.Error)
	}
	return &run, nil
}

// SetRunArchiveKey records where a run's report was archived.
func (s *DeclarationStore) SetRunArchiveKey(ctx context.Context, id uuid.UUID, key string) error {
	result := s.db.WithContext(ctx).Model(&model.ValidationRun{}).Where("id = ?", id).Update("archive_key", key)
	if result.Error != nil {
		return fmt.Errorf("failed to set archive key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}
