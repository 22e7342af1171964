package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/utils"
)

// HSCodeStore is the commodity code catalogue used for goods-code lookups.
type HSCodeStore struct {
	db    *gorm.DB
	pages utils.Pagination
}

func NewHSCodeStore(db *gorm.DB) *HSCodeStore {
	return &HSCodeStore{db: db, pages: utils.DefaultPagination}
}

// WithPagination sets the page size limits applied by List.
func (s *HSCodeStore) WithPagination(p utils.Pagination) *HSCodeStore {
	s.pages = p
	return s
}

// List retrieves HS codes with optional prefix filtering and pagination
func (s *HSCodeStore) List(ctx context.Context, filter model.HSCodeFilter) (*model.HSCodeListResult, error) {
	var hsCodes []model.HSCode
	var totalCount int64

	query := s.db.WithContext(ctx).Model(&model.HSCode{})
	if filter.HSCodeStartsWith != nil && *filter.HSCodeStartsWith != "" {
		query = query.Where("hs_code LIKE ?", *filter.HSCodeStartsWith+"%")
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count HS codes: %w", err)
	}

	offset, limit := s.pages.Params(filter.Offset, filter.Limit)
	if err := query.Order("hs_code ASC").Offset(offset).Limit(limit).Find(&hsCodes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve HS codes: %w", err)
	}

	return &model.HSCodeListResult{
		TotalCount: totalCount,
		HSCodes:    hsCodes,
		Offset:     offset,
		Limit:      limit,
	}, nil
}

// GetByCode retrieves an HS code by its exact code.
func (s *HSCodeStore) GetByCode(ctx context.Context, code string) (*model.HSCode, error) {
	var hsCode model.HSCode
	result := s.db.WithContext(ctx).Where("hs_code = ?", code).First(&hsCode)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHSCodeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve HS code: %w", result.Error)
	}
	return &hsCode, nil
}

// Upsert inserts catalogue entries, refreshing description, category and unit of existing codes.
func (s *HSCodeStore) Upsert(ctx context.Context, codes []model.HSCode) error {
	if len(codes) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hs_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "category", "unit", "updated_at"}),
	}).Create(&codes).Error
	if err != nil {
		return fmt.Errorf("failed to upsert HS codes: %w", err)
	}
	return nil
}
