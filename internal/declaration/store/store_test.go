package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/database"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open("file::memory:"), false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func sampleRecord() model.DeclarationRecord {
	return model.DeclarationRecord{
		ConsignorConsignee: "宁波海曙进出口有限公司",
		ExportPort:         "3104",
		TransportMode:      "2",
		DeclareDate:        "2026-03-01",
		Currency:           "USD",
		TotalAmountForeign: model.Float(500),
		Goods: []model.GoodsLine{{
			ItemNo:     1,
			GoodsCode:  "9503000089001",
			GoodsName:  "塑料积木玩具",
			Quantity:   100,
			UnitPrice:  5,
			TotalPrice: 500,
		}},
	}
}

func TestDeclarationStore_CreateAndGet(t *testing.T) {
	s := NewDeclarationStore(setupTestDB(t))
	ctx := t.Context()

	d := &model.Declaration{TraineeID: "trainee-1", Title: "玩具出口", Record: sampleRecord()}
	require.NoError(t, s.Create(ctx, d))
	assert.NotEqual(t, uuid.Nil, d.ID)
	assert.Equal(t, model.DeclarationStatusDraft, d.Status)

	got, err := s.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "玩具出口", got.Title)
	assert.Equal(t, sampleRecord(), got.Record)
}

func TestDeclarationStore_GetByID_NotFound(t *testing.T) {
	s := NewDeclarationStore(setupTestDB(t))

	_, err := s.GetByID(t.Context(), uuid.New())
	assert.ErrorIs(t, err, ErrDeclarationNotFound)
}

func TestDeclarationStore_List(t *testing.T) {
	s := NewDeclarationStore(setupTestDB(t))
	ctx := t.Context()

	for _, trainee := range []string{"a", "a", "b"} {
		require.NoError(t, s.Create(ctx, &model.Declaration{TraineeID: trainee, Record: sampleRecord()}))
	}

	trainee := "a"
	result, err := s.List(ctx, model.DeclarationFilter{TraineeID: &trainee})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCount)
	assert.Len(t, result.Declarations, 2)
	assert.Equal(t, 20, result.Limit)

	limit := 1
	result, err = s.List(ctx, model.DeclarationFilter{Limit: &limit})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.TotalCount)
	assert.Len(t, result.Declarations, 1)

	submitted := model.DeclarationStatusSubmitted
	result, err = s.List(ctx, model.DeclarationFilter{Status: &submitted})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
}

func TestDeclarationStore_ListPagination(t *testing.T) {
	s := NewDeclarationStore(setupTestDB(t)).WithPagination(utils.Pagination{DefaultLimit: 2, MaxLimit: 3})
	ctx := t.Context()

	for range 5 {
		require.NoError(t, s.Create(ctx, &model.Declaration{TraineeID: "a", Record: sampleRecord()}))
	}

	result, err := s.List(ctx, model.DeclarationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.TotalCount)
	assert.Len(t, result.Declarations, 2)
	assert.Equal(t, 2, result.Limit)

	limit := 50
	result, err = s.List(ctx, model.DeclarationFilter{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, result.Declarations, 3)
	assert.Equal(t, 3, result.Limit)
}

func TestDeclarationStore_UpdateRecord(t *testing.T) {
	s := NewDeclarationStore(setupTestDB(t))
	ctx := t.Context()

	d := &model.Declaration{TraineeID: "t", Title: "old", Record: sampleRecord()}
	require.NoError(t, s.Create(ctx, d))

	rec := sampleRecord()
	rec.ExportPort = "2201"
	updated, err := s.UpdateRecord(ctx, d.ID, nil, rec)
	require.NoError(t, err)
	assert.Equal(t, "old", updated.Title)

	title := "new"
	_, err = s.UpdateRecord(ctx, d.ID, &title, rec)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "2201", got.Record.ExportPort)

	_, err = s.UpdateRecord(ctx, uuid.New(), nil, rec)
	assert.ErrorIs(t, err, ErrDeclarationNotFound)
}

func TestDeclarationStore_VerdictAndSubmit(t *testing.T) {
	s := NewDeclarationStore(setupTestDB(t))
	ctx := t.Context()

	d := &model.Declaration{TraineeID: "t", Record: sampleRecord()}
	require.NoError(t, s.Create(ctx, d))

	require.NoError(t, s.RecordVerdict(ctx, d.ID, model.StatusWarning, true))
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkSubmitted(ctx, d.ID, at))

	got, err := s.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWarning, got.LastStatus)
	assert.True(t, got.CustomsReady)
	assert.Equal(t, model.DeclarationStatusSubmitted, got.Status)
	require.NotNil(t, got.SubmittedAt)
	assert.True(t, at.Equal(*got.SubmittedAt))

	assert.ErrorIs(t, s.RecordVerdict(ctx, uuid.New(), model.StatusPass, true), ErrDeclarationNotFound)
	assert.ErrorIs(t, s.MarkSubmitted(ctx, uuid.New(), at), ErrDeclarationNotFound)
}

func TestDeclarationStore_Runs(t *testing.T) {
	s := NewDeclarationStore(setupTestDB(t))
	ctx := t.Context()

	d := &model.Declaration{TraineeID: "t", Record: sampleRecord()}
	require.NoError(t, s.Create(ctx, d))

	report := &model.ValidationReport{
		OverallStatus:  model.StatusError,
		ValidationTime: 2500 * time.Microsecond,
		Errors: []model.Finding{{
			Field:    model.TopLevel("exportPort"),
			Message:  "出口口岸不能为空",
			Severity: model.SeverityCritical,
		}},
		Warnings:    []model.Finding{},
		Suggestions: []model.Finding{},
		PassedCount: 10,
		TotalChecks: 25,
	}
	run := model.NewValidationRun(d.ID, report)
	require.NoError(t, s.CreateRun(ctx, run))
	assert.Equal(t, 1, run.FindingCount)
	assert.InDelta(t, 2.5, run.DurationMs, 1e-9)

	require.NoError(t, s.SetRunArchiveKey(ctx, run.ID, "reports/x.json"))

	runs, err := s.ListRuns(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "reports/x.json", runs[0].ArchiveKey)
	assert.Equal(t, "exportPort", runs[0].Report.Errors[0].Field.String())

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, got.OverallStatus)

	_, err = s.GetRun(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.SetRunArchiveKey(ctx, uuid.New(), "k"), ErrRunNotFound)

	none, err := s.ListRuns(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
