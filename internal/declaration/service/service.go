package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/archive"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/store"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/validation"
)

var (
	ErrDeclarationSubmitted = errors.New("declaration has already been submitted")
	ErrNotCustomsReady      = errors.New("declaration has blocking findings and cannot be submitted")
	ErrNothingToFix         = errors.New("no automatically fixable finding")
	ErrTraineeRequired      = errors.New("trainee id is required")
	ErrArchiveDisabled      = errors.New("report archive is not configured")
	ErrRunNotArchived       = errors.New("validation run has no archived report")
)

// DeclarationRepository persists drafts and their validation runs.
type DeclarationRepository interface {
	Create(ctx context.Context, d *model.Declaration) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Declaration, error)
	List(ctx context.Context, filter model.DeclarationFilter) (*model.DeclarationListResult, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, title *string, record model.DeclarationRecord) (*model.Declaration, error)
	RecordVerdict(ctx context.Context, id uuid.UUID, status model.OverallStatus, customsReady bool) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error
	CreateRun(ctx context.Context, run *model.ValidationRun) error
	ListRuns(ctx context.Context, declarationID uuid.UUID) ([]model.ValidationRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*model.ValidationRun, error)
	SetRunArchiveKey(ctx context.Context, id uuid.UUID, key string) error
}

// HSCodeRepository is the commodity code catalogue.
type HSCodeRepository interface {
	List(ctx context.Context, filter model.HSCodeFilter) (*model.HSCodeListResult, error)
	GetByCode(ctx context.Context, code string) (*model.HSCode, error)
}

// ReportArchiver keeps copies of validation reports in blob storage.
type ReportArchiver interface {
	Store(ctx context.Context, runID uuid.UUID, report *model.ValidationReport) (*archive.ArchivedReport, error)
	URL(ctx context.Context, key string) (string, error)
	Fetch(ctx context.Context, key string) (*model.ValidationReport, error)
}

// DeclarationService drives validation, correction and submission of trainee declarations.
type DeclarationService struct {
	validator    *validation.Validator
	declarations DeclarationRepository
	hsCodes      HSCodeRepository
	archive      ReportArchiver // nil when archiving is disabled
	metrics      *validation.Metrics
	now          func() time.Time
}

// NewDeclarationService creates a new DeclarationService. archiver and metrics may be nil.
func NewDeclarationService(v *validation.Validator, declarations DeclarationRepository, hsCodes HSCodeRepository, archiver ReportArchiver, metrics *validation.Metrics) *DeclarationService {
	return &DeclarationService{
		validator:    v,
		declarations: declarations,
		hsCodes:      hsCodes,
		archive:      archiver,
		metrics:      metrics,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Rules returns the rule tables the validator runs with.
func (s *DeclarationService) Rules() *validation.RuleSet {
	return s.validator.Rules()
}

// ValidateRecord validates a record without storing anything.
func (s *DeclarationService) ValidateRecord(ctx context.Context, rec model.DeclarationRecord) *model.ValidationReport {
	return s.validator.Validate(ctx, rec)
}

// FixRecord applies one finding's correction and revalidates the result.
func (s *DeclarationService) FixRecord(ctx context.Context, rec model.DeclarationRecord, finding model.Finding) (*model.FixResult, error) {
	if !finding.CanAutoFix() {
		s.metrics.RecordAutoFix("skipped")
		return &model.FixResult{Record: rec, Report: s.validator.Validate(ctx, rec)}, nil
	}
	fixed, err := validation.ApplyAutoFix(rec, finding)
	if err != nil {
		s.metrics.RecordAutoFix("rejected")
		return nil, err
	}
	s.metrics.RecordAutoFix("applied")
	return &model.FixResult{Record: fixed, Report: s.validator.Validate(ctx, fixed)}, nil
}

// CreateDeclaration stores a new draft.
func (s *DeclarationService) CreateDeclaration(ctx context.Context, req *model.CreateDeclarationDTO) (*model.Declaration, error) {
	if strings.TrimSpace(req.TraineeID) == "" {
		return nil, ErrTraineeRequired
	}
	d := &model.Declaration{
		TraineeID: req.TraineeID,
		Title:     req.Title,
		Record:    req.Record,
		Status:    model.DeclarationStatusDraft,
	}
	if err := s.declarations.Create(ctx, d); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "declaration draft created", "declarationID", d.ID, "traineeID", d.TraineeID)
	return d, nil
}

// GetDeclaration retrieves a draft by ID.
func (s *DeclarationService) GetDeclaration(ctx context.Context, id uuid.UUID) (*model.Declaration, error) {
	return s.declarations.GetByID(ctx, id)
}

// ListDeclarations lists drafts with pagination.
func (s *DeclarationService) ListDeclarations(ctx context.Context, filter model.DeclarationFilter) (*model.DeclarationListResult, error) {
	return s.declarations.List(ctx, filter)
}

// UpdateDeclaration replaces the record of a draft that has not been submitted.
func (s *DeclarationService) UpdateDeclaration(ctx context.Context, id uuid.UUID, req *model.UpdateDeclarationDTO) (*model.Declaration, error) {
	if _, err := s.editableDeclaration(ctx, id); err != nil {
		return nil, err
	}
	return s.declarations.UpdateRecord(ctx, id, req.Title, req.Record)
}

// ValidateDeclaration validates a stored draft and records the run.
func (s *DeclarationService) ValidateDeclaration(ctx context.Context, id uuid.UUID) (*model.ValidationRun, error) {
	d, err := s.declarations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.validateAndRecord(ctx, d.ID, d.Record)
}

// ApplyFix corrects a stored draft with one finding's fix value and revalidates it.
func (s *DeclarationService) ApplyFix(ctx context.Context, id uuid.UUID, finding model.Finding) (*model.FixResult, error) {
	d, err := s.editableDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}
	if !finding.CanAutoFix() {
		s.metrics.RecordAutoFix("skipped")
		return nil, ErrNothingToFix
	}
	fixed, err := validation.ApplyAutoFix(d.Record, finding)
	if err != nil {
		s.metrics.RecordAutoFix("rejected")
		return nil, err
	}
	s.metrics.RecordAutoFix("applied")
	return s.saveAndRevalidate(ctx, d, fixed)
}

// ApplyAllFixes validates a stored draft and applies every available fix.
func (s *DeclarationService) ApplyAllFixes(ctx context.Context, id uuid.UUID) (*model.FixResult, error) {
	d, err := s.editableDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}
	report := s.validator.Validate(ctx, d.Record)
	fixed, applied, err := validation.ApplyAllAutoFixes(d.Record, report.Findings())
	if err != nil {
		s.metrics.RecordAutoFix("rejected")
		return nil, err
	}
	if applied == 0 {
		return nil, ErrNothingToFix
	}
	for range applied {
		s.metrics.RecordAutoFix("applied")
	}
	slog.InfoContext(ctx, "auto-fixes applied", "declarationID", id, "count", applied)
	return s.saveAndRevalidate(ctx, d, fixed)
}

// SubmitDeclaration revalidates a draft and freezes it when it is customs-ready.
func (s *DeclarationService) SubmitDeclaration(ctx context.Context, id uuid.UUID) (*model.Declaration, *model.ValidationRun, error) {
	d, err := s.editableDeclaration(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	run, err := s.validateAndRecord(ctx, d.ID, d.Record)
	if err != nil {
		return nil, nil, err
	}
	if !run.CustomsReady {
		return nil, run, ErrNotCustomsReady
	}

	at := s.now()
	if err := s.declarations.MarkSubmitted(ctx, id, at); err != nil {
		return nil, run, err
	}
	d.Status = model.DeclarationStatusSubmitted
	d.SubmittedAt = &at
	d.LastStatus = run.OverallStatus
	d.CustomsReady = true

	slog.InfoContext(ctx, "declaration submitted", "declarationID", id, "status", run.OverallStatus)
	return d, run, nil
}

// ListRuns lists the validation history of a draft.
func (s *DeclarationService) ListRuns(ctx context.Context, id uuid.UUID) ([]model.ValidationRun, error) {
	if _, err := s.declarations.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.declarations.ListRuns(ctx, id)
}

// ExportRun returns a download link for the archived report of a run.
func (s *DeclarationService) ExportRun(ctx context.Context, runID uuid.UUID) (*archive.ArchivedReport, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	run, err := s.declarations.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.ArchiveKey == "" {
		return nil, ErrRunNotArchived
	}
	url, err := s.archive.URL(ctx, run.ArchiveKey)
	if err != nil {
		return nil, err
	}
	return &archive.ArchivedReport{RunID: run.ID, Key: run.ArchiveKey, URL: url}, nil
}

// RunReport reads back the archived report of a run.
func (s *DeclarationService) RunReport(ctx context.Context, runID uuid.UUID) (*model.ValidationReport, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	run, err := s.declarations.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.ArchiveKey == "" {
		return nil, ErrRunNotArchived
	}
	return s.archive.Fetch(ctx, run.ArchiveKey)
}

// GetHSCode resolves a catalogue entry. A full goods code falls back to its
// catalogue prefix when there is no exact entry.
func (s *DeclarationService) GetHSCode(ctx context.Context, code string) (*model.HSCode, error) {
	hsCode, err := s.hsCodes.GetByCode(ctx, code)
	if errors.Is(err, store.ErrHSCodeNotFound) {
		if prefix := model.CatalogueCode(code); prefix != code {
			return s.hsCodes.GetByCode(ctx, prefix)
		}
	}
	return hsCode, err
}

// LookupHSCodes searches the commodity code catalogue.
func (s *DeclarationService) LookupHSCodes(ctx context.Context, filter model.HSCodeFilter) (*model.HSCodeListResult, error) {
	return s.hsCodes.List(ctx, filter)
}

func (s *DeclarationService) editableDeclaration(ctx context.Context, id uuid.UUID) (*model.Declaration, error) {
	d, err := s.declarations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == model.DeclarationStatusSubmitted {
		return nil, ErrDeclarationSubmitted
	}
	return d, nil
}

func (s *DeclarationService) saveAndRevalidate(ctx context.Context, d *model.Declaration, rec model.DeclarationRecord) (*model.FixResult, error) {
	if _, err := s.declarations.UpdateRecord(ctx, d.ID, nil, rec); err != nil {
		return nil, err
	}
	run, err := s.validateAndRecord(ctx, d.ID, rec)
	if err != nil {
		return nil, err
	}
	return &model.FixResult{Record: rec, Report: &run.Report}, nil
}

func (s *DeclarationService) validateAndRecord(ctx context.Context, id uuid.UUID, rec model.DeclarationRecord) (*model.ValidationRun, error) {
	report := s.validator.Validate(ctx, rec)

	run := model.NewValidationRun(id, report)
	if err := s.declarations.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	if err := s.declarations.RecordVerdict(ctx, id, report.OverallStatus, report.CustomsReady); err != nil {
		return nil, fmt.Errorf("failed to record verdict: %w", err)
	}

	if s.archive != nil {
		stored, err := s.archive.Store(ctx, run.ID, report)
		if err != nil {
			slog.WarnContext(ctx, "failed to archive validation report", "runID", run.ID, "error", err)
		} else if err := s.declarations.SetRunArchiveKey(ctx, run.ID, stored.Key); err != nil {
			slog.WarnContext(ctx, "failed to record archive key", "runID", run.ID, "error", err)
		} else {
			run.ArchiveKey = stored.Key
		}
	}

	slog.InfoContext(ctx, "declaration validated",
		"declarationID", id,
		"runID", run.ID,
		"status", report.OverallStatus,
		"customsReady", report.CustomsReady,
	)
	return run, nil
}
