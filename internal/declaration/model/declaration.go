package model

import (
	"time"

	"github.com/google/uuid"
)

// DeclarationStatus is the lifecycle state of a stored declaration draft.
type DeclarationStatus string

const (
	DeclarationStatusDraft     DeclarationStatus = "DRAFT"
	DeclarationStatusSubmitted DeclarationStatus = "SUBMITTED"
)

// Declaration is a trainee's stored declaration draft.
type Declaration struct {
	BaseModel
	TraineeID    string            `gorm:"type:varchar(100);column:trainee_id;index;not null" json:"traineeId"`
	Title        string            `gorm:"type:varchar(255);column:title" json:"title"`
	Record       DeclarationRecord `gorm:"type:jsonb;column:record;serializer:json;not null" json:"record"`
	Status       DeclarationStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`
	LastStatus   OverallStatus     `gorm:"type:varchar(20);column:last_status" json:"lastStatus,omitempty"` // verdict of the latest validation run
	CustomsReady bool              `gorm:"column:customs_ready;not null;default:false" json:"customsReady"`
	SubmittedAt  *time.Time        `gorm:"column:submitted_at" json:"submittedAt,omitempty"`
}

func (d *Declaration) TableName() string {
	return "declarations"
}

// ValidationRun is the persisted outcome of validating a stored declaration.
type ValidationRun struct {
	BaseModel
	DeclarationID uuid.UUID        `gorm:"type:uuid;column:declaration_id;index;not null" json:"declarationId"`
	OverallStatus OverallStatus    `gorm:"type:varchar(20);column:overall_status;not null" json:"overallStatus"`
	CustomsReady  bool             `gorm:"column:customs_ready;not null" json:"customsReady"`
	PassedCount   int              `gorm:"column:passed_count;not null" json:"passedCount"`
	TotalChecks   int              `gorm:"column:total_checks;not null" json:"totalChecks"`
	FindingCount  int              `gorm:"column:finding_count;not null" json:"findingCount"`
	DurationMs    float64          `gorm:"column:duration_ms;not null" json:"durationMs"`
	Report        ValidationReport `gorm:"type:jsonb;column:report;serializer:json;not null" json:"report"`
	ArchiveKey    string           `gorm:"type:varchar(255);column:archive_key" json:"archiveKey,omitempty"` // object key of the archived report, if any
}

func (r *ValidationRun) TableName() string {
	return "validation_runs"
}

// NewValidationRun summarises a report for persistence.
func NewValidationRun(declarationID uuid.UUID, report *ValidationReport) *ValidationRun {
	return &ValidationRun{
		DeclarationID: declarationID,
		OverallStatus: report.OverallStatus,
		CustomsReady:  report.CustomsReady,
		PassedCount:   report.PassedCount,
		TotalChecks:   report.TotalChecks,
		FindingCount:  report.FindingCount(),
		DurationMs:    float64(report.ValidationTime.Microseconds()) / 1000,
		Report:        *report,
	}
}

// DeclarationFilter is used when listing declarations.
type DeclarationFilter struct {
	TraineeID *string            `json:"traineeId,omitempty"`
	Status    *DeclarationStatus `json:"status,omitempty"`
	Offset    *int               `json:"offset,omitempty"`
	Limit     *int               `json:"limit,omitempty"`
}

// DeclarationListResult represents the result of listing declarations with pagination.
type DeclarationListResult struct {
	TotalCount   int64         `json:"totalCount"`
	Declarations []Declaration `json:"declarations"`
	Offset       int           `json:"offset"`
	Limit        int           `json:"limit"`
}
