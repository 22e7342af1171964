package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

const (
	reportPrefix      = "reports/"
	reportContentType = "application/json"
	defaultURLExpiry  = time.Hour
)

// ArchivedReport locates a stored validation report.
type ArchivedReport struct {
	RunID uuid.UUID `json:"runId"`
	Key   string    `json:"key"`
	URL   string    `json:"url"`
	Size  int64     `json:"size"`
}

// ReportArchive keeps a JSON copy of every validation report of a stored declaration.
type ReportArchive struct {
	Driver    StorageDriver
	URLExpiry time.Duration
}

func NewReportArchive(driver StorageDriver) *ReportArchive {
	return &ReportArchive{Driver: driver, URLExpiry: defaultURLExpiry}
}

// ReportKey is the object key of the report of a validation run.
func ReportKey(runID uuid.UUID) string {
	return reportPrefix + runID.String() + ".json"
}

// Store writes the report of runID and returns where it lives.
func (a *ReportArchive) Store(ctx context.Context, runID uuid.UUID, report *model.ValidationReport) (*ArchivedReport, error) {
	if report == nil {
		return nil, fmt.Errorf("report is nil")
	}
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	key := ReportKey(runID)
	if err := a.Driver.Save(ctx, key, bytes.NewReader(body), reportContentType); err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := a.Driver.GenerateURL(ctx, key, a.URLExpiry)
	if err != nil {
		if delErr := a.Driver.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to cleanup orphaned report", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	slog.InfoContext(ctx, "validation report archived", "runID", runID, "key", key)
	return &ArchivedReport{RunID: runID, Key: key, URL: url, Size: int64(len(body))}, nil
}

// URL returns a fresh download URL for an archived report.
func (a *ReportArchive) URL(ctx context.Context, key string) (string, error) {
	url, err := a.Driver.GenerateURL(ctx, key, a.URLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate URL: %w", err)
	}
	return url, nil
}

// Open streams an archived object back together with its content type.
func (a *ReportArchive) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return a.Driver.Get(ctx, key)
}

// Fetch reads and decodes an archived report.
func (a *ReportArchive) Fetch(ctx context.Context, key string) (*model.ValidationReport, error) {
	reader, _, err := a.Driver.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", key, err)
	}
	defer reader.Close()

	var report model.ValidationReport
	if err := json.NewDecoder(reader).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", key, err)
	}
	return &report, nil
}
