package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/archive"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/service"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/store"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/middleware"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/validation"
)

// ReportReader streams archived reports back to clients.
type ReportReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type DeclarationRouter struct {
	svc     *service.DeclarationService
	reports ReportReader // nil unless reports are archived on local disk
}

func NewDeclarationRouter(svc *service.DeclarationService, reports ReportReader) *DeclarationRouter {
	return &DeclarationRouter{svc: svc, reports: reports}
}

// RegisterRoutes registers the declaration API under /api
func (r *DeclarationRouter) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api")

	// Stateless checks
	api.POST("/declarations/validate", r.HandleValidate)
	api.POST("/declarations/autofix", r.HandleAutoFix)

	// Drafts
	api.POST("/declarations", r.HandleCreateDeclaration)
	api.GET("/declarations", r.HandleListDeclarations)
	api.GET("/declarations/:id", r.HandleGetDeclaration)
	api.PUT("/declarations/:id", r.HandleUpdateDeclaration)
	api.POST("/declarations/:id/validate", r.HandleValidateDeclaration)
	api.POST("/declarations/:id/fixes", r.HandleApplyFixes)
	api.POST("/declarations/:id/submit", r.HandleSubmitDeclaration)
	api.GET("/declarations/:id/runs", r.HandleListRuns)
	api.GET("/runs/:runId/export", r.HandleExportRun)
	api.GET("/runs/:runId/report", r.HandleGetRunReport)

	// Reference data
	api.GET("/hscodes", r.HandleGetHSCodes)
	api.GET("/hscodes/:code", r.HandleGetHSCode)
	api.GET("/rules", r.HandleGetRules)

	if r.reports != nil {
		api.GET("/reports/*key", r.HandleDownloadReport)
	}
}

// HandleValidate handles POST /api/declarations/validate
// Request body: DeclarationRecord
// Response: ValidationReport
func (r *DeclarationRouter) HandleValidate(c *gin.Context) {
	var rec model.DeclarationRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid declaration: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, r.svc.ValidateRecord(c.Request.Context(), rec))
}

// HandleAutoFix handles POST /api/declarations/autofix
// Request body: AutoFixRequestDTO
// Response: FixResult
func (r *DeclarationRouter) HandleAutoFix(c *gin.Context) {
	var req model.AutoFixRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	result, err := r.svc.FixRecord(c.Request.Context(), req.Record, req.Finding)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleCreateDeclaration handles POST /api/declarations
func (r *DeclarationRouter) HandleCreateDeclaration(c *gin.Context) {
	var req model.CreateDeclarationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.TraineeID == "" {
		req.TraineeID = middleware.TraineeID(c.Request.Context())
	}
	d, err := r.svc.CreateDeclaration(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// HandleListDeclarations handles GET /api/declarations
// Optional Query Filters: traineeId (defaults to the caller), status, offset, limit
func (r *DeclarationRouter) HandleListDeclarations(c *gin.Context) {
	var filter model.DeclarationFilter
	traineeID := c.Query("traineeId")
	if traineeID == "" {
		traineeID = middleware.TraineeID(c.Request.Context())
	}
	if traineeID != "" {
		filter.TraineeID = &traineeID
	}
	if status := c.Query("status"); status != "" {
		s := model.DeclarationStatus(strings.ToUpper(status))
		filter.Status = &s
	}
	var ok bool
	if filter.Offset, filter.Limit, ok = pagination(c); !ok {
		return
	}

	result, err := r.svc.ListDeclarations(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleGetDeclaration handles GET /api/declarations/:id
func (r *DeclarationRouter) HandleGetDeclaration(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := r.svc.GetDeclaration(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// HandleUpdateDeclaration handles PUT /api/declarations/:id
func (r *DeclarationRouter) HandleUpdateDeclaration(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateDeclarationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	d, err := r.svc.UpdateDeclaration(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// HandleValidateDeclaration handles POST /api/declarations/:id/validate
// Response: ValidationRun
func (r *DeclarationRouter) HandleValidateDeclaration(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	run, err := r.svc.ValidateDeclaration(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// HandleApplyFixes handles POST /api/declarations/:id/fixes
// Request body: {"finding": {...}} or {"all": true}
// Response: FixResult
func (r *DeclarationRouter) HandleApplyFixes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.ApplyFixDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	var (
		result *model.FixResult
		err    error
	)
	switch {
	case req.All:
		result, err = r.svc.ApplyAllFixes(c.Request.Context(), id)
	case req.Finding != nil:
		result, err = r.svc.ApplyFix(c.Request.Context(), id, *req.Finding)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either 'finding' or 'all' is required"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleSubmitDeclaration handles POST /api/declarations/:id/submit
func (r *DeclarationRouter) HandleSubmitDeclaration(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, run, err := r.svc.SubmitDeclaration(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotCustomsReady) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "run": run})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"declaration": d, "run": run})
}

// HandleListRuns handles GET /api/declarations/:id/runs
func (r *DeclarationRouter) HandleListRuns(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	runs, err := r.svc.ListRuns(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// HandleExportRun handles GET /api/runs/:runId/export
func (r *DeclarationRouter) HandleExportRun(c *gin.Context) {
	id, ok := pathID(c, "runId")
	if !ok {
		return
	}
	exported, err := r.svc.ExportRun(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, exported)
}

// HandleGetRunReport handles GET /api/runs/:runId/report
// Response: the archived ValidationReport of the run
func (r *DeclarationRouter) HandleGetRunReport(c *gin.Context) {
	id, ok := pathID(c, "runId")
	if !ok {
		return
	}
	report, err := r.svc.RunReport(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleGetHSCodes handles GET /api/hscodes
// Optional Query Filters: hsCodeStartsWith, offset, limit
func (r *DeclarationRouter) HandleGetHSCodes(c *gin.Context) {
	var filter model.HSCodeFilter
	if prefix := c.Query("hsCodeStartsWith"); prefix != "" {
		filter.HSCodeStartsWith = &prefix
	}
	var ok bool
	if filter.Offset, filter.Limit, ok = pagination(c); !ok {
		return
	}

	result, err := r.svc.LookupHSCodes(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleGetHSCode handles GET /api/hscodes/:code
// Accepts a catalogue code or a full 13-digit goods code.
func (r *DeclarationRouter) HandleGetHSCode(c *gin.Context) {
	hsCode, err := r.svc.GetHSCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, hsCode)
}

// HandleGetRules handles GET /api/rules and returns the active rule tables as YAML
func (r *DeclarationRouter) HandleGetRules(c *gin.Context) {
	data, err := r.svc.Rules().Marshal()
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", data)
}

// HandleDownloadReport handles GET /api/reports/*key for locally archived reports
func (r *DeclarationRouter) HandleDownloadReport(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	reader, contentType, err := r.reports.Open(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ", must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) (offset, limit *int, ok bool) {
	for _, p := range []struct {
		name string
		dst  **int
	}{{"offset", &offset}, {"limit", &limit}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid '" + p.name + "' query parameter, must be an integer"})
			return nil, nil, false
		}
		*p.dst = &n
	}
	return offset, limit, true
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrDeclarationNotFound),
		errors.Is(err, store.ErrRunNotFound),
		errors.Is(err, store.ErrHSCodeNotFound),
		errors.Is(err, service.ErrRunNotArchived),
		errors.Is(err, archive.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDeclarationSubmitted):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNothingToFix),
		errors.Is(err, service.ErrNotCustomsReady):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTraineeRequired),
		errors.Is(err, validation.ErrUnsupportedFixTarget),
		errors.Is(err, validation.ErrFixValueType),
		errors.Is(err, validation.ErrGoodsIndexOutOfRange),
		errors.Is(err, model.ErrInvalidFieldPath),
		errors.Is(err, archive.ErrInvalidKey):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrArchiveDisabled):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
