package http

import (
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/business/survey"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/metrics"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/report"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/sheets"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/repository"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

// ClientIDHeader lets the front end identify a browser session for rate limiting.
const ClientIDHeader = "X-Client-ID"

var errSnapshotsDisabled = errors.New("snapshots disabled")

// RecordStore serves the (possibly cached) record collection.
type RecordStore interface {
	Records(ctx context.Context, reload bool) []model.SurveyRecord
}

// SubmissionHandler runs the guarded submission pipeline.
type SubmissionHandler interface {
	Submit(ctx context.Context, clientID string, form model.SurveyForm) (model.SubmitResult, survey.Outcome)
}

// SnapshotStore persists stats snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, summary model.Summary, sourceRows int) (model.StatsSnapshot, error)
	Latest(ctx context.Context) (model.StatsSnapshot, error)
}

// Deps are the collaborators of the router. Snapshots and Metrics may be nil.
type Deps struct {
	Records        RecordStore
	Submissions    SubmissionHandler
	Snapshots      SnapshotStore
	Metrics        *metrics.Metrics
	AllowedOrigins string
	Logger         *slog.Logger
}

// Router wires HTTP handlers.
type Router struct {
	records     RecordStore
	submissions SubmissionHandler
	snapshots   SnapshotStore
	metrics     *metrics.Metrics
	origins     string
	logger      *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		records:     d.Records,
		submissions: d.Submissions,
		snapshots:   d.Snapshots,
		metrics:     d.Metrics,
		origins:     d.AllowedOrigins,
		logger:      logger,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), r.corsMiddleware())
	if r.metrics != nil {
		router.Use(r.metricsMiddleware())
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/options", r.getOptions)
		api.GET("/records", r.listRecords)
		api.GET("/records/export", r.exportRecords)
		api.GET("/participants", r.countParticipants)
		api.GET("/stats", r.getStats)
		api.GET("/stats/districts/:district", r.getDistrictStats)
		api.GET("/stats/snapshot", r.getSnapshot)
		api.POST("/stats/refresh", r.refreshStats)
		api.GET("/result", r.getResult)
		api.POST("/submissions", r.submit)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		// An empty allow list means any origin; otherwise unlisted origins get no ACAO header.
		allowed := ""
		if len(trimmed) == 0 {
			allowed = "*"
		}
		for _, o := range trimmed {
			if o == "*" || o == origin {
				allowed = origin
				break
			}
		}
		if allowed != "" {
			c.Header("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+ClientIDHeader)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Expose-Headers", "Retry-After")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		r.metrics.CountRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}

func (r *Router) loadRecords(c *gin.Context) []model.SurveyRecord {
	records := r.records.Records(c.Request.Context(), isTrue(c.Query("reload")))
	if r.metrics != nil && len(records) > 0 {
		r.metrics.SetRecords(len(records))
	}
	return records
}

// cohort returns the records narrowed by the role/age_group/relation/district query.
func (r *Router) cohort(c *gin.Context) []model.SurveyRecord {
	return survey.FilterRecords(r.loadRecords(c), survey.CriteriaFromQuery(c.Query))
}

func (r *Router) getOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"districts":  model.HKDistricts,
		"age_groups": model.AgeGroups,
		"roles":      model.Roles,
		"relations":  model.Relations,
		"identities": gin.H{
			model.RoleGiver:    model.GiverIdentities,
			model.RoleReceiver: model.ReceiverIdentities,
		},
		"amounts":     model.SuggestedAmounts,
		"greetings":   model.Greetings,
		"total_steps": survey.TotalSteps,
	})
}

func (r *Router) listRecords(c *gin.Context) {
	records := r.cohort(c)
	c.JSON(http.StatusOK, gin.H{
		"items": records,
		"total": len(records),
	})
}

func (r *Router) exportRecords(c *gin.Context) {
	records := r.cohort(c)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=laisee-records.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write(report.RecordHeader); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	for _, rec := range records {
		if err := writer.Write(report.RecordRow(rec)); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
	}
}

func (r *Router) countParticipants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": len(r.loadRecords(c))})
}

func (r *Router) getStats(c *gin.Context) {
	records := r.cohort(c)
	c.JSON(http.StatusOK, survey.Summarize(records))
}

func (r *Router) getDistrictStats(c *gin.Context) {
	district := strings.TrimSpace(c.Param("district"))
	criteria := survey.CriteriaFromQuery(c.Query)
	criteria.District = district
	records := survey.FilterRecords(r.loadRecords(c), criteria)
	c.JSON(http.StatusOK, gin.H{
		"district": district,
		"known":    model.IsDistrict(district),
		"stats":    survey.ComputeStats(survey.AmountsOf(records)),
	})
}

func (r *Router) getResult(c *gin.Context) {
	district := strings.TrimSpace(c.Query("district"))
	if district == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "district is required"})
		return
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(c.Query("amount")), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a non-negative number"})
		return
	}
	c.JSON(http.StatusOK, survey.CompareWithDistrict(r.loadRecords(c), district, amount))
}

func (r *Router) submit(c *gin.Context) {
	var form model.SurveyForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, model.SubmitResult{Success: false, Error: "invalid body"})
		return
	}

	result, outcome := r.submissions.Submit(c.Request.Context(), clientID(c), form)
	if r.metrics != nil {
		r.metrics.CountSubmission(string(outcome))
	}

	switch outcome {
	case survey.OutcomeAccepted, survey.OutcomeHoneypot:
		c.JSON(http.StatusOK, result)
	case survey.OutcomeRateLimited:
		c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
		c.JSON(http.StatusTooManyRequests, result)
	case survey.OutcomeInvalid:
		c.JSON(http.StatusBadRequest, result)
	default:
		if result.Error == sheets.MsgNotConfigured {
			c.JSON(http.StatusInternalServerError, result)
			return
		}
		c.JSON(http.StatusBadGateway, result)
	}
}

func (r *Router) refreshStats(c *gin.Context) {
	if r.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errSnapshotsDisabled.Error()})
		return
	}
	ctx := c.Request.Context()

	records := r.records.Records(ctx, true)
	if len(records) == 0 {
		// An empty read is indistinguishable from an upstream failure; keep the previous snapshot.
		c.JSON(http.StatusBadGateway, gin.H{"error": "no records fetched"})
		return
	}

	snap, err := r.snapshots.Save(ctx, survey.Summarize(records), len(records))
	if err != nil {
		r.logger.Error("save stats snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save stats: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) getSnapshot(c *gin.Context) {
	if r.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errSnapshotsDisabled.Error()})
		return
	}
	snap, err := r.snapshots.Latest(c.Request.Context())
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func clientID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(ClientIDHeader)); id != "" {
		return id
	}
	return c.ClientIP()
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
