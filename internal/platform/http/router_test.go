package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/business/survey"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/metrics"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/sheets"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/repository"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func amount(v float64) *float64 { return &v }

type stubRecords struct {
	records []model.SurveyRecord
	reloads int
}

func (s *stubRecords) Records(_ context.Context, reload bool) []model.SurveyRecord {
	if reload {
		s.reloads++
	}
	return s.records
}

type stubSubmissions struct {
	result   model.SubmitResult
	outcome  survey.Outcome
	clientID string
	form     model.SurveyForm
}

func (s *stubSubmissions) Submit(_ context.Context, clientID string, form model.SurveyForm) (model.SubmitResult, survey.Outcome) {
	s.clientID = clientID
	s.form = form
	return s.result, s.outcome
}

type stubSnapshots struct {
	saved  []model.StatsSnapshot
	latest *model.StatsSnapshot
	err    error
}

func (s *stubSnapshots) Save(_ context.Context, summary model.Summary, rows int) (model.StatsSnapshot, error) {
	if s.err != nil {
		return model.StatsSnapshot{}, s.err
	}
	snap := model.StatsSnapshot{ID: "20250129T080000Z", TakenAt: time.Date(2025, 1, 29, 8, 0, 0, 0, time.UTC), Summary: summary, SourceRows: rows}
	s.saved = append(s.saved, snap)
	return snap, nil
}

func (s *stubSnapshots) Latest(context.Context) (model.StatsSnapshot, error) {
	if s.latest == nil {
		return model.StatsSnapshot{}, repository.ErrSnapshotNotFound
	}
	return *s.latest, nil
}

func fixtureRecords() []model.SurveyRecord {
	return []model.SurveyRecord{
		{District: "沙田", Role: model.RoleGiver, AgeGroup: "31-40歲", Relation: "同事", Amount: amount(100)},
		{District: "沙田", Role: model.RoleGiver, AgeGroup: "23-30歲", Relation: "阿媽", Amount: amount(500)},
		{District: "沙田", Role: model.RoleReceiver, AgeGroup: "18歲以下", Relation: "阿媽", Amount: amount(20)},
		{District: "灣仔", Role: model.RoleGiver, AgeGroup: "31-40歲", Relation: "看更", Amount: amount(50)},
	}
}

func do(t *testing.T, h http.Handler, method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthAndOptions(t *testing.T) {
	h := NewRouter(Deps{Records: &stubRecords{}, Submissions: &stubSubmissions{}})

	rec := do(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/options", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var opts struct {
		Districts []string `json:"districts"`
		Relations []string `json:"relations"`
		Amounts   []int    `json:"amounts"`
	}
	decode(t, rec, &opts)
	assert.Len(t, opts.Districts, 18)
	assert.Len(t, opts.Relations, 23)
	assert.Equal(t, []int{20, 50, 100, 500, 1000}, opts.Amounts)
}

func TestStatsFiltersCohort(t *testing.T) {
	src := &stubRecords{records: fixtureRecords()}
	h := NewRouter(Deps{Records: src, Submissions: &stubSubmissions{}})

	rec := do(t, h, http.MethodGet, "/api/stats?role=giver&district=all&reload=true", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary model.Summary
	decode(t, rec, &summary)
	assert.Equal(t, 3, summary.TotalCount)
	assert.Equal(t, model.DistrictStats{Count: 2, Average: 300, Median: 300, Min: 100, Max: 500}, summary.ByDistrict["沙田"])
	assert.Len(t, summary.ByDistrict, 18)
	assert.Equal(t, 1, src.reloads)
}

func TestRecordsAndParticipants(t *testing.T) {
	h := NewRouter(Deps{Records: &stubRecords{records: fixtureRecords()}, Submissions: &stubSubmissions{}})

	rec := do(t, h, http.MethodGet, "/api/records?relation="+url.QueryEscape("阿媽"), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []model.SurveyRecord `json:"items"`
		Total int                  `json:"total"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Total)

	rec = do(t, h, http.MethodGet, "/api/participants", nil, nil)
	assert.JSONEq(t, `{"count":4}`, rec.Body.String())
}

func TestExportRecordsCSV(t *testing.T) {
	h := NewRouter(Deps{Records: &stubRecords{records: fixtureRecords()}, Submissions: &stubSubmissions{}})

	rec := do(t, h, http.MethodGet, "/api/records/export?district="+url.QueryEscape("灣仔"), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,district,role,age_group,relation,identity,amount,greeting", lines[0])
	assert.Equal(t, ",灣仔,giver,31-40歲,看更,,50,", lines[1])
}

func TestDistrictStats(t *testing.T) {
	h := NewRouter(Deps{Records: &stubRecords{records: fixtureRecords()}, Submissions: &stubSubmissions{}})

	rec := do(t, h, http.MethodGet, "/api/stats/districts/"+url.PathEscape("沙田")+"?role=giver", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		District string              `json:"district"`
		Known    bool                `json:"known"`
		Stats    model.DistrictStats `json:"stats"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "沙田", got.District)
	assert.True(t, got.Known)
	assert.Equal(t, 2, got.Stats.Count)
	assert.Equal(t, 300, got.Stats.Average)
}

func TestResult(t *testing.T) {
	h := NewRouter(Deps{Records: &stubRecords{records: fixtureRecords()}, Submissions: &stubSubmissions{}})

	rec := do(t, h, http.MethodGet, "/api/result?district="+url.QueryEscape("灣仔")+"&amount=88", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cmp model.ResultComparison
	decode(t, rec, &cmp)
	assert.Equal(t, 50, cmp.DistrictAverage)
	assert.Equal(t, 76, cmp.PercentDifference)
	assert.Equal(t, "lucky", cmp.Luck.Type)

	rec = do(t, h, http.MethodGet, "/api/result?amount=88", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/result?district="+url.QueryEscape("灣仔")+"&amount=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		result  model.SubmitResult
		outcome survey.Outcome
		code    int
	}{
		{name: "accepted", result: model.SubmitResult{Success: true, Message: "ok"}, outcome: survey.OutcomeAccepted, code: http.StatusOK},
		{name: "honeypot", result: model.SubmitResult{Success: true}, outcome: survey.OutcomeHoneypot, code: http.StatusOK},
		{name: "rate limited", result: model.SubmitResult{Error: "wait", RetryAfterSeconds: 12}, outcome: survey.OutcomeRateLimited, code: http.StatusTooManyRequests},
		{name: "invalid", result: model.SubmitResult{Error: "請選擇地區"}, outcome: survey.OutcomeInvalid, code: http.StatusBadRequest},
		{name: "gateway", result: model.SubmitResult{Error: "HTTP 500"}, outcome: survey.OutcomeFailed, code: http.StatusBadGateway},
		{name: "unconfigured", result: model.SubmitResult{Error: sheets.MsgNotConfigured}, outcome: survey.OutcomeFailed, code: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &stubSubmissions{result: tt.result, outcome: tt.outcome}
			h := NewRouter(Deps{Records: &stubRecords{}, Submissions: subs})

			body := []byte(`{"role":"giver","identity":"boss","district":"沙田","amount":100}`)
			rec := do(t, h, http.MethodPost, "/api/submissions", body, map[string]string{ClientIDHeader: "browser-1"})
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "browser-1", subs.clientID)
			assert.Equal(t, "boss", subs.form.IdentityID)
			if tt.outcome == survey.OutcomeRateLimited {
				assert.Equal(t, "12", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	subs := &stubSubmissions{}
	h := NewRouter(Deps{Records: &stubRecords{}, Submissions: subs})
	rec := do(t, h, http.MethodPost, "/api/submissions", []byte(`{not json`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, subs.clientID)
}

func TestSnapshotsDisabled(t *testing.T) {
	h := NewRouter(Deps{Records: &stubRecords{}, Submissions: &stubSubmissions{}})

	rec := do(t, h, http.MethodPost, "/api/stats/refresh", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"snapshots disabled"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/stats/snapshot", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSnapshotRefresh(t *testing.T) {
	src := &stubRecords{records: fixtureRecords()}
	snaps := &stubSnapshots{}
	h := NewRouter(Deps{Records: src, Submissions: &stubSubmissions{}, Snapshots: snaps})

	rec := do(t, h, http.MethodGet, "/api/stats/snapshot", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/stats/refresh", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, snaps.saved, 1)
	assert.Equal(t, 4, snaps.saved[0].SourceRows)
	assert.Equal(t, 4, snaps.saved[0].Summary.TotalCount)
	assert.Equal(t, 1, src.reloads)

	snaps.latest = &snaps.saved[0]
	rec = do(t, h, http.MethodGet, "/api/stats/snapshot", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	snaps.err = errors.New("quota")
	rec = do(t, h, http.MethodPost, "/api/stats/refresh", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSnapshotRefreshSkipsEmptyRead(t *testing.T) {
	snaps := &stubSnapshots{}
	h := NewRouter(Deps{Records: &stubRecords{}, Submissions: &stubSubmissions{}, Snapshots: snaps})

	rec := do(t, h, http.MethodPost, "/api/stats/refresh", nil, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, snaps.saved)
}

func TestCORSWithoutAllowList(t *testing.T) {
	h := NewRouter(Deps{Records: &stubRecords{}, Submissions: &stubSubmissions{}})

	rec := do(t, h, http.MethodGet, "/healthz", nil, map[string]string{"Origin": "https://anywhere.example"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAndMetrics(t *testing.T) {
	m := metrics.New()
	h := NewRouter(Deps{
		Records:        &stubRecords{records: fixtureRecords()},
		Submissions:    &stubSubmissions{},
		Metrics:        m,
		AllowedOrigins: "https://laisee.example, https://preview.example",
	})

	rec := do(t, h, http.MethodOptions, "/api/submissions", nil, map[string]string{"Origin": "https://laisee.example"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://laisee.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), ClientIDHeader)

	rec = do(t, h, http.MethodOptions, "/api/submissions", nil, map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	do(t, h, http.MethodGet, "/api/stats", nil, nil)
	rec = do(t, h, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `laisee_http_requests_total{code="200",method="GET",route="/api/stats"} 1`), body)
	assert.Contains(t, body, "laisee_records_last_fetch 4")
}
