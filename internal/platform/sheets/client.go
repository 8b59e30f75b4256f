package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

// DefaultTimeout bounds each call to the sheet endpoint.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// User-facing submission errors.
const (
	MsgNotConfigured = "伺服器配置錯誤：缺少 Google Script URL"
	MsgTimeout       = "請求超時，請稍後再試"
	MsgNetwork       = "網絡連接錯誤，請檢查您的網絡設定"
	MsgUnknown       = "提交問卷時發生未知錯誤"
)

// Outcome labels reported to the Observer.
const (
	OutcomeOK           = "ok"
	OutcomeUnconfigured = "unconfigured"
	OutcomeHTTPError    = "http_error"
	OutcomeDecodeError  = "decode_error"
	OutcomeTimeout      = "timeout"
	OutcomeNetworkError = "network_error"
	OutcomeUnknownError = "unknown_error"
)

var (
	// ErrEndpointNotConfigured signals GOOGLE_SCRIPT_URL is unset.
	ErrEndpointNotConfigured = errors.New("sheet endpoint not configured")
	// ErrNotJSON signals the read endpoint answered with something other than JSON.
	ErrNotJSON = errors.New("response is not valid JSON")
	// ErrNotArray signals the read endpoint answered with JSON that is not an array.
	ErrNotArray = errors.New("response is not a JSON array")
)

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives per-call outcomes; the metrics package implements it.
type Observer interface {
	ObserveFetch(outcome string, elapsed time.Duration)
	ObserveSubmit(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, time.Duration)  {}
func (nopObserver) ObserveSubmit(string, time.Duration) {}

// Config defines settings for the sheet client.
type Config struct {
	URL      string
	Timeout  time.Duration
	Logger   *slog.Logger
	Observer Observer
}

// Client reads and appends survey rows through the spreadsheet web app.
// Reads fail open to an empty slice; writes fail closed with a SubmitResult error.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient HTTPClient
	logger     *slog.Logger
	observer   Observer
}

// New creates a sheet client.
func New(httpClient HTTPClient, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var observer Observer = nopObserver{}
	if cfg.Observer != nil {
		observer = cfg.Observer
	}
	return &Client{
		url:        strings.TrimSpace(cfg.URL),
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger.With("component", "sheets"),
		observer:   observer,
	}
}

// Configured reports whether an endpoint URL is set.
func (c *Client) Configured() bool {
	return c.url != ""
}

// FetchAllRecords returns every row of the sheet as normalized records.
// Any failure, including a missing endpoint, is logged and yields an empty slice.
func (c *Client) FetchAllRecords(ctx context.Context) []model.SurveyRecord {
	records, err := c.FetchRecords(ctx)
	if err != nil {
		if errors.Is(err, ErrEndpointNotConfigured) {
			c.logger.Error("GOOGLE_SCRIPT_URL is not set, serving empty dataset")
		} else {
			c.logger.Error("fetch survey records failed, serving empty dataset", "error", err)
		}
		return []model.SurveyRecord{}
	}
	return records
}

// CountRecords returns the number of rows currently in the sheet, 0 on failure.
func (c *Client) CountRecords(ctx context.Context) int {
	return len(c.FetchAllRecords(ctx))
}

// FetchRecords is FetchAllRecords with the failure reported instead of swallowed.
// Operator tooling uses it to diagnose the endpoint.
func (c *Client) FetchRecords(ctx context.Context) ([]model.SurveyRecord, error) {
	start := time.Now()
	records, outcome, err := c.fetch(ctx)
	c.observer.ObserveFetch(outcome, time.Since(start))
	return records, err
}

func (c *Client) fetch(ctx context.Context) ([]model.SurveyRecord, string, error) {
	if c.url == "" {
		return nil, OutcomeUnconfigured, ErrEndpointNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, OutcomeUnknownError, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		_, outcome := classifyError(err)
		return nil, outcome, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		_, outcome := classifyError(err)
		return nil, outcome, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, OutcomeHTTPError, fmt.Errorf("sheet status %d: %s", resp.StatusCode, snippet(body))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		c.logger.Warn("sheet response is not labelled JSON, parsing anyway", "content_type", ct)
	}

	records, err := DecodeRecords(body, c.logger)
	if err != nil {
		return nil, OutcomeDecodeError, err
	}
	c.logger.Info("fetched survey records", "count", len(records))
	return records, OutcomeOK, nil
}

// Submit appends one row to the sheet.
func (c *Client) Submit(ctx context.Context, payload model.SubmissionPayload) model.SubmitResult {
	start := time.Now()
	result, outcome := c.submit(ctx, payload)
	c.observer.ObserveSubmit(outcome, time.Since(start))
	return result
}

func (c *Client) submit(ctx context.Context, payload model.SubmissionPayload) (model.SubmitResult, string) {
	if c.url == "" {
		c.logger.Error("GOOGLE_SCRIPT_URL is not set, cannot submit")
		return model.SubmitResult{Success: false, Error: MsgNotConfigured}, OutcomeUnconfigured
	}
	if payload.Greeting == "" {
		payload.Greeting = model.DefaultGreeting
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("encode submission", "error", err)
		return model.SubmitResult{Success: false, Error: MsgUnknown}, OutcomeUnknownError
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("build submit request", "error", err)
		return model.SubmitResult{Success: false, Error: MsgUnknown}, OutcomeUnknownError
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg, outcome := classifyError(err)
		c.logger.Error("submit survey failed", "outcome", outcome, "error", err)
		return model.SubmitResult{Success: false, Error: msg}, outcome
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("sheet rejected submission", "status", resp.StatusCode, "body", snippet(raw))
		return model.SubmitResult{Success: false, Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}, OutcomeHTTPError
	}

	msg := responseMessage(resp.Header.Get("Content-Type"), raw)
	if msg == "" {
		msg = model.DefaultSubmitMessage
	}
	return model.SubmitResult{Success: true, Message: msg}, OutcomeOK
}

// responseMessage extracts the message of a successful write. JSON bodies contribute
// their "message" field; anything else is taken as the message text itself.
func responseMessage(contentType string, body []byte) string {
	if strings.Contains(contentType, "application/json") {
		if !gjson.ValidBytes(body) {
			return ""
		}
		return strings.TrimSpace(gjson.GetBytes(body, "message").String())
	}
	return strings.TrimSpace(string(body))
}

// classifyError maps a transport error to a user message and an outcome label.
func classifyError(err error) (string, string) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return MsgTimeout, OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return MsgTimeout, OutcomeTimeout
	}
	var urlErr *url.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return MsgNetwork, OutcomeNetworkError
	}
	if msg := err.Error(); msg != "" {
		return msg, OutcomeUnknownError
	}
	return MsgUnknown, OutcomeUnknownError
}

func snippet(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
