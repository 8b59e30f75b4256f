package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

// Submitter forwards one payload to the external store.
type Submitter interface {
	Submit(ctx context.Context, payload model.SubmissionPayload) model.SubmitResult
}

// Invalidator is implemented by record caches that must refresh after a write.
type Invalidator interface {
	Invalidate()
}

// Outcome labels what happened to a submission attempt.
type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeHoneypot    Outcome = "honeypot"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeFailed      Outcome = "failed"
)

// SubmissionService applies the local guards (honeypot, rate limit, form checks)
// before handing a submission to the gateway.
type SubmissionService struct {
	submitter Submitter
	limiter   *RateLimiter
	clock     Clock
	cache     Invalidator
	logger    *slog.Logger

	// inflight holds clients with a submission between the rate limit check and MarkSubmitted.
	inflight sync.Map
}

// NewSubmissionService wires the guard pipeline. cache may be nil.
func NewSubmissionService(submitter Submitter, limiter *RateLimiter, clock Clock, cache Invalidator, logger *slog.Logger) *SubmissionService {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		submitter: submitter,
		limiter:   limiter,
		clock:     clock,
		cache:     cache,
		logger:    logger,
	}
}

// Submit runs one submission attempt for clientID and reports the result and its outcome.
func (s *SubmissionService) Submit(ctx context.Context, clientID string, form model.SurveyForm) (model.SubmitResult, Outcome) {
	if strings.TrimSpace(form.Honeypot) != "" {
		// Looks like success to the bot; nothing is sent.
		s.logger.Info("submission dropped by honeypot", "client", clientID)
		return model.SubmitResult{Success: true, Message: model.DefaultSubmitMessage}, OutcomeHoneypot
	}

	if s.limiter != nil && s.limiter.Interval() > 0 {
		if _, busy := s.inflight.LoadOrStore(clientID, struct{}{}); busy {
			return rateLimited(s.limiter.Interval()), OutcomeRateLimited
		}
		defer s.inflight.Delete(clientID)
	}

	if s.limiter != nil {
		remaining, err := s.limiter.Remaining(ctx, clientID)
		if err != nil {
			s.logger.Warn("rate limit check failed, allowing submission", "error", err)
		}
		if remaining > 0 {
			return rateLimited(remaining), OutcomeRateLimited
		}
	}

	if err := ValidateForm(form); err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			return model.SubmitResult{Success: false, Error: stepErr.Message}, OutcomeInvalid
		}
		return model.SubmitResult{Success: false, Error: err.Error()}, OutcomeInvalid
	}

	payload := s.BuildPayload(form)
	result := s.submitter.Submit(ctx, payload)
	if !result.Success {
		s.logger.Warn("submission rejected by gateway", "submission_id", payload.SubmissionID, "error", result.Error)
		return result, OutcomeFailed
	}

	if s.limiter != nil {
		if err := s.limiter.MarkSubmitted(ctx, clientID); err != nil {
			s.logger.Warn("failed to record submission time", "error", err)
		}
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}
	s.logger.Info("submission forwarded", "submission_id", payload.SubmissionID, "district", payload.District)
	return result, OutcomeAccepted
}

func rateLimited(wait time.Duration) model.SubmitResult {
	secs := RemainingSeconds(wait)
	return model.SubmitResult{
		Success:           false,
		Error:             fmt.Sprintf("提交太快，請等 %d 秒後再試", secs),
		RetryAfterSeconds: secs,
	}
}

// BuildPayload converts a validated form into the sheet row payload.
func (s *SubmissionService) BuildPayload(form model.SurveyForm) model.SubmissionPayload {
	identity := form.IdentityID
	if ident, ok := LookupIdentity(form.Role, form.IdentityID); ok {
		identity = ident.Name
	}
	greeting := strings.TrimSpace(form.Greeting)
	if greeting == "" {
		greeting = model.DefaultGreeting
	}
	return model.SubmissionPayload{
		SubmissionID: uuid.NewString(),
		Timestamp:    s.clock.Now().UTC().Format(TimestampLayout),
		District:     strings.TrimSpace(form.District),
		Identity:     identity,
		Role:         form.Role,
		AgeGroup:     strings.TrimSpace(form.AgeGroup),
		Relation:     strings.TrimSpace(form.Relation),
		Amount:       form.FinalAmount(),
		Greeting:     greeting,
	}
}

// TimestampLayout is ISO-8601 with millisecond precision and a Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
