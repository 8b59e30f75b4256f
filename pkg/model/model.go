package model

import "time"

// SurveyRecord is one lai see submission as read back from the sheet.
type SurveyRecord struct {
	District  string   `json:"district"`
	Role      string   `json:"role"`
	AgeGroup  string   `json:"age_group"`
	Relation  string   `json:"relation"`
	Identity  string   `json:"identity,omitempty"`
	Amount    *float64 `json:"amount"` // nil when the sheet row has no usable amount
	Greeting  string   `json:"greeting"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// HasAmount reports whether the record carries a parsed amount.
func (r SurveyRecord) HasAmount() bool {
	return r.Amount != nil
}

// SurveyForm is the answer set collected by the multi-step survey form.
type SurveyForm struct {
	Role         string  `json:"role"`
	IdentityID   string  `json:"identity"`
	AgeGroup     string  `json:"age_group"`
	District     string  `json:"district"`
	Relation     string  `json:"relation"`
	Amount       float64 `json:"amount"`
	CustomAmount float64 `json:"custom_amount,omitempty"`
	Greeting     string  `json:"greeting,omitempty"`
	// Honeypot is rendered as a hidden input; humans leave it empty.
	Honeypot string `json:"website_url,omitempty"`
}

// FinalAmount prefers the custom amount when the user typed one.
func (f SurveyForm) FinalAmount() float64 {
	if f.CustomAmount > 0 {
		return f.CustomAmount
	}
	return f.Amount
}

// SubmissionPayload is the JSON body forwarded to the sheet endpoint.
type SubmissionPayload struct {
	SubmissionID string  `json:"submission_id,omitempty"`
	Timestamp    string  `json:"timestamp"`
	District     string  `json:"district"`
	Identity     string  `json:"identity"`
	Role         string  `json:"role"`
	AgeGroup     string  `json:"age_group"`
	Relation     string  `json:"relation"`
	Amount       float64 `json:"amount"`
	Greeting     string  `json:"greeting"`
}

// SubmitResult is the outcome of a submission attempt, local or remote.
type SubmitResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	Error             string `json:"error,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// DistrictStats is the aggregate over the valid amounts of a cohort.
type DistrictStats struct {
	Count   int `json:"count" firestore:"count"`
	Average int `json:"average" firestore:"average"`
	Median  int `json:"median" firestore:"median"`
	Min     int `json:"min" firestore:"min"`
	Max     int `json:"max" firestore:"max"`
}

// Summary is the dashboard view over a (possibly filtered) record set.
type Summary struct {
	TotalCount int                      `json:"total_count" firestore:"totalCount"`
	Overall    DistrictStats            `json:"overall" firestore:"overall"`
	ByDistrict map[string]DistrictStats `json:"by_district" firestore:"byDistrict"`
	ByRole     map[string]int           `json:"by_role" firestore:"byRole"`
	ByAgeGroup map[string]int           `json:"by_age_group" firestore:"byAgeGroup"`
}

// StatsSnapshot is a persisted Summary taken at a point in time.
type StatsSnapshot struct {
	ID         string    `json:"id,omitempty" firestore:"id,omitempty"`
	TakenAt    time.Time `json:"taken_at" firestore:"takenAt"`
	Summary    Summary   `json:"summary" firestore:"summary"`
	SourceRows int       `json:"source_rows" firestore:"sourceRows"`
}

// LuckAnalysis describes how auspicious an amount is.
type LuckAnalysis struct {
	Type    string `json:"type"` // lucky, warning or normal
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ResultComparison compares a submitted amount against its district.
type ResultComparison struct {
	Amount            float64       `json:"amount"`
	District          string        `json:"district"`
	DistrictAverage   int           `json:"district_average"`
	Difference        float64       `json:"difference"`
	PercentDifference int           `json:"percent_difference"`
	Luck              LuckAnalysis  `json:"luck"`
	DistrictStats     DistrictStats `json:"district_stats"`
}

// Identity is a selectable respondent profile for one role.
type Identity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// RoleOption is a selectable survey role.
type RoleOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
