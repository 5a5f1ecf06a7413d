package translation

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// MaxAttempts caps how many times a failed translation may be retried before
// it needs a manual reset.
const MaxAttempts = 3

// ReviewThreshold is the confidence below which a translation is flagged for
// human review.
const ReviewThreshold = 0.75

var supportedLanguages = map[string]string{
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ar": "Arabic",
	"sw": "Swahili",
}

func IsSupportedLanguage(code string) bool {
	_, ok := supportedLanguages[code]
	return ok
}

func SupportedLanguages() []string {
	codes := make([]string, 0, len(supportedLanguages))
	for code := range supportedLanguages {
		codes = append(codes, code)
	}
	return codes
}

// Translation is the persisted result row, one per (resume, language).
type Translation struct {
	ID             int            `db:"id" json:"id"`
	ResumeID       int            `db:"resume_id" json:"resume_id"`
	Language       string         `db:"language" json:"language"`
	Data           types.JSONText `db:"data" json:"data,omitempty"`
	Status         Status         `db:"status" json:"status"`
	Confidence     float64        `db:"confidence" json:"confidence"`
	NeedsReview    bool           `db:"needs_review" json:"needs_review"`
	AttemptCount   int            `db:"attempt_count" json:"attempt_count"`
	AIModel        string         `db:"ai_model" json:"ai_model"`
	TokensUsed     int            `db:"tokens_used" json:"tokens_used"`
	LastError      *string        `db:"last_error" json:"last_error,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	LastAccessedAt time.Time      `db:"last_accessed_at" json:"last_accessed_at"`
}

// Job tracks the in-flight attempt separately from the durable result row.
type Job struct {
	ID             int       `db:"id" json:"id"`
	ResumeID       int       `db:"resume_id" json:"resume_id"`
	TargetLanguage string    `db:"target_language" json:"target_language"`
	Status         Status    `db:"status" json:"status"`
	AttemptCount   int       `db:"attempt_count" json:"attempt_count"`
	AIModel        string    `db:"ai_model" json:"ai_model"`
	LastError      *string   `db:"last_error" json:"last_error,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type Options struct {
	Force    bool   `json:"force"`
	UseCache bool   `json:"use_cache"`
	AIModel  string `json:"ai_model"`
}

type Result struct {
	ResumeID    int            `json:"resume_id"`
	Language    string         `json:"language"`
	Data        types.JSONText `json:"data"`
	Confidence  float64        `json:"confidence"`
	NeedsReview bool           `json:"needs_review"`
	Cached      bool           `json:"cached"`
}

type TranslateRequest struct {
	Language string `json:"language" binding:"required,min=2,max=8"`
	Force    bool   `json:"force"`
	NoCache  bool   `json:"no_cache"`
	Async    bool   `json:"async"`
	AIModel  string `json:"ai_model"`
}
