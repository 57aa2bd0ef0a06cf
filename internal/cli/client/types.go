package client

import (
	"math"
	"time"

	"github.com/biopaper/paperpush/internal/session"
)

// Envelope is the backend's standard response body
type Envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// StatusResponse is returned by endpoints that only acknowledge an action
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *session.User `json:"user,omitempty"`
}

// RegisterRequest represents the self-registration request body
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	User    *session.User `json:"user"`
}

// UserRecord is a user as reported by /auth/me and the admin endpoints
type UserRecord struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
}

// PasswordChangeRequest represents the self-service password change body
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,nefield=OldPassword"`
}

// CurrentUserResponse represents the /auth/me response
type CurrentUserResponse struct {
	Status string     `json:"status"`
	User   UserRecord `json:"user"`
}

// Run is one execution of the paper push pipeline
type Run struct {
	RunID        string `json:"run_id"`
	WindowDays   int    `json:"window_days"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time,omitempty"`
	TotalPapers  int    `json:"total_papers"`
	UnseenPapers int    `json:"unseen_papers"`
	TopK         int    `json:"top_k"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// ScoreReason explains part of a paper's score
type ScoreReason struct {
	Category    string  `json:"category"`
	Points      float64 `json:"points"`
	Description string  `json:"description"`
}

// PaperScore is a scored paper within a run
type PaperScore struct {
	Title   string        `json:"title"`
	Source  string        `json:"source"`
	Date    string        `json:"date"`
	Score   float64       `json:"score"`
	Reasons []ScoreReason `json:"reasons"`
}

// TriggerRunParams are the optional overrides for a manual run.
// Nil fields are not sent and the backend defaults apply.
type TriggerRunParams struct {
	WindowDays *int `validate:"omitempty,min=1"`
	TopK       *int `validate:"omitempty,min=1"`
}

// TriggerRunResponse represents the POST /run response.
// Status is "error" with Running set when a run is already in progress.
type TriggerRunResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Running bool   `json:"running,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// RunStatus represents the GET /run/status response
type RunStatus struct {
	Status    string `json:"status"`
	Running   bool   `json:"running"`
	RunID     string `json:"run_id,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Paper is a stored paper with its best score
type Paper struct {
	ID               int64   `json:"id"`
	ItemID           string  `json:"item_id"`
	Title            string  `json:"title"`
	Abstract         string  `json:"abstract"`
	Date             string  `json:"date"`
	Source           string  `json:"source"`
	DOI              string  `json:"doi"`
	Link             string  `json:"link"`
	CitationCount    int     `json:"citation_count"`
	InfluentialCount int     `json:"influential_count"`
	Score            float64 `json:"score"`
}

// PaperPage is one page of the paper listing
type PaperPage struct {
	Papers   []Paper `json:"papers"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// PaperQuery filters the paper listing. Zero values are not sent.
type PaperQuery struct {
	Page     int      `validate:"omitempty,min=1"`
	PageSize int      `validate:"omitempty,min=1,max=100"`
	Search   string
	Source   string
	MinScore *float64
}

// LogEntry is one parsed backend log line
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// LogFile is a log file in the backend's log directory
type LogFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	// Modified is a Unix timestamp with fractional seconds
	Modified float64 `json:"modified"`
}

// ModifiedTime returns Modified as a time.Time
func (f LogFile) ModifiedTime() time.Time {
	sec, frac := math.Modf(f.Modified)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// LogQuery filters the log listing. Zero values are not sent.
type LogQuery struct {
	Level  string `validate:"omitempty,oneof=DEBUG INFO WARNING ERROR CRITICAL"`
	Search string
	Limit  int `validate:"omitempty,min=1,max=1000"`
}

// SystemConfig is the backend's editable configuration
type SystemConfig struct {
	Keywords    KeywordConfig      `json:"keywords" yaml:"keywords"`
	Scoring     ScoringConfig      `json:"scoring" yaml:"scoring"`
	DataSources []DataSourceConfig `json:"dataSources" yaml:"dataSources" validate:"dive"`
	Push        PushConfig         `json:"push" yaml:"push"`
	General     GeneralConfig      `json:"general" yaml:"general"`
}

// KeywordConfig lists the research topic keywords
type KeywordConfig struct {
	Nitrogen []string `json:"nitrogen" yaml:"nitrogen"`
	Signal   []string `json:"signal" yaml:"signal"`
	Enzyme   []string `json:"enzyme" yaml:"enzyme"`
}

// ScoringConfig holds the scoring weights
type ScoringConfig struct {
	KeywordWeight   int `json:"keywordWeight" yaml:"keywordWeight" validate:"min=0"`
	JournalBonus    int `json:"journalBonus" yaml:"journalBonus" validate:"min=0"`
	CitationWeight  int `json:"citationWeight" yaml:"citationWeight" validate:"min=0"`
	FreshnessWeight int `json:"freshnessWeight" yaml:"freshnessWeight" validate:"min=0"`
}

// DataSourceConfig toggles one paper source
type DataSourceConfig struct {
	Name       string `json:"name" yaml:"name" validate:"required"`
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	WindowDays int    `json:"windowDays" yaml:"windowDays" validate:"min=0"`
}

// PushConfig holds the push channel settings
type PushConfig struct {
	PushplusTokens []string `json:"pushplusTokens" yaml:"pushplusTokens"`
	Email          string   `json:"email" yaml:"email" validate:"omitempty,email"`
}

// GeneralConfig holds run defaults
type GeneralConfig struct {
	DefaultWindowDays    int     `json:"defaultWindowDays" yaml:"defaultWindowDays" validate:"min=0"`
	TopK                 int     `json:"topK" yaml:"topK" validate:"min=0"`
	QuickFilterThreshold float64 `json:"quickFilterThreshold" yaml:"quickFilterThreshold"`
}

// CreateUserRequest represents the admin user creation request
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
}

// UpdateUserRequest changes a user's role and/or active flag.
// Nil fields are left untouched by the backend.
type UpdateUserRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ResetPasswordRequest represents the admin password reset body
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}
