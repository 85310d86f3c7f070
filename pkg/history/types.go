package history

import (
	"context"
	"time"

	"mercator-hq/copycheck/pkg/verdict"
)

// Run is one recorded batch run or single check.
type Run struct {
	ID      string `json:"id"`
	Rule    string `json:"rule"`
	Source  string `json:"source"`
	Trigger string `json:"trigger"`
	Mode    string `json:"mode"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Total is the number of rows, also when Rows is not loaded.
	Total  int    `json:"total"`
	Counts Counts `json:"counts"`

	// Rows is empty in listings.
	Rows []Row `json:"rows,omitempty"`
}

// Counts holds the number of rows per conclusion.
type Counts map[verdict.Conclusion]int

// Tally counts the conclusions of rows.
func Tally(rows []Row) Counts {
	counts := make(Counts, len(verdict.Conclusions))
	for _, row := range rows {
		counts[row.Conclusion]++
	}
	return counts
}

// Row is the recorded outcome of one row.
type Row struct {
	Index        int                `json:"index"`
	Conclusion   verdict.Conclusion `json:"conclusion"`
	Result       string             `json:"result"`
	Keywords     []string           `json:"keywords,omitempty"`
	InputTokens  int                `json:"input_tokens"`
	OutputTokens int                `json:"output_tokens"`
	Latency      time.Duration      `json:"latency"`
}

// Filter narrows ListRuns. Zero fields do not filter.
type Filter struct {
	Rule  string
	Since time.Time
	Limit int
}

// Store persists runs.
type Store interface {
	// SaveRun stores a run and its rows.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun returns a run with its rows, or ErrNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns runs without rows, newest first.
	ListRuns(ctx context.Context, filter Filter) ([]*Run, error)

	// DeleteBefore removes runs started before t and returns how many.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)

	// Close releases resources held by the store.
	Close() error
}
