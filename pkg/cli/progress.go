package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

const barWidth = 30

// RowProgress renders a single-line bar of checked rows with throughput
// and an estimate of the remaining time. It is safe for concurrent use.
type RowProgress struct {
	mu      sync.Mutex
	writer  io.Writer
	now     func() time.Time
	total   int64
	current int64
	started time.Time
}

// NewProgressReporter creates a row progress bar writing to w.
// If w is nil, it defaults to os.Stderr.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &RowProgress{writer: w, now: time.Now}
}

// Start resets the bar for total rows.
func (p *RowProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = p.now()
	p.render()
}

// Update sets the number of finished rows. Workers finish out of order, so
// values below the current one are ignored.
func (p *RowProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current <= p.current {
		return
	}
	p.current = min(current, p.total)
	p.render()
}

// Finish fills the bar and ends the line.
func (p *RowProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error ends the line with err.
func (p *RowProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\nbatch failed after %d/%d rows: %v\n", p.current, p.total, err)
}

func (p *RowProgress) render() {
	if p.total <= 0 {
		return
	}

	filled := int(int64(barWidth) * p.current / p.total)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)

	line := fmt.Sprintf("\r[%s] %d/%d rows", bar, p.current, p.total)
	if elapsed := p.now().Sub(p.started); elapsed > 0 && p.current > 0 {
		rate := float64(p.current) / elapsed.Seconds()
		line += fmt.Sprintf("  %.1f rows/s", rate)
		if left := p.total - p.current; left > 0 {
			eta := time.Duration(float64(left) / rate * float64(time.Second))
			line += "  eta " + eta.Round(time.Second).String()
		}
	}
	fmt.Fprint(p.writer, line)
}
