package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// StatusTracker renders one progress line per collection kind. Update
// has the shape of collection.ProgressFunc.
type StatusTracker struct {
	mu        sync.Mutex
	StartTime time.Time
	done      map[string]int
	order     []string
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		StartTime: time.Now(),
		done:      make(map[string]int),
	}
}

// Update records progress for kind and redraws its line. The line is
// finished with a newline once done reaches total.
func (st *StatusTracker) Update(kind string, done, total int) {
	st.mu.Lock()
	if _, seen := st.done[kind]; !seen {
		st.order = append(st.order, kind)
	}
	st.done[kind] = done
	st.mu.Unlock()

	line := "\r" + FormatProgress(kind, done, total)
	if done >= total {
		line += "\n"
	}
	write(false, "%s", line)
}

// Completed returns the last reported count for each kind.
func (st *StatusTracker) Completed() map[string]int {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make(map[string]int, len(st.done))
	for k, v := range st.done {
		out[k] = v
	}
	return out
}

// Kinds lists kinds in the order they were first reported.
func (st *StatusTracker) Kinds() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]string(nil), st.order...)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// PrintSummary prints the per-kind totals and elapsed time.
func (st *StatusTracker) PrintSummary() {
	counts := st.Completed()
	parts := make([]string, 0, len(counts))
	for _, kind := range st.Kinds() {
		parts = append(parts, fmt.Sprintf("%s %d", kind, counts[kind]))
	}
	write(false, "%s %s %s\n",
		Green("[DONE]"),
		strings.Join(parts, " | "),
		Dim(fmt.Sprintf("(%s)", st.GetElapsedTime().Round(time.Millisecond))))
}

// FormatProgress builds a single progress line such as
// "[MOUNTS] ██████░░░░ 12/40".
func FormatProgress(kind string, done, total int) string {
	pct := 100.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	filled := int(pct / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	bar := colorize(progressBarStyle(pct))(strings.Repeat(ProgressBar, filled)) +
		colorize(barEmptyStyle)(strings.Repeat(ProgressEmpty, barWidth-filled))

	return fmt.Sprintf("%s [%s] %d/%d",
		Magenta("["+strings.ToUpper(kind)+"]"), bar, done, total)
}
