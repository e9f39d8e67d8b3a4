package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Spinner represents an animated spinner for long operations
type Spinner struct {
	frames  []string
	current int
	message string
	stop    chan bool
	stopped bool
	mu      sync.Mutex
}

// NewSpinner creates a new spinner
func NewSpinner(message string) *Spinner {
	return &Spinner{
		frames:  []string{"|", "/", "-", "\\"},
		current: 0,
		message: message,
		stop:    make(chan bool),
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Printf("\r%s %s %s",
						ColorProgress(s.frames[s.current]),
						s.message,
						strings.Repeat(" ", 20),
					)
					s.current = (s.current + 1) % len(s.frames)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner
func (s *Spinner) Stop(success bool, message string) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)

	fmt.Print("\r\033[K")

	if success {
		fmt.Printf("%s %s\n", ColorSuccess("OK"), message)
	} else {
		fmt.Printf("%s %s\n", ColorError("FAIL"), message)
	}
}

// UpdateMessage updates the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// StepTracker reports progress through the per-warehouse pipeline stages
type StepTracker struct {
	warehouse string
	total     int
	current   int
	startTime time.Time
	mu        sync.Mutex
}

// NewStepTracker creates a tracker for one warehouse's pipeline steps
func NewStepTracker(warehouse string, total int) *StepTracker {
	return &StepTracker{
		warehouse: warehouse,
		total:     total,
		startTime: time.Now(),
	}
}

// Step announces the next pipeline stage for the warehouse
func (st *StepTracker) Step(name string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.current++
	fmt.Printf("%s [%d/%d] %s: %s\n",
		ColorProgress(">"),
		st.current,
		st.total,
		ColorBold(st.warehouse),
		name,
	)
}

// Done reports completion of all stages for the warehouse
func (st *StepTracker) Done() {
	st.mu.Lock()
	defer st.mu.Unlock()

	fmt.Printf("%s %s completed in %s\n",
		ColorSuccess("OK"),
		st.warehouse,
		FormatDuration(time.Since(st.startTime)),
	)
}

// ShowWarehouseExecution displays which warehouse is being processed
func ShowWarehouseExecution(warehouse string, current, total int) {
	fmt.Printf("\n%s Processing [%d/%d]: %s\n",
		ColorProgress(">"),
		current,
		total,
		ColorBold(warehouse),
	)
}

// ShowStepResult displays the result of one pipeline step
func ShowStepResult(step string, success bool, message string, duration string) {
	if success {
		fmt.Printf("  %s %s (%s)\n",
			ColorSuccess("+"),
			step,
			ColorDim(duration),
		)
	} else {
		fmt.Printf("  %s %s\n",
			ColorError("x"),
			step,
		)
		if message != "" {
			fmt.Printf("    %s\n", ColorError(message))
		}
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, minutes)
}
