package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Logger progress logger
// Renders phases, per-task status and an ETA line for sequential runs.
type Logger struct {
	mu             sync.Mutex
	out            io.Writer
	showETA        bool
	totalTasks     int
	completedTasks int
	startTime      time.Time
	currentPhase   string
	tasks          []*TaskProgress
	taskDetails    map[string]*TaskProgress
}

// TaskProgress task progress
type TaskProgress struct {
	Name      string
	Status    string // "running", "completed", "failed"
	StartTime time.Time
	EndTime   time.Time
	Error     string
}

// NewLogger creates new logger writing to out.
// The ETA line is shown only when out is a terminal.
func NewLogger(out io.Writer, totalTasks int) *Logger {
	return &Logger{
		out:         out,
		showETA:     isTerminal(out),
		totalTasks:  totalTasks,
		startTime:   time.Now(),
		taskDetails: make(map[string]*TaskProgress),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetShowETA overrides terminal detection
func (l *Logger) SetShowETA(show bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showETA = show
}

var rule = strings.Repeat("━", 52)

// SetPhase sets current phase
func (l *Logger) SetPhase(phase string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentPhase = phase
	fmt.Fprintf(l.out, "\n%s\n📍 %s\n%s\n\n", rule, phase, rule)
}

// StartTask starts task
func (l *Logger) StartTask(taskName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	task := &TaskProgress{
		Name:      taskName,
		Status:    "running",
		StartTime: time.Now(),
	}
	l.taskDetails[taskName] = task
	l.tasks = append(l.tasks, task)

	fmt.Fprintf(l.out, "[%s] 🔄 Started\n", taskName)
}

// CompleteTask completes task
func (l *Logger) CompleteTask(taskName, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	task, ok := l.taskDetails[taskName]
	if !ok || task.Status != "running" {
		return
	}
	task.Status = "completed"
	task.EndTime = time.Now()
	l.completedTasks++

	duration := task.EndTime.Sub(task.StartTime)
	if detail != "" {
		fmt.Fprintf(l.out, "[%s] ✓ Completed (%.2fs) %s\n", taskName, duration.Seconds(), detail)
	} else {
		fmt.Fprintf(l.out, "[%s] ✓ Completed (%.2fs)\n", taskName, duration.Seconds())
	}
	l.printProgress()
}

// FailTask fails task
func (l *Logger) FailTask(taskName string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	task, ok := l.taskDetails[taskName]
	if !ok || task.Status != "running" {
		return
	}
	task.Status = "failed"
	task.EndTime = time.Now()
	task.Error = err.Error()
	l.completedTasks++

	fmt.Fprintf(l.out, "[%s] ✗ Failed: %v\n", taskName, err)
	l.printProgress()
}

// printProgress prints progress (internal, locked)
func (l *Logger) printProgress() {
	if l.totalTasks == 0 || !l.showETA {
		return
	}

	percentage := float64(l.completedTasks) / float64(l.totalTasks) * 100
	elapsed := time.Since(l.startTime)

	// Estimate remaining time
	var eta time.Duration
	if l.completedTasks > 0 {
		avgTime := elapsed / time.Duration(l.completedTasks)
		remaining := l.totalTasks - l.completedTasks
		eta = avgTime * time.Duration(remaining)
	}

	fmt.Fprintf(l.out, "📊 Progress: %d/%d (%.1f%%) | Elapsed: %s | ETA: %s\n\n",
		l.completedTasks, l.totalTasks, percentage,
		formatDuration(elapsed), formatDuration(eta))
}

// Counts returns completed and failed task counts
func (l *Logger) Counts() (completed, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, task := range l.tasks {
		switch task.Status {
		case "completed":
			completed++
		case "failed":
			failed++
		}
	}
	return completed, failed
}

// PrintSummary prints final summary
func (l *Logger) PrintSummary() {
	completed, failed := l.Counts()

	l.mu.Lock()
	defer l.mu.Unlock()

	totalDuration := time.Since(l.startTime)

	fmt.Fprintf(l.out, "\n%s\n📊 Final Summary\n%s\n\n", rule, rule)
	fmt.Fprintf(l.out, "Total Tasks: %d\n", l.totalTasks)
	fmt.Fprintf(l.out, "✓ Completed: %d\n", completed)
	fmt.Fprintf(l.out, "✗ Failed: %d\n", failed)
	fmt.Fprintf(l.out, "⏱️  Total Time: %s\n", formatDuration(totalDuration))

	if completed > 0 {
		avgTime := totalDuration / time.Duration(completed)
		fmt.Fprintf(l.out, "⚡ Avg Time/Task: %s\n", formatDuration(avgTime))
	}

	if failed > 0 {
		fmt.Fprintf(l.out, "\n❌ Failed Tasks:\n")
		for _, task := range l.tasks {
			if task.Status == "failed" {
				fmt.Fprintf(l.out, "  - %s: %s\n", task.Name, task.Error)
			}
		}
	}

	fmt.Fprintln(l.out)
}

// OnCaseStart marks a test case as running
func (l *Logger) OnCaseStart(index int, question string) {
	l.StartTask(caseName(index))
}

// OnCaseDone marks a test case as scored
func (l *Logger) OnCaseDone(index int, correctness, helpfulness float64) {
	l.CompleteTask(caseName(index), fmt.Sprintf("correctness=%.2f helpfulness=%.2f", correctness, helpfulness))
}

// OnCaseError marks a test case as errored
func (l *Logger) OnCaseError(index int, err error) {
	l.FailTask(caseName(index), err)
}

func caseName(index int) string {
	return fmt.Sprintf("case %d", index+1)
}

// formatDuration formats duration
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "N/A"
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
