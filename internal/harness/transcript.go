package harness

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#60F281"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4473"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#42E7FF"))
	consoleStyle = lipgloss.NewStyle().Faint(true)
)

const rule = "═══════════════════════════════════════"

// transcript prints the human-readable pass/fail log. Browser console lines
// arrive from another goroutine, so writes are serialized.
type transcript struct {
	mu sync.Mutex
	w  io.Writer
}

func (t *transcript) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format, args...)
}

func (t *transcript) heading(format string, args ...any) {
	t.printf("%s\n", headingStyle.Render(fmt.Sprintf(format, args...)))
}

func (t *transcript) pass(format string, args ...any) {
	t.printf("%s\n\n", passStyle.Render("✅ "+fmt.Sprintf(format, args...)))
}

func (t *transcript) fail(format string, args ...any) {
	t.printf("%s\n\n", failStyle.Render("❌ "+fmt.Sprintf(format, args...)))
}

func (t *transcript) detail(icon, format string, args ...any) {
	t.printf("  %s %s\n", icon, detailStyle.Render(fmt.Sprintf(format, args...)))
}

func (t *transcript) line(format string, args ...any) {
	t.printf("  %s\n", fmt.Sprintf(format, args...))
}

// Console echoes a browser console line.
func (t *transcript) console(text string) {
	t.printf("  📝 %s\n", consoleStyle.Render("Browser: "+strings.TrimSpace(text)))
}

func (t *transcript) summary(r *Report) {
	t.printf("%s\n", rule)
	if r.OK() {
		t.printf("%s\n", passStyle.Render(fmt.Sprintf("🎉 All tests completed successfully! (%d checks)", r.Passed)))
	} else {
		t.printf("%s\n", failStyle.Render(fmt.Sprintf("%d of %d checks failed", r.Failed, r.Passed+r.Failed)))
		for _, f := range r.Failures {
			t.printf("  - %s\n", f)
		}
	}
	t.printf("%s\n", rule)
}
