// Package debug is the viewer's line logger: leveled, optionally colored,
// writing single lines to a configurable destination. The inspector uses
// Debug as its line sink.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"tinymid/theme"
)

// Level controls which messages get through. Each level includes the ones
// before it.
type Level uint8

const (
	LevelStatus Level = iota
	LevelError
	LevelWarn
	LevelDebug
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stdout
	level            = LevelStatus
	color  bool
	styles map[Level]lipgloss.Style
)

// SetLevel sets the maximum level that gets written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects log lines. Defaults to stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// EnableColor turns level-tag coloring on or off using th's palette.
func EnableColor(on bool, th *theme.Theme) {
	mu.Lock()
	defer mu.Unlock()
	color = on
	if on && th != nil {
		styles = map[Level]lipgloss.Style{
			LevelStatus: lipgloss.NewStyle().Foreground(th.Info()),
			LevelError:  lipgloss.NewStyle().Bold(true).Foreground(th.Error()),
			LevelWarn:   lipgloss.NewStyle().Foreground(th.Warning()),
			LevelDebug:  lipgloss.NewStyle().Foreground(th.Debug()),
		}
	}
}

func (l Level) tag() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelDebug:
		return "debug"
	}
	return "status"
}

func write(l Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if l > level || out == nil {
		return
	}

	tag := fmt.Sprintf("%-6s", l.tag())
	if color {
		if s, ok := styles[l]; ok {
			tag = s.Render(tag)
		}
	}
	fmt.Fprintf(out, "%s %s\n", tag, fmt.Sprintf(format, args...))
}

// Status writes a message that is always shown.
func Status(format string, args ...any) {
	write(LevelStatus, format, args...)
}

func Error(format string, args ...any) {
	write(LevelError, format, args...)
}

func Warn(format string, args ...any) {
	write(LevelWarn, format, args...)
}

// Debug writes a diagnostic line; the event dump goes through here.
func Debug(format string, args ...any) {
	write(LevelDebug, format, args...)
}
