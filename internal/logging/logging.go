// Package logging builds the slog handlers used by the pqbuild CLI.
//
// Two formats are supported: a terse pretty format for interactive use,
// with level labels colored when the stream is a terminal, and JSON for
// machine consumption (CI logs).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Output format of a handler.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// Handler construction options.
type Options struct {
	Format     Format       // Output format. Empty means pretty.
	Level      slog.Leveler // Minimum level. Nil means info.
	Color      bool         // Style level labels (pretty only).
	Timestamps bool         // Prefix pretty records with an RFC 3339 timestamp.
}

// Creates a handler writing to w.
func New(w io.Writer, opts Options) slog.Handler {
	if w == nil {
		panic("logging: writer must not be nil")
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	if opts.Format == FormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	return &prettyHandler{
		mu:         &sync.Mutex{},
		writer:     w,
		level:      level,
		color:      opts.Color,
		timestamps: opts.Timestamps,
	}
}

// Whether the given file is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

var levelStyles = map[slog.Level]lipgloss.Style{
	slog.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	slog.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	slog.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	slog.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

type prettyHandler struct {
	mu         *sync.Mutex
	writer     io.Writer
	level      slog.Leveler
	color      bool
	timestamps bool

	attrs  []slog.Attr
	groups []string
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder

	if h.timestamps {
		ts := record.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		b.WriteString(ts.UTC().Format(time.RFC3339))
		b.WriteByte(' ')
	}

	b.WriteString(h.label(record.Level))
	b.WriteByte(' ')
	b.WriteString(record.Message)

	for _, attr := range h.attrs {
		h.appendAttr(&b, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.appendAttr(&b, h.groups, attr)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// Fixed-width level label, styled when color is enabled.
func (h *prettyHandler) label(level slog.Level) string {
	text := fmt.Sprintf("%-5s", strings.ToUpper(level.String()))
	if !h.color {
		return text
	}
	style, ok := levelStyles[level]
	if !ok {
		return text
	}
	return style.Render(text)
}

func (h *prettyHandler) appendAttr(b *strings.Builder, groups []string, attr slog.Attr) {
	value := attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if value.Kind() == slog.KindGroup {
		nested := groups
		if attr.Key != "" {
			nested = append(append([]string(nil), groups...), attr.Key)
		}
		for _, a := range value.Group() {
			h.appendAttr(b, nested, a)
		}
		return
	}

	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(append(append([]string(nil), groups...), key), ".")
	}

	b.WriteByte(' ')
	if h.color {
		b.WriteString(keyStyle.Render(key + "="))
	} else {
		b.WriteString(key)
		b.WriteByte('=')
	}
	b.WriteString(formatValue(value))
}

func formatValue(value slog.Value) string {
	switch value.Kind() {
	case slog.KindString:
		s := value.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return value.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := value.Any().(error); ok && err != nil {
			return strconv.Quote(err.Error())
		}
		return fmt.Sprint(value.Any())
	default:
		return value.String()
	}
}
