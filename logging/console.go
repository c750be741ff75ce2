// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var consoleBuilderPool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

type consoleStyles struct {
	time    lipgloss.Style
	message lipgloss.Style
	key     lipgloss.Style
	source  lipgloss.Style
	debug   lipgloss.Style
	info    lipgloss.Style
	warn    lipgloss.Style
	error   lipgloss.Style
}

func newConsoleStyles(w io.Writer) *consoleStyles {
	r := lipgloss.NewRenderer(w)
	level := r.NewStyle().Bold(true).Width(5)
	return &consoleStyles{
		time:    r.NewStyle().Faint(true),
		message: r.NewStyle().Foreground(lipgloss.Color("15")),
		key:     r.NewStyle().Foreground(lipgloss.Color("6")),
		source:  r.NewStyle().Foreground(lipgloss.Color("8")),
		debug:   level.Foreground(lipgloss.Color("4")),
		info:    level.Foreground(lipgloss.Color("2")),
		warn:    level.Foreground(lipgloss.Color("3")),
		error:   level.Foreground(lipgloss.Color("1")),
	}
}

// consoleHandler writes one colored line per record. Colors are dropped
// when the output is not a terminal.
type consoleHandler struct {
	opts   *slog.HandlerOptions
	styles *consoleStyles
	mu     *sync.Mutex
	output io.Writer
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *consoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &consoleHandler{
		opts:   opts,
		styles: newConsoleStyles(w),
		mu:     &sync.Mutex{},
		output: w,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	b := consoleBuilderPool.Get().(*strings.Builder)
	b.Reset()
	defer consoleBuilderPool.Put(b)

	b.WriteString(h.styles.time.Render(r.Time.Format("15:04:05.000")))
	b.WriteString(" ")
	b.WriteString(h.levelStyle(r.Level).Render(r.Level.String()))
	b.WriteString(" ")
	b.WriteString(h.styles.message.Render(r.Message))

	for _, a := range h.attrs {
		h.appendAttr(b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(b, h.qualify(a))
		return true
	})

	if h.opts.AddSource && r.PC != 0 {
		if src := recordSource(r.PC); src != "" {
			b.WriteString(" ")
			b.WriteString(h.styles.source.Render("(" + src + ")"))
		}
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.output, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		prefixed = append(prefixed, h.qualify(a))
	}
	clone := *h
	clone.attrs = prefixed
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// qualify prefixes the key with the open groups.
func (h *consoleHandler) qualify(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(h.groups, a)
	}
	if len(h.groups) > 0 {
		a.Key = strings.Join(h.groups, ".") + "." + a.Key
	}
	return a
}

func (h *consoleHandler) levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return h.styles.error
	case level >= slog.LevelWarn:
		return h.styles.warn
	case level >= slog.LevelInfo:
		return h.styles.info
	default:
		return h.styles.debug
	}
}

func (h *consoleHandler) appendAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			if h.opts.ReplaceAttr != nil {
				ga = h.opts.ReplaceAttr(nil, ga)
			}
			ga.Key = a.Key + "." + ga.Key
			h.appendAttr(b, ga)
		}
		return
	}

	b.WriteString(" ")
	b.WriteString(h.styles.key.Render(a.Key + "="))
	b.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 2, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		if err, ok := v.Any().(error); ok {
			return strconv.Quote(err.Error())
		}
		return fmt.Sprint(v.Any())
	}
}

// recordSource returns "file:line" for pc.
func recordSource(pc uintptr) string {
	fs := runtime.CallersFrames([]uintptr{pc})
	f, _ := fs.Next()
	if f.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}
