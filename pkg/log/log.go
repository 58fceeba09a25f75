// Copyright 2025 walteh LLC
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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent change entries
	nameWidth    = 35 // Base width for component name
	kindWidth    = 15 // Width for component kind
	actionWidth  = 15 // Width for action text
	programTitle = "forcesync"
)

// Action is what happened to one file.
type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionCopied  Action = "copied"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// 🎯 Change is one file touched by a command
type Change struct {
	Name   string // Component or profile name
	Path   string // File path, when known
	Kind   string // profile, source, ...
	Action Action
}

// 📦 Run describes the command whose changes follow
type Run struct {
	Command string   // Command name
	Source  string   // Where content comes from
	Roots   []string // Local package directories
}

// 📊 Counts summarises the changes of a run
type Counts struct {
	Added   int
	Updated int
	Deleted int
	Copied  int
	Skipped int
	Failed  int
}

func (c *Counts) add(a Action) {
	switch a {
	case ActionAdded:
		c.Added++
	case ActionUpdated:
		c.Updated++
	case ActionDeleted:
		c.Deleted++
	case ActionCopied:
		c.Copied++
	case ActionSkipped:
		c.Skipped++
	case ActionFailed:
		c.Failed++
	}
}

// 🎯 Logger writes human readable output and mirrors it into zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *Run
	counts  Counts
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatChange formats a change for display
func formatChange(c Change) string {
	var symbol rune
	var symbolColor color.Attribute
	switch c.Action {
	case ActionDeleted:
		symbol = '✗'
		symbolColor = color.FgRed
	case ActionAdded:
		symbol = '✓'
		symbolColor = color.FgGreen
	case ActionUpdated:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case ActionCopied:
		symbol = '•'
		symbolColor = color.FgCyan
	case ActionFailed:
		symbol = '!'
		symbolColor = color.FgRed
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	var kindColor color.Attribute
	switch c.Kind {
	case "profile":
		kindColor = color.FgCyan
	case "source":
		kindColor = color.FgYellow
	default:
		kindColor = color.FgBlue
	}

	name := c.Name
	if name == "" {
		name = c.Path
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, name),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, c.Kind)),
		fmt.Sprintf("%-*s", actionWidth, string(c.Action)))
}

// 📝 LogChange prints one change line
func (l *Logger) LogChange(ctx context.Context, c Change) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts.add(c.Action)

	fmt.Fprintln(l.console, formatChange(c))

	l.zlog.Info().
		Str("name", c.Name).
		Str("path", c.Path).
		Str("kind", c.Kind).
		Str("action", string(c.Action)).
		Msg("change")
}

// 📝 StartRun prints the run header and resets the counters
func (l *Logger) StartRun(ctx context.Context, r Run) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &r
	l.counts = Counts{}

	fmt.Fprintf(l.console, "[%s %s]\n",
		r.Command,
		color.New(color.FgCyan).Sprint(r.Source))

	for _, root := range r.Roots {
		fmt.Fprintf(l.console, "%s %s\n",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprint(root))
	}

	l.zlog.Info().
		Str("command", r.Command).
		Str("source", r.Source).
		Strs("roots", r.Roots).
		Msg("starting run")
}

// 📝 EndRun prints the summary line of the current run and returns its counts
func (l *Logger) EndRun(ctx context.Context) Counts {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := l.counts
	if l.current == nil {
		return counts
	}

	fmt.Fprintln(l.console, formatCounts(counts))

	l.zlog.Info().
		Str("command", l.current.Command).
		Int("added", counts.Added).
		Int("updated", counts.Updated).
		Int("deleted", counts.Deleted).
		Int("copied", counts.Copied).
		Int("skipped", counts.Skipped).
		Int("failed", counts.Failed).
		Msg("run complete")

	l.current = nil
	l.counts = Counts{}
	return counts
}

func formatCounts(c Counts) string {
	line := fmt.Sprintf("%s %s %s %s %s",
		color.New(color.FgGreen).Sprintf("%d added", c.Added),
		color.New(color.FgBlue).Sprintf("%d updated", c.Updated),
		color.New(color.FgRed).Sprintf("%d deleted", c.Deleted),
		color.New(color.FgCyan).Sprintf("%d copied", c.Copied),
		color.New(color.Faint).Sprintf("%d skipped", c.Skipped))
	if c.Failed > 0 {
		line += " " + color.New(color.FgRed, color.Bold).Sprintf("%d failed", c.Failed)
	}
	return line
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	title := color.New(color.Bold, color.FgCyan).Sprint(programTitle)
	fmt.Fprintf(l.console, "\n%s %s\n\n", title, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...any) {
	l.Success(fmt.Sprintf(format, args...))
}
