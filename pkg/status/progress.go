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

package status

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/forcesync/pkg/profile"
	"golang.org/x/term"
)

var (
	_ profile.Progress = (*Bar)(nil)
	_ profile.Progress = (*LogProgress)(nil)
)

// 📈 Bar draws a pterm progress bar
type Bar struct {
	title  string
	writer io.Writer

	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

// NewBar creates a progress bar with title. A nil writer means stdout.
func NewBar(title string, writer io.Writer) *Bar {
	return &Bar{title: title, writer: writer}
}

func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	printer := pterm.DefaultProgressbar.WithTotal(total).WithTitle(b.title)
	if b.writer != nil {
		printer = printer.WithWriter(b.writer)
	}
	// Start never fails for a progress bar
	b.bar, _ = printer.Start()
}

func (b *Bar) Increment(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		b.bar.Add(n)
	}
}

func (b *Bar) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_, _ = b.bar.Stop()
	}
}

// 📝 LogProgress reports progress as log lines
type LogProgress struct {
	logger    *zerolog.Logger
	formatter Formatter

	mu        sync.Mutex
	total     int
	processed int
}

// NewLogProgress reports through the context logger.
func NewLogProgress(ctx context.Context) *LogProgress {
	return &LogProgress{
		logger:    zerolog.Ctx(ctx),
		formatter: NewDefaultFormatter(),
	}
}

func (p *LogProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.processed = 0
	p.logger.Info().Int("total", total).Msg(p.formatter.FormatProgress(0, total))
}

func (p *LogProgress) Increment(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed += n
	p.logger.Info().
		Int("processed", p.processed).
		Int("total", p.total).
		Msg(p.formatter.FormatProgress(p.processed, p.total))
}

func (p *LogProgress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Debug().
		Int("processed", p.processed).
		Int("total", p.total).
		Msg("progress finished")
}

// Interactive reports whether stdout is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// 🏭 NewProgress returns a Bar on terminals and a LogProgress elsewhere.
func NewProgress(ctx context.Context, title string, interactive bool) profile.Progress {
	if interactive {
		return NewBar(title, nil)
	}
	return NewLogProgress(ctx)
}
