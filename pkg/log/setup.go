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
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Levels are the names accepted by ParseLevel, most verbose first.
var Levels = []string{"trace", "debug", "info", "warn", "error", "fatal"}

// ParseLevel maps a level name to a zerolog level, ignoring case.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "fatal":
		return zerolog.FatalLevel, nil
	default:
		return zerolog.NoLevel, errors.Errorf("unknown log level %q, options: %s", name, strings.Join(Levels, ", "))
	}
}

// ⚙️ Options configures the process logger
type Options struct {
	// Level is a name understood by ParseLevel
	Level string
	// File, when set, also receives JSON logs, rotated by size
	File string
	// Console receives human readable logs, os.Stderr when nil
	Console io.Writer
	// NoColor disables colors on the console writer
	NoColor bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// 🏭 Setup builds the process logger. The returned closer flushes the log
// file, if any.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	console := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    opts.NoColor,
		TimeFormat: time.Kitchen,
	}

	var closer io.Closer = nopCloser{}
	var writer io.Writer = console
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return zerolog.Nop(), closer, errors.Errorf("creating log directory: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		closer = file
		writer = zerolog.MultiLevelWriter(console, file)
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}
