/*
 * Copyright 2025 pai-group.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package utils provides named, level-configurable loggers backed by logrus,
// plus small environment helpers shared across the module.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the logger type handed out by NewLogger.
type Logger = logrus.Logger

var (
	defaultConsoleLevel = logrus.InfoLevel
	loggerRegistryMu    sync.RWMutex
	loggerRegistry      = map[string]*logrus.Logger{}
	fileLogEnabled      = EnvDefaultBool("FILE_LOG_ENABLED", false)
	fileLogDir          = "logs"
	consoleLogFormat    = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
)

// ConfigureFileLog enables appending all log output to a file under dir.
func ConfigureFileLog(dir string) {
	if dir != "" {
		fileLogDir = dir
	}
	fileLogEnabled = true
}

// ConfigureConsoleLogFormat switches console output between "text" and "json".
func ConfigureConsoleLogFormat(format string) {
	s := strings.ToLower(strings.TrimSpace(format))
	if s == "json" {
		consoleLogFormat = "json"
	} else {
		consoleLogFormat = "text"
	}
}

// namedTextFormatter prefixes each entry with its logger name, e.g.
// "2025-01-06 10:00:00.000 [DATABASE] INFO message".
type namedTextFormatter struct {
	name string
}

func (f *namedTextFormatter) Format(e *logrus.Entry) ([]byte, error) {
	ts := e.Time.Format("2006-01-02 15:04:05.000")
	level := strings.ToUpper(e.Level.String())
	line := fmt.Sprintf("%s [%s] %-5s %s\n", ts, f.name, level, e.Message)
	return []byte(line), nil
}

// NewLogger returns the named logger, creating and registering it on first
// use. Loggers with the same name share configuration.
func NewLogger(name string) *logrus.Logger {
	name = normalizeName(name)

	loggerRegistryMu.RLock()
	if l, ok := loggerRegistry[name]; ok {
		loggerRegistryMu.RUnlock()
		return l
	}
	loggerRegistryMu.RUnlock()

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok := loggerRegistry[name]; ok {
		return l
	}

	l := logrus.New()
	l.SetLevel(levelFromEnv(name, defaultConsoleLevel))
	l.SetOutput(os.Stdout)
	if consoleLogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		l.SetFormatter(&namedTextFormatter{name: name})
	}

	if fileLogEnabled {
		if f, err := openLogFile(name); err == nil {
			l.AddHook(&fileHook{file: f, formatter: &namedTextFormatter{name: name}})
		}
	}

	loggerRegistry[name] = l
	return l
}

// SetLoggerLevel adjusts a registered logger's level at runtime. Unknown
// level strings leave the logger unchanged.
func SetLoggerLevel(name, level string) {
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[normalizeName(name)]
	loggerRegistryMu.RUnlock()
	if !ok {
		return
	}
	if parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		l.SetLevel(parsed)
	}
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "APP"
	}
	return strings.ToUpper(name)
}

// levelFromEnv honors <NAME>_LOG_LEVEL, e.g. DATABASE_LOG_LEVEL=debug.
func levelFromEnv(name string, fallback logrus.Level) logrus.Level {
	env := os.Getenv(name + "_LOG_LEVEL")
	if env == "" {
		return fallback
	}
	if parsed, err := logrus.ParseLevel(strings.ToLower(env)); err == nil {
		return parsed
	}
	return fallback
}

func openLogFile(name string) (*os.File, error) {
	if err := os.MkdirAll(fileLogDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(fileLogDir, fmt.Sprintf("%s.log", strings.ToLower(name)))
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// fileHook duplicates every entry into a log file.
type fileHook struct {
	file      *os.File
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.file.Write(b)
	return err
}

// EnvDefaultString returns the environment value for key, or def when unset
// or blank.
func EnvDefaultString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// EnvDefaultBool returns the boolean environment value for key, or def when
// unset or unparsable.
func EnvDefaultBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return def
}

// EnvDefaultInt returns the integer environment value for key, or def when
// unset or unparsable.
func EnvDefaultInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return def
}
