// Copyright The Elevator Authors. All Rights Reserved.
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

// Package log provides a source-tagged logging front-end on top of klog.
// Each package acquires its own named Logger and debugging can be turned
// on and off per source at runtime or from the environment.
package log

import (
	"fmt"
	"sync"

	"k8s.io/klog/v2"
)

// Level describes the severity of a log message.
type Level int

const (
	// LevelDebug is the severity of debug messages.
	LevelDebug Level = iota
	// LevelInfo is the severity of informational messages.
	LevelInfo
	// LevelWarn is the severity of warnings.
	LevelWarn
	// LevelError is the severity of errors.
	LevelError
)

// DefaultLevel is the default logging severity level.
const DefaultLevel = LevelInfo

// Logger is the interface for producing log messages for a source.
type Logger interface {
	// Debug formats and emits a debug message, if debugging is
	// enabled for the source.
	Debug(format string, args ...interface{})
	// Info formats and emits an informational message.
	Info(format string, args ...interface{})
	// Warn formats and emits a warning message.
	Warn(format string, args ...interface{})
	// Error formats and emits an error message.
	Error(format string, args ...interface{})
	// Fatal formats and emits an error message and exits the process.
	Fatal(format string, args ...interface{})
	// Panic formats and emits an error message and panics with the same.
	Panic(format string, args ...interface{})

	// Debugf, Infof, Warnf, and Errorf are aliases provided for
	// klog/logrus-accustomed call sites.
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// DebugEnabled checks if debug messages are enabled for the source.
	DebugEnabled() bool
	// EnableDebug enables or disables debug messages for the source,
	// returning the previous setting.
	EnableDebug(bool) bool
	// Source returns the source of the Logger.
	Source() string
}

// logging is the shared state of all Loggers.
type logging struct {
	sync.RWMutex
	level   Level
	loggers map[string]logger
	debug   map[string]bool
}

// logger implements Logger.
type logger struct {
	source string
	prefix string
}

var log = &logging{
	level:   DefaultLevel,
	loggers: make(map[string]logger),
	debug:   make(map[string]bool),
}

const (
	// stack depth to skip for the emitting call site
	depth = 2
	// source under which unnamed messages are logged
	defaultSource = "default"
)

// Get returns the named Logger, creating it if necessary.
func Get(source string) Logger {
	log.Lock()
	defer log.Unlock()
	return log.get(source)
}

// NewLogger is an alias for Get.
func NewLogger(source string) Logger {
	return Get(source)
}

// Default returns the default Logger.
func Default() Logger {
	return Get(defaultSource)
}

// SetLevel sets the least severity of messages to pass through.
func SetLevel(level Level) {
	log.Lock()
	defer log.Unlock()
	log.level = level
}

// EnableDebug enables debug messages for the given sources. A source of
// "all" or "*" toggles debugging for all sources without an explicit
// setting of their own.
func EnableDebug(sources ...string) {
	log.Lock()
	defer log.Unlock()
	for _, src := range sources {
		if src == "all" {
			src = "*"
		}
		log.debug[src] = true
	}
}

// DisableDebug disables debug messages for the given sources.
func DisableDebug(sources ...string) {
	log.Lock()
	defer log.Unlock()
	for _, src := range sources {
		if src == "all" {
			src = "*"
		}
		log.debug[src] = false
	}
}

// Flush flushes any pending log messages.
func Flush() {
	klog.Flush()
}

func (l *logging) get(source string) logger {
	if lgr, ok := l.loggers[source]; ok {
		return lgr
	}
	lgr := logger{
		source: source,
		prefix: "[" + source + "] ",
	}
	l.loggers[source] = lgr
	return lgr
}

func (l *logging) debugEnabled(source string) bool {
	if enabled, ok := l.debug[source]; ok {
		return enabled
	}
	return l.debug["*"]
}

func (l logger) format(format string, args ...interface{}) string {
	return l.prefix + fmt.Sprintf(format, args...)
}

func (l logger) Debug(format string, args ...interface{}) {
	log.RLock()
	enabled := log.level <= LevelDebug || log.debugEnabled(l.source)
	log.RUnlock()
	if enabled {
		klog.InfoDepth(depth, l.format(format, args...))
	}
}

func (l logger) Info(format string, args ...interface{}) {
	log.RLock()
	enabled := log.level <= LevelInfo
	log.RUnlock()
	if enabled {
		klog.InfoDepth(depth, l.format(format, args...))
	}
}

func (l logger) Warn(format string, args ...interface{}) {
	log.RLock()
	enabled := log.level <= LevelWarn
	log.RUnlock()
	if enabled {
		klog.WarningDepth(depth, l.format(format, args...))
	}
}

func (l logger) Error(format string, args ...interface{}) {
	klog.ErrorDepth(depth, l.format(format, args...))
}

func (l logger) Fatal(format string, args ...interface{}) {
	klog.FatalDepth(depth, l.format(format, args...))
}

func (l logger) Panic(format string, args ...interface{}) {
	msg := l.format(format, args...)
	klog.ErrorDepth(depth, msg)
	klog.Flush()
	panic(msg)
}

func (l logger) Debugf(format string, args ...interface{}) { l.Debug(format, args...) }
func (l logger) Infof(format string, args ...interface{})  { l.Info(format, args...) }
func (l logger) Warnf(format string, args ...interface{})  { l.Warn(format, args...) }
func (l logger) Errorf(format string, args ...interface{}) { l.Error(format, args...) }

func (l logger) DebugEnabled() bool {
	log.RLock()
	defer log.RUnlock()
	return log.level <= LevelDebug || log.debugEnabled(l.source)
}

func (l logger) EnableDebug(enabled bool) bool {
	log.Lock()
	defer log.Unlock()
	previous := log.debugEnabled(l.source)
	log.debug[l.source] = enabled
	return previous
}

func (l logger) Source() string {
	return l.source
}
