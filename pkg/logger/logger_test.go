// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) add(tag string, msg string) { r.lines = append(r.lines, tag+" "+msg) }

func (r *recordingLogger) Debugf(f string, a ...any) { r.add("D", fmt.Sprintf(f, a...)) }
func (r *recordingLogger) Debug(a ...any)            { r.add("D", fmt.Sprint(a...)) }
func (r *recordingLogger) Infof(f string, a ...any)  { r.add("I", fmt.Sprintf(f, a...)) }
func (r *recordingLogger) Info(a ...any)             { r.add("I", fmt.Sprint(a...)) }
func (r *recordingLogger) Warnf(f string, a ...any)  { r.add("W", fmt.Sprintf(f, a...)) }
func (r *recordingLogger) Warn(a ...any)             { r.add("W", fmt.Sprint(a...)) }
func (r *recordingLogger) Errorf(f string, a ...any) { r.add("E", fmt.Sprintf(f, a...)) }
func (r *recordingLogger) Error(a ...any)            { r.add("E", fmt.Sprint(a...)) }
func (r *recordingLogger) Fatalf(f string, a ...any) { r.add("F", fmt.Sprintf(f, a...)) }
func (r *recordingLogger) Fatal(a ...any)            { r.add("F", fmt.Sprint(a...)) }

func useLoggers(t *testing.T, l ...Logger) {
	t.Helper()
	SetLogger(l...)
	t.Cleanup(func() { SetLogger() })
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"trace":   TraceLevel,
		"DEBUG":   DebugLevel,
		"":        InfoLevel,
		" info ":  InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "warn", WarnLevel.String())
}

func TestStdLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(&buf, "", 0, WarnLevel)

	l.Infof("dropped %d", 1)
	l.Debug("dropped")
	l.Warnf("kept %d", 2)
	l.Error("kept")

	assert.Equal(t, "[WARN] kept 2\n[ERROR] kept\n", buf.String())
}

func TestLogRoutesBySeverity(t *testing.T) {
	rec := &recordingLogger{}
	useLoggers(t, rec)

	Log(TraceLevel, "t")
	Log(InfoLevel, "i")
	Log(WarnLevel, "w")
	Log(ErrorLevel, "e")
	Log(Level(99), "unknown")

	assert.Equal(t, []string{"D t", "I i", "W w", "E e", "I unknown"}, rec.lines)
}

func TestAddLoggerFansOut(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	useLoggers(t, a)
	AddLogger(b)

	Infof("hello %s", "world")
	assert.Equal(t, []string{"I hello world"}, a.lines)
	assert.Equal(t, []string{"I hello world"}, b.lines)
}

func TestZapLoggerWritesRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := NewZapLoggerWithConfig(&Config{
		LogDir:          dir,
		BaseName:        "test",
		Format:          "json",
		Level:           InfoLevel,
		MaxSizeMB:       1,
		EnableFile:      true,
		EnableErrorFile: true,
	})
	require.NoError(t, err)
	useLoggers(t, l)

	Debugf("invisible")
	Infof("connection %s accepted", "abc")
	Errorf("connection %s failed", "abc")
	Sync()

	all, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(all), "connection abc accepted")
	assert.Contains(t, string(all), "connection abc failed")
	assert.NotContains(t, string(all), "invisible")

	errs, err := os.ReadFile(filepath.Join(dir, "test-error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "connection abc failed")
	assert.NotContains(t, string(errs), "accepted")
}

func TestZapLoggerConfigErrors(t *testing.T) {
	_, err := NewZapLoggerWithConfig(nil)
	assert.Error(t, err)

	_, err = NewZapLoggerWithConfig(&Config{})
	assert.Error(t, err)
}
