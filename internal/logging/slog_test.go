package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureConsole swaps the console writer for a buffer until the test ends.
func captureConsole(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := console
	console = &buf
	t.Cleanup(func() { console = orig })
	return &buf
}

type closeSpy struct {
	bytes.Buffer
	closed bool
}

func (c *closeSpy) Close() error {
	c.closed = true
	return nil
}

func TestSetup_FileOnly_NoConsole(t *testing.T) {
	out := captureConsole(t)

	var fileBuf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&fileBuf, "info")
	m.Logger().Info("hello file")

	assert.Contains(t, fileBuf.String(), "hello file", "log should appear in file")
	assert.Empty(t, out.String(), "nothing should be written to the console when file is provided")
}

func TestSetup_NoFile_WritesToConsole(t *testing.T) {
	out := captureConsole(t)

	m := NewSlogManager()
	m.Setup(nil, "info")
	m.Logger().Info("hello console")

	assert.Contains(t, out.String(), "hello console")
}

func TestSetup_Levels(t *testing.T) {
	for _, tc := range []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"bogus", false},
	} {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tc.level)

			m.Logger().Debug("parsed group")
			m.Logger().Info("loaded mission")

			assert.Contains(t, buf.String(), "loaded mission")
			assert.Equal(t, tc.wantDebug, strings.Contains(buf.String(), "parsed group"))
		})
	}
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := NewSlogManager()

	m.Setup(&buf1, "info")
	m.Logger().Info("first")

	m.Setup(&buf2, "info")
	m.Logger().Info("second")

	assert.Contains(t, buf1.String(), "first")
	assert.NotContains(t, buf1.String(), "second", "old file should not receive new logs")
	assert.Contains(t, buf2.String(), "second")
}

func TestSetup_SinksGetJSON(t *testing.T) {
	var file, sink bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil, &sink)

	m.Logger().Info("to graylog", "package", 3)

	assert.Contains(t, file.String(), "to graylog")
	assert.Contains(t, sink.String(), `"msg":"to graylog"`)
	assert.Contains(t, sink.String(), `"package":3`)
}

func TestClose_ClosesWriters(t *testing.T) {
	file := &closeSpy{}
	sink := &closeSpy{}
	m := NewSlogManager()
	m.Setup(file, "info", sink)

	require.NoError(t, m.Close())
	assert.True(t, file.closed)
	assert.True(t, sink.closed)
	assert.NoError(t, m.Close())
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	logger := m.Logger()
	assert.Equal(t, slog.Default(), logger)
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"Info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		assert.Equal(t, want, parseLevel(input), input)
	}
}

// failingSink stands in for an unreachable remote sink.
type failingSink struct{}

func (failingSink) Enabled(context.Context, slog.Level) bool { return true }
func (failingSink) Handle(context.Context, slog.Record) error { return errors.New("sink down") }
func (s failingSink) WithAttrs([]slog.Attr) slog.Handler { return s }
func (s failingSink) WithGroup(string) slog.Handler { return s }

func TestMultiHandler_FanOutAndLevels(t *testing.T) {
	var file, sink bytes.Buffer
	multi := NewMultiHandler(
		nil,
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&sink, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	require.Len(t, multi.handlers, 2)
	assert.True(t, multi.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelError))

	logger := slog.New(multi)
	logger.Debug("decoded table")
	logger.Warn("unknown node", "id", "unit99")

	assert.Contains(t, file.String(), "decoded table")
	assert.Contains(t, file.String(), "id=unit99")
	assert.NotContains(t, sink.String(), "decoded table")
	assert.Contains(t, sink.String(), `"id":"unit99"`)
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(slog.NewTextHandler(&buf, nil))

	assert.Same(t, multi, multi.WithGroup(""))

	logger := slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "importer")}).WithGroup("flight"))
	logger.Info("created", "id", 7)

	assert.Contains(t, buf.String(), "component=importer")
	assert.Contains(t, buf.String(), "flight.id=7")
}

func TestMultiHandler_FailingSink(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(failingSink{}, slog.NewTextHandler(&buf, nil), failingSink{})

	slog.New(multi).Info("still logged")
	assert.Contains(t, buf.String(), "still logged")

	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "joined", 0))
	require.Error(t, err)
	assert.Equal(t, "sink down\nsink down", err.Error())
}
