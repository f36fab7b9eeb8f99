package logger

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{"JSON output mode", true, 0},
		{"Console output mode", false, 0},
		{"Console debug mode", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			want := VerbosityToLevel(tt.verbosity)
			assert.True(t, Logger.Desugar().Core().Enabled(want))

			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{0, zapcore.InfoLevel},
		{1, zapcore.DebugLevel},
		{2, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
	assert.True(t, ShouldLogTrace(2))
	assert.False(t, ShouldLogTrace(1))
	assert.Equal(t, "Debug (-v)", LevelName(1))
}

func TestFromContextAddsRunAndStream(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := WithStream(WithRunID(context.Background(), "run-1"), "projects")
	FromContext(ctx, base).Infow("alert sent", FieldRecordID, "P100")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "run-1", fields[FieldRunID])
	assert.Equal(t, "projects", fields[FieldStream])
	assert.Equal(t, "P100", fields[FieldRecordID])
	assert.Equal(t, "run-1", RunIDFromContext(ctx))
}

func TestFromContextWithoutFieldsReturnsBase(t *testing.T) {
	base := zap.NewNop().Sugar()
	assert.Same(t, base, FromContext(context.Background(), base))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewNop().Sugar()
	assert.Same(t, l, OrNop(l))
}

func TestMinimalEncoderKeepsEveryField(t *testing.T) {
	enc := newMinimalEncoder()
	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2024, 6, 3, 6, 0, 2, 0, time.UTC),
		LoggerName: "monitor.projects",
		Message:    "alert sent",
	}
	fields := []zapcore.Field{
		zap.String(FieldStream, "projects"),
		zap.String(FieldAction, "UPDATE"),
		zap.String(FieldRecordID, "P100"),
		zap.String(FieldMarker, "2024-06-01"),
		zap.Int(FieldAttempt, 2),
		zap.Bool("dry_run", false),
	}

	buf, err := enc.EncodeEntry(entry, fields)
	require.NoError(t, err)
	out := stripANSI(buf.String())

	assert.True(t, strings.HasPrefix(out, "06:00:02  m.projects  alert sent  projects UPDATE P100"), out)
	assert.Contains(t, out, "marker=2024-06-01")
	assert.Contains(t, out, "attempt=2")
	assert.Contains(t, out, "dry_run=false")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestMinimalEncoderLevels(t *testing.T) {
	enc := newMinimalEncoder()
	for level, want := range map[zapcore.Level]string{
		zapcore.WarnLevel:  "WARN",
		zapcore.ErrorLevel: "ERROR",
		zapcore.DebugLevel: "DEBUG",
	} {
		buf, err := enc.EncodeEntry(zapcore.Entry{Level: level, Time: time.Now(), Message: "m"}, nil)
		require.NoError(t, err)
		assert.Contains(t, stripANSI(buf.String()), want)
	}
}

func TestSetThemeIgnoresUnknown(t *testing.T) {
	defer SetTheme("everforest")

	SetTheme("gruvbox")
	assert.Equal(t, "gruvbox", currentTheme)
	SetTheme("solarized")
	assert.Equal(t, "gruvbox", currentTheme)
}

func TestAbbreviateName(t *testing.T) {
	assert.Equal(t, "s.projects", abbreviateName("source.projects"))
	assert.Equal(t, "monitor", abbreviateName("monitor"))
}
