package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	fg      string
	time    string
	id      string
	number  string
	names   []string
	warn    string
	warnBg  string
	err     string
	errBg   string
	alert   string
	skipped string
}

var themes = map[string]palette{
	"everforest": {
		fg:      "\x1b[38;5;223m",
		time:    "\x1b[38;5;107m",
		id:      "\x1b[38;5;109m",
		number:  "\x1b[38;5;108m",
		names:   []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
		warn:    "\x1b[38;5;179m",
		warnBg:  "\x1b[48;5;58m",
		err:     "\x1b[38;5;167m",
		errBg:   "\x1b[48;5;52m",
		alert:   "\x1b[38;5;108m",
		skipped: "\x1b[38;5;245m",
	},
	"gruvbox": {
		fg:      "\x1b[38;5;223m",
		time:    "\x1b[38;5;108m",
		id:      "\x1b[38;5;109m",
		number:  "\x1b[38;5;175m",
		names:   []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
		warn:    "\x1b[38;5;214m",
		warnBg:  "\x1b[48;5;58m",
		err:     "\x1b[38;5;167m",
		errBg:   "\x1b[48;5;88m",
		alert:   "\x1b[38;5;142m",
		skipped: "\x1b[38;5;245m",
	},
}

var currentTheme = "everforest"

var bufferPool = buffer.NewPool()

// SetTheme configures the color scheme for console output. Unknown names are ignored.
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

func colors() palette {
	return themes[currentTheme]
}

// Keys rendered first, in this order, ahead of the remaining fields.
var leadingKeys = []string{FieldStream, FieldAction, FieldRecordID}

// minimalEncoder is a compact console encoder for run logs.
// Format: "06:00:02  s.projects  alert sent  projects NEW P100  marker=2024-06-01"
type minimalEncoder struct {
	zapcore.Encoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := bufferPool.Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if lvl := levelString(ent.Level, c); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(nameColor(ent.LoggerName, c))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if rendered := renderFields(fields, c); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

func levelString(level zapcore.Level, c palette) string {
	switch level {
	case zapcore.DebugLevel:
		return c.skipped + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	case zapcore.InfoLevel:
		return ""
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

func nameColor(name string, c palette) string {
	hash := 0
	for _, r := range name {
		hash += int(r)
	}
	return c.names[hash%len(c.names)]
}

// abbreviateName shortens component names: source.projects -> s.projects
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// renderFields prints every field. Stream, action and record id lead without
// keys; everything else follows as key=value in key order.
func renderFields(fields []zapcore.Field, c palette) string {
	if len(fields) == 0 {
		return ""
	}

	values := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(values)
	}

	var out []string
	for _, key := range leadingKeys {
		v, ok := values.Fields[key]
		if !ok {
			continue
		}
		out = append(out, leadingColor(key, fmt.Sprint(v), c))
		delete(values.Fields, key)
	}

	keys := make([]string, 0, len(values.Fields))
	for k := range values.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		out = append(out, k+"="+valueColor(values.Fields[k], c))
	}
	return strings.Join(out, " ")
}

func leadingColor(key, value string, c palette) string {
	switch {
	case key == FieldAction && value == "SKIP":
		return c.skipped + value + colorReset
	case key == FieldAction:
		return colorBold + c.alert + value + colorReset
	case key == FieldRecordID:
		return c.id + value + colorReset
	default:
		return c.fg + value + colorReset
	}
}

func valueColor(v interface{}, c palette) string {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return c.number + fmt.Sprint(v) + colorReset
	default:
		return fmt.Sprint(v)
	}
}
