// Package sym defines the glyphs used for streams and system markers in CLI
// output and as the "symbol" log field. They are stable so log queries can
// filter on them.
package sym

// Stream glyphs
const (
	Projects = "◆" // projects: new and updated lending operations
	Plans    = "▤" // procurement plans published through the documents service
	Tenders  = "✉" // procurement notices
	Awards   = "⚑" // contract awards (competitor intelligence)
)

// System markers
const (
	AM        = "≡" // configuration
	DB        = "⊔" // state storage
	Heartbeat = "♥" // weekly liveness signal
	Run       = "꩜" // one monitor cycle
)

// ForStream returns the glyph for a stream name, or Run when the name is unknown.
func ForStream(name string) string {
	if s, ok := streamSymbols[name]; ok {
		return s
	}
	return Run
}

var streamSymbols = map[string]string{
	"projects":          Projects,
	"procurement_plans": Plans,
	"tenders":           Tenders,
	"awards":            Awards,
}
