package commands

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
	"github.com/teranos/wbwatch/monitor"
	"github.com/teranos/wbwatch/sym"
	"github.com/teranos/wbwatch/version"
)

// RunCmd runs one monitoring cycle
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: sym.Run + " Run one monitoring cycle",
	Long: sym.Run + ` run - Run one monitoring cycle

Fetches every enabled stream, filters records by keyword, alerts on new or
changed records and saves state. The weekly heartbeat is sent on the
configured weekday.

The exit status is always 0. Failures are logged and retried on the next
scheduled run: records whose alert could not be delivered stay pending.

Examples:
  wbwatch run                          # One cycle
  wbwatch run --dry-run -v             # Log decisions, send and save nothing
  wbwatch run --json-logs              # Structured logs for a log shipper
  wbwatch run --config /etc/wbwatch.toml`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runDryRun bool

func init() {
	RunCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Evaluate and log alerts without sending or saving state")
}

func runRun(cmd *cobra.Command, args []string) (err error) {
	log := logger.Logger.Named("run")
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("run aborted by panic",
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()))
		}
		err = nil
	}()

	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Errorw("failed to load configuration", logger.FieldError, fmt.Sprintf("%+v", err))
		return nil
	}
	if err := cfg.Validate(); err != nil {
		log.Errorw("invalid configuration",
			logger.FieldError, fmt.Sprintf("%+v", err),
			"hints", errors.FlattenHints(err))
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infow("wbwatch starting", version.Get().LogFields()...)
	sum, err := monitor.Execute(ctx, cfg, monitor.Options{DryRun: runDryRun}, log)
	if err != nil {
		log.Errorw("run not started",
			logger.FieldError, fmt.Sprintf("%+v", err),
			"hints", errors.FlattenHints(err))
		return nil
	}
	if sum.Err != nil {
		log.Warnw("run finished with errors", logger.FieldError, fmt.Sprintf("%+v", sum.Err))
	}

	if !logger.JSONOutput {
		printSummary(sum)
	}
	return nil
}

func printSummary(sum *monitor.Summary) {
	pterm.Println()
	title := fmt.Sprintf("%s Run %s", sym.Run, sum.RunID)
	if sum.DryRun {
		title += " (dry run)"
	}
	pterm.DefaultSection.Println(title)

	if err := pterm.DefaultTable.WithHasHeader().WithData(summaryTable(sum)).Render(); err != nil {
		pterm.Error.Printfln("failed to render summary: %v", err)
	}

	pterm.Info.Printfln("Alerts delivered: %d, heartbeat: %s, took %s",
		sum.Alerts(), sum.Heartbeat, sum.Duration.Round(time.Millisecond))
	if degraded := sum.Degraded(); len(degraded) > 0 {
		pterm.Warning.Printfln("Incomplete streams: %s (see log)", strings.Join(degraded, ", "))
	}
}

// summaryTable renders per-stream results, header first
func summaryTable(sum *monitor.Summary) pterm.TableData {
	data := pterm.TableData{
		{"Stream", "Fetched", "Matched", "New", "Updated", "Unchanged", "Failed", "State", "Status"},
	}
	for _, r := range sum.Streams {
		data = append(data, []string{
			r.Symbol + " " + r.Label,
			strconv.Itoa(r.Fetched),
			strconv.Itoa(r.Matched),
			strconv.Itoa(r.Tally.New),
			strconv.Itoa(r.Tally.Updated),
			strconv.Itoa(r.Tally.Unchanged),
			strconv.Itoa(r.Tally.Failed),
			strconv.Itoa(r.StateLen),
			streamStatus(r),
		})
	}
	return data
}

func streamStatus(r monitor.StreamResult) string {
	switch {
	case r.Skipped:
		return "skipped: state unreadable"
	case r.SaveErr != nil:
		return "save failed"
	case !r.Complete:
		return "partial fetch"
	case r.Tally.Failed > 0:
		return "pending retries"
	}
	return "ok"
}
