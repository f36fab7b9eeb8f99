package commands

import (
	"context"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
	"github.com/teranos/wbwatch/state"
	"github.com/teranos/wbwatch/sym"
)

// StateCmd represents the state command
var StateCmd = &cobra.Command{
	Use:   "state",
	Short: sym.DB + " Inspect and edit change-detection state",
	Long: sym.DB + ` state - Inspect and edit change-detection state

Each stream remembers the ids it has alerted on together with the marker
(last-modified date) seen at the time. A record alerts again only when its
marker changes. Forgetting an id makes it alert on the next run.

Streams: ` + strings.Join(am.StreamNames, ", ") + `

Examples:
  wbwatch state ls projects              # Alerted project ids and markers
  wbwatch state forget projects P178563  # Re-alert P178563 next run
  wbwatch state heartbeat                # Date of the last heartbeat
  wbwatch state heartbeat --reset        # Allow another heartbeat today`,
}

var stateLsCmd = &cobra.Command{
	Use:   "ls <stream>",
	Short: "List alerted ids and their markers",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateLs,
}

var stateForgetCmd = &cobra.Command{
	Use:   "forget <stream> <id>...",
	Short: "Remove ids so they alert again on the next run",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runStateForget,
}

var stateHeartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "Show or reset the last heartbeat date",
	Args:  cobra.NoArgs,
	RunE:  runStateHeartbeat,
}

var heartbeatReset bool

func init() {
	stateHeartbeatCmd.Flags().BoolVar(&heartbeatReset, "reset", false, "Clear the last heartbeat date")

	StateCmd.AddCommand(stateLsCmd)
	StateCmd.AddCommand(stateForgetCmd)
	StateCmd.AddCommand(stateHeartbeatCmd)
}

// withStore opens the configured store for fn. Writers hold the run lock so
// they never interleave with a scheduled run.
func withStore(cmd *cobra.Command, write bool, fn func(ctx context.Context, store state.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if write && cfg.State.Lock {
		lock, err := state.AcquireLock(cfg.State.Path(state.LockFileName), state.DefaultLockStaleAfter)
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	store, err := state.Open(cfg, logger.Logger.Named("state"))
	if err != nil {
		return errors.Wrap(err, "failed to open state store")
	}
	defer store.Close()

	return fn(cmd.Context(), store)
}

func checkStream(name string) error {
	for _, s := range am.StreamNames {
		if s == name {
			return nil
		}
	}
	return errors.WithHintf(errors.Newf("unknown stream %q", name),
		"streams are %s", strings.Join(am.StreamNames, ", "))
}

func runStateLs(cmd *cobra.Command, args []string) error {
	stream := args[0]
	if err := checkStream(stream); err != nil {
		return err
	}
	return withStore(cmd, false, func(ctx context.Context, store state.Store) error {
		m, err := store.Load(ctx, stream)
		if err != nil {
			return errors.Wrapf(err, "failed to load %s state", stream)
		}
		if len(m) == 0 {
			pterm.Info.Printfln("%s %s: no ids recorded (%s backend)", sym.ForStream(stream), stream, store.Backend())
			return nil
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(stateTable(m)).Render(); err != nil {
			return err
		}
		pterm.Info.Printfln("%s %s: %d ids (%s backend)", sym.ForStream(stream), stream, len(m), store.Backend())
		return nil
	})
}

// stateTable lists ids in lexical order, header first
func stateTable(m state.Map) pterm.TableData {
	data := pterm.TableData{{"ID", "Marker"}}
	for _, id := range m.IDs() {
		marker := m[id]
		if marker == "" {
			marker = "-"
		}
		data = append(data, []string{id, marker})
	}
	return data
}

func runStateForget(cmd *cobra.Command, args []string) error {
	stream := args[0]
	if err := checkStream(stream); err != nil {
		return err
	}
	return withStore(cmd, true, func(ctx context.Context, store state.Store) error {
		removed, err := forgetIDs(ctx, store, stream, args[1:])
		if err != nil {
			return err
		}
		for _, id := range args[1:] {
			if contains(removed, id) {
				pterm.Success.Printfln("forgot %s", id)
			} else {
				pterm.Warning.Printfln("%s was not recorded", id)
			}
		}
		return nil
	})
}

// forgetIDs removes ids from a stream's state and returns the ones that were
// present. State that cannot be read is left alone.
func forgetIDs(ctx context.Context, store state.Store, stream string, ids []string) ([]string, error) {
	m, err := store.Load(ctx, stream)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s state", stream)
	}

	var removed []string
	for _, id := range ids {
		if _, ok := m[id]; ok {
			delete(m, id)
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := store.Save(ctx, stream, m); err != nil {
		return nil, errors.Wrapf(err, "failed to save %s state", stream)
	}
	return removed, nil
}

func runStateHeartbeat(cmd *cobra.Command, args []string) error {
	return withStore(cmd, heartbeatReset, func(ctx context.Context, store state.Store) error {
		m, err := store.LoadMonitor(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load monitor state")
		}

		last := m[state.KeyLastHeartbeat]
		if heartbeatReset {
			delete(m, state.KeyLastHeartbeat)
			if err := store.SaveMonitor(ctx, m); err != nil {
				return errors.Wrap(err, "failed to save monitor state")
			}
			pterm.Success.Printfln("%s heartbeat date cleared (was %s)", sym.Heartbeat, orNever(last))
			return nil
		}
		pterm.Info.Printfln("%s last heartbeat: %s", sym.Heartbeat, orNever(last))
		return nil
	})
}

func orNever(date string) string {
	if date == "" {
		return "never"
	}
	return date
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
