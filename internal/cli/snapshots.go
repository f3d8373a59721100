package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagopt/pkg/config"
	"github.com/matzehuels/dagopt/pkg/errors"
	"github.com/matzehuels/dagopt/pkg/snapshot"
	"github.com/matzehuels/dagopt/pkg/store"
)

// snapshotsOpts holds the command-line flags shared by the snapshots subcommands.
type snapshotsOpts struct {
	config string // config file path
}

// newSnapshotsCmd creates the snapshots command group.
func newSnapshotsCmd() *cobra.Command {
	var opts snapshotsOpts

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Work with persisted snapshot records",
		Long: `List, inspect, browse, and delete snapshot records stored by
"dagopt optimize --persist" or the HTTP API.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "config file (default dagopt.toml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snapshot records",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runSnapshotsList(c.Context(), &opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one snapshot record",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runSnapshotsShow(c.Context(), &opts, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "browse",
		Short: "Browse snapshot records interactively",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runSnapshotsBrowse(c.Context(), &opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one snapshot record",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runSnapshotsDelete(c.Context(), &opts, args[0])
		},
	})

	return cmd
}

// openSnapshotStore resolves the configured store for the snapshots commands.
func openSnapshotStore(ctx context.Context, opts *snapshotsOpts) (store.Store, error) {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend == "none" {
		return nil, errors.New(errors.ErrCodeStore, "store backend is \"none\"; nothing is persisted")
	}
	return openStore(ctx, cfg)
}

// loadSnapshots reads every snapshot record from the store, newest first.
// Optimization-cache entries share the store but use content-hash keys and
// are skipped.
func loadSnapshots(ctx context.Context, st store.Store) ([]*snapshot.Metadata, error) {
	keys, err := st.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to list snapshots")
	}

	var snaps []*snapshot.Metadata
	for _, key := range keys {
		if errors.ValidateSnapshotID(key) != nil {
			continue
		}
		data, ok, err := st.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		m, err := snapshot.Decode(data)
		if err != nil {
			continue
		}
		snaps = append(snaps, m)
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Timestamp.After(snaps[j].Timestamp) })
	return snaps, nil
}

func runSnapshotsList(ctx context.Context, opts *snapshotsOpts) error {
	st, err := openSnapshotStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	snaps, err := loadSnapshots(ctx, st)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		printInfo("No snapshots stored")
		printNextStep("Create one", "dagopt optimize graph.json --persist")
		return nil
	}

	for _, m := range snaps {
		detail := fmt.Sprintf("%s · %d %s %d edges · %d changed metrics",
			formatRelativeTime(m.Timestamp),
			len(m.OriginalEdges), iconArrow, len(m.OptimizedEdges),
			len(m.ChangedMetrics))
		fmt.Println(StyleValue.Render(m.ID) + "  " + StyleDim.Render(detail))
	}
	return nil
}

func runSnapshotsShow(ctx context.Context, opts *snapshotsOpts, id string) error {
	if err := errors.ValidateSnapshotID(id); err != nil {
		return err
	}

	st, err := openSnapshotStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	data, ok, err := st.Get(ctx, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to load snapshot")
	}
	if !ok {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", id)
	}
	m, err := snapshot.Decode(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "corrupt snapshot %s", id)
	}

	printSnapshot(m)
	return nil
}

// printSnapshot renders one snapshot record.
func printSnapshot(m *snapshot.Metadata) {
	fmt.Println(StyleTitle.Render("Snapshot " + m.ID))
	printKeyValue("created", m.Timestamp.Format("2006-01-02 15:04:05 MST"))
	printKeyValue("original_edges", fmt.Sprintf("%d", len(m.OriginalEdges)))
	printKeyValue("optimized_edges", fmt.Sprintf("%d", len(m.OptimizedEdges)))

	if len(m.Attrs) > 0 {
		keys := make([]string, 0, len(m.Attrs))
		for k := range m.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+m.Attrs[k])
		}
		printKeyValue("attrs", strings.Join(pairs, " "))
	}

	if len(m.ChangedMetrics) > 0 {
		printNewline()
		printInfo("Changed metrics")
		for _, name := range m.OriginalMetrics.Names() {
			ch, ok := m.ChangedMetrics[name]
			if !ok {
				continue
			}
			printMetricChange(name, ch.Original, ch.Optimized)
		}
	}
}

func runSnapshotsBrowse(ctx context.Context, opts *snapshotsOpts) error {
	st, err := openSnapshotStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	snaps, err := loadSnapshots(ctx, st)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		printInfo("No snapshots stored")
		return nil
	}

	model := NewSnapshotListModel(snaps)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	if m, ok := final.(SnapshotListModel); ok && m.Selected != nil {
		printNewline()
		printSnapshot(m.Selected)
	}
	return nil
}

func runSnapshotsDelete(ctx context.Context, opts *snapshotsOpts, id string) error {
	if err := errors.ValidateSnapshotID(id); err != nil {
		return err
	}

	st, err := openSnapshotStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to delete snapshot")
	}
	printSuccess("Deleted %s", id)
	return nil
}
