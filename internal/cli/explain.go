package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/internal/config"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/history"
)

// explainCommand creates the explain command.
func (c *CLI) explainCommand() *cobra.Command {
	var mapID string

	cmd := &cobra.Command{
		Use:   "explain <node label>",
		Short: "Get a deep-dive explanation for one node",
		Long: `Fetch a short technical deep-dive into one node of a map, in the
context of the map's topic. Explanations are stored on the map so asking
again is instant.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.Join(args, " ")
			id, ok := currentMapID(mapID)
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "no current map; generate one or pass --map")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg, hist, nil)
			if err != nil {
				return err
			}
			if err := requireNode(hist, id, label); err != nil {
				return err
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Thinking...")
			spinner.Start()
			text, err := runner.Explain(cmd.Context(), id, label)
			spinner.Stop()
			if err != nil {
				return err
			}

			printNewline()
			printInfo("%s", StyleHighlight.Render(label))
			printNewline()
			printIndented(text)
			return nil
		},
	}

	cmd.Flags().StringVar(&mapID, "map", "", "map id to explain a node of (defaults to the current map)")
	return cmd
}

// exploreCommand creates the explore command, which generates a sub-map
// drilling into one node.
func (c *CLI) exploreCommand() *cobra.Command {
	var mapID string

	cmd := &cobra.Command{
		Use:   "explore <node label>",
		Short: "Generate a sub-map drilling into one node",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.Join(args, " ")
			id, ok := currentMapID(mapID)
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "no current map; generate one or pass --map")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg, hist, nil)
			if err != nil {
				return err
			}
			if err := requireNode(hist, id, label); err != nil {
				return err
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Breaking it down...")
			spinner.Start()
			sub, err := runner.Explore(cmd.Context(), id, label)
			spinner.Stop()
			if err != nil {
				return err
			}

			printSuccess("Explored %s", StyleHighlight.Render(label))
			printNewline()
			printIndented(strings.TrimRight(renderTree(sub), "\n"))
			printNewline()
			printStats(len(sub.Nodes), len(sub.Edges), 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&mapID, "map", "", "map id to explore (defaults to the current map)")
	return cmd
}

// showCommand prints the current (or chosen) map.
func (c *CLI) showCommand() *cobra.Command {
	var mapID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := currentMapID(mapID)
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "no current map; generate one or pass --map")
			}
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			rec, ok := hist.Get(id)
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "no map with id %s", id)
			}
			printRecord(rec)
			return nil
		},
	}

	cmd.Flags().StringVar(&mapID, "map", "", "map id to show (defaults to the current map)")
	return cmd
}

// requireNode verifies the label names a node on the map, so a typo
// fails before any model call.
func requireNode(hist *history.Store, id, label string) error {
	rec, ok := hist.Get(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no map with id %s", id)
	}
	if rec.Graph.NodeByLabel(label) == nil {
		return errors.New(errors.ErrCodeInvalidInput, "map has no node labeled %q", label)
	}
	return nil
}
