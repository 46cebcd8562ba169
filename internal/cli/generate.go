package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/internal/config"
	"github.com/mindweave/mindweave/pkg/pipeline"
	"github.com/mindweave/mindweave/pkg/reconcile"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a concept map for a topic",
		Long: `Ask the model for a concept map of the given topic, lay it out as a
ranked tree, and store it in your local history. When you are logged in
the map is also uploaded to the cloud in the background.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prompt := strings.Join(args, " ")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			hist, err := c.openHistory()
			if err != nil {
				return err
			}

			// Logged-in runs push the new map in the background.
			var pusher pipeline.Uploader
			var bg *reconcile.Pusher
			client, sess, err := cloudClient(cfg)
			if err != nil {
				return err
			}
			if sess != nil {
				bg = reconcile.NewPusher(client, c.Logger, c.expireSession)
				pusher = bg
			}

			runner, err := c.newRunner(cfg, hist, pusher)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Weaving concept map...")
			spinner.Start()
			result, err := runner.Generate(ctx, prompt)
			if err != nil {
				spinner.Stop()
				if spinner.Cancelled() {
					return ctx.Err()
				}
				return err
			}
			spinner.Stop()
			if bg != nil {
				bg.Close()
			}

			if err := setCurrentMap(result.Record.ID); err != nil {
				c.Logger.Debug("state not saved", "error", err)
			}

			printSuccess("Generated %s", StyleHighlight.Render(result.Record.Prompt))
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, 0)
			if result.Stats.Dropped > 0 {
				printDetail("%d malformed edges dropped", result.Stats.Dropped)
			}
			if show {
				printNewline()
				printRecord(result.Record)
			} else {
				printNextStep("View it", appName+" show")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print the map after generating")
	return cmd
}
