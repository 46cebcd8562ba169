package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/internal/config"
	"github.com/mindweave/mindweave/pkg/reconcile"
)

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local maps with the cloud store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, sess, err := cloudClient(cfg)
			if err != nil {
				return err
			}
			if sess == nil {
				printInfo("Not logged in")
				printNextStep("Log in first", appName+" login")
				return nil
			}

			hist, err := c.openHistory()
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			spin := newSpinnerWithContext(cmd.Context(), "Syncing with the cloud...")
			spin.Start()
			outcome := reconcile.New(client, hist, c.Logger).Sync(cmd.Context())
			spin.Stop()
			if spin.Cancelled() {
				return cmd.Context().Err()
			}
			prog.done("sync finished")

			switch outcome.Status {
			case reconcile.StatusSessionExpired:
				c.expireSession()
				return nil
			case reconcile.StatusFailed:
				printError("%s", outcome.Message)
				return nil
			}

			printSuccess("Maps are in sync")
			if outcome.Pushed > 0 {
				printDetail("uploaded %d local map(s)", outcome.Pushed)
			}
			printKeyValue("Total maps", strconv.Itoa(hist.Len()))
			return nil
		},
	}
}
