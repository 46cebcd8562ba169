package cli

import (
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/internal/config"
	"github.com/mindweave/mindweave/pkg/errors"
)

// historyCommand creates the history command with subcommands.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage your saved maps",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyBrowseCommand())
	cmd.AddCommand(c.historyDeleteCommand())
	cmd.AddCommand(c.historyClearCommand())
	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved maps, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			records := hist.Records()
			if len(records) == 0 {
				printInfo("No maps yet")
				printNextStep("Create one", appName+" generate <topic>")
				return nil
			}

			current, _ := currentMapID("")
			for _, rec := range records {
				marker := "  "
				if rec.ID == current {
					marker = StyleHighlight.Render("▸ ")
				}
				line := marker + StyleValue.Render(rec.Prompt)
				line += "  " + StyleDim.Render(rec.ID)
				if created := recordAge(rec.ID); created != "" {
					line += "  " + StyleDim.Render(created)
				}
				cmd.Println(line)
			}
			return nil
		},
	}
}

func (c *CLI) historyBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactively pick a map to make current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			records := hist.Records()
			if len(records) == 0 {
				printInfo("No maps yet")
				return nil
			}

			model := newMapListModel(records)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return err
			}
			picked, ok := final.(mapListModel)
			if !ok || picked.Selected == nil {
				return nil
			}

			if err := setCurrentMap(picked.Selected.ID); err != nil {
				return err
			}
			printSuccess("Current map: %s", StyleHighlight.Render(picked.Selected.Prompt))
			printRecord(*picked.Selected)
			return nil
		},
	}
}

func (c *CLI) historyDeleteCommand() *cobra.Command {
	var everywhere bool

	cmd := &cobra.Command{
		Use:   "delete <map id>",
		Short: "Delete one saved map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			rec, ok := hist.Get(id)
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "no map with id %s", id)
			}
			hist.DeleteOne(id)
			if err := clearCurrentIf(id); err != nil {
				c.Logger.Debug("state not saved", "error", err)
			}

			if everywhere {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				client, sess, err := cloudClient(cfg)
				if err != nil {
					return err
				}
				if sess == nil {
					printWarning("Not logged in; deleted locally only")
				} else if err := client.DeleteMap(cmd.Context(), rec.Prompt); err != nil {
					if errors.Is(err, errors.ErrCodeSessionExpired) {
						c.expireSession()
					} else {
						printWarning("%s", errors.UserMessage(err))
					}
				}
			}

			printSuccess("Deleted %s", StyleHighlight.Render(rec.Prompt))
			return nil
		},
	}

	cmd.Flags().BoolVar(&everywhere, "everywhere", false, "also delete from the cloud")
	return cmd
}

func (c *CLI) historyClearCommand() *cobra.Command {
	var everywhere bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			n := hist.Len()
			hist.DeleteAll()
			if err := saveState(displayState{}); err != nil {
				c.Logger.Debug("state not saved", "error", err)
			}

			if everywhere {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				client, sess, err := cloudClient(cfg)
				if err != nil {
					return err
				}
				if sess == nil {
					printWarning("Not logged in; cleared locally only")
				} else if err := client.DeleteAllMaps(cmd.Context()); err != nil {
					if errors.Is(err, errors.ErrCodeSessionExpired) {
						c.expireSession()
					} else {
						printWarning("%s", errors.UserMessage(err))
					}
				}
			}

			printSuccess("Deleted %d maps", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&everywhere, "everywhere", false, "also clear the cloud collection")
	return cmd
}

// recordAge renders a map id (a millisecond timestamp) as relative age.
// Cloud-assigned ids are not timestamps; those get no age column.
func recordAge(id string) string {
	ms, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ""
	}
	return formatRelativeTime(time.UnixMilli(ms))
}
