package cli

import (
	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/internal/config"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/theme"
)

// organizeCommand creates the organize command.
func (c *CLI) organizeCommand() *cobra.Command {
	var mapID string

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Toggle between the compact and spread layouts of a map",
		Long: `Re-layout the current map with wider rank spacing. Running organize
again restores the original compact layout from its snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			id, ok := currentMapID(mapID)
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "no current map, generate one or pass --map")
			}
			rec, ok := hist.Get(id)
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "map %s not found", id)
			}

			st := loadState()
			// A snapshot pending for a different map must not be
			// restored into this one.
			if st.FormatID != id {
				st.Format.Reset()
			}
			next := st.Format.Toggle(rec.Graph)
			if st.Format.Pending() {
				st.FormatID = id
			} else {
				st.FormatID = ""
			}
			if !hist.SetGraph(id, next) {
				return errors.New(errors.ErrCodeNotFound, "map %s not found", id)
			}
			if err := saveState(st); err != nil {
				return err
			}

			if st.Format.Pending() {
				printSuccess("Spread out %s", StyleHighlight.Render(rec.Prompt))
			} else {
				printSuccess("Restored compact layout for %s", StyleHighlight.Render(rec.Prompt))
			}
			printNextStep("View it", appName+" show")
			return nil
		},
	}

	cmd.Flags().StringVar(&mapID, "map", "", "map id to organize (defaults to the current map)")
	return cmd
}

// themeCommand creates the theme command.
func (c *CLI) themeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "theme",
		Short: "Toggle between the light and dark palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			mode := cfg.ThemeMode().Toggle()
			cfg.UI.Theme = string(mode)
			if err := config.Save(cfg); err != nil {
				return err
			}

			// Repaint every stored map so show reflects the new palette.
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			records := hist.Records()
			for i := range records {
				records[i] = theme.ProjectRecord(records[i], theme.Get(mode))
			}
			hist.Replace(records)

			printSuccess("Switched to the %s theme", string(mode))
			if n := len(records); n > 0 {
				printDetail("repainted %d map(s)", n)
			}
			return nil
		},
	}
}
