// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/layout"
	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Manage dashboard layouts (list, show, create, delete, widgets)",
	Long: `Layout manages named dashboard layouts stored alongside the snapshot. A
layout is an ordered set of chart widgets, each with a grid position and
size. The built-in "default" layout is always listed first and cannot be
changed or deleted.`,
}

var layoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List layouts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLayouts(cmd, func(m *layout.Manager) error {
			layouts, err := m.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonFlag(cmd) {
				return writeJSON(cmd.OutOrStdout(), layouts)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-44s  %-24s  %s\n", "ID", "Name", "Widgets")
			fmt.Fprintln(w, strings.Repeat("-", 80))
			for _, l := range layouts {
				fmt.Fprintf(w, "%-44s  %-24s  %d\n", l.ID, truncate(l.Name, 24), len(l.Widgets))
			}
			return nil
		})
	},
}

var layoutShowCmd = &cobra.Command{
	Use:   "show <layout-id>",
	Short: "Show a layout's widgets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLayouts(cmd, func(m *layout.Manager) error {
			l, err := m.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printLayout(cmd.OutOrStdout(), l, jsonFlag(cmd))
		})
	},
}

var layoutCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty layout",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLayouts(cmd, func(m *layout.Manager) error {
			l, err := m.Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", l.ID, l.Name)
			return nil
		})
	},
}

var layoutRenameCmd = &cobra.Command{
	Use:   "rename <layout-id> <name>",
	Short: "Rename a layout",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLayouts(cmd, func(m *layout.Manager) error {
			name := strings.Join(args[1:], " ")
			l, err := m.Update(cmd.Context(), args[0], layout.Update{Name: &name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", l.ID, l.Name)
			return nil
		})
	},
}

var layoutDeleteCmd = &cobra.Command{
	Use:   "delete <layout-id>",
	Short: "Delete a layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLayouts(cmd, func(m *layout.Manager) error {
			if err := m.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		})
	},
}

var layoutAddWidgetCmd = &cobra.Command{
	Use:   "add-widget <layout-id> <type>",
	Short: "Add a chart widget to a layout",
	Long: `Add-widget appends a chart widget. Types: TrialCount, ConditionsChart,
SponsorsChart, TopSponsorsChart, RegionChart, StartDateChart, AllStudiesTable,
SmartPhaseClassificationChart, SmartTherapeuticClassificationChart,
SmartTreatmentClassificationChart, SmartPopulationClassificationChart,
SmartOverviewClassificationChart.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		x, _ := cmd.Flags().GetInt("x")
		y, _ := cmd.Flags().GetInt("y")
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")

		widget := types.ChartWidget{
			ID:       id,
			Type:     types.WidgetType(args[1]),
			Position: types.Position{X: x, Y: y},
			Size:     types.Size{Width: width, Height: height},
		}
		return withLayouts(cmd, func(m *layout.Manager) error {
			l, err := m.AddWidget(cmd.Context(), args[0], widget)
			if err != nil {
				return err
			}
			added := l.Widgets[len(l.Widgets)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", added.ID, l.ID)
			return nil
		})
	},
}

var layoutRemoveWidgetCmd = &cobra.Command{
	Use:   "remove-widget <layout-id> <widget-id>",
	Short: "Remove a chart widget from a layout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLayouts(cmd, func(m *layout.Manager) error {
			if _, err := m.RemoveWidget(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s\n", args[1], args[0])
			return nil
		})
	},
}

var layoutMoveWidgetCmd = &cobra.Command{
	Use:   "move-widget <layout-id> <widget-id>",
	Short: "Move or resize a chart widget",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var u layout.WidgetUpdate
		flags := cmd.Flags()
		if flags.Changed("x") || flags.Changed("y") {
			x, _ := flags.GetInt("x")
			y, _ := flags.GetInt("y")
			u.Position = &types.Position{X: x, Y: y}
		}
		if flags.Changed("width") || flags.Changed("height") {
			width, _ := flags.GetInt("width")
			height, _ := flags.GetInt("height")
			u.Size = &types.Size{Width: width, Height: height}
		}
		return withLayouts(cmd, func(m *layout.Manager) error {
			l, err := m.UpdateWidget(cmd.Context(), args[0], args[1], u)
			if err != nil {
				return err
			}
			return printLayout(cmd.OutOrStdout(), l, false)
		})
	},
}

func withLayouts(cmd *cobra.Command, fn func(*layout.Manager) error) error {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(layout.NewManager(st))
}

func printLayout(w io.Writer, l types.DashboardLayout, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, l)
	}
	fmt.Fprintf(w, "%s (%s)\n", l.Name, l.ID)
	fmt.Fprintf(w, "%-32s  %-36s  %-7s  %s\n", "Widget", "Type", "Pos", "Size")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, wd := range l.Widgets {
		fmt.Fprintf(w, "%-32s  %-36s  %-7s  %dx%d\n", truncate(wd.ID, 32), wd.Type,
			fmt.Sprintf("%d,%d", wd.Position.X, wd.Position.Y), wd.Size.Width, wd.Size.Height)
	}
	return nil
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	layoutCmd.PersistentFlags().Bool("json", false, "output as JSON")

	for _, c := range []*cobra.Command{layoutAddWidgetCmd, layoutMoveWidgetCmd} {
		c.Flags().Int("x", 0, "grid column")
		c.Flags().Int("y", 0, "grid row")
		c.Flags().Int("width", 1, "width in grid cells")
		c.Flags().Int("height", 1, "height in grid cells")
	}
	layoutAddWidgetCmd.Flags().String("id", "", "widget id (default: generated)")

	layoutCmd.AddCommand(layoutListCmd)
	layoutCmd.AddCommand(layoutShowCmd)
	layoutCmd.AddCommand(layoutCreateCmd)
	layoutCmd.AddCommand(layoutRenameCmd)
	layoutCmd.AddCommand(layoutDeleteCmd)
	layoutCmd.AddCommand(layoutAddWidgetCmd)
	layoutCmd.AddCommand(layoutRemoveWidgetCmd)
	layoutCmd.AddCommand(layoutMoveWidgetCmd)

	rootCmd.AddCommand(layoutCmd)
}
