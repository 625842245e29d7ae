package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/car-explorer/engine/compare"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare ID...",
		Short: "Compare cars side by side",
		Long:  "Compare prints the comparison table of the given cars, marking the winning value of each compared row with *, followed by the overall ranking and a summary.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompare,
	}
	cmd.Flags().String("format", "table", "output format: table or json")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ids, err := parseIDArgs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := loadCatalog(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	res := compare.NewReport(store.Resolve(ids))

	switch format, _ := cmd.Flags().GetString("format"); format {
	case "json":
		return writeIndented(cmd.OutOrStdout(), res)
	case "table":
		return printComparison(cmd.OutOrStdout(), res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printComparison(w io.Writer, res compare.Report) error {
	if res.View == nil {
		_, err := fmt.Fprintln(w, "No cars to compare.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	names := make([]string, len(res.View.Cars))
	for i, c := range res.View.Cars {
		names[i] = c.Name
	}
	fmt.Fprintf(tw, "\t%s\n", strings.Join(names, "\t"))
	for _, t := range res.Tables {
		fmt.Fprintf(tw, "%s\n", strings.ToUpper(t.Title))
		for _, row := range t.Rows {
			cells := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				cells[i] = c.Value
				if c.Best {
					cells[i] += " *"
				}
			}
			fmt.Fprintf(tw, "  %s\t%s\n", row.Label, strings.Join(cells, "\t"))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nRanking:")
	for i, s := range res.Ranking.All {
		wins := "no wins"
		if len(s.Wins) > 0 {
			wins = strings.Join(s.Wins, ", ")
		}
		fmt.Fprintf(w, "  %d. %s (%d: %s)\n", i+1, s.Name, s.Score, wins)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", res.Summary)
	return err
}
