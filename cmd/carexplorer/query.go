package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/engine/compare"
	"github.com/WessleyAI/car-explorer/engine/query"
)

// criteriaFlags maps CLI flags onto the query-string names DecodeCriteria
// reads.
var criteriaFlags = map[string]string{
	"search":    "search",
	"category":  "category",
	"min-price": "minPrice",
	"max-price": "maxPrice",
	"min-hp":    "minHorsepower",
	"max-hp":    "maxHorsepower",
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter and sort the catalog",
		Args:  cobra.NoArgs,
		RunE:  runQuery,
	}
	f := cmd.Flags()
	f.String("search", "", "match name, brand or category")
	f.String("category", "", `only this category ("all" for every category)`)
	f.Float64("min-price", 0, "minimum price")
	f.Float64("max-price", 0, "maximum price")
	f.Float64("min-hp", 0, "minimum horsepower")
	f.Float64("max-hp", 0, "maximum horsepower")
	f.String("sort", string(query.SortName), "sort key: name, price, horsepower or year")
	f.String("order", string(query.OrderAsc), "sort order: asc or desc")
	f.String("stats", "", "print statistics of a numeric field over the matches instead of the cars")
	f.String("format", "table", "output format: table, json or toml")
	return cmd
}

func runQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := loadCatalog(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	v := url.Values{}
	for flag, key := range criteriaFlags {
		if fl := cmd.Flags().Lookup(flag); fl.Changed {
			v.Set(key, fl.Value.String())
		}
	}
	c, err := query.DecodeCriteria(v)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	if name, _ := cmd.Flags().GetString("stats"); name != "" {
		field, ok := catalog.ParseField(name)
		if !ok || !field.Numeric() {
			return fmt.Errorf("field %q has no statistics", name)
		}
		return printStats(out, format, field, query.StatsFor(query.Filter(store.All(), c), field))
	}

	by, _ := cmd.Flags().GetString("sort")
	order, _ := cmd.Flags().GetString("order")
	res := query.Apply(store.All(), c, query.SortSpec{By: query.SortKey(by), Order: query.Order(order)})
	return printCars(out, format, res)
}

func printCars(w io.Writer, format string, res query.Result) error {
	switch format {
	case "json":
		return writeIndented(w, res)
	case "toml":
		data, err := toml.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "table":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY\tYEAR\tPRICE\tPOWER\t0-60\tTOP SPEED")
	for _, c := range res.Cars {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s %s\t%d\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Brand, compare.CategoryIcon(c.Category), c.Category, c.Year,
			compare.FormatValue(c.Price, compare.FormatCurrency),
			compare.FormatValue(c.Horsepower, compare.FormatHP),
			compare.FormatValue(c.Acceleration, compare.FormatSeconds),
			compare.FormatValue(c.TopSpeed, compare.FormatMPH),
		)
	}
	fmt.Fprintf(tw, "\n%d cars\n", res.Total)
	return tw.Flush()
}

func printStats(w io.Writer, format string, field catalog.Field, s query.Stats) error {
	if format == "json" {
		return writeIndented(w, s)
	}
	f := fieldFormat(field)
	_, err := fmt.Fprintf(w, "%s\tmin %s\tmax %s\tavg %s\n", field,
		compare.FormatValue(s.Min, f), compare.FormatValue(s.Max, f), compare.FormatValue(s.Avg, f))
	return err
}

// fieldFormat is the display format the comparison table uses for field.
func fieldFormat(field catalog.Field) compare.Format {
	for _, sec := range compare.Specs().Sections() {
		for _, row := range sec.Rows {
			if row.Key == field {
				return row.Format
			}
		}
	}
	return compare.FormatText
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseIDArgs(args []string) ([]int, error) {
	ids := make([]int, len(args))
	for i, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid car id %q", a)
		}
		ids[i] = id
	}
	return ids, nil
}
