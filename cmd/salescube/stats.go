package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/hupe1980/salescube"
	"github.com/hupe1980/salescube/index"
	"github.com/hupe1980/salescube/model"
)

var (
	showDimensions bool
	showMetrics    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [table...]",
	Short: "Load tables and print row and index statistics",
	Long: `stats loads the given tables (all known tables by default) and prints one
line per table. --dimensions adds the posting list distribution of every
indexed dimension; --metrics dumps the load and build metrics in the
Prometheus text format.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&showDimensions, "dimensions", false, "Print posting list sizes per indexed dimension")
	statsCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print collected metrics in Prometheus text format")
}

func runStats(cmd *cobra.Command, args []string) error {
	opts, err := engineOptions(cmd)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	collector, err := salescube.NewPrometheusMetricsCollector(reg, "")
	if err != nil {
		return err
	}
	eng := salescube.New(append(opts, salescube.WithMetricsCollector(collector))...)
	if err := eng.Load(cmd.Context(), tableNames(args)...); err != nil {
		return err
	}

	tableStats := eng.Stats()
	var dims []dimensionStat
	if showDimensions {
		for _, s := range tableStats {
			if ix, ok := eng.Indices(s.Name); ok {
				dims = append(dims, dimensionStats(s.Name, ix)...)
			}
		}
	}

	if jsonOutput {
		if showDimensions {
			return writeJSON(stdout, map[string]any{"tables": tableStats, "dimensions": dims})
		}
		return writeJSON(stdout, tableStats)
	}

	rows := make([][]any, 0, len(tableStats))
	for _, s := range tableStats {
		maxDate := ""
		if !s.MaxDate.IsZero() {
			maxDate = s.MaxDate.Format("2006-01-02")
		}
		rows = append(rows, []any{
			s.Name, s.Rows, s.Built, s.Dimensions,
			humanize.IBytes(s.IndexBytes), s.Overrides, s.WorkingDays, maxDate,
		})
	}
	renderRows(stdout, []string{"TABLE", "ROWS", "INDEXED", "DIMENSIONS", "INDEX SIZE", "OVERRIDES", "WORKING DAYS", "MAX DATE"}, rows, 0)

	if showDimensions {
		drows := make([][]any, 0, len(dims))
		for _, d := range dims {
			drows = append(drows, []any{d.Table, d.Dimension, d.Values, d.Min, d.Median, d.P90, d.Max})
		}
		renderRows(stdout, []string{"TABLE", "DIMENSION", "VALUES", "MIN ROWS", "MEDIAN ROWS", "P90 ROWS", "MAX ROWS"}, drows, 0)
	}
	if showMetrics {
		return writeMetrics(stdout, reg)
	}
	return nil
}

// dimensionStat summarizes the posting list sizes of one dimension.
type dimensionStat struct {
	Table     model.TableName `json:"table"`
	Dimension index.Dimension `json:"dimension"`
	Values    int             `json:"values"`
	Min       float64         `json:"min"`
	Median    float64         `json:"median"`
	P90       float64         `json:"p90"`
	Max       float64         `json:"max"`
}

func dimensionStats(name model.TableName, ix *index.Indices) []dimensionStat {
	out := make([]dimensionStat, 0, len(ix.Dimensions()))
	for _, dim := range ix.Dimensions() {
		values := ix.Values(dim)
		d := dimensionStat{Table: name, Dimension: dim, Values: len(values)}
		if len(values) > 0 {
			sizes := make(stats.Float64Data, len(values))
			for i, v := range values {
				sizes[i] = float64(ix.Cardinality(dim, v))
			}
			// Min, Median and Max only fail on empty input, excluded above.
			d.Min, _ = stats.Min(sizes)
			d.Median, _ = stats.Median(sizes)
			d.Max, _ = stats.Max(sizes)
			// Percentile rejects samples too small to rank.
			if p, err := stats.Percentile(sizes, 90); err == nil {
				d.P90 = p
			} else {
				d.P90 = d.Max
			}
		}
		out = append(out, d)
	}
	return out
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func tableNames(args []string) []model.TableName {
	names := make([]model.TableName, 0, len(args))
	for _, a := range args {
		names = append(names, model.TableName(a))
	}
	return names
}
