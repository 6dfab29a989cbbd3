package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"statbasket/app"
	"statbasket/domain/stats"
	"statbasket/internal/report"
	"statbasket/internal/scores"
)

func newDescribeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [values...]",
		Short: "Print the descriptive report of one sample or a pair",
		Long: `Print the descriptive report of one sample, two independent samples, or
the differences of two paired samples. With --h0 the matching hypothesis
test is appended.

Example: statbasket describe --file trial.xlsx --column before --column2 after --dependent --h0 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			cfg, err := opts.testConfig()
			if err != nil {
				return err
			}
			x, y, err := opts.samples(args)
			if err != nil {
				return err
			}

			basket, err := opts.baskets.Build(cmd.Context(), app.BasketRequest{
				X:              x,
				Y:              y,
				NameX:          opts.column,
				NameY:          opts.column2,
				Config:         cfg,
				RemoveOutliers: opts.removeOutliers,
			})
			if err != nil {
				return err
			}

			var outcome *stats.HypothesisOutcome
			if cmd.Flags().Changed("h0") {
				if outcome, err = opts.baskets.Test(cmd.Context(), basket, opts.h0); err != nil {
					return err
				}
			}

			doc, err := report.Render(basket, outcome, report.Options{RoundPlaces: opts.round, Format: format})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc.Body)
			return err
		},
	}
	cmd.Flags().Float64Var(&opts.h0, "h0", 0, "Hypothesised mean (or mean difference) to test against")
	return cmd
}

func newIntervalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "interval [values...]",
		Short: "Compute the confidence interval of the mean",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.testConfig()
			if err != nil {
				return err
			}
			x, _, err := opts.samples(args)
			if err != nil {
				return err
			}
			ci, err := opts.baskets.Interval(cmd.Context(), x, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSON(out, ci)
			}
			p := opts.round
			fmt.Fprintf(out, "Confidence Level:     %s (%s-tailed)\n", cfg.ConfidenceLevel, cfg.Tail)
			fmt.Fprintf(out, "Mean:                 %.*f\n", p, ci.Mean)
			fmt.Fprintf(out, "Standard Error:       %.*f\n", p, ci.StandardError)
			fmt.Fprintf(out, "%s-score:              %.*f (df %d)\n", ci.Critical.Distribution, p, ci.Critical.Score, ci.Critical.DF)
			fmt.Fprintf(out, "Margin of Error (E):  %.*f\n", p, ci.MarginOfError)
			fmt.Fprintf(out, "CI (mean ± E):        [%.*f, %.*f]\n", p, ci.Lower, p, ci.Upper)
			return nil
		},
	}
}

func newTestCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [values...]",
		Short: "Run the hypothesis test matching the samples",
		Long: `Run a one-population test, or with --column2 a two-population test:
known variance when the data are populations (or df exceeds the table),
paired when --dependent is set, pooled variance otherwise.

Example: statbasket test --file scores.csv --column group_a --column2 group_b --cl 99 --tail right`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.testConfig()
			if err != nil {
				return err
			}
			x, y, err := opts.samples(args)
			if err != nil {
				return err
			}
			outcome, err := opts.baskets.Hypothesis(cmd.Context(), x, y, opts.h0, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSON(out, outcome)
			}
			p := opts.round
			decision := "fail to reject h0"
			if outcome.RejectNull {
				decision = "reject h0"
			}
			fmt.Fprintf(out, "Test Type:              %s\n", outcome.TestName)
			fmt.Fprintf(out, "Null Hypothesis:        h0: %s\n", outcome.Null)
			fmt.Fprintf(out, "Alternative Hypothesis: h1: %s\n", outcome.Alternative)
			fmt.Fprintf(out, "%s-score:                %.*f\n", outcome.Distribution, p, outcome.Statistic)
			fmt.Fprintf(out, "Critical Score:         %.*f (α %.3f, df %d)\n", p, outcome.Critical.Score, outcome.Critical.Alpha, outcome.DF)
			if outcome.PValue != nil {
				fmt.Fprintf(out, "p-value:                %.4f\n", *outcome.PValue)
			}
			fmt.Fprintf(out, "Decision:               %s\n", decision)
			return nil
		},
	}
	cmd.Flags().Float64Var(&opts.h0, "h0", 0, "Hypothesised mean (or mean difference)")
	return cmd
}

func newCriticalCmd(opts *options) *cobra.Command {
	var df int

	cmd := &cobra.Command{
		Use:   "critical",
		Short: "Look up a critical t or z score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.testConfig()
			if err != nil {
				return err
			}
			score, err := opts.engine.CriticalScore(df, cfg.ConfidenceLevel, cfg.Tail, cfg.IsPopulation)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), score)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s-score %.3f (α %.3f, df %d, table row %d)\n",
				score.Distribution, score.Score, score.Alpha, score.DF, score.LookupDF)
			return nil
		},
	}
	cmd.Flags().IntVar(&df, "df", 0, "Degrees of freedom")
	_ = cmd.MarkFlagRequired("df")
	return cmd
}

func newPValueCmd(opts *options) *cobra.Command {
	var z float64

	cmd := &cobra.Command{
		Use:   "pvalue",
		Short: "Approximate the p-value of a z statistic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.testConfig()
			if err != nil {
				return err
			}
			p := scores.PValue(z, cfg.Tail)
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"z": z, "tail": cfg.Tail, "p_value": p})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "p-value %.4f (%s-tailed)\n", p, cfg.Tail)
			return nil
		},
	}
	cmd.Flags().Float64Var(&z, "z", 0, "z statistic")
	_ = cmd.MarkFlagRequired("z")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
