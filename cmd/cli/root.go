package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"statbasket/adapters/excel"
	"statbasket/adapters/stats/moments"
	"statbasket/app"
	"statbasket/domain/stats"
	"statbasket/internal"
	"statbasket/internal/config"
	"statbasket/internal/errors"
	"statbasket/internal/scores"
	"statbasket/ports"
)

// options holds the flags shared by every command.
type options struct {
	file           string
	sheet          string
	column         string
	column2        string
	cl             string
	tail           string
	population     bool
	dependent      bool
	h0             float64
	removeOutliers bool
	format         string
	round          int

	cfg     *config.Config
	engine  *scores.Engine
	baskets *app.BasketService
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "statbasket",
		Short:         "Descriptive statistics, confidence intervals and hypothesis tests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.file, "file", "", "Excel or CSV file to read samples from (default $DATA_FILE)")
	flags.StringVar(&opts.sheet, "sheet", "", "Worksheet name (default: first sheet)")
	flags.StringVar(&opts.column, "column", "", "Column holding the first sample")
	flags.StringVar(&opts.column2, "column2", "", "Column holding the second sample")
	flags.StringVar(&opts.cl, "cl", "", "Confidence level: 0.90, 0.95 or 0.99 (default $DEFAULT_CONFIDENCE_LEVEL)")
	flags.StringVar(&opts.tail, "tail", "", "Tail: two, left or right (default $DEFAULT_TAIL)")
	flags.BoolVar(&opts.population, "population", false, "Treat the data as whole populations")
	flags.BoolVar(&opts.dependent, "dependent", false, "Treat the two samples as paired observations")
	flags.BoolVar(&opts.removeOutliers, "remove-outliers", false, "Drop values outside the 1.5 IQR fences")
	flags.StringVar(&opts.format, "format", "text", "Output format: text, markdown, html or json")
	flags.IntVar(&opts.round, "round", -1, "Decimal places in reports (default $ROUND_PLACES)")

	rootCmd.AddCommand(
		newDescribeCmd(opts),
		newIntervalCmd(opts),
		newTestCmd(opts),
		newCriticalCmd(opts),
		newPValueCmd(opts),
	)
	return rootCmd
}

func (o *options) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	internal.DefaultLogger = internal.NewLogger(cfg.LogLevel)

	o.cfg = cfg
	o.engine = scores.NewEngine()
	o.baskets = app.NewBasketService(moments.NewCalculator(), o.engine)
	if o.file == "" {
		o.file = cfg.Data.File
	}
	if o.sheet == "" {
		o.sheet = cfg.Data.Sheet
	}
	if o.round < 0 {
		o.round = cfg.Defaults.RoundPlaces
	}
	return nil
}

// testConfig applies the command-line overrides to the configured defaults.
func (o *options) testConfig() (stats.TestConfig, error) {
	cfg := o.cfg.TestConfig()
	if o.cl != "" {
		cl, err := stats.ParseConfidenceLevel(o.cl)
		if err != nil {
			return cfg, err
		}
		cfg.ConfidenceLevel = cl
	}
	if o.tail != "" {
		tail, err := stats.ParseTail(o.tail)
		if err != nil {
			return cfg, err
		}
		cfg.Tail = tail
	}
	cfg.IsPopulation = o.population
	cfg.SamplesDependent = o.dependent
	return cfg, nil
}

// samples reads the first sample from args or --column and the optional
// second sample from --column2.
func (o *options) samples(args []string) (stats.Sample, stats.Sample, error) {
	if len(args) > 0 {
		if o.column2 != "" {
			return nil, nil, errors.InvalidInput("--column2 cannot be combined with values on the command line")
		}
		x, err := parseValues(args)
		return x, nil, err
	}

	if o.file == "" || o.column == "" {
		return nil, nil, errors.InvalidInput("pass values as arguments or use --file with --column")
	}
	var reader ports.SampleReader = excel.NewDataReader(o.file).WithSheet(o.sheet)
	if o.column2 == "" {
		x, err := reader.Column(o.column)
		return x, nil, err
	}
	if o.dependent {
		return reader.PairedColumns(o.column, o.column2)
	}
	x, err := reader.Column(o.column)
	if err != nil {
		return nil, nil, err
	}
	y, err := reader.Column(o.column2)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func parseValues(args []string) (stats.Sample, error) {
	out := make(stats.Sample, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("%q is not a number", a))
		}
		out = append(out, v)
	}
	return out, nil
}
