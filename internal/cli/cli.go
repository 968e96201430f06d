// Package cli parses the benchmark runner's command line: flags, their
// BENCHOOR_* environment fallbacks and an optional YAML defaults file.
// Precedence is flag over environment over file over default, and every
// value is validated before any benchmark runs.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/benchoor/counter"
	"github.com/ethpandaops/benchoor/internal/report"
	"github.com/ethpandaops/benchoor/internal/timer"
	"github.com/ethpandaops/benchoor/internal/version"
)

// envPrefix namespaces the environment fallbacks.
const envPrefix = "BENCHOOR_"

// RunFunc executes the selected action with fully resolved options.
type RunFunc func(opts *Options) error

// Execute parses args and invokes run. Used by the runner's Main.
func Execute(args []string, run RunFunc) error {
	cmd := NewCommand(run)
	cmd.SetArgs(args)

	return cmd.Execute()
}

// NewCommand builds the root command for a benchmark binary.
func NewCommand(run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchoor [flags] [FILTER]",
		Short: "Micro-benchmark runner",
		Long: `Runs the benchmarks registered in this binary, measuring
per-iteration time and, where counters are attached, throughput.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd, args)
			if err != nil {
				return err
			}

			return run(opts)
		},
	}

	flags := cmd.Flags()

	flags.Bool("test", false, "run benchmarks once to ensure they run successfully")
	flags.Bool("list", false, "list benchmarks")
	flags.String("color", "auto", "controls when to use colors (auto, always, never)")
	flags.String("format", "", "configure formatting of output (pretty, terse)")
	flags.StringArray("skip", nil, "skip benchmarks whose names match this pattern")
	flags.Bool("exact", false, "filter benchmarks by exact name rather than by pattern")
	flags.Bool("ignored", false, "run only ignored benchmarks")
	flags.Bool("include-ignored", false, "run ignored and not-ignored benchmarks")
	flags.String("sort", "", "sort benchmarks in ascending order (kind, name, location)")
	flags.String("sortr", "", "sort benchmarks in descending order (kind, name, location)")
	flags.String("timer", "", "set the timer used for measuring samples (os, tsc)")
	flags.String("bytes-format", "", "byte scaling in output (decimal, binary)")
	flags.Uint32("sample-count", 0, "set the number of sampling iterations")
	flags.Uint32("sample-size", 0, "set the number of iterations inside a single sample")
	flags.String("min-time", "", "set the minimum seconds spent benchmarking a single function")
	flags.String("max-time", "", "set the maximum seconds spent benchmarking a single function, with priority over --min-time")
	flags.Bool("skip-ext-time", false, "when --min-time or --max-time is set, skip time external to benchmarked functions")
	flags.Lookup("skip-ext-time").NoOptDefVal = "true"
	flags.String("config", "", "path to an optional YAML defaults file")
	flags.String("log-level", "", "override log level (debug, info, warn, error)")

	// Compatibility no-ops accepted from test-harness callers.
	for _, name := range []string{"bench", "nocapture", "show-output"} {
		flags.Bool(name, false, "")

		if err := flags.MarkHidden(name); err != nil {
			panic(err)
		}
	}

	cmd.MarkFlagsMutuallyExclusive("test", "list")
	cmd.MarkFlagsMutuallyExclusive("ignored", "include-ignored")

	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.FullWithPlatform())
		},
	}
}

// envName maps a flag name to its environment fallback, e.g. "sample-count"
// to "BENCHOOR_SAMPLE_COUNT".
func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// resolveOptions merges flags, environment and the defaults file into a
// validated Options.
func resolveOptions(cmd *cobra.Command, args []string) (*Options, error) {
	file := &FileConfig{}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := LoadFileConfig(path)
		if err != nil {
			return nil, err
		}

		file = loaded
	}

	opts := DefaultOptions()

	if len(args) == 1 {
		opts.Filter = args[0]
	}

	var err error

	opts.Test, _ = cmd.Flags().GetBool("test")
	opts.List, _ = cmd.Flags().GetBool("list")
	opts.Exact, _ = cmd.Flags().GetBool("exact")
	opts.Ignored, _ = cmd.Flags().GetBool("ignored")
	opts.IncludeIgnored, _ = cmd.Flags().GetBool("include-ignored")

	if opts.Skip, err = resolveSkip(cmd, file); err != nil {
		return nil, err
	}

	colorName, _ := cmd.Flags().GetString("color")
	if opts.Color, err = report.ParseColorMode(colorName); err != nil {
		return nil, err
	}

	if opts.Format, err = report.ParseFormat(stringValue(cmd, "format", file.Format, "pretty")); err != nil {
		return nil, err
	}

	if opts.BytesFormat, err = counter.ParseBytesFormat(stringValue(cmd, "bytes-format", file.BytesFormat, "decimal")); err != nil {
		return nil, err
	}

	if opts.Timer, err = timer.ParseKind(stringValue(cmd, "timer", file.Timer, "os")); err != nil {
		return nil, err
	}

	if err = resolveSort(cmd, file, opts); err != nil {
		return nil, err
	}

	if err = resolveSampling(cmd, file, opts); err != nil {
		return nil, err
	}

	opts.LogLevel = stringValue(cmd, "log-level", file.LogLevel, "warn")

	return opts, nil
}

// stringValue resolves a string flag with precedence flag > env > file >
// default.
func stringValue(cmd *cobra.Command, flag, fileVal, def string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)

		return v
	}

	if v, ok := os.LookupEnv(envName(flag)); ok {
		return v
	}

	if fileVal != "" {
		return fileVal
	}

	return def
}

// uint32Value resolves a numeric flag with the same precedence.
func uint32Value(cmd *cobra.Command, flag string, fileVal uint32) (uint32, error) {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetUint32(flag)

		return v, nil
	}

	if v, ok := os.LookupEnv(envName(flag)); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", envName(flag), v, err)
		}

		return uint32(n), nil
	}

	return fileVal, nil
}

// parseSeconds parses the flag/env form of the time bounds: seconds as a
// decimal number.
func parseSeconds(flag, s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid --%s value %q: expected non-negative seconds", flag, s)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

func resolveSkip(cmd *cobra.Command, file *FileConfig) ([]string, error) {
	skip, err := cmd.Flags().GetStringArray("skip")
	if err != nil {
		return nil, err
	}

	return append(skip, file.Skip...), nil
}

// resolveSort applies the sortr-overrides-sort rule: a descending attribute
// from any source wins over the ascending one.
func resolveSort(cmd *cobra.Command, file *FileConfig, opts *Options) error {
	var err error

	if sortr := stringValue(cmd, "sortr", file.Sortr, ""); sortr != "" {
		opts.SortDescending = true
		opts.Sort, err = ParseSortAttr(sortr)

		return err
	}

	opts.Sort, err = ParseSortAttr(stringValue(cmd, "sort", file.Sort, "kind"))

	return err
}

func resolveSampling(cmd *cobra.Command, file *FileConfig, opts *Options) error {
	var err error

	if opts.Sampling.SampleCount, err = uint32Value(cmd, "sample-count", file.SampleCount); err != nil {
		return err
	}

	if opts.Sampling.SampleSize, err = uint32Value(cmd, "sample-size", file.SampleSize); err != nil {
		return err
	}

	opts.Sampling.MinTime = time.Duration(file.MinTime)
	if s := stringValue(cmd, "min-time", "", ""); s != "" {
		if opts.Sampling.MinTime, err = parseSeconds("min-time", s); err != nil {
			return err
		}
	}

	opts.Sampling.MaxTime = time.Duration(file.MaxTime)
	if s := stringValue(cmd, "max-time", "", ""); s != "" {
		if opts.Sampling.MaxTime, err = parseSeconds("max-time", s); err != nil {
			return err
		}
	}

	if file.SkipExtTime != nil {
		opts.Sampling.SkipExtTime = *file.SkipExtTime
	}

	switch {
	case cmd.Flags().Changed("skip-ext-time"):
		opts.Sampling.SkipExtTime, _ = cmd.Flags().GetBool("skip-ext-time")
	default:
		if v, ok := os.LookupEnv(envName("skip-ext-time")); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", envName("skip-ext-time"), v, err)
			}

			opts.Sampling.SkipExtTime = b
		}
	}

	return nil
}
