package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/awsinv/internal/config"
	"github.com/pankaj-dahiya-devops/awsinv/internal/engine"
	"github.com/pankaj-dahiya-devops/awsinv/internal/metrics"
	"github.com/pankaj-dahiya-devops/awsinv/internal/output"
	"github.com/pankaj-dahiya-devops/awsinv/internal/providers/aws/common"
	awscost "github.com/pankaj-dahiya-devops/awsinv/internal/providers/aws/cost"
	awsinventory "github.com/pankaj-dahiya-devops/awsinv/internal/providers/aws/inventory"
	"github.com/pankaj-dahiya-devops/awsinv/internal/version"
)

// deps holds the constructors commands use to reach AWS. Tests swap them for
// fakes.
type deps struct {
	provider  func() common.AWSClientProvider
	inventory func(m *metrics.Metrics) awsinventory.InventoryCollector
	cost      func() awscost.CostCollector
	now       func() time.Time
}

func defaultDeps() *deps {
	return &deps{
		provider: func() common.AWSClientProvider { return common.NewDefaultAWSClientProvider() },
		inventory: func(m *metrics.Metrics) awsinventory.InventoryCollector {
			return awsinventory.NewDefaultInventoryCollector(m)
		},
		cost: func() awscost.CostCollector { return awscost.NewDefaultCostCollector() },
		now:  time.Now,
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithDeps(defaultDeps())
}

func newRootCmdWithDeps(d *deps) *cobra.Command {
	var (
		logLevel string
		logJSON  bool
	)

	root := &cobra.Command{
		Use:           "awsinv",
		Short:         "awsinv: read-only multi-region AWS resource inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), logLevel, logJSON)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: config log_level)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON lines")

	root.AddCommand(newCollectCmd(d))
	root.AddCommand(newCostCmd(d))
	root.AddCommand(newDoctorCmd(d))
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// collectFlags mirrors the configuration keys that collect can override.
type collectFlags struct {
	configPath      string
	profile         string
	regions         []string
	includeIdentity bool
	concurrency     int
	outDir          string
	formats         []string
	pretty          bool
	metricsFile     string
}

func newCollectCmd(d *deps) *cobra.Command {
	var f collectFlags

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect the inventory of every enabled region and write the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			if err := applyCollectFlags(cmd, cfg, f); err != nil {
				return err
			}
			if err := applyConfigLogLevel(cmd, cfg); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			eng := engine.NewInventoryEngine(d.provider(), d.inventory(m), m)

			report, err := eng.BuildReport(cmd.Context(), engine.InventoryOptions{
				Profile:          cfg.Profile,
				Regions:          cfg.Regions,
				IncludeIdentity:  cfg.IncludeIdentity,
				ConcurrencyLimit: cfg.Concurrency,
			})
			if err != nil {
				return fmt.Errorf("collect inventory: %w", err)
			}

			paths, err := output.WriteFiles(cfg.OutDir, report, cfg.Formats, cfg.Pretty)
			if err != nil {
				return err
			}
			for _, p := range paths {
				log.Info().Str("path", p).Msg("wrote report file")
			}
			if wantsTable(cfg.Formats) {
				output.RenderSummary(cmd.OutOrStdout(), report)
			}

			if cfg.MetricsFile != "" {
				if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
					return fmt.Errorf("write metrics file: %w", err)
				}
				log.Info().Str("path", cfg.MetricsFile).Msg("wrote metrics file")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to the config file (default: ./awsinv.yaml when present)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().StringSliceVar(&f.regions, "regions", nil, "AWS regions to collect (default: all enabled regions)")
	cmd.Flags().BoolVar(&f.includeIdentity, "include-iam", false, "Also collect IAM users and roles")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 5, "Number of regions collected at once")
	cmd.Flags().StringVar(&f.outDir, "out-dir", ".", "Directory for report files")
	cmd.Flags().StringSliceVar(&f.formats, "format", nil, "Output format: json, csv, xlsx or table (repeatable)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", true, "Indent the JSON report")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write run metrics to this file in Prometheus text format")

	return cmd
}

// applyCollectFlags overrides cfg with every flag set on the command line and
// re-validates the result.
func applyCollectFlags(cmd *cobra.Command, cfg *config.Config, f collectFlags) error {
	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = f.profile
	}
	if flags.Changed("regions") {
		cfg.Regions = f.regions
	}
	if flags.Changed("include-iam") {
		cfg.IncludeIdentity = f.includeIdentity
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = f.outDir
	}
	if flags.Changed("format") {
		cfg.Formats = normalizeFormats(f.formats)
	}
	if flags.Changed("pretty") {
		cfg.Pretty = f.pretty
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// applyConfigLogLevel applies the configured level unless --log-level was
// given explicitly.
func applyConfigLogLevel(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("log-level") {
		return nil
	}
	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	return setupLogging(cmd.ErrOrStderr(), cfg.LogLevel, jsonLogs)
}

func normalizeFormats(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(f)))
	}
	return out
}

func wantsTable(formats []string) bool {
	for _, f := range formats {
		if f == config.FormatTable {
			return true
		}
	}
	return false
}

func newCostCmd(d *deps) *cobra.Command {
	var (
		configPath  string
		profile     string
		days        int
		start       string
		end         string
		granularity string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Download and analyse EC2 compute cost from Cost Explorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("profile") {
				cfg.Profile = profile
			}
			if flags.Changed("days") {
				cfg.Cost.Days = days
			}
			if flags.Changed("granularity") {
				cfg.Cost.Granularity = strings.ToUpper(granularity)
			}
			if flags.Changed("out-dir") {
				cfg.OutDir = outDir
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			if err := applyConfigLogLevel(cmd, cfg); err != nil {
				return err
			}

			now := d.now()
			from, to, err := awscost.DateRange(cfg.Cost.Days, start, end, now)
			if err != nil {
				return err
			}

			profileCfg, err := d.provider().LoadProfile(cmd.Context(), cfg.Profile)
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}
			if profileCfg.AccountErr != nil {
				log.Warn().Err(profileCfg.AccountErr).Msg("account id unavailable; cost download continues")
			}

			data, err := d.cost().Download(cmd.Context(), profileCfg.Config, awscost.CostQuery{
				Start:       from,
				End:         to,
				Granularity: cfg.Cost.Granularity,
			})
			if err != nil {
				return err
			}
			analysis := awscost.Analyze(data.Daily, data.ByInstanceType)

			paths, err := output.WriteCostFiles(cfg.OutDir, data, analysis, now)
			if err != nil {
				return err
			}
			for _, p := range paths {
				log.Info().Str("path", p).Msg("wrote cost file")
			}
			output.RenderCostSummary(cmd.OutOrStdout(), data, analysis)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the config file (default: ./awsinv.yaml when present)")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().IntVar(&days, "days", 30, "Days back from today (ignored when --start and --end are set)")
	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD, inclusive")
	cmd.Flags().StringVar(&granularity, "granularity", awscost.GranularityDaily, "DAILY or MONTHLY")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory for cost files")

	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the awsinv configuration file",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented example configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "-" {
				return config.WriteExample(cmd.OutOrStdout())
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("stat %s: %w", path, err)
				}
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := config.WriteExample(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", config.DefaultFile, `Destination file, or "-" for stdout`)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}
