package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/san-kum/packmin/internal/config"
	"github.com/spf13/cobra"
)

const defaultPreset = "trimer"

var (
	logLevel   string
	configFile string
	seed       int64
	seeds      int
	tol        float64
	maxIter    int
	dtStart    float64
	dtMax      float64
	maxStep    float64
	criterion  string
	noStepback bool
	plot       bool
	steps      int
	force      bool

	logger = slog.Default()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "packmin",
		Short:         "local minimization of soft-core sphere packings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "minimize a preset or a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMinimization,
	}
	addSystemFlags(runCmd)
	addMinimizerFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot energy and gradient norm")
	runCmd.Flags().IntVar(&seeds, "seeds", 1, "run this many consecutive seeds concurrently (presets only)")

	checkCmd := &cobra.Command{
		Use:   "check [preset]",
		Short: "compare analytic derivatives with finite differences",
		Args:  cobra.MaximumNArgs(1),
		RunE:  checkDerivatives,
	}
	addSystemFlags(checkCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "compare FIRE with the L-BFGS reference",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareMinimizers,
	}
	addSystemFlags(compareCmd)
	addMinimizerFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a minimization in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)
	addMinimizerFlags(liveCmd)
	liveCmd.Flags().IntVar(&steps, "steps", 4, "iterations per frame")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name, 1)
				fmt.Printf("  %-16s %d particles, %dD%s\n", name, cfg.Natoms(), cfg.System.Dim, describe(cfg))
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [preset] [path]",
		Short: "write a preset as a config template",
		Args:  cobra.MaximumNArgs(2),
		RunE:  writeTemplate,
	}
	initCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(runCmd, checkCmd, compareCmd, liveCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
}

func addMinimizerFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tol, "tol", 0, "gradient norm tolerance")
	cmd.Flags().IntVar(&maxIter, "max-iter", 0, "iteration cap")
	cmd.Flags().Float64Var(&dtStart, "dt", 0, "initial step")
	cmd.Flags().Float64Var(&dtMax, "dt-max", 0, "maximum step")
	cmd.Flags().Float64Var(&maxStep, "max-step", 0, "maximum displacement per iteration")
	cmd.Flags().StringVar(&criterion, "criterion", "", "convergence norm (rms, maxabs)")
	cmd.Flags().BoolVar(&noStepback, "no-stepback", false, "accept energy-raising steps")
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func presetName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultPreset
}

// loadConfig resolves the run description: a config file when --config is
// given, otherwise the named preset. Flags the user set override it.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
	} else {
		name := presetName(args)
		cfg = config.GetPreset(name, seed)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	m := &cfg.Minimizer
	flags := cmd.Flags()
	if flags.Changed("tol") {
		m.Tol = tol
	}
	if flags.Changed("max-iter") {
		m.MaxIter = maxIter
	}
	if flags.Changed("dt") {
		m.DtStart = dtStart
	}
	if flags.Changed("dt-max") {
		m.DtMax = dtMax
	}
	if flags.Changed("max-step") {
		m.MaxStep = maxStep
	}
	if flags.Changed("criterion") {
		m.Criterion = criterion
	}
	if flags.Changed("no-stepback") {
		m.Stepback = !noStepback
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func describe(cfg *config.Config) string {
	var parts []string
	if cfg.Periodic() {
		parts = append(parts, "periodic")
	}
	if n := len(cfg.FrozenDOF()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d frozen", n))
	}
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, ", ")
}
