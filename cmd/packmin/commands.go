package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/packmin/internal/config"
	"github.com/san-kum/packmin/internal/experiment"
	"github.com/san-kum/packmin/internal/fire"
	"github.com/san-kum/packmin/internal/viz"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runMinimization(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	if seeds > 1 {
		return runEnsemble(ctx, cmd, args, cfg)
	}

	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Printf("minimizing %s...\n", cfg.Name)
	start := time.Now()
	rep, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printReport(rep, elapsed)
	if plot && rep.Trace.Len() > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(rep.Trace.Energies, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("energy")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(rep.Trace.LogGradNorms(), asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("log10 gradient norm")))
	}
	if rep.Result.Status == fire.Stalled {
		logger.Warn("minimization stalled", "name", rep.Name, "iterations", rep.Result.Iterations)
	}
	return nil
}

func printReport(rep *experiment.Report, elapsed time.Duration) {
	res := rep.Result
	status := okStyle.Render(res.Status.String())
	if res.Status != fire.Converged {
		status = warnStyle.Render(res.Status.String())
	}

	fmt.Println(titleStyle.Render(rep.Name))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "status\t%s\n", status)
	fmt.Fprintf(w, "particles\t%d (%dD)\n", rep.Natoms, rep.Dim)
	fmt.Fprintf(w, "degrees of freedom\t%d mobile, %d frozen\n", rep.Dof, rep.Frozen)
	fmt.Fprintf(w, "initial energy\t%.10g\n", rep.InitialEnergy)
	fmt.Fprintf(w, "final energy\t%.10g\n", res.Energy)
	fmt.Fprintf(w, "gradient norm\t%.3e\n", res.GradNorm)
	fmt.Fprintf(w, "iterations\t%d\n", res.Iterations)
	fmt.Fprintf(w, "evaluations\t%d\n", res.Evaluations)
	fmt.Fprintf(w, "rejected steps\t%d\n", res.Rejected)
	fmt.Fprintf(w, "elapsed\t%v\n", elapsed.Round(time.Microsecond))
	w.Flush()

	fmt.Println("\nmetrics:")
	for _, name := range []string{"energy_drop", "monotonicity", "mean_step"} {
		if v, ok := rep.Metrics[name]; ok {
			fmt.Printf("  %s: %.6g\n", name, v)
		}
	}
}

func runEnsemble(ctx context.Context, cmd *cobra.Command, args []string, cfg *config.Config) error {
	if configFile != "" {
		return errors.New("--seeds needs a preset, not a config file")
	}
	list := make([]int64, seeds)
	cfgs := make(map[int64]*config.Config, seeds)
	for i := range list {
		list[i] = cfg.Seed + int64(i)
		c, err := loadConfigSeed(cmd, args, list[i])
		if err != nil {
			return err
		}
		cfgs[list[i]] = c
	}
	build := func(s int64) *config.Config { return cfgs[s] }

	reports, err := experiment.RunSeeds(ctx, build, list, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "seed\tstatus\tinitial\tfinal\titerations")
	for i, rep := range reports {
		fmt.Fprintf(w, "%d\t%s\t%.6g\t%.6g\t%d\n", list[i], rep.Result.Status, rep.InitialEnergy, rep.Result.Energy, rep.Result.Iterations)
	}
	return w.Flush()
}

func loadConfigSeed(cmd *cobra.Command, args []string, s int64) (*config.Config, error) {
	saved := seed
	defer func() { seed = saved }()
	seed = s
	return loadConfig(cmd, args)
}

func checkDerivatives(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}
	rep, err := exp.Check()
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(cfg.Name + ": analytic vs finite differences"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "degrees of freedom\t%d\n", rep.Dof)
	fmt.Fprintf(w, "energy\t%.10g\n", rep.Energy)
	fmt.Fprintf(w, "gradient\tmax dev %.3e\tmax entry %.3e\n", rep.GradDev, rep.GradScale)
	fmt.Fprintf(w, "hessian\tmax dev %.3e\tmax entry %.3e\n", rep.HessDev, rep.HessScale)
	fmt.Fprintf(w, "hessian asymmetry\t%.3e\n", rep.Asymmetry)
	return w.Flush()
}

func compareMinimizers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	cmp, err := exp.Compare(ctx)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s (initial energy %.10g)", cfg.Name, cmp.InitialEnergy)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "method\tstatus\tenergy\tgrad norm\titerations\tevaluations")
	fmt.Fprintf(w, "fire\t%s\t%.10g\t%.3e\t%d\t%d\n", cmp.Fire.Status, cmp.Fire.Energy, cmp.Fire.GradNorm, cmp.Fire.Iterations, cmp.Fire.Evaluations)
	fmt.Fprintf(w, "lbfgs\t%s\t%.10g\t%.3e\t%d\t%d\n", cmp.LBFGS.Status, cmp.LBFGS.Energy, cmp.LBFGS.GradNorm, cmp.LBFGS.Iterations, cmp.LBFGS.Evaluations)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Microsecond))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// log lines would tear the terminal view
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	exp, err := experiment.New(cfg, quiet)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(exp, steps)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func writeTemplate(cmd *cobra.Command, args []string) error {
	name := presetName(args)
	path := name + ".yaml"
	if len(args) > 1 {
		path = args[1]
	}

	cfg := config.GetPreset(name, seed)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
