package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bridgesim/adapters/api"
	"bridgesim/adapters/excel"
	"bridgesim/adapters/rng"
	"bridgesim/app"
	"bridgesim/domain/reliability"
	"bridgesim/internal"
	"bridgesim/internal/config"
	"bridgesim/internal/errors"
	"bridgesim/internal/input"
	"bridgesim/internal/report"
	"bridgesim/internal/statistics"

	"github.com/spf13/cobra"
)

// env bundles what every subcommand needs
type env struct {
	cfg     *config.Config
	logger  *internal.Logger
	service *app.SimulationService
}

func loadEnv() (*env, error) {
	cfg, err := config.LoadWithEnvFile(".env")
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	return &env{
		cfg:     cfg,
		logger:  logger,
		service: app.NewSimulationService(rng.NewSeededAdapter(), cfg.Simulation, logger),
	}, nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bridgesim",
		Short:         "Monte Carlo estimate of bridge failure probability",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newSimulateCmd(),
		newMeanCmd(),
		newStdDevCmd(),
		newMaterialsCmd(),
		newSweepCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newSimulateCmd() *cobra.Command {
	var text input.ScenarioText
	var trials string
	var seed int64
	var stressUnit string
	var trialsTable int
	var material string
	var reportPath, htmlPath, xlsxPath string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Estimate the failure probability of one bridge",
		Long: `Sample length, width, material strength and load for every trial and count
the trials whose stress exceeds the material strength.

Blank standard deviations default to 5% of their mean. Strength is compared
against load/(length×width) in N/m² unless --stress-unit mpa is given.

Example: bridgesim simulate --length-mean 10 --width-mean 2 --strength-mean 40 --trials 100000 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			if material != "" && text.StrengthMean == "" {
				m, ok := reliability.LookupMaterial(material)
				if !ok {
					return errors.InvalidInput(fmt.Sprintf("unknown material %q", material))
				}
				p := m.StrengthParameter()
				text.StrengthMean = fmt.Sprint(p.Mean)
				if text.StrengthStdDev == "" {
					text.StrengthStdDev = fmt.Sprint(p.StdDev)
				}
				// reference strengths are in MPa
				if stressUnit == "" {
					stressUnit = string(reliability.StressUnitMegapascal)
				}
			}

			scenario, err := input.ParseScenario(text)
			if err != nil {
				return err
			}

			req := app.SimulationRequest{
				Scenario:   scenario,
				Trials:     e.cfg.Simulation.Trials,
				StressUnit: reliability.StressUnit(stressUnit),
				KeepTrials: trialsTable > 0 || xlsxPath != "",
			}
			if trials != "" {
				if req.Trials, err = input.ParseTrialCount(trials); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			rep, err := e.service.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			opts := report.Options{MaxTrialRows: trialsTable}
			if err := report.Write(cmd.OutOrStdout(), rep, opts, false); err != nil {
				return err
			}
			return writeOutputs(cmd.OutOrStdout(), rep, opts, reportPath, htmlPath, xlsxPath)
		},
	}

	f := cmd.Flags()
	f.StringVar(&text.LengthMean, "length-mean", "", "Mean bridge length (m)")
	f.StringVar(&text.LengthStdDev, "length-stddev", "", "Standard deviation of length (default 5% of mean)")
	f.StringVar(&text.WidthMean, "width-mean", "", "Mean bridge width (m)")
	f.StringVar(&text.WidthStdDev, "width-stddev", "", "Standard deviation of width (default 5% of mean)")
	f.StringVar(&text.StrengthMean, "strength-mean", "", "Mean material strength")
	f.StringVar(&text.StrengthStdDev, "strength-stddev", "", "Standard deviation of strength (default 5% of mean)")
	f.StringVar(&material, "material", "", "Reference material supplying the strength when --strength-mean is blank")
	f.StringVar(&trials, "trials", "", "Number of trials (default SIM_TRIALS)")
	f.Int64Var(&seed, "seed", 42, "Random seed (default SIM_SEED)")
	f.StringVar(&stressUnit, "stress-unit", "", "Stress unit compared with strength: pa|mpa (default SIM_STRESS_UNIT)")
	f.IntVar(&trialsTable, "trials-table", 0, "Print the first N trials")
	f.StringVar(&reportPath, "report", "", "Write the Markdown report to this file")
	f.StringVar(&htmlPath, "html", "", "Write the HTML report to this file")
	f.StringVar(&xlsxPath, "xlsx", "", "Write the workbook to this file")

	return cmd
}

func writeOutputs(w io.Writer, rep *app.SimulationReport, opts report.Options, reportPath, htmlPath, xlsxPath string) error {
	opts.IncludeMaterials = true
	for _, out := range []struct {
		path   string
		asHTML bool
	}{{reportPath, false}, {htmlPath, true}} {
		if out.path == "" {
			continue
		}
		f, err := os.Create(out.path)
		if err != nil {
			return errors.ExportFailed(out.path, err)
		}
		err = report.Write(f, rep, opts, out.asHTML)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.ExportFailed(out.path, err)
		}
		fmt.Fprintf(w, "report written to %s\n", out.path)
	}

	if xlsxPath != "" {
		cfg := excel.DefaultExportConfig()
		cfg.FilePath = xlsxPath
		if err := excel.NewReportExporter(cfg).Save(rep); err != nil {
			return err
		}
		fmt.Fprintf(w, "workbook written to %s\n", xlsxPath)
	}
	return nil
}

// valuesFrom reads a comma list argument, or one column of a CSV/Excel file
func valuesFrom(args []string, file, column string) ([]float64, error) {
	if file != "" {
		if column == "" {
			return nil, errors.InvalidInput("--column is required with --file")
		}
		return excel.NewDataReader(file).ReadColumn(column)
	}
	if len(args) == 0 {
		return nil, errors.InvalidInput("expected a comma-separated list of values or --file")
	}
	// accept both "2,4,6" and "2, 4, 6" split by the shell
	fields := strings.FieldsFunc(strings.Join(args, " "), func(r rune) bool { return r == ',' || r == ' ' })
	return input.ParseValues(strings.Join(fields, ","))
}

func newMeanCmd() *cobra.Command {
	var file, column string
	cmd := &cobra.Command{
		Use:   "mean [v1,v2,...]",
		Short: "Arithmetic mean of a list of values",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := valuesFrom(args, file, column)
			if err != nil {
				return err
			}
			m, err := statistics.Mean(values)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g\n", m)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV or Excel file to read values from")
	cmd.Flags().StringVar(&column, "column", "", "Column header to read from --file")
	return cmd
}

func newStdDevCmd() *cobra.Command {
	var file, column string
	cmd := &cobra.Command{
		Use:   "stddev [v1,v2,...]",
		Short: "Population standard deviation of a list of values",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := valuesFrom(args, file, column)
			if err != nil {
				return err
			}
			sd, err := statistics.StandardDeviation(values)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g\n", sd)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV or Excel file to read values from")
	cmd.Flags().StringVar(&column, "column", "", "Column header to read from --file")
	return cmd
}

func newMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "Show typical strengths of common bridge materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), report.MaterialsMarkdown())
			return err
		},
	}
}

func newSweepCmd() *cobra.Command {
	var lengthMean, lengthStdDev, widthMean, widthStdDev string
	var strengthMeans string
	var trials int
	var seed int64
	var stressUnit string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Estimate failure probability across several material strengths",
		Long: `Run one independent estimate per strength mean, concurrently.
Without --strength-means every reference material is swept.

Example: bridgesim sweep --length-mean 10 --width-mean 2 --strength-means 20,40,300 --stress-unit mpa`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			length, err := input.ParseParameter("length", lengthMean, lengthStdDev)
			if err != nil {
				return err
			}
			width, err := input.ParseParameter("width", widthMean, widthStdDev)
			if err != nil {
				return err
			}
			base := reliability.Scenario{Length: length, Width: width}

			req := app.SweepRequest{Base: app.SimulationRequest{
				Trials:     e.cfg.Simulation.Trials,
				StressUnit: reliability.StressUnit(stressUnit),
			}}
			if trials > 0 {
				req.Base.Trials = trials
			}
			if cmd.Flags().Changed("seed") {
				req.Base.Seed = &seed
			}

			if strengthMeans == "" {
				if req.Base.StressUnit == "" {
					req.Base.StressUnit = reliability.StressUnitMegapascal
				}
				for _, m := range reliability.Materials() {
					sc := base
					sc.Strength = m.StrengthParameter()
					req.Scenarios = append(req.Scenarios, app.NamedScenario{Name: m.Name, Scenario: sc})
				}
			} else {
				means, err := input.ParseValues(strengthMeans)
				if err != nil {
					return err
				}
				for _, mean := range means {
					sc := base
					sc.Strength = reliability.NewDistributionParameter(mean, nil)
					req.Scenarios = append(req.Scenarios, app.NamedScenario{Name: fmt.Sprintf("strength %g", mean), Scenario: sc})
				}
			}

			start := time.Now()
			entries, err := e.service.Sweep(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "| Scenario | Strength | Failures | Probability | Safe |")
			fmt.Fprintln(out, "|---|---:|---:|---:|---|")
			for _, entry := range entries {
				r := entry.Report
				fmt.Fprintf(out, "| %s | %s | %d/%d | %.2f%% | %t |\n", entry.Name, r.Scenario.Strength,
					r.Result.FailureCount, r.Result.TrialCount, r.Result.FailureProbability*100, r.Safe)
			}
			e.logger.Info("sweep of %d scenarios finished in %s", len(entries), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&lengthMean, "length-mean", "", "Mean bridge length (m)")
	f.StringVar(&lengthStdDev, "length-stddev", "", "Standard deviation of length (default 5% of mean)")
	f.StringVar(&widthMean, "width-mean", "", "Mean bridge width (m)")
	f.StringVar(&widthStdDev, "width-stddev", "", "Standard deviation of width (default 5% of mean)")
	f.StringVar(&strengthMeans, "strength-means", "", "Comma-separated strength means; std dev is 5% of each")
	f.IntVar(&trials, "trials", 0, "Trials per scenario (default SIM_TRIALS)")
	f.Int64Var(&seed, "seed", 42, "Base random seed (default SIM_SEED)")
	f.StringVar(&stressUnit, "stress-unit", "", "Stress unit compared with strength: pa|mpa")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), e)
		},
	}
}

func serve(ctx context.Context, e *env) error {
	server := api.NewServer(e.service, e.cfg, e.logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		e.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
