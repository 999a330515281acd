package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"symptom-checker/internal/checker"
	"symptom-checker/internal/server"
)

var (
	errAnalysisStopped = errors.New("analysis stopped before a diagnosis")
	errBadFollowUp     = errors.New("invalid follow-up answer")
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the symptoms the checker knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range checker.Catalog() {
				fmt.Fprintf(out, "%-18s %s\n", s.ID, s.Name)
			}
			return nil
		},
	}
}

type diagnoseOptions struct {
	age        string
	gender     string
	conditions []string
	location   string
	symptoms   []string
	duration   string
	severity   int
	trend      string
	interval   time.Duration
}

func newDiagnoseCmd(a *app) *cobra.Command {
	var o diagnoseOptions
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run one consultation and record it in history",
		Long: `Run a full consultation: profile, symptoms, follow-up answers, the
staged analysis and the rule-based assessment. The result is saved to the
consultation history.`,
		Example: `  symptomcheck diagnose --age 34 --gender female --symptom fever --symptom headache --severity 8`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiagnose(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.age, "age", "", "Age in years (required)")
	f.StringVar(&o.gender, "gender", "", "Gender (required)")
	f.StringSliceVar(&o.conditions, "condition", nil, "Pre-existing condition tag, repeatable")
	f.StringVar(&o.location, "location", "", "Location")
	f.StringSliceVar(&o.symptoms, "symptom", nil, "Symptom id from 'catalog', repeatable")
	f.StringVar(&o.duration, "duration", string(checker.DurationToday), "today, few-days or week")
	f.IntVar(&o.severity, "severity", checker.DefaultSeverity, "Severity from 1 to 10")
	f.StringVar(&o.trend, "trend", string(checker.TrendStable), "improving, stable or worsening")
	f.DurationVar(&o.interval, "interval", 0, "Delay between analysis steps (default from config)")
	return cmd
}

func (a *app) runDiagnose(cmd *cobra.Command, o diagnoseOptions) error {
	if !checker.ValidDuration(o.duration) {
		return fmt.Errorf("%w: duration %q", errBadFollowUp, o.duration)
	}
	if !checker.ValidTrend(o.trend) {
		return fmt.Errorf("%w: trend %q", errBadFollowUp, o.trend)
	}

	ctx := cmd.Context()
	store, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	interval := a.cfg.AnalysisInterval
	if cmd.Flags().Changed("interval") {
		interval = o.interval
	}

	view := newTerminalView(cmd.OutOrStdout(), cmd.InOrStdin())
	history := checker.LoadHistory(ctx, checker.NewHistoryRepository(store, a.historyKey()))
	w := checker.NewWizard(view, history, checker.WithAnalysisInterval(interval))
	defer w.Close()

	w.GoTo(checker.ScreenUserInfo)
	view.SetValue(checker.FieldAge, o.age)
	view.SetValue(checker.FieldGender, o.gender)
	view.multi[checker.FieldConditions] = o.conditions
	view.SetValue(checker.FieldLocation, o.location)
	if err := w.SubmitUserInfo(); err != nil {
		return err
	}

	for _, id := range o.symptoms {
		if _, ok := checker.LookupSymptom(id); !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "unknown symptom %q ignored\n", id)
			continue
		}
		w.ToggleSymptom(id)
	}

	w.GoTo(checker.ScreenFollowUp)
	view.SetValue(checker.FieldDuration, o.duration)
	view.SetValue(checker.FieldSeverity, strconv.Itoa(o.severity))
	view.SetValue(checker.FieldTrend, o.trend)

	fmt.Fprintln(cmd.OutOrStdout(), "Analyzing...")
	run := w.StartAnalysis(ctx)
	if err := run.Wait(ctx); err != nil {
		return err
	}
	if w.State().Screen != checker.ScreenResults {
		return errAnalysisStopped
	}

	w.GoTo(checker.ScreenRecommendations)
	return nil
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear past consultations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List past consultations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeFn, _, err := a.historyWizard(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			w.GoTo(checker.ScreenHistory)
			return nil
		},
	})

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all past consultations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeFn, view, err := a.historyWizard(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			if yes {
				view.answer = &yes
			}
			if !w.ClearHistory(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), "History kept.")
			}
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.AddCommand(clearCmd)
	return cmd
}

func (a *app) historyWizard(cmd *cobra.Command) (*checker.Wizard, func(), *terminalView, error) {
	store, err := a.openStore(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	view := newTerminalView(cmd.OutOrStdout(), cmd.InOrStdin())
	history := checker.LoadHistory(cmd.Context(), checker.NewHistoryRepository(store, a.historyKey()))
	w := checker.NewWizard(view, history)
	closeFn := func() {
		w.Close()
		store.Close()
	}
	return w, closeFn, view, nil
}

func newServeCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return server.Run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from config)")
	return cmd
}
