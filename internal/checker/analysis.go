package checker

import (
	"context"
	"fmt"
	"time"
)

// Analysis is a running status reveal that ends in a diagnosis.
type Analysis struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the run. A cancelled run never diagnoses.
func (a *Analysis) Cancel() { a.cancel() }

// Done is closed when the run has finished or was cancelled.
func (a *Analysis) Done() <-chan struct{} { return a.done }

// Wait blocks until the run ends or ctx is done.
func (a *Analysis) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func analysisSteps(info *UserInfo, selected int) []string {
	profile := "General Profile"
	if info != nil && info.Age > 40 {
		profile = "Adult Profile"
	}
	return []string{
		"Initializing rule-based engine...",
		"Validating user profile: " + profile,
		"Matching symptoms against medical knowledge base...",
		fmt.Sprintf("Analyzing %d primary symptoms...", selected),
		"Calculating confidence scores based on severity...",
	}
}

// StartAnalysis moves to the analysis screen and reveals one status line per
// interval, then diagnoses on the following tick. The run stops early when
// ctx is done, when the returned Analysis is cancelled, or when the wizard
// navigates away from the analysis screen.
func (w *Wizard) StartAnalysis(ctx context.Context) *Analysis {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cancelAnalysis()
	w.goTo(ScreenAnalysis)

	w.state.AnalysisSteps = nil
	w.view.Render(ContainerAnalysisSteps, []string{})

	runCtx, cancel := context.WithCancel(ctx)
	a := &Analysis{cancel: cancel, done: make(chan struct{})}
	w.analysis = a

	go w.runAnalysis(runCtx, a, analysisSteps(w.state.UserInfo, len(w.state.Selected)))
	return a
}

// CancelAnalysis stops a pending analysis run, if any.
func (w *Wizard) CancelAnalysis() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelAnalysis()
}

func (w *Wizard) cancelAnalysis() {
	if w.analysis != nil {
		w.analysis.cancel()
		w.analysis = nil
	}
}

func (w *Wizard) runAnalysis(ctx context.Context, a *Analysis, steps []string) {
	defer close(a.done)
	defer a.cancel()

	var tick <-chan time.Time
	if w.interval > 0 {
		t := time.NewTicker(w.interval)
		defer t.Stop()
		tick = t.C
	}

	for next := 0; ; next++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}

		w.mu.Lock()
		// Cancellation may have happened while waiting for the lock.
		if ctx.Err() != nil || w.analysis != a {
			w.mu.Unlock()
			return
		}
		if next < len(steps) {
			w.state.AnalysisSteps = append(w.state.AnalysisSteps, steps[next])
			w.view.Render(ContainerAnalysisSteps, append([]string{}, w.state.AnalysisSteps...))
			w.mu.Unlock()
			continue
		}
		w.analysis = nil
		w.performDiagnosis(ctx)
		w.mu.Unlock()
		return
	}
}
