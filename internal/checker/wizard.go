package checker

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrMissingProfile is returned when age or gender is missing on the
// user-info step. State is left untouched.
var ErrMissingProfile = errors.New("age and gender are required")

const (
	missingProfileMessage = "Please provide at least your age and gender for the expert system."
	clearHistoryPrompt    = "Clear all consultation history?"
	emptyHistoryMessage   = "No previous consultations found."
)

// DefaultAnalysisInterval is the delay between analysis status lines.
const DefaultAnalysisInterval = time.Second

type Option func(*Wizard)

// WithClock overrides the time source used for history dates.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// WithAnalysisInterval sets the delay between analysis lines. Zero or less
// reveals every line without waiting.
func WithAnalysisInterval(d time.Duration) Option {
	return func(w *Wizard) { w.interval = d }
}

// WithDiagnosisHook registers fn to receive a copy of the state after each
// diagnosis. fn runs with the wizard lock held and must not call back into it.
func WithDiagnosisHook(fn func(State)) Option {
	return func(w *Wizard) { w.onDiagnosis = fn }
}

// Wizard is the state machine for one symptom-checking session.
type Wizard struct {
	mu          sync.Mutex
	view        View
	history     *History
	state       State
	now         func() time.Time
	interval    time.Duration
	analysis    *Analysis
	onDiagnosis func(State)
}

func NewWizard(view View, history *History, opts ...Option) *Wizard {
	w := &Wizard{
		view:     view,
		history:  history,
		state:    State{Screen: ScreenLanding},
		now:      time.Now,
		interval: DefaultAnalysisInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.view.Render(ContainerProgress, w.state.Screen.Progress())
	return w
}

// State returns a copy of the session state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

// History returns the in-memory history, newest first.
func (w *Wizard) History() []HistoryEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Entries()
}

// GoTo moves to screen s. Any screen may follow any other; a screen the view
// does not have leaves the current screen unchanged.
func (w *Wizard) GoTo(s Screen) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.goTo(s)
}

func (w *Wizard) goTo(s Screen) {
	if s == ScreenRecommendations {
		w.renderRecommendations()
	}

	if w.view.Activate(s) {
		if w.state.Screen == ScreenAnalysis && s != ScreenAnalysis {
			w.cancelAnalysis()
		}
		w.state.Screen = s
		w.view.Render(ContainerProgress, s.Progress())
	} else {
		log.Debug().Str("screen", string(s)).Msg("Screen not found, transition skipped")
	}

	switch s {
	case ScreenSymptoms:
		w.renderSymptoms()
	case ScreenFollowUp:
		w.renderFollowUps()
	case ScreenHistory:
		w.renderHistory()
	}
}

// SubmitUserInfo captures the profile widgets and moves to the symptom grid.
func (w *Wizard) SubmitUserInfo() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ageRaw := strings.TrimSpace(w.view.Value(FieldAge))
	gender := strings.TrimSpace(w.view.Value(FieldGender))
	age, err := strconv.Atoi(ageRaw)
	if ageRaw == "" || gender == "" || err != nil {
		w.view.Alert(missingProfileMessage)
		return ErrMissingProfile
	}

	w.state.UserInfo = &UserInfo{
		Age:        age,
		Gender:     gender,
		Conditions: append([]string{}, w.view.Values(FieldConditions)...),
		Location:   w.view.Value(FieldLocation),
	}
	w.goTo(ScreenSymptoms)
	return nil
}

// ToggleSymptom adds id to the selection if absent, removes it if present.
// Ids outside the catalog are ignored.
func (w *Wizard) ToggleSymptom(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := LookupSymptom(id); !ok {
		log.Debug().Str("symptom", id).Msg("Ignoring unknown symptom")
		return
	}

	if i := slices.Index(w.state.Selected, id); i >= 0 {
		w.state.Selected = slices.Delete(w.state.Selected, i, i+1)
	} else {
		w.state.Selected = append(w.state.Selected, id)
	}

	names := SymptomNames(w.state.Selected)
	w.view.Render(ContainerSelection, SelectionSummary{
		Visible:     len(names) > 0,
		Text:        strings.Join(names, ", "),
		CanContinue: len(names) > 0,
	})
	w.renderSymptoms()
}

// FilterSymptoms hides grid cards whose name does not contain the search
// widget's text. The selection is not affected.
func (w *Wizard) FilterSymptoms() {
	w.mu.Lock()
	defer w.mu.Unlock()

	query := w.view.Value(FieldSymptomSearch)
	cards := w.symptomCards()
	for i := range cards {
		cards[i].Visible = cards[i].MatchesQuery(query)
	}
	w.view.Render(ContainerSymptomGrid, cards)
}

// PerformDiagnosis runs the rule table immediately, skipping the analysis
// reveal.
func (w *Wizard) PerformDiagnosis(ctx context.Context) []Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.performDiagnosis(ctx)
	return append([]Result{}, w.state.Results...)
}

func (w *Wizard) performDiagnosis(ctx context.Context) {
	severity := w.readSeverity()
	w.state.FollowUp = &FollowUp{
		Duration: w.readDuration(),
		Severity: severity,
		Trend:    w.readTrend(),
	}
	w.state.Results = Diagnose(w.state.Selected, severity)

	w.saveToHistory(ctx)
	w.renderResults()
	w.goTo(ScreenResults)

	if w.onDiagnosis != nil {
		w.onDiagnosis(w.state.clone())
	}
}

func (w *Wizard) saveToHistory(ctx context.Context) {
	result := "Unknown"
	if len(w.state.Results) > 0 {
		result = w.state.Results[0].Name
	}
	w.history.Add(ctx, HistoryEntry{
		Date:     w.now().Format(HistoryDateLayout),
		Symptoms: SymptomNames(w.state.Selected),
		Result:   result,
	})
}

// ClearHistory asks the view for confirmation, then empties the history and
// deletes the persisted key. It reports whether the history was cleared.
func (w *Wizard) ClearHistory(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.view.Confirm(clearHistoryPrompt) {
		return false
	}
	w.history.Clear(ctx)
	w.renderHistory()
	return true
}

// Recommendations returns the advice for the live severity value.
func (w *Wizard) Recommendations() Recommendations {
	w.mu.Lock()
	defer w.mu.Unlock()
	return RecommendationsFor(w.readSeverity())
}

// Close cancels any pending analysis run.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelAnalysis()
}

func (w *Wizard) readSeverity() int {
	v, err := strconv.Atoi(strings.TrimSpace(w.view.Value(FieldSeverity)))
	if err != nil {
		return DefaultSeverity
	}
	return v
}

func (w *Wizard) readDuration() Duration {
	if v := w.view.Value(FieldDuration); v != "" {
		return Duration(v)
	}
	return DurationToday
}

func (w *Wizard) readTrend() Trend {
	if v := w.view.Value(FieldTrend); v != "" {
		return Trend(v)
	}
	return TrendStable
}

func (w *Wizard) symptomCards() []SymptomCard {
	cards := make([]SymptomCard, 0, len(catalog))
	for _, s := range catalog {
		cards = append(cards, SymptomCard{
			Symptom:  s,
			Selected: slices.Contains(w.state.Selected, s.ID),
			Visible:  true,
		})
	}
	return cards
}

func (w *Wizard) renderSymptoms() {
	w.view.Render(ContainerSymptomGrid, w.symptomCards())
}

func (w *Wizard) renderFollowUps() {
	w.view.Render(ContainerFollowUp, followUpForm)
}

func (w *Wizard) renderResults() {
	reported := strings.Join(w.state.Selected, " and ")
	cards := make([]ResultCard, 0, len(w.state.Results))
	for _, r := range w.state.Results {
		cards = append(cards, ResultCard{
			Result:      r,
			Explanation: "Based on your reported " + reported + ", the system detects patterns typical of " + r.Name + ".",
		})
	}
	w.view.Render(ContainerResults, cards)
}

func (w *Wizard) renderRecommendations() {
	w.view.Render(ContainerRecommendations, RecommendationsFor(w.readSeverity()))
}

func (w *Wizard) renderHistory() {
	list := HistoryList{Entries: w.history.Entries()}
	if len(list.Entries) == 0 {
		list.Message = emptyHistoryMessage
	}
	w.view.Render(ContainerHistory, list)
}
