package checker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptom-checker/internal/kv"
)

var fixedNow = time.Date(2026, 10, 18, 14, 5, 9, 0, time.UTC)

type wizardFixture struct {
	wizard *Wizard
	page   *Page
	store  *kv.Memory
}

func newWizardFixture(t *testing.T, screens ...Screen) wizardFixture {
	t.Helper()
	store := kv.NewMemory()
	page := NewPage(screens...)
	w := NewWizard(page, LoadHistory(context.Background(), NewHistoryRepository(store, "")),
		WithClock(func() time.Time { return fixedNow }),
		WithAnalysisInterval(0),
	)
	t.Cleanup(w.Close)
	return wizardFixture{wizard: w, page: page, store: store}
}

func (f wizardFixture) fillProfile(age, gender string) {
	f.page.SetValue(FieldAge, age)
	f.page.SetValue(FieldGender, gender)
}

func TestNewWizard_StartsOnLanding(t *testing.T) {
	f := newWizardFixture(t)
	st := f.wizard.State()
	assert.Equal(t, ScreenLanding, st.Screen)
	assert.Nil(t, st.UserInfo)
	assert.Empty(t, st.Selected)
	assert.Empty(t, st.Results)
	assert.Equal(t, 0.0, f.page.Snapshot().Content[ContainerProgress])
}

func TestGoTo_ProgressAndActiveScreen(t *testing.T) {
	f := newWizardFixture(t)
	for i, s := range Screens {
		f.wizard.GoTo(s)
		assert.Equal(t, s, f.wizard.State().Screen)
		snap := f.page.Snapshot()
		assert.Equal(t, s, snap.Active)
		assert.InDelta(t, float64(i)/7, snap.Content[ContainerProgress], 1e-9)
	}
}

func TestGoTo_AnyScreenToAnyOther(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.GoTo(ScreenHistory)
	assert.Equal(t, ScreenHistory, f.wizard.State().Screen)
	f.wizard.GoTo(ScreenLanding)
	assert.Equal(t, ScreenLanding, f.wizard.State().Screen)
}

func TestGoTo_UnknownScreenIsNoop(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.GoTo(ScreenUserInfo)
	f.wizard.GoTo(Screen("settings"))
	assert.Equal(t, ScreenUserInfo, f.wizard.State().Screen)
	assert.Equal(t, ScreenUserInfo, f.page.Snapshot().Active)
}

func TestGoTo_ScreenMissingFromViewStillRunsSetup(t *testing.T) {
	f := newWizardFixture(t, ScreenLanding, ScreenUserInfo)
	f.wizard.GoTo(ScreenSymptoms)

	assert.Equal(t, ScreenLanding, f.wizard.State().Screen)
	assert.Contains(t, f.page.Snapshot().Content, ContainerSymptomGrid)
}

func TestGoTo_ScreenSetup(t *testing.T) {
	f := newWizardFixture(t)

	f.wizard.GoTo(ScreenSymptoms)
	cards, ok := f.page.Snapshot().Content[ContainerSymptomGrid].([]SymptomCard)
	require.True(t, ok)
	assert.Len(t, cards, 9)

	f.wizard.GoTo(ScreenFollowUp)
	form, ok := f.page.Snapshot().Content[ContainerFollowUp].(FollowUpForm)
	require.True(t, ok)
	assert.Equal(t, 5, form.SeverityDefault)
	assert.Equal(t, TrendStable, form.TrendDefault)
	assert.Len(t, form.Durations, 3)
	assert.Equal(t, "5", f.page.Value(FieldSeverity))
	assert.Equal(t, "stable", f.page.Value(FieldTrend))
	assert.Equal(t, "today", f.page.Value(FieldDuration))

	f.wizard.GoTo(ScreenHistory)
	list, ok := f.page.Snapshot().Content[ContainerHistory].(HistoryList)
	require.True(t, ok)
	assert.Empty(t, list.Entries)
	assert.Equal(t, "No previous consultations found.", list.Message)
}

func TestGoTo_RecommendationsUsesLiveSeverity(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.GoTo(ScreenFollowUp)
	f.page.SetValue(FieldSeverity, "9")
	f.wizard.GoTo(ScreenRecommendations)

	recs, ok := f.page.Snapshot().Content[ContainerRecommendations].(Recommendations)
	require.True(t, ok)
	assert.Equal(t, BucketHigh, recs.Bucket)
	assert.Equal(t, "HIGH", recs.Level)
	assert.Equal(t, BucketHigh, f.wizard.Recommendations().Bucket)
}

func TestRecommendations_DefaultSeverityWithoutWidget(t *testing.T) {
	f := newWizardFixture(t)
	assert.Equal(t, BucketMed, f.wizard.Recommendations().Bucket)
}

func TestSubmitUserInfo(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.GoTo(ScreenUserInfo)
	f.fillProfile("45", "female")
	f.page.SetChecked(FieldConditions, []string{"asthma", "diabetes"})
	f.page.SetValue(FieldLocation, "Lisbon")

	require.NoError(t, f.wizard.SubmitUserInfo())

	st := f.wizard.State()
	assert.Equal(t, ScreenSymptoms, st.Screen)
	require.NotNil(t, st.UserInfo)
	assert.Equal(t, UserInfo{Age: 45, Gender: "female", Conditions: []string{"asthma", "diabetes"}, Location: "Lisbon"}, *st.UserInfo)
	assert.Empty(t, f.page.Snapshot().Alert)
}

func TestSubmitUserInfo_MissingFieldsBlock(t *testing.T) {
	cases := []struct {
		name, age, gender string
	}{
		{"missing age", "", "male"},
		{"missing gender", "30", ""},
		{"both missing", "", ""},
		{"age not a number", "thirty", "male"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newWizardFixture(t)
			f.wizard.GoTo(ScreenUserInfo)
			f.fillProfile(tc.age, tc.gender)
			f.page.SetValue(FieldLocation, "Oslo")

			err := f.wizard.SubmitUserInfo()
			require.ErrorIs(t, err, ErrMissingProfile)

			st := f.wizard.State()
			assert.Equal(t, ScreenUserInfo, st.Screen)
			assert.Nil(t, st.UserInfo, "no partial state is committed")
			assert.Equal(t, "Please provide at least your age and gender for the expert system.", f.page.Snapshot().Alert)
		})
	}
}

func TestToggleSymptom_IsItsOwnInverse(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.ToggleSymptom("fever")
	f.wizard.ToggleSymptom("cough")
	before := f.wizard.State().Selected

	for _, id := range []string{"fever", "nausea", "cough"} {
		f.wizard.ToggleSymptom(id)
		f.wizard.ToggleSymptom(id)
		assert.ElementsMatch(t, before, f.wizard.State().Selected, "toggling %s twice", id)
	}
}

func TestToggleSymptom_RendersSummaryAndGrid(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.ToggleSymptom("fever")
	f.wizard.ToggleSymptom("chest-pain")

	snap := f.page.Snapshot()
	summary, ok := snap.Content[ContainerSelection].(SelectionSummary)
	require.True(t, ok)
	assert.Equal(t, SelectionSummary{Visible: true, Text: "Fever, Chest Pain", CanContinue: true}, summary)

	cards := snap.Content[ContainerSymptomGrid].([]SymptomCard)
	selected := map[string]bool{}
	for _, c := range cards {
		selected[c.ID] = c.Selected
	}
	assert.True(t, selected["fever"])
	assert.True(t, selected["chest-pain"])
	assert.False(t, selected["cough"])

	f.wizard.ToggleSymptom("fever")
	f.wizard.ToggleSymptom("chest-pain")
	summary = f.page.Snapshot().Content[ContainerSelection].(SelectionSummary)
	assert.False(t, summary.Visible)
	assert.False(t, summary.CanContinue)
}

func TestToggleSymptom_IgnoresUnknownIDs(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.ToggleSymptom("sneezing")
	assert.Empty(t, f.wizard.State().Selected)
}

func TestFilterSymptoms_ViewOnly(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.GoTo(ScreenSymptoms)
	f.wizard.ToggleSymptom("fever")

	f.page.SetValue(FieldSymptomSearch, "ACHE")
	f.wizard.FilterSymptoms()

	var visible []string
	for _, c := range f.page.Snapshot().Content[ContainerSymptomGrid].([]SymptomCard) {
		if c.Visible {
			visible = append(visible, c.ID)
		}
	}
	assert.Equal(t, []string{"headache", "body-aches"}, visible)
	assert.Equal(t, []string{"fever"}, f.wizard.State().Selected)
}

func TestPerformDiagnosis_ReadsLiveSeverity(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.ToggleSymptom("fever")
	f.wizard.ToggleSymptom("headache")
	f.wizard.GoTo(ScreenFollowUp)
	f.page.SetValue(FieldSeverity, "9")
	f.page.SetValue(FieldTrend, "worsening")

	results := f.wizard.PerformDiagnosis(context.Background())
	assert.Equal(t, []Result{{Name: "Influenza (Flu)", Confidence: 85}, {Name: "Malaria Risk", Confidence: 40}}, results)

	st := f.wizard.State()
	assert.Equal(t, ScreenResults, st.Screen)
	assert.Equal(t, &FollowUp{Duration: DurationToday, Severity: 9, Trend: TrendWorsening}, st.FollowUp)

	cards := f.page.Snapshot().Content[ContainerResults].([]ResultCard)
	require.Len(t, cards, 2)
	assert.Equal(t, "Based on your reported fever and headache, the system detects patterns typical of Influenza (Flu).", cards[0].Explanation)
}

func TestPerformDiagnosis_DefaultSeverityWhenWidgetAbsent(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.ToggleSymptom("fever")
	f.wizard.ToggleSymptom("headache")

	results := f.wizard.PerformDiagnosis(context.Background())
	assert.Equal(t, 65, results[0].Confidence)
	assert.Equal(t, DefaultSeverity, f.wizard.State().FollowUp.Severity)
}

func TestPerformDiagnosis_SavesHistory(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.ToggleSymptom("chest-pain")
	f.wizard.ToggleSymptom("cough")
	f.wizard.PerformDiagnosis(context.Background())

	hist := f.wizard.History()
	require.Len(t, hist, 1)
	assert.Equal(t, HistoryEntry{Date: "10/18/2026, 2:05:09 PM", Symptoms: []string{"Chest Pain", "Cough"}, Result: "Cardiac Stress"}, hist[0])

	reloaded := LoadHistory(context.Background(), NewHistoryRepository(f.store, ""))
	assert.Equal(t, hist, reloaded.Entries())
}

func TestPerformDiagnosis_HistoryCap(t *testing.T) {
	f := newWizardFixture(t)
	for i := 0; i < 12; i++ {
		f.wizard.PerformDiagnosis(context.Background())
	}
	assert.Len(t, f.wizard.History(), HistoryLimit)
	assert.Equal(t, "General Viral Infection", f.wizard.History()[0].Result)
}

func TestPerformDiagnosis_Hook(t *testing.T) {
	var got []State
	store := kv.NewMemory()
	page := NewPage()
	w := NewWizard(page, LoadHistory(context.Background(), NewHistoryRepository(store, "")),
		WithDiagnosisHook(func(s State) { got = append(got, s) }))

	w.ToggleSymptom("chest-pain")
	w.PerformDiagnosis(context.Background())

	require.Len(t, got, 1)
	assert.True(t, HasUrgent(got[0].Results))
	assert.Equal(t, ScreenResults, got[0].Screen)
}

func TestClearHistory(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.PerformDiagnosis(context.Background())
	require.Len(t, f.wizard.History(), 1)

	// Declined: nothing changes.
	f.page.AnswerConfirm(false)
	assert.False(t, f.wizard.ClearHistory(context.Background()))
	assert.Len(t, f.wizard.History(), 1)
	assert.Equal(t, "Clear all consultation history?", f.page.Snapshot().Prompt)

	// No answer at all also declines.
	assert.False(t, f.wizard.ClearHistory(context.Background()))

	f.page.AnswerConfirm(true)
	assert.True(t, f.wizard.ClearHistory(context.Background()))
	assert.Empty(t, f.wizard.History())

	_, ok, err := f.store.Get(context.Background(), HistoryKey)
	require.NoError(t, err)
	assert.False(t, ok, "persisted key is removed")

	list := f.page.Snapshot().Content[ContainerHistory].(HistoryList)
	assert.Equal(t, "No previous consultations found.", list.Message)

	reloaded := LoadHistory(context.Background(), NewHistoryRepository(f.store, ""))
	assert.Empty(t, reloaded.Entries())
}

func TestStateIsACopy(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.ToggleSymptom("fever")
	st := f.wizard.State()
	st.Selected[0] = "cough"
	assert.Equal(t, []string{"fever"}, f.wizard.State().Selected)
}
