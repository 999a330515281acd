package checker

// Field identifies an input widget the wizard reads from the view.
type Field string

const (
	FieldAge           Field = "user-age"
	FieldGender        Field = "user-gender"
	FieldConditions    Field = "user-conditions"
	FieldLocation      Field = "user-location"
	FieldSymptomSearch Field = "symptom-search"
	FieldDuration      Field = "duration"
	FieldSeverity      Field = "severity"
	FieldTrend         Field = "trend"
)

// Container identifies a region of the view the wizard renders into.
type Container string

const (
	ContainerProgress        Container = "progressBar"
	ContainerSymptomGrid     Container = "symptomGrid"
	ContainerSelection       Container = "selection-summary"
	ContainerFollowUp        Container = "follow-up-container"
	ContainerAnalysisSteps   Container = "analysis-steps"
	ContainerResults         Container = "results-list"
	ContainerRecommendations Container = "recommendations-content"
	ContainerHistory         Container = "history-list"
)

// View is the presentation collaborator. The wizard calls it with its own
// lock held, so implementations must not call back into the wizard.
type View interface {
	// Activate makes s the only active screen. It returns false when the
	// view has no such screen.
	Activate(s Screen) bool
	Render(c Container, content any)
	// Value returns the current value of a single-valued widget, "" if unset.
	Value(f Field) string
	// Values returns the checked values of a multi-valued widget.
	Values(f Field) []string
	Alert(msg string)
	Confirm(msg string) bool
}

// SymptomCard is one tile of the symptom grid.
type SymptomCard struct {
	Symptom
	Selected bool `json:"selected"`
	Visible  bool `json:"visible"`
}

type SelectionSummary struct {
	Visible     bool   `json:"visible"`
	Text        string `json:"text"`
	CanContinue bool   `json:"can_continue"`
}

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FollowUpForm describes the follow-up questions and their defaults.
type FollowUpForm struct {
	Durations       []Choice `json:"durations"`
	SeverityMin     int      `json:"severity_min"`
	SeverityMax     int      `json:"severity_max"`
	SeverityDefault int      `json:"severity_default"`
	Trends          []Choice `json:"trends"`
	TrendDefault    Trend    `json:"trend_default"`
}

var followUpForm = FollowUpForm{
	Durations: []Choice{
		{Value: string(DurationToday), Label: "Less than 24 hours"},
		{Value: string(DurationFewDays), Label: "2-3 Days"},
		{Value: string(DurationWeek), Label: "A week or more"},
	},
	SeverityMin:     1,
	SeverityMax:     10,
	SeverityDefault: DefaultSeverity,
	Trends: []Choice{
		{Value: string(TrendImproving), Label: "Improving"},
		{Value: string(TrendStable), Label: "Stable"},
		{Value: string(TrendWorsening), Label: "Worsening"},
	},
	TrendDefault: TrendStable,
}

// ValidDuration reports whether v is one of the duration choices.
func ValidDuration(v string) bool { return hasChoice(followUpForm.Durations, v) }

// ValidTrend reports whether v is one of the trend choices.
func ValidTrend(v string) bool { return hasChoice(followUpForm.Trends, v) }

func hasChoice(choices []Choice, v string) bool {
	for _, c := range choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

// ResultCard is a rendered diagnosis line.
type ResultCard struct {
	Result
	Explanation string `json:"explanation"`
}

// HistoryList renders the history screen. Message is set when Entries is empty.
type HistoryList struct {
	Entries []HistoryEntry `json:"entries"`
	Message string         `json:"message,omitempty"`
}
