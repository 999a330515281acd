package checker

// Screen is one named step of the wizard.
type Screen string

const (
	ScreenLanding         Screen = "landing"
	ScreenUserInfo        Screen = "user-info"
	ScreenSymptoms        Screen = "symptoms"
	ScreenFollowUp        Screen = "follow-up"
	ScreenAnalysis        Screen = "analysis"
	ScreenResults         Screen = "results"
	ScreenRecommendations Screen = "recommendations"
	ScreenHistory         Screen = "history"
)

// Screens is the fixed wizard order. Progress is derived from a screen's index.
var Screens = []Screen{
	ScreenLanding,
	ScreenUserInfo,
	ScreenSymptoms,
	ScreenFollowUp,
	ScreenAnalysis,
	ScreenResults,
	ScreenRecommendations,
	ScreenHistory,
}

// Index returns the position of s in Screens, or -1.
func (s Screen) Index() int {
	for i, v := range Screens {
		if v == s {
			return i
		}
	}
	return -1
}

// Progress is index/(len-1) in [0,1]; unknown screens report 0.
func (s Screen) Progress() float64 {
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	return float64(idx) / float64(len(Screens)-1)
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

type Duration string

const (
	DurationToday   Duration = "today"
	DurationFewDays Duration = "few-days"
	DurationWeek    Duration = "week"
)

type UserInfo struct {
	Age        int      `json:"age"`
	Gender     string   `json:"gender"`
	Conditions []string `json:"conditions"`
	Location   string   `json:"location"`
}

// FollowUp records the follow-up widget values a diagnosis was computed from.
// Rules never read it; they read the live widgets.
type FollowUp struct {
	Duration Duration `json:"duration"`
	Severity int      `json:"severity"`
	Trend    Trend    `json:"trend"`
}

// Result is one diagnosis line. Confidence is a fixed percentage.
type Result struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
	Urgent     bool   `json:"urgent,omitempty"`
}

// HistoryEntry is the persisted summary of one completed diagnosis.
type HistoryEntry struct {
	Date     string   `json:"date"`
	Symptoms []string `json:"symptoms"`
	Result   string   `json:"result"`
}

// State is the mutable session owned by a Wizard.
type State struct {
	Screen        Screen    `json:"screen"`
	UserInfo      *UserInfo `json:"user_info,omitempty"`
	Selected      []string  `json:"selected"`
	FollowUp      *FollowUp `json:"follow_up,omitempty"`
	Results       []Result  `json:"results"`
	AnalysisSteps []string  `json:"analysis_steps"`
}

// clone returns a deep copy safe to hand out of the wizard lock.
func (s State) clone() State {
	out := s
	if s.UserInfo != nil {
		ui := *s.UserInfo
		ui.Conditions = append([]string(nil), s.UserInfo.Conditions...)
		out.UserInfo = &ui
	}
	if s.FollowUp != nil {
		fu := *s.FollowUp
		out.FollowUp = &fu
	}
	out.Selected = append([]string{}, s.Selected...)
	out.Results = append([]Result{}, s.Results...)
	out.AnalysisSteps = append([]string{}, s.AnalysisSteps...)
	return out
}
