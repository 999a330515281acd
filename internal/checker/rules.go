package checker

import "slices"

// DefaultSeverity is used when the severity widget is absent or unreadable.
const DefaultSeverity = 5

// Rule inspects the selected symptoms and severity and contributes results
// when it matches.
type Rule interface {
	ID() string
	Match(selected []string, severity int) bool
	Results(severity int) []Result
}

type comboRule struct {
	id       string
	requires []string
	results  func(severity int) []Result
}

func (r comboRule) ID() string { return r.id }

func (r comboRule) Match(selected []string, _ int) bool {
	for _, want := range r.requires {
		if !slices.Contains(selected, want) {
			return false
		}
	}
	return true
}

func (r comboRule) Results(severity int) []Result { return r.results(severity) }

// Rules is the fixed rule table, evaluated in order. Every matching rule fires.
var Rules = []Rule{
	comboRule{
		id:       "fever-headache",
		requires: []string{"fever", "headache"},
		results: func(severity int) []Result {
			flu := 65
			if severity > 7 {
				flu = 85
			}
			return []Result{
				{Name: "Influenza (Flu)", Confidence: flu},
				{Name: "Malaria Risk", Confidence: 40},
			}
		},
	},
	comboRule{
		id:       "cough-fatigue",
		requires: []string{"cough", "fatigue"},
		results: func(int) []Result {
			return []Result{
				{Name: "Respiratory Infection", Confidence: 75},
				{Name: "Common Cold", Confidence: 50},
			}
		},
	},
	comboRule{
		id:       "chest-pain",
		requires: []string{"chest-pain"},
		results: func(int) []Result {
			return []Result{{Name: "Cardiac Stress", Confidence: 30, Urgent: true}}
		},
	},
}

// Fallback is appended only when no rule produced a result.
var Fallback = Result{Name: "General Viral Infection", Confidence: 45}

// Diagnose runs the rule table against a selection.
func Diagnose(selected []string, severity int) []Result {
	var results []Result
	for _, rule := range Rules {
		if rule.Match(selected, severity) {
			results = append(results, rule.Results(severity)...)
		}
	}
	if len(results) == 0 {
		results = append(results, Fallback)
	}
	return results
}

// HasUrgent reports whether any result carries the urgent flag.
func HasUrgent(results []Result) bool {
	return slices.ContainsFunc(results, func(r Result) bool { return r.Urgent })
}
