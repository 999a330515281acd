package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"symptom-checker/internal/checker"
)

// terminalView renders wizard output as plain text. Widget values are
// preset from flags; Confirm asks on in unless an answer was preset.
type terminalView struct {
	out     io.Writer
	in      *bufio.Reader
	values  map[checker.Field]string
	multi   map[checker.Field][]string
	answer  *bool
	printed int
}

func newTerminalView(out io.Writer, in io.Reader) *terminalView {
	return &terminalView{
		out:    out,
		in:     bufio.NewReader(in),
		values: make(map[checker.Field]string),
		multi:  make(map[checker.Field][]string),
	}
}

// Activate accepts every screen; the terminal has no layout to switch.
func (v *terminalView) Activate(checker.Screen) bool { return true }

func (v *terminalView) Render(c checker.Container, content any) {
	switch c {
	case checker.ContainerFollowUp:
		if form, ok := content.(checker.FollowUpForm); ok {
			v.values[checker.FieldDuration] = form.Durations[0].Value
			v.values[checker.FieldSeverity] = strconv.Itoa(form.SeverityDefault)
			v.values[checker.FieldTrend] = string(form.TrendDefault)
		}
	case checker.ContainerAnalysisSteps:
		steps, _ := content.([]string)
		if len(steps) < v.printed {
			v.printed = 0
		}
		for _, s := range steps[v.printed:] {
			fmt.Fprintf(v.out, "  > %s\n", s)
		}
		v.printed = len(steps)
	case checker.ContainerResults:
		cards, _ := content.([]checker.ResultCard)
		fmt.Fprintln(v.out, "\nAssessment")
		for _, card := range cards {
			urgent := ""
			if card.Urgent {
				urgent = "  [URGENT]"
			}
			fmt.Fprintf(v.out, "  %-26s Expert Confidence: %d%%%s\n", card.Name, card.Confidence, urgent)
			fmt.Fprintf(v.out, "    %s\n", card.Explanation)
		}
	case checker.ContainerRecommendations:
		recs, _ := content.(checker.Recommendations)
		fmt.Fprintf(v.out, "\nRecommendations (Severity Level: %s)\n", recs.Level)
		for _, a := range recs.Advice {
			fmt.Fprintf(v.out, "  - %s\n", a)
		}
	case checker.ContainerHistory:
		list, _ := content.(checker.HistoryList)
		printHistory(v.out, list)
	}
}

func (v *terminalView) Value(f checker.Field) string { return v.values[f] }

func (v *terminalView) Values(f checker.Field) []string {
	return append([]string(nil), v.multi[f]...)
}

// SetValue mirrors the slider: severity is clamped to 1-10 and non-numbers
// are dropped.
func (v *terminalView) SetValue(f checker.Field, val string) {
	if f == checker.FieldSeverity {
		n, err := strconv.Atoi(val)
		if err != nil {
			return
		}
		val = strconv.Itoa(min(max(n, 1), 10))
	}
	v.values[f] = val
}

func (v *terminalView) Alert(msg string) {
	fmt.Fprintf(v.out, "! %s\n", msg)
}

func (v *terminalView) Confirm(msg string) bool {
	if v.answer != nil {
		return *v.answer
	}
	fmt.Fprintf(v.out, "%s [y/N] ", msg)
	line, _ := v.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func printHistory(out io.Writer, list checker.HistoryList) {
	if len(list.Entries) == 0 {
		fmt.Fprintln(out, list.Message)
		return
	}
	for _, e := range list.Entries {
		fmt.Fprintf(out, "%s  %-26s %s\n", e.Date, e.Result, strings.Join(e.Symptoms, ", "))
	}
}
