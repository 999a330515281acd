package checker

import (
	"strconv"
	"sync"
)

// Page is an in-memory View: the server keeps one per session and clients
// read it back as a PageSnapshot.
type Page struct {
	mu      sync.RWMutex
	screens map[Screen]bool
	active  Screen
	content map[Container]any
	values  map[Field]string
	multi   map[Field][]string
	alert   string
	prompt  string
	answer  *bool
}

// PageSnapshot is the JSON form of a Page.
type PageSnapshot struct {
	Active  Screen             `json:"active"`
	Content map[Container]any  `json:"content"`
	Values  map[Field]string   `json:"values"`
	Checked map[Field][]string `json:"checked,omitempty"`
	Alert   string             `json:"alert,omitempty"`
	Prompt  string             `json:"prompt,omitempty"`
}

// NewPage builds a page with the given screens, or all wizard screens when
// none are given.
func NewPage(screens ...Screen) *Page {
	if len(screens) == 0 {
		screens = Screens
	}
	p := &Page{
		screens: make(map[Screen]bool, len(screens)),
		active:  ScreenLanding,
		content: make(map[Container]any),
		values:  make(map[Field]string),
		multi:   make(map[Field][]string),
	}
	for _, s := range screens {
		p.screens[s] = true
	}
	return p
}

func (p *Page) Activate(s Screen) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.screens[s] {
		return false
	}
	p.active = s
	return true
}

func (p *Page) Render(c Container, content any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content[c] = content

	// Rebuilding the follow-up form resets its widgets.
	if form, ok := content.(FollowUpForm); ok && c == ContainerFollowUp {
		p.values[FieldDuration] = form.Durations[0].Value
		p.values[FieldSeverity] = strconv.Itoa(form.SeverityDefault)
		p.values[FieldTrend] = string(form.TrendDefault)
	}
}

func (p *Page) Value(f Field) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[f]
}

func (p *Page) Values(f Field) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.multi[f]...)
}

func (p *Page) Alert(msg string) {
	p.mu.Lock()
	p.alert = msg
	p.mu.Unlock()
}

// Confirm consumes the answer set by AnswerConfirm. Without one it declines.
func (p *Page) Confirm(msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompt = msg
	if p.answer == nil {
		return false
	}
	ok := *p.answer
	p.answer = nil
	return ok
}

// AnswerConfirm sets the answer for the next Confirm call.
func (p *Page) AnswerConfirm(ok bool) {
	p.mu.Lock()
	p.answer = &ok
	p.mu.Unlock()
}

// SetValue writes a widget value. Severity behaves like a 1-10 slider:
// numbers are clamped and anything else is ignored.
func (p *Page) SetValue(f Field, v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f == FieldSeverity {
		n, err := strconv.Atoi(v)
		if err != nil {
			return
		}
		v = strconv.Itoa(min(max(n, followUpForm.SeverityMin), followUpForm.SeverityMax))
	}
	p.values[f] = v
}

// SetChecked replaces the checked values of a multi-valued widget.
func (p *Page) SetChecked(f Field, vs []string) {
	p.mu.Lock()
	p.multi[f] = append([]string(nil), vs...)
	p.mu.Unlock()
}

// ClearAlert drops the last alert once a client has seen it.
func (p *Page) ClearAlert() {
	p.mu.Lock()
	p.alert = ""
	p.mu.Unlock()
}

func (p *Page) Snapshot() PageSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := PageSnapshot{
		Active:  p.active,
		Content: make(map[Container]any, len(p.content)),
		Values:  make(map[Field]string, len(p.values)),
		Alert:   p.alert,
		Prompt:  p.prompt,
	}
	for k, v := range p.content {
		snap.Content[k] = v
	}
	for k, v := range p.values {
		snap.Values[k] = v
	}
	if len(p.multi) > 0 {
		snap.Checked = make(map[Field][]string, len(p.multi))
		for k, v := range p.multi {
			snap.Checked[k] = append([]string(nil), v...)
		}
	}
	return snap
}
