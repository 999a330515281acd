package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"

	"symptom-checker/internal/checker"
)

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	now          func() time.Time
}

// NewService builds the report service. tg may be nil, in which case urgent
// alerts are skipped and only PDF rendering is available.
func NewService(tg TelegramClient, doctorChatID int64) *Service {
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		now:          time.Now,
	}
}

// Render builds the PDF summary of a consultation.
func (s *Service) Render(c checker.Consultation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Symptom Check Report", true)
	pdf.AddPage()

	heading := func(text string) {
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 10, tr(text))
		pdf.Ln(10)
		pdf.SetFont("Arial", "", 11)
	}
	line := func(text string) {
		pdf.MultiCell(0, 6, tr(text), "", "L", false)
	}

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "Symptom Check Report")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 11)
	line(fmt.Sprintf("Date: %s", s.now().Format(checker.HistoryDateLayout)))
	line(fmt.Sprintf("Session: %s", c.ID))
	pdf.Ln(4)

	// Patient Info
	heading("Profile")
	if ui := c.State.UserInfo; ui != nil {
		line(fmt.Sprintf("Age: %d", ui.Age))
		line(fmt.Sprintf("Gender: %s", ui.Gender))
		if len(ui.Conditions) > 0 {
			line("Pre-existing conditions: " + strings.Join(ui.Conditions, ", "))
		}
		if ui.Location != "" {
			line("Location: " + ui.Location)
		}
	} else {
		line("- Not provided.")
	}
	pdf.Ln(4)

	heading("Reported symptoms")
	names := checker.SymptomNames(c.State.Selected)
	if len(names) == 0 {
		line("- None selected.")
	}
	for _, n := range names {
		line("- " + n)
	}
	pdf.Ln(4)

	severity := checker.DefaultSeverity
	if fu := c.State.FollowUp; fu != nil {
		severity = fu.Severity
		heading("Follow-up")
		line(fmt.Sprintf("Duration: %s", fu.Duration))
		line(fmt.Sprintf("Severity: %d/10", fu.Severity))
		line(fmt.Sprintf("Trend: %s", fu.Trend))
		pdf.Ln(4)
	}

	heading("Assessment")
	for _, r := range c.State.Results {
		text := fmt.Sprintf("- %s (Expert Confidence: %d%%)", r.Name, r.Confidence)
		if r.Urgent {
			text += " [URGENT]"
		}
		line(text)
	}
	pdf.Ln(4)

	recs := checker.RecommendationsFor(severity)
	heading("Recommendations (Severity Level: " + recs.Level + ")")
	for _, a := range recs.Advice {
		line("- " + a)
	}

	// Footer
	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 10, "Generated by a rule-based symptom checker. Not a medical diagnosis.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// SendUrgentAlert notifies the doctor chat about an urgent result and
// attaches the PDF report.
func (s *Service) SendUrgentAlert(ctx context.Context, c checker.Consultation) error {
	if s.tgClient == nil || s.doctorChatID == 0 {
		log.Debug().Str("session", c.ID.String()).Msg("Urgent alerts not configured, skipping")
		return nil
	}

	var urgent []string
	for _, r := range c.State.Results {
		if r.Urgent {
			urgent = append(urgent, fmt.Sprintf("%s (%d%%)", r.Name, r.Confidence))
		}
	}
	text := fmt.Sprintf("URGENT: session %s reported %s. Flagged: %s.",
		c.ID, strings.Join(checker.SymptomNames(c.State.Selected), ", "), strings.Join(urgent, ", "))
	if err := s.tgClient.SendMessage(ctx, s.doctorChatID, text); err != nil {
		return err
	}

	pdf, err := s.Render(c)
	if err != nil {
		return err
	}
	fileName := fmt.Sprintf("report_%s.pdf", c.ID.String())
	log.Info().Int64("chat", s.doctorChatID).Str("file", fileName).Msg("Sending PDF report to Telegram")
	return s.tgClient.SendDocument(ctx, s.doctorChatID, pdf, fileName)
}
