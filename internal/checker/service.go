package checker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"symptom-checker/internal/kv"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrReportsDisabled = errors.New("reports are not configured")
	ErrNoDiagnosisYet  = errors.New("session has no diagnosis yet")
)

// DefaultClientID namespaces history for callers that do not identify themselves.
const DefaultClientID = "default"

// alertTimeout bounds one urgent alert, including the PDF upload.
const alertTimeout = 15 * time.Second

// Consultation is a completed (or in-progress) session handed to reports.
type Consultation struct {
	ID        uuid.UUID
	ClientID  string
	State     State
	CreatedAt time.Time
}

// ReportService renders session reports and raises urgent alerts.
// We define it here to decouple from the specific report implementation.
type ReportService interface {
	Render(c Consultation) ([]byte, error)
	SendUrgentAlert(ctx context.Context, c Consultation) error
}

// Session couples a wizard with the page it renders into.
type Session struct {
	ID        uuid.UUID
	ClientID  string
	Wizard    *Wizard
	Page      *Page
	CreatedAt time.Time

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) idleSince() time.Time { return time.Unix(0, s.lastSeen.Load()) }

func (s *Session) consultation() Consultation {
	return Consultation{ID: s.ID, ClientID: s.ClientID, State: s.Wizard.State(), CreatedAt: s.CreatedAt}
}

type Service interface {
	CreateSession(ctx context.Context, clientID string) (*Session, error)
	Session(id uuid.UUID) (*Session, error)
	CloseSession(id uuid.UUID) error
	StartAnalysis(id uuid.UUID) (*Analysis, error)
	Report(id uuid.UUID) ([]byte, error)
	// Run evicts idle sessions until ctx is done, then closes every session.
	Run(ctx context.Context) error
}

// ServiceConfig tunes session handling.
type ServiceConfig struct {
	AnalysisInterval time.Duration
	SessionTTL       time.Duration
	SweepInterval    time.Duration
}

type service struct {
	store     kv.Store
	reportSvc ReportService
	cfg       ServiceConfig
	metrics   instruments

	// Analysis runs outlive the request that starts them.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	histMu    sync.Mutex
	histories map[string]*History

	alertMu sync.Mutex
	closed  bool
	alerts  sync.WaitGroup
}

// NewService builds the session service. report may be nil, which disables
// PDF reports and urgent alerts.
func NewService(store kv.Store, report ReportService, cfg ServiceConfig) Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &service{
		store:     store,
		reportSvc: report,
		cfg:       cfg,
		metrics:   newInstruments(),
		ctx:       ctx,
		cancel:    cancel,
		sessions:  make(map[uuid.UUID]*Session),
		histories: make(map[string]*History),
	}
}

func (s *service) CreateSession(ctx context.Context, clientID string) (*Session, error) {
	if clientID == "" {
		clientID = DefaultClientID
	}
	page := NewPage()

	sess := &Session{
		ID:        uuid.New(),
		ClientID:  clientID,
		Page:      page,
		CreatedAt: time.Now(),
	}
	sess.touch(sess.CreatedAt)
	sess.Wizard = NewWizard(page, s.history(ctx, clientID),
		WithAnalysisInterval(s.cfg.AnalysisInterval),
		WithDiagnosisHook(s.diagnosisHook(sess)),
	)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.metrics.sessionOpened(ctx)

	log.Debug().Str("session", sess.ID.String()).Str("client", clientID).Msg("Session created")
	return sess, nil
}

// history returns the shared history of a client, loading it on first use.
func (s *service) history(ctx context.Context, clientID string) *History {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	if h, ok := s.histories[clientID]; ok {
		return h
	}
	h := LoadHistory(ctx, NewHistoryRepository(s.store, HistoryKey+":"+clientID))
	s.histories[clientID] = h
	return h
}

func (s *service) Session(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(time.Now())
	return sess, nil
}

func (s *service) CloseSession(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.Wizard.Close()
	s.metrics.sessionClosed(s.ctx)
	return nil
}

func (s *service) StartAnalysis(id uuid.UUID) (*Analysis, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	return sess.Wizard.StartAnalysis(s.ctx), nil
}

func (s *service) Report(id uuid.UUID) ([]byte, error) {
	if s.reportSvc == nil {
		return nil, ErrReportsDisabled
	}
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	c := sess.consultation()
	if len(c.State.Results) == 0 {
		return nil, ErrNoDiagnosisYet
	}
	return s.reportSvc.Render(c)
}

// diagnosisHook runs under the wizard lock, so it works from the state copy
// it is given and sends alerts in the background.
func (s *service) diagnosisHook(sess *Session) func(State) {
	return func(st State) {
		s.metrics.recordDiagnosis(s.ctx, st.Results)
		if s.reportSvc == nil || !HasUrgent(st.Results) {
			return
		}

		c := Consultation{ID: sess.ID, ClientID: sess.ClientID, State: st, CreatedAt: sess.CreatedAt}
		s.alertMu.Lock()
		defer s.alertMu.Unlock()
		if s.closed {
			log.Warn().Str("session", c.ID.String()).Msg("Service shutting down, urgent alert skipped")
			return
		}
		s.alerts.Add(1)
		go s.sendUrgentAlert(c)
	}
}

func (s *service) sendUrgentAlert(c Consultation) {
	defer s.alerts.Done()
	ctx, cancel := context.WithTimeout(s.ctx, alertTimeout)
	defer cancel()
	if err := s.reportSvc.SendUrgentAlert(ctx, c); err != nil {
		log.Error().Err(err).Str("session", c.ID.String()).Msg("Failed to send urgent alert")
		return
	}
	log.Info().Str("session", c.ID.String()).Msg("Urgent alert sent")
}

func (s *service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *service) sweep(now time.Time) {
	var idle []uuid.UUID
	s.mu.RLock()
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > s.cfg.SessionTTL {
			idle = append(idle, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range idle {
		if err := s.CloseSession(id); err == nil {
			log.Debug().Str("session", id.String()).Msg("Idle session evicted")
		}
	}
}

// shutdown closes every session, lets pending alerts finish, then cancels
// the service context.
func (s *service) shutdown() {
	s.alertMu.Lock()
	s.closed = true
	s.alertMu.Unlock()

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Wizard.Close()
		s.metrics.sessionClosed(context.Background())
	}
	s.alerts.Wait()
	s.cancel()
}
