package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/descomplaca/internal/automation"
	"github.com/smallbiznis/descomplaca/internal/clock"
	"go.uber.org/zap"
)

const (
	keyUserData = "user_data"

	StatusSuccess = "success"
)

type ProcessResult struct {
	Status   string `json:"status"`
	Protocol string `json:"protocol"`
}

// Service runs the gov.br assisted flow on top of a session store.
type Service struct {
	store     Store
	automator automation.Automator
	clock     clock.Clock
	log       *zap.Logger
}

func NewService(store Store, automator automation.Automator, c clock.Clock, log *zap.Logger) *Service {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{store: store, automator: automator, clock: c, log: log.Named("session.service")}
}

func (s *Service) Start(ctx context.Context) (Session, error) {
	sess, err := s.store.Create(ctx)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("session started", zap.String("session_id", sess.ID))
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Clear(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.store.Clear(ctx, id)
}

// StartGovBRLogin opens gov.br in the bot browser for the QR code login.
func (s *Service) StartGovBRLogin(ctx context.Context) error {
	return s.automator.NavigateGovBR(ctx)
}

// Process scrapes the logged-in citizen, submits the municipal form and
// clears the session. The session is kept when any step fails so the flow
// can be retried.
func (s *Service) Process(ctx context.Context, id string) (ProcessResult, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return ProcessResult{}, err
	}

	data, err := s.automator.ScrapeUserData(ctx)
	if err != nil {
		return ProcessResult{}, err
	}
	if err := s.store.Update(ctx, sess.ID, keyUserData, data); err != nil {
		return ProcessResult{}, err
	}

	ok, err := s.automator.SubmitExternalForm(ctx, data)
	if err != nil {
		return ProcessResult{}, err
	}
	if !ok {
		return ProcessResult{}, automation.ErrNavigation
	}

	if err := s.store.Clear(ctx, sess.ID); err != nil {
		s.log.Warn("clear processed session failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	result := ProcessResult{Status: StatusSuccess, Protocol: protocolFor(s, sess.ID)}
	s.log.Info("session processed", zap.String("session_id", sess.ID), zap.String("protocol", result.Protocol))
	return result, nil
}

// protocolFor derives the receipt number from the year and the session id.
func protocolFor(s *Service, sessionID string) string {
	short := strings.ToUpper(strings.ReplaceAll(sessionID, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("DET-%d-%s", s.clock.Now().Year(), short)
}
