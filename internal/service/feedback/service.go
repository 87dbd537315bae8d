package feedback

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"campus-food-ordering/internal/domain"
	feedbackrepo "campus-food-ordering/internal/repository/feedback"
)

const maxMessageLength = 2000

// ErrInvalidMessage rejects empty or oversized feedback.
var ErrInvalidMessage = errors.New("message must be between 1 and 2000 characters")

type Service struct {
	repo   feedbackrepo.Repository
	logger *log.Logger
}

func New(repo feedbackrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) []domain.Feedback {
	out, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Printf("feedback: list error=%v", err)
		return []domain.Feedback{}
	}
	if out == nil {
		return []domain.Feedback{}
	}
	return out
}

func (s *Service) Create(ctx context.Context, message string) (*domain.Feedback, error) {
	message, err := cleanMessage(message)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, message)
}

func (s *Service) Update(ctx context.Context, id, message string) (*domain.Feedback, error) {
	message, err := cleanMessage(message)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, message)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func cleanMessage(m string) (string, error) {
	m = strings.TrimSpace(m)
	if m == "" || utf8.RuneCountInString(m) > maxMessageLength {
		return "", ErrInvalidMessage
	}
	return m, nil
}
