package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"campus-food-ordering/internal/domain"
	profilerepo "campus-food-ordering/internal/repository/profile"
	tokenrepo "campus-food-ordering/internal/repository/token"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when identifiers/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidInput wraps signup/reset payload problems.
	ErrInvalidInput = errors.New("invalid input")
)

// Service handles student signup, login and password reset.
type Service struct {
	repo        profilerepo.Repository
	tokens      *tokenManager
	logger      *log.Logger
	accessTTL   time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo profilerepo.Repository, tokens tokenrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		logger:      logger,
		accessTTL:   48 * time.Hour,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	StudentID   string `json:"student_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Signup registers a new student. Student id, email and phone are unique.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Profile, error) {
	studentID := strings.ToUpper(strings.TrimSpace(in.StudentID))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.PhoneNumber)
	name := strings.TrimSpace(in.Name)
	switch {
	case studentID == "":
		return nil, fmt.Errorf("%w: student_id required", ErrInvalidInput)
	case email == "":
		return nil, fmt.Errorf("%w: email required", ErrInvalidInput)
	case phone == "":
		return nil, fmt.Errorf("%w: phone_number required", ErrInvalidInput)
	case name == "":
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, domain.Profile{
		StudentID:    studentID,
		Name:         name,
		PhoneNumber:  phone,
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		s.logger.Printf("profile: signup student=%s error=%v", studentID, err)
		return nil, err
	}
	return p, nil
}

// Login validates credentials and returns an access token plus the profile.
// The identifier may be a student id or an email.
func (s *Service) Login(ctx context.Context, identifier, password string) (*domain.Profile, string, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)

	var (
		p   *domain.Profile
		err error
	)
	if strings.Contains(identifier, "@") {
		p, err = s.repo.GetByEmail(ctx, identifier)
	} else {
		p, err = s.repo.GetByStudentID(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	access, _, err := s.tokens.Issue(ctx, p.StudentID, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return p, access, nil
}

// Logout revokes the token; unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// LookupByToken returns the profile bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.Profile, error) {
	studentID, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	p, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return p, nil
}

// Get returns a profile by student id.
func (s *Service) Get(ctx context.Context, studentID string) (*domain.Profile, error) {
	return s.repo.GetByStudentID(ctx, studentID)
}

// ResetInput identifies the student by id and registered email.
type ResetInput struct {
	StudentID   string `json:"student_id"`
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// ResetPassword replaces the password of the student whose id and email match.
func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	password := strings.TrimSpace(in.NewPassword)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p, err := s.repo.GetByStudentID(ctx, strings.TrimSpace(in.StudentID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !strings.EqualFold(p.Email, strings.TrimSpace(in.Email)) {
		return ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, p.StudentID, string(hashed)); err != nil {
		s.logger.Printf("profile: reset password student=%s error=%v", p.StudentID, err)
		return err
	}
	s.logger.Printf("profile: password updated student=%s", p.StudentID)
	return nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
