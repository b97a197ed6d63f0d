package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"eventhub/internal/authz"
	"eventhub/internal/models"
	"eventhub/internal/repositories"
	"eventhub/internal/utils"
	"eventhub/internal/verification"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	ErrCodeInvalid   = errors.New("invalid code")
	ErrCodeExpired   = errors.New("code expired")
)

type UserService interface {
	Register(req *models.RegisterRequest) (*models.User, error)
	GetUserByID(id int) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	VerifyEmail(email, code string) error
	ResendVerification(email string) error
	UpdateProfile(userID int, req *models.UpdateProfileRequest) (*models.User, error)
	ListUsers(limit, offset int) ([]*models.User, error)
	SetUserStatus(id int, status string) error
	GetUserCount() (int, error)
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
	codes        *verification.Store
}

func NewUserService(
	repo repositories.UserRepository,
	emailService EmailService,
	authService AuthService,
	codes *verification.Store,
) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
		codes:        codes,
	}
}

// Register creates the account, issues a verification code and mails it.
// Mail failures are logged, not fatal; the code can be resent.
func (s *userService) Register(req *models.RegisterRequest) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := s.repo.GetByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, err := s.repo.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Role:         authz.RoleUser,
		Status:       models.StatusActive,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	s.issueCode(email)

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(email, user.CompanyName); err != nil {
			log.Printf("[users][register] warning: welcome email to %s failed: %v", email, err)
		}
	}
	return user, nil
}

func (s *userService) issueCode(email string) {
	code, err := utils.NewVerificationCode()
	if err != nil {
		log.Printf("[users][verify] code generation failed for %s: %v", email, err)
		return
	}
	s.codes.SetCode(email, code)
	if s.emailService != nil {
		if err := s.emailService.SendVerificationEmail(email, code); err != nil {
			log.Printf("[users][verify] warning: verification email to %s failed: %v", email, err)
		}
	}
}

// VerifyEmail consumes the code and marks the account verified.
// ErrCodeExpired is returned when no live code remains for the email, so
// the client can offer a resend.
func (s *userService) VerifyEmail(email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.codes.VerifyCode(email, code) {
		if err := s.repo.MarkEmailVerified(email); err != nil {
			return err
		}
		log.Printf("[users][verify] email verified: %s", email)
		return nil
	}
	if !s.codes.HasValidCode(email) {
		return ErrCodeExpired
	}
	return ErrCodeInvalid
}

// ResendVerification silently does nothing for unknown or already verified
// accounts, to avoid leaking which emails exist.
func (s *userService) ResendVerification(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil || user.EmailVerified {
		log.Printf("[users][verify] resend skipped for %q", email)
		return nil
	}
	s.issueCode(email)
	return nil
}

func (s *userService) UpdateProfile(userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	if req.CompanyName != "" {
		user.CompanyName = strings.TrimSpace(req.CompanyName)
	}
	newEmail := strings.ToLower(strings.TrimSpace(req.Email))
	if newEmail != "" && newEmail != user.Email {
		if existing, err := s.repo.GetByEmail(newEmail); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, ErrEmailTaken
		}
		// a changed address must be verified again
		s.codes.RemoveCode(user.Email)
		user.Email = newEmail
		user.EmailVerified = false
		s.issueCode(newEmail)
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByUsername(username string) (*models.User, error) {
	return s.repo.GetByUsername(strings.ToLower(strings.TrimSpace(username)))
}

func (s *userService) ListUsers(limit, offset int) ([]*models.User, error) {
	return s.repo.List(limit, offset)
}

func (s *userService) SetUserStatus(id int, status string) error {
	if status != models.StatusActive && status != models.StatusInactive {
		return fmt.Errorf("unsupported status %q", status)
	}
	return s.repo.UpdateStatus(id, status)
}

func (s *userService) GetUserCount() (int, error) {
	return s.repo.GetCount()
}
