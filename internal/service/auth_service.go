package service

import (
	"fmt"
	"strings"

	"storyjars/internal/models"
	"storyjars/internal/repository"
	"storyjars/internal/security"
	"storyjars/internal/validation"
)

// AuthService manages parent accounts and session tokens
type AuthService struct {
	parentRepo *repository.ParentRepository
	tokens     *security.TokenIssuer
}

func NewAuthService(parentRepo *repository.ParentRepository, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{parentRepo: parentRepo, tokens: tokens}
}

// RegisterParent creates a parent account guarded by a numeric PIN
func (s *AuthService) RegisterParent(email, pin string) (*models.Parent, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePIN(pin); err != nil {
		return nil, err
	}

	existing, err := s.parentRepo.GetParentByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	pinHash, err := security.HashPIN(pin)
	if err != nil {
		return nil, err
	}

	parent, err := s.parentRepo.CreateParent(email, pinHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent account: %w", err)
	}
	return parent, nil
}

// Login verifies a parent's PIN and returns a session token
func (s *AuthService) Login(email, pin string) (string, *models.Parent, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	parent, err := s.parentRepo.GetParentByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if parent == nil || !security.CheckPIN(parent.PINHash, pin) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(parent.ID, parent.Email)
	if err != nil {
		return "", nil, err
	}
	return token, parent, nil
}

// ChangePIN updates a parent's PIN after verifying the current one
func (s *AuthService) ChangePIN(email, currentPIN, newPIN string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	parent, err := s.parentRepo.GetParentByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if parent == nil || !security.CheckPIN(parent.PINHash, currentPIN) {
		return ErrInvalidCredentials
	}

	if err := validation.ValidatePIN(newPIN); err != nil {
		return err
	}

	pinHash, err := security.HashPIN(newPIN)
	if err != nil {
		return err
	}
	return s.parentRepo.UpdatePIN(parent.ID, pinHash)
}

// VerifyToken validates a session token and returns its claims
func (s *AuthService) VerifyToken(token string) (*security.SessionClaims, error) {
	return s.tokens.Verify(token)
}
