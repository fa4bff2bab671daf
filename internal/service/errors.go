package service

import "errors"

// Ledger and gating error taxonomy. Limiter breaches are deliberately NOT
// errors: they are ordinary answer statuses (see LimiterService) so the UI
// can show an upgrade prompt without an exception path.
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile uid already exists")
	ErrJarNotFound        = errors.New("jar not found")
	ErrChapterNotFound    = errors.New("chapter not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrSameJar            = errors.New("cannot transfer a jar into itself")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or PIN")
)
