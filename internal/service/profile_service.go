package service

import (
	"log"

	"github.com/google/uuid"

	"storyjars/internal/models"
	"storyjars/internal/naming"
	"storyjars/internal/repository"
	"storyjars/internal/validation"
)

// ProfileService handles learner profile onboarding and lifecycle
type ProfileService struct {
	profileRepo *repository.ProfileRepository
	jarRepo     *repository.JarRepository
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo *repository.ProfileRepository, jarRepo *repository.JarRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, jarRepo: jarRepo}
}

// CreateProfile creates a learner profile and provisions its default jar.
// A profile without a jar cannot earn, so the two belong together; when
// jar creation fails the profile row still stands and the failure is
// logged rather than rolled back.
func (s *ProfileService) CreateProfile(uid, name, avatar string) (*models.Profile, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	if uid == "" {
		uid = uuid.New().String()
	}

	existing, err := s.profileRepo.GetProfileByUID(uid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProfileExists
	}

	profile, err := s.profileRepo.CreateProfile(uid, name, avatar)
	if err != nil {
		return nil, err
	}

	jarName, err := naming.SuggestJarName()
	if err != nil {
		jarName = naming.FallbackJarName
	}
	if _, err := s.jarRepo.CreateJar(profile.ID, jarName, naming.DefaultJarEmoji); err != nil {
		log.Printf("Warning: failed to provision default jar for profile %s: %v", uid, err)
	}

	return profile, nil
}

// GetProfile retrieves a profile by uid, nil when absent
func (s *ProfileService) GetProfile(uid string) (*models.Profile, error) {
	return s.profileRepo.GetProfileByUID(uid)
}

// ListProfiles retrieves every profile on the device
func (s *ProfileService) ListProfiles() ([]models.Profile, error) {
	return s.profileRepo.ListProfiles()
}

// DeleteProfile removes a profile and all data scoped to it
func (s *ProfileService) DeleteProfile(uid string) error {
	return s.profileRepo.DeleteProfile(uid)
}

// GetReadingLevel returns the profile's level, Explorer when unset
func (s *ProfileService) GetReadingLevel(uid string) (models.ReadingLevel, error) {
	return s.profileRepo.GetReadingLevel(uid)
}

// SetReadingLevel updates the profile's reading level
func (s *ProfileService) SetReadingLevel(uid string, level models.ReadingLevel) error {
	if !level.IsValid() {
		return validation.ValidationError{Field: "reading_level", Message: "unknown reading level"}
	}
	return s.profileRepo.SetReadingLevel(uid, level)
}

// UpdateAvatar changes the profile's avatar
func (s *ProfileService) UpdateAvatar(uid, avatar string) error {
	return s.profileRepo.UpdateAvatar(uid, avatar)
}
