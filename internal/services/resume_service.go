package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/events"
	"resumebuilder/internal/models"
	"resumebuilder/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// ResumeService handles business logic for the single resume each user owns.
// Every method takes the owner's id from the authenticated identity.
type ResumeService struct {
	repo      repositories.ResumeRepository
	publisher events.Publisher
	validate  *validator.Validate
	policy    *bluemonday.Policy
}

// NewResumeService creates a new ResumeService. publisher may be nil.
func NewResumeService(repo repositories.ResumeRepository, publisher events.Publisher) *ResumeService {
	return &ResumeService{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
		policy:    bluemonday.StrictPolicy(),
	}
}

// Get returns the resume owned by userID.
func (s *ResumeService) Get(ctx context.Context, userID uint) (*models.Resume, error) {
	resume, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, classify("get resume", err)
	}
	return resume, nil
}

// Save creates or wholly replaces the resume of userID and returns it as stored.
func (s *ResumeService) Save(ctx context.Context, userID uint, in models.ResumeInput) (*models.Resume, error) {
	resume, err := s.prepare(userID, in)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.Upsert(ctx, resume)
	if err != nil {
		return nil, classify("save resume", err)
	}
	s.publishSaved(ctx, stored)
	return stored, nil
}

// Replace overwrites an existing resume; it never creates one.
func (s *ResumeService) Replace(ctx context.Context, userID uint, in models.ResumeInput) (*models.Resume, error) {
	resume, err := s.prepare(userID, in)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.Replace(ctx, resume)
	if err != nil {
		return nil, classify("replace resume", err)
	}
	s.publishSaved(ctx, stored)
	return stored, nil
}

// Delete removes the resume of userID.
func (s *ResumeService) Delete(ctx context.Context, userID uint) error {
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		return classify("delete resume", err)
	}
	events.PublishBestEffort(ctx, s.publisher, events.New(events.ResumeDeleted, map[string]any{
		"userId": userID,
	}))
	return nil
}

func (s *ResumeService) publishSaved(ctx context.Context, r *models.Resume) {
	events.PublishBestEffort(ctx, s.publisher, events.New(events.ResumeSaved, map[string]any{
		"userId":      r.UserID,
		"resumeId":    r.ID,
		"education":   len(r.Education),
		"experience":  len(r.Experience),
		"skillsCount": len(r.Skills),
	}))
}

// prepare validates in and builds the row to store. Text is kept exactly as sent;
// clients escape it when rendering.
func (s *ResumeService) prepare(userID uint, in models.ResumeInput) (*models.Resume, error) {
	if userID == 0 {
		return nil, apperrors.Auth("authentication required")
	}
	if in.PersonalInfo == nil || s.blank(in.Summary) {
		return nil, apperrors.Validation("personal info and summary are required")
	}

	if err := s.validate.Struct(in); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make(map[string]string, len(validationErrors))
			for _, e := range validationErrors {
				fields[e.Namespace()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
			}
			return nil, apperrors.ValidationFields("validation failed", fields)
		}
		return nil, classify("validate resume", err)
	}
	return in.ToResume(userID), nil
}

// blank reports whether v has no visible text once markup is removed.
func (s *ResumeService) blank(v string) bool {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v))) == ""
}
