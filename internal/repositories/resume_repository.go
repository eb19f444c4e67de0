package repositories

import (
	"context"

	"resumebuilder/internal/models"
)

// ResumeRepository defines the interface for resume storage. Every user owns at most one resume.
type ResumeRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Resume, error)
	// Upsert creates the user's resume or fully replaces the existing one, returning the stored row.
	Upsert(ctx context.Context, resume *models.Resume) (*models.Resume, error)
	// Replace overwrites an existing resume and fails with not found when there is none.
	Replace(ctx context.Context, resume *models.Resume) (*models.Resume, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}
