package repositories

import (
	"context"
	"time"

	"resumebuilder/internal/models"
)

// UserRepository defines the interface for credential storage.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByIdentifier matches identifier against email OR mobile.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
	ExistsByEmailOrMobile(ctx context.Context, email, mobile *string) (bool, error)
	SetOTP(ctx context.Context, id uint, code string, expires time.Time) error
	// ConsumeOTP marks the mobile verified and clears the challenge, only if code is still current.
	ConsumeOTP(ctx context.Context, id uint, code string) error
	Delete(ctx context.Context, id uint) error
}
