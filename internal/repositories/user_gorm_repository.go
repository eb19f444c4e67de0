package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user. Duplicate email or mobile yields a conflict error.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Email == nil && user.Mobile == nil {
		return apperrors.Validation("either email or mobile number is required")
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("user already exists with this email or mobile number")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("user with ID %d not found", id))
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

func (r *GORMUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR mobile = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user by identifier: %w", err)
	}
	return &user, nil
}

func (r *GORMUserRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "mobile = ?", mobile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user by mobile: %w", err)
	}
	return &user, nil
}

// ExistsByEmailOrMobile reports whether any user already holds the given email or mobile.
// Nil arguments are ignored.
func (r *GORMUserRepository) ExistsByEmailOrMobile(ctx context.Context, email, mobile *string) (bool, error) {
	if email == nil && mobile == nil {
		return false, nil
	}
	q := r.db.WithContext(ctx).Model(&models.User{})
	switch {
	case email != nil && mobile != nil:
		q = q.Where("email = ? OR mobile = ?", *email, *mobile)
	case email != nil:
		q = q.Where("email = ?", *email)
	default:
		q = q.Where("mobile = ?", *mobile)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existing user: %w", err)
	}
	return count > 0, nil
}

// SetOTP stores a pending challenge, overwriting any previous one.
func (r *GORMUserRepository) SetOTP(ctx context.Context, id uint, code string, expires time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"otp_code":    code,
		"otp_expires": expires,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to store otp: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(fmt.Sprintf("user with ID %d not found", id))
	}
	return nil
}

func (r *GORMUserRepository) ConsumeOTP(ctx context.Context, id uint, code string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND otp_code = ?", id, code).
		Updates(map[string]any{
			"is_mobile_verified": true,
			"otp_code":           gorm.Expr("NULL"),
			"otp_expires":        gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to verify mobile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Auth("invalid or expired OTP")
	}
	return nil
}

// Delete removes a user; the owned resume goes with it through the foreign key cascade.
func (r *GORMUserRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(fmt.Sprintf("user with ID %d not found for deletion", id))
	}
	return nil
}
