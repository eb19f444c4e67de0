package repositories

import (
	"context"
	"errors"
	"fmt"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// replacedColumns are overwritten wholesale on every save; created_at survives.
var replacedColumns = []string{"personal_info", "summary", "education", "experience", "skills", "updated_at"}

// GORMResumeRepository is a GORM implementation of ResumeRepository.
type GORMResumeRepository struct {
	db *gorm.DB
}

// NewGORMResumeRepository creates a new instance of GORMResumeRepository.
func NewGORMResumeRepository(db *gorm.DB) *GORMResumeRepository {
	return &GORMResumeRepository{
		db: db,
	}
}

// GetByUserID retrieves the resume owned by userID. Stored nested sections are re-validated
// while scanning, so a corrupted row surfaces as an error rather than a half-decoded resume.
func (r *GORMResumeRepository) GetByUserID(ctx context.Context, userID uint) (*models.Resume, error) {
	return r.getByUserID(r.db.WithContext(ctx), userID)
}

func (r *GORMResumeRepository) getByUserID(tx *gorm.DB, userID uint) (*models.Resume, error) {
	var resume models.Resume
	if err := tx.First(&resume, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("resume not found")
		}
		return nil, fmt.Errorf("failed to get resume for user %d: %w", userID, err)
	}
	return &resume, nil
}

// Upsert relies on the unique index over user_id, so concurrent saves for one user
// can never produce two rows.
func (r *GORMResumeRepository) Upsert(ctx context.Context, resume *models.Resume) (*models.Resume, error) {
	var stored *models.Resume
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := *resume
		row.ID = 0
		row.User = nil
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(replacedColumns),
		}).Create(&row).Error
		if err != nil {
			return translateResumeWriteError(resume.UserID, err)
		}
		stored, err = r.getByUserID(tx, resume.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *GORMResumeRepository) Replace(ctx context.Context, resume *models.Resume) (*models.Resume, error) {
	var stored *models.Resume
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Resume{}).Where("user_id = ?", resume.UserID).Updates(map[string]any{
			"personal_info": resume.PersonalInfo,
			"summary":       resume.Summary,
			"education":     resume.Education,
			"experience":    resume.Experience,
			"skills":        resume.Skills,
		})
		if res.Error != nil {
			return translateResumeWriteError(resume.UserID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("resume not found")
		}
		var err error
		stored, err = r.getByUserID(tx, resume.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// DeleteByUserID removes the user's resume. Zero affected rows means there was none.
func (r *GORMResumeRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Resume{}, "user_id = ?", userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete resume: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("resume not found")
	}
	return nil
}

func translateResumeWriteError(userID uint, err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperrors.NotFound(fmt.Sprintf("user with ID %d not found", userID))
	}
	return fmt.Errorf("failed to save resume for user %d: %w", userID, err)
}
