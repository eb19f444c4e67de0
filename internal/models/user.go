package models

import "time"

// User represents an account of the resume builder.
// At least one of Email or Mobile is always set.
type User struct {
	ID               uint       `gorm:"primaryKey"`
	FullName         string     `gorm:"type:varchar(255);not null"`
	Email            *string    `gorm:"uniqueIndex;type:varchar(255);check:chk_users_contact,email IS NOT NULL OR mobile IS NOT NULL"`
	Mobile           *string    `gorm:"uniqueIndex;type:varchar(32)"`
	Password         string     `gorm:"type:varchar(255);not null"` // bcrypt hash, never plaintext
	Photo            *string    `gorm:"type:varchar(1024)"`
	Language         string     `gorm:"type:varchar(16);not null;default:en"`
	IsEmailVerified  bool       `gorm:"not null;default:false"`
	IsMobileVerified bool       `gorm:"not null;default:false"`
	OTPCode          *string    `gorm:"column:otp_code;type:varchar(6)"`
	OTPExpires       *time.Time `gorm:"column:otp_expires"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserView is a User stripped of its password hash and OTP challenge.
type UserView struct {
	ID               uint      `json:"id"`
	FullName         string    `json:"fullName"`
	Email            *string   `json:"email,omitempty"`
	Mobile           *string   `json:"mobile,omitempty"`
	Photo            *string   `json:"photo,omitempty"`
	Language         string    `json:"language"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	IsMobileVerified bool      `json:"isMobileVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// View returns the sanitized representation of u.
func (u *User) View() *UserView {
	return &UserView{
		ID:               u.ID,
		FullName:         u.FullName,
		Email:            u.Email,
		Mobile:           u.Mobile,
		Photo:            u.Photo,
		Language:         u.Language,
		IsEmailVerified:  u.IsEmailVerified,
		IsMobileVerified: u.IsMobileVerified,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
