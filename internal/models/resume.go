package models

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var schema = validator.New()

// PersonalInfo is the contact block at the top of a resume.
type PersonalInfo struct {
	FullName     string `json:"fullName" validate:"max=255"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Phone        string `json:"phone" validate:"max=64"`
	Address      string `json:"address" validate:"max=512"`
	ProfilePhoto string `json:"profilePhoto,omitempty" validate:"max=1024"`
}

// Education is one entry of the education section.
type Education struct {
	Institution string `json:"institution" validate:"max=255"`
	Degree      string `json:"degree" validate:"max=255"`
	Field       string `json:"field" validate:"max=255"`
	StartYear   string `json:"startYear" validate:"max=16"`
	EndYear     string `json:"endYear" validate:"max=16"`
	GPA         string `json:"gpa,omitempty" validate:"max=16"`
}

// Experience is one entry of the work experience section.
type Experience struct {
	Company     string `json:"company" validate:"max=255"`
	Position    string `json:"position" validate:"max=255"`
	StartDate   string `json:"startDate" validate:"max=32"`
	EndDate     string `json:"endDate" validate:"max=32"`
	Description string `json:"description" validate:"max=5000"`
}

type (
	EducationList  []Education
	ExperienceList []Experience
	SkillList      []string
)

// Resume is the single resume owned by a user. Nested sections are stored as JSON text
// and decoded strictly on read.
type Resume struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"userId" gorm:"not null;uniqueIndex"`
	User         *User          `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	PersonalInfo PersonalInfo   `json:"personalInfo" gorm:"type:text;not null"`
	Summary      string         `json:"summary" gorm:"type:text;not null"`
	Education    EducationList  `json:"education" gorm:"type:text"`
	Experience   ExperienceList `json:"experience" gorm:"type:text"`
	Skills       SkillList      `json:"skills" gorm:"type:text"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ResumeInput is the client payload for saving a resume.
type ResumeInput struct {
	PersonalInfo *PersonalInfo `json:"personalInfo" validate:"required"`
	Summary      string        `json:"summary" validate:"required,max=10000"`
	Education    []Education   `json:"education" validate:"max=50,dive"`
	Experience   []Experience  `json:"experience" validate:"max=50,dive"`
	Skills       []string      `json:"skills" validate:"max=100,dive,max=100"`
}

// ToResume builds the stored form of in for userID.
func (in ResumeInput) ToResume(userID uint) *Resume {
	r := &Resume{
		UserID:     userID,
		Summary:    in.Summary,
		Education:  EducationList(in.Education),
		Experience: ExperienceList(in.Experience),
		Skills:     SkillList(in.Skills),
	}
	if in.PersonalInfo != nil {
		r.PersonalInfo = *in.PersonalInfo
	}
	if r.Education == nil {
		r.Education = EducationList{}
	}
	if r.Experience == nil {
		r.Experience = ExperienceList{}
	}
	if r.Skills == nil {
		r.Skills = SkillList{}
	}
	return r
}

func (p PersonalInfo) Value() (driver.Value, error) { return encodeColumn(p) }

func (p *PersonalInfo) Scan(src any) error {
	if err := decodeColumn(src, p); err != nil {
		return fmt.Errorf("personal_info: %w", err)
	}
	return schema.Struct(p)
}

func (l EducationList) Value() (driver.Value, error) {
	if l == nil {
		l = EducationList{}
	}
	return encodeColumn(l)
}

func (l *EducationList) Scan(src any) error {
	var out EducationList
	if err := decodeColumn(src, &out); err != nil {
		return fmt.Errorf("education: %w", err)
	}
	for i := range out {
		if err := schema.Struct(&out[i]); err != nil {
			return fmt.Errorf("education[%d]: %w", i, err)
		}
	}
	if out == nil {
		out = EducationList{}
	}
	*l = out
	return nil
}

func (l ExperienceList) Value() (driver.Value, error) {
	if l == nil {
		l = ExperienceList{}
	}
	return encodeColumn(l)
}

func (l *ExperienceList) Scan(src any) error {
	var out ExperienceList
	if err := decodeColumn(src, &out); err != nil {
		return fmt.Errorf("experience: %w", err)
	}
	for i := range out {
		if err := schema.Struct(&out[i]); err != nil {
			return fmt.Errorf("experience[%d]: %w", i, err)
		}
	}
	if out == nil {
		out = ExperienceList{}
	}
	*l = out
	return nil
}

func (l SkillList) Value() (driver.Value, error) {
	if l == nil {
		l = SkillList{}
	}
	return encodeColumn(l)
}

func (l *SkillList) Scan(src any) error {
	var out SkillList
	if err := decodeColumn(src, &out); err != nil {
		return fmt.Errorf("skills: %w", err)
	}
	if out == nil {
		out = SkillList{}
	}
	*l = out
	return nil
}

func encodeColumn(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// decodeColumn rejects unknown fields and trailing data so a corrupted column fails loudly.
func decodeColumn(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed stored value: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("malformed stored value: trailing data")
	}
	return nil
}
