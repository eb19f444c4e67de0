// Package seed inserts demo accounts for local development.
package seed

import (
	"context"
	"errors"
	"fmt"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
	"resumebuilder/internal/repositories"
	"resumebuilder/internal/services"

	"github.com/rs/zerolog/log"
)

type demoUser struct {
	fullName string
	email    string
	mobile   string
	password string
}

var demoUsers = []demoUser{
	{fullName: "John Doe", email: "test@example.com", password: "password123"},
	{fullName: "Jane Smith", email: "jane@example.com", mobile: "+1234567890", password: "password123"},
	{fullName: "Demo User", mobile: "+9876543210", password: "demo123"},
}

// DemoResume is the sample resume attached to the first demo user.
func DemoResume() models.ResumeInput {
	return models.ResumeInput{
		PersonalInfo: &models.PersonalInfo{
			FullName: "John Doe",
			Email:    "test@example.com",
			Phone:    "+1-555-0123",
			Address:  "123 Main Street, New York, NY 10001",
		},
		Summary: "Experienced software developer with 5+ years of expertise in full-stack web development.",
		Education: []models.Education{{
			Institution: "University of Technology",
			Degree:      "Bachelor of Science",
			Field:       "Computer Science",
			StartYear:   "2016",
			EndYear:     "2020",
			GPA:         "3.8",
		}},
		Experience: []models.Experience{{
			Company:     "Tech Solutions Inc.",
			Position:    "Senior Software Developer",
			StartDate:   "2021-01-15",
			EndDate:     "2024-12-31",
			Description: "Led development of web applications using React, Go, and SQLite.",
		}},
		Skills: []string{"JavaScript", "React", "Go", "SQLite", "TypeScript"},
	}
}

// Run creates the demo users and sample resume unless the first demo user already exists.
func Run(ctx context.Context, users repositories.UserRepository, resumes repositories.ResumeRepository, bcryptCost int) error {
	_, err := users.GetByIdentifier(ctx, demoUsers[0].email)
	if err == nil {
		log.Info().Msg("demo data already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check demo data: %w", err)
	}

	created := make([]*models.User, 0, len(demoUsers))
	for _, d := range demoUsers {
		hashed, err := services.HashPassword(d.password, bcryptCost)
		if err != nil {
			return err
		}
		user := &models.User{FullName: d.fullName, Password: hashed, Language: "en"}
		if d.email != "" {
			email := d.email
			user.Email = &email
		}
		if d.mobile != "" {
			mobile := d.mobile
			user.Mobile = &mobile
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", d.fullName, err)
		}
		created = append(created, user)
		log.Info().Str("name", user.FullName).Msg("created demo user")
	}

	if _, err := resumes.Upsert(ctx, DemoResume().ToResume(created[0].ID)); err != nil {
		return fmt.Errorf("failed to seed demo resume: %w", err)
	}
	log.Info().Msg("demo data seeded: test@example.com / password123, jane@example.com / password123, +9876543210 / demo123")
	return nil
}
