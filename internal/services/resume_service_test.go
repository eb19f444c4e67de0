package services_test

import (
	"context"
	"errors"
	"testing"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/events"
	"resumebuilder/internal/models"
	"resumebuilder/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleResumeInput() models.ResumeInput {
	return models.ResumeInput{
		PersonalInfo: &models.PersonalInfo{
			FullName: "John Doe",
			Email:    "john@example.com",
			Phone:    "+1-555-0123",
			Address:  "123 Main Street",
		},
		Summary: "Experienced software developer.",
		Education: []models.Education{
			{Institution: "University of Technology", Degree: "BSc", Field: "Computer Science", StartYear: "2016", EndYear: "2020"},
		},
		Experience: []models.Experience{
			{Company: "Tech Solutions Inc.", Position: "Developer", StartDate: "2021-01", EndDate: "2024-12", Description: "Built things."},
		},
		Skills: []string{"Go", "SQL"},
	}
}

func TestResumeService_Get(t *testing.T) {
	mockRepo := new(MockResumeRepository)
	resumeService := services.NewResumeService(mockRepo, nil)

	stored := &models.Resume{ID: 1, UserID: 4, Summary: "hello"}
	mockRepo.On("GetByUserID", mock.Anything, uint(4)).Return(stored, nil).Once()
	mockRepo.On("GetByUserID", mock.Anything, uint(5)).Return(nil, apperrors.NotFound("resume not found")).Once()
	mockRepo.On("GetByUserID", mock.Anything, uint(6)).Return(nil, errors.New("personal_info: malformed stored value")).Once()

	resume, err := resumeService.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, stored, resume)

	_, err = resumeService.Get(context.Background(), 5)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	// A corrupted row is a server fault, not a missing resume.
	_, err = resumeService.Get(context.Background(), 6)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	mockRepo.AssertExpectations(t)
}

func TestResumeService_Save(t *testing.T) {
	mockRepo := new(MockResumeRepository)
	publisher := new(MockPublisher)
	resumeService := services.NewResumeService(mockRepo, publisher)

	in := sampleResumeInput()

	var saved *models.Resume
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Resume")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.Resume)
		}).
		Return(&models.Resume{ID: 10, UserID: 4}, nil).Once()
	publisher.On("Publish", mock.Anything, ofType(events.ResumeSaved)).Return(nil).Once()

	resume, err := resumeService.Save(context.Background(), 4, in)
	require.NoError(t, err)
	assert.Equal(t, uint(10), resume.ID)

	require.NotNil(t, saved)
	assert.Equal(t, uint(4), saved.UserID)
	assert.Equal(t, in.Summary, saved.Summary)
	assert.Equal(t, models.SkillList{"Go", "SQL"}, saved.Skills)
	assert.Equal(t, "John Doe", saved.PersonalInfo.FullName)

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestResumeService_Save_KeepsTextVerbatim(t *testing.T) {
	mockRepo := new(MockResumeRepository)
	resumeService := services.NewResumeService(mockRepo, nil)

	in := sampleResumeInput()
	in.Summary = "Built UIs with <canvas> and <template> elements, R&D at 3 < 4"
	in.Skills = []string{"<canvas>", "HTML5 &lt;video&gt;", "C & C++"}
	in.Education[0].Institution = "Texas A&M <Main Campus>"
	in.Education[0].Field = "a &amp; b"
	in.Experience[0].Description = `<script>alert("x")</script> is shown as text`

	var saved *models.Resume
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Resume")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.Resume)
		}).
		Return(&models.Resume{ID: 1, UserID: 4}, nil).Once()

	_, err := resumeService.Save(context.Background(), 4, in)
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, in.Summary, saved.Summary)
	assert.Equal(t, models.SkillList{"<canvas>", "HTML5 &lt;video&gt;", "C & C++"}, saved.Skills)
	assert.Equal(t, models.EducationList(in.Education), saved.Education)
	assert.Equal(t, models.ExperienceList(in.Experience), saved.Experience)
	assert.Equal(t, *in.PersonalInfo, saved.PersonalInfo)
	mockRepo.AssertExpectations(t)
}

func TestResumeService_Save_EmptySections(t *testing.T) {
	mockRepo := new(MockResumeRepository)
	resumeService := services.NewResumeService(mockRepo, nil)

	in := sampleResumeInput()
	in.Education = nil
	in.Experience = nil
	in.Skills = nil

	mockRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(r *models.Resume) bool {
		return r.Education != nil && len(r.Education) == 0 &&
			r.Experience != nil && len(r.Experience) == 0 &&
			r.Skills != nil && len(r.Skills) == 0
	})).Return(&models.Resume{ID: 1, UserID: 4}, nil).Once()

	_, err := resumeService.Save(context.Background(), 4, in)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestResumeService_Save_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		mutate func(*models.ResumeInput)
		want   error
	}{
		{"missing personal info", 4, func(in *models.ResumeInput) { in.PersonalInfo = nil }, apperrors.ErrValidation},
		{"blank summary", 4, func(in *models.ResumeInput) { in.Summary = "   " }, apperrors.ErrValidation},
		{"summary only markup", 4, func(in *models.ResumeInput) { in.Summary = "<b></b>" }, apperrors.ErrValidation},
		{"invalid personal email", 4, func(in *models.ResumeInput) { in.PersonalInfo.Email = "nope" }, apperrors.ErrValidation},
		{"no authenticated user", 0, func(in *models.ResumeInput) {}, apperrors.ErrAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockResumeRepository)
			resumeService := services.NewResumeService(mockRepo, nil)

			in := sampleResumeInput()
			tt.mutate(&in)
			_, err := resumeService.Save(context.Background(), tt.userID, in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}

func TestResumeService_Save_ReportsInvalidFields(t *testing.T) {
	resumeService := services.NewResumeService(new(MockResumeRepository), nil)

	in := sampleResumeInput()
	in.PersonalInfo.Email = "not-an-email"

	_, err := resumeService.Save(context.Background(), 4, in)
	appErr := apperrors.As(err)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "ResumeInput.PersonalInfo.Email")
}

func TestResumeService_Replace(t *testing.T) {
	mockRepo := new(MockResumeRepository)
	resumeService := services.NewResumeService(mockRepo, nil)

	mockRepo.On("Replace", mock.Anything, mock.AnythingOfType("*models.Resume")).Return(nil, apperrors.NotFound("resume not found")).Once()
	_, err := resumeService.Replace(context.Background(), 4, sampleResumeInput())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	mockRepo.On("Replace", mock.Anything, mock.AnythingOfType("*models.Resume")).Return(&models.Resume{ID: 2, UserID: 4}, nil).Once()
	resume, err := resumeService.Replace(context.Background(), 4, sampleResumeInput())
	require.NoError(t, err)
	assert.Equal(t, uint(2), resume.ID)

	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestResumeService_Delete(t *testing.T) {
	mockRepo := new(MockResumeRepository)
	publisher := new(MockPublisher)
	resumeService := services.NewResumeService(mockRepo, publisher)

	mockRepo.On("DeleteByUserID", mock.Anything, uint(4)).Return(nil).Once()
	publisher.On("Publish", mock.Anything, ofType(events.ResumeDeleted)).Return(errors.New("broker down")).Once()

	// A failed publish does not fail the delete.
	assert.NoError(t, resumeService.Delete(context.Background(), 4))

	mockRepo.On("DeleteByUserID", mock.Anything, uint(4)).Return(apperrors.NotFound("resume not found")).Once()
	err := resumeService.Delete(context.Background(), 4)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}
