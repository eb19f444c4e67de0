package models_test

import (
	"testing"

	"resumebuilder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeInput_ToResume(t *testing.T) {
	in := models.ResumeInput{
		PersonalInfo: &models.PersonalInfo{FullName: "John Doe"},
		Summary:      "Hello",
	}
	r := in.ToResume(3)

	assert.Equal(t, uint(3), r.UserID)
	assert.Equal(t, "John Doe", r.PersonalInfo.FullName)
	assert.NotNil(t, r.Education)
	assert.NotNil(t, r.Experience)
	assert.NotNil(t, r.Skills)
}

func TestListColumns_EncodeNilAsEmpty(t *testing.T) {
	edu, err := models.EducationList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", edu)

	skills, err := models.SkillList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", skills)
}

func TestEducationList_Scan(t *testing.T) {
	var list models.EducationList
	require.NoError(t, list.Scan([]byte(`[{"institution":"A","degree":"BSc","field":"CS","startYear":"2016","endYear":"2020"}]`)))
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Institution)

	var empty models.EducationList
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var bad models.EducationList
	assert.Error(t, bad.Scan(`[{"institution":"A","extra":1}]`))
	assert.Error(t, bad.Scan(`[{"institution":"A"}] trailing`))
	assert.Error(t, bad.Scan(42))
}

func TestPersonalInfo_Scan(t *testing.T) {
	var p models.PersonalInfo
	require.NoError(t, p.Scan(`{"fullName":"John","email":"john@example.com","phone":"1","address":"x"}`))
	assert.Equal(t, "john@example.com", p.Email)

	var invalid models.PersonalInfo
	assert.Error(t, invalid.Scan(`{"fullName":"John","email":"nope"}`))
}

func TestSkillList_Scan(t *testing.T) {
	var skills models.SkillList
	require.NoError(t, skills.Scan(`["Go","SQL"]`))
	assert.Equal(t, models.SkillList{"Go", "SQL"}, skills)

	assert.Error(t, skills.Scan(`[1,2]`))
}

func TestUser_View(t *testing.T) {
	email := "john@example.com"
	code := "123456"
	u := &models.User{ID: 1, FullName: "John", Email: &email, Password: "hash", OTPCode: &code, Language: "en"}
	v := u.View()
	assert.Equal(t, uint(1), v.ID)
	assert.Equal(t, &email, v.Email)
	assert.Equal(t, "en", v.Language)
}
