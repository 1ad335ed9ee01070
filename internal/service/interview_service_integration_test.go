package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/stackmentor/backend/internal/models"
	"github.com/stackmentor/backend/internal/prompts"
	"github.com/stackmentor/backend/internal/repository"
	"github.com/stackmentor/backend/internal/service"
	"github.com/stackmentor/backend/internal/testutil"
	"github.com/stackmentor/backend/pkg/logger"
)

// InterviewServiceIntegrationTestSuite defines test suite
type InterviewServiceIntegrationTestSuite struct {
	suite.Suite
	testDB           *testutil.TestDatabase
	model            *testutil.MockModel
	interviewService *service.InterviewService
	testUser         *models.User
}

// SetupSuite runs before all tests
func (s *InterviewServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	promptBuilder, err := prompts.NewBuilder()
	require.NoError(s.T(), err)

	s.model = &testutil.MockModel{}
	s.interviewService = service.NewInterviewService(
		repository.NewQuestionRepository(s.testDB.DB),
		repository.NewUserRepository(s.testDB.DB),
		repository.NewTechnologyRepository(s.testDB.DB),
		s.model, promptBuilder,
		5*time.Second,
	)
}

// TearDownSuite runs after all tests
func (s *InterviewServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *InterviewServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.model.Reset()

	user, err := testutil.DefaultTestUser()
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.testDB.DB.Create(user).Error)
	s.testUser = user
}

// questionsJSON renders n well-formed questions as a model response.
func questionsJSON(n int, prefix, category, difficulty string) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(
			`{"question": "%s question %d", "category": "%s", "difficulty_level": "%s", "tech_stack": "Go", "expected_answer": "Look for depth"}`,
			prefix, i+1, category, difficulty,
		)
	}
	return out + "]"
}

// TestGenerateExactCount tests that the requested number of questions is
// produced and persisted.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateExactCount() {
	s.model.Script = []testutil.ModelStep{
		{Reply: questionsJSON(5, "goroutine", "Technical", "Mid-level")},
	}

	set, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 4,
		TargetRole:        "Backend Engineer",
		NumQuestions:      5,
		TechStack:         []string{"Go", "PostgreSQL"},
	})
	require.NoError(s.T(), err)
	require.NotNil(s.T(), set)
	assert.Len(s.T(), set.Questions, 5)
	assert.Equal(s.T(), 1, s.model.CallCount())

	var count int64
	s.testDB.DB.Model(&models.InterviewQuestion{}).Count(&count)
	assert.Equal(s.T(), int64(5), count)

	assert.Equal(s.T(), "Backend Engineer", set.UserContext["target_role"])
}

// TestGenerateCategoryRepair tests that off-set categories are repaired
// into the closed set rather than stored verbatim.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateCategoryRepair() {
	s.model.Script = []testutil.ModelStep{
		{Reply: `[
			{"question": "What is a slice?", "category": "technical", "difficulty_level": "Junior"},
			{"question": "Design a URL shortener.", "category": "system  design", "difficulty_level": "Junior"},
			{"question": "Explain quantum entanglement in code.", "category": "Quantum", "difficulty_level": "Junior"}
		]`},
	}

	set, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 1,
		TargetRole:        "Backend Engineer",
		NumQuestions:      3,
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), set.Questions, 3)

	assert.Equal(s.T(), models.CategoryTechnical, set.Questions[0].Category)
	assert.Equal(s.T(), models.CategorySystemDesign, set.Questions[1].Category)
	assert.Equal(s.T(), models.CategoryTechnical, set.Questions[2].Category)

	for _, q := range set.Questions {
		assert.True(s.T(), models.ValidCategory(q.Category))
	}
}

// TestGenerateDifficultyFallback tests that blank or unknown difficulty
// defaults to the level derived from experience.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateDifficultyFallback() {
	s.model.Script = []testutil.ModelStep{
		{Reply: `[{"question": "How do you mentor juniors?", "category": "Behavioral", "difficulty_level": "impossible"}]`},
	}

	set, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 12,
		TargetRole:        "Staff Engineer",
		NumQuestions:      1,
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), set.Questions, 1)
	assert.Equal(s.T(), models.LevelLead, set.Questions[0].DifficultyLevel)
}

// TestGenerateShortfallRetry tests the single remainder retry.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateShortfallRetry() {
	s.model.Script = []testutil.ModelStep{
		{Reply: questionsJSON(3, "channel", "Technical", "Mid-level")},
		{Reply: questionsJSON(2, "interface", "Coding", "Mid-level")},
	}

	set, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 4,
		TargetRole:        "Backend Engineer",
		NumQuestions:      5,
	})
	require.NoError(s.T(), err)
	assert.Len(s.T(), set.Questions, 5)
	assert.Equal(s.T(), 2, s.model.CallCount())
}

// TestGenerateStillShortFails tests that a set that stays incomplete
// after the retry fails instead of returning fewer questions.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateStillShortFails() {
	s.model.Script = []testutil.ModelStep{
		{Reply: questionsJSON(3, "mutex", "Technical", "Mid-level")},
		{Reply: "this is not json"},
	}

	set, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 4,
		TargetRole:        "Backend Engineer",
		NumQuestions:      5,
	})
	assert.ErrorIs(s.T(), err, service.ErrGenerationParse)
	assert.Nil(s.T(), set)

	// Failed generations persist nothing.
	var count int64
	s.testDB.DB.Model(&models.InterviewQuestion{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

// TestGenerateCodeFencedJSON tests that a fenced response still parses.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateCodeFencedJSON() {
	s.model.Script = []testutil.ModelStep{
		{Reply: "```json\n" + questionsJSON(2, "context", "Technical", "Mid-level") + "\n```"},
	}

	set, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 4,
		TargetRole:        "Backend Engineer",
		NumQuestions:      2,
	})
	require.NoError(s.T(), err)
	assert.Len(s.T(), set.Questions, 2)
}

// TestGenerateValidation tests parameter bounds.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateValidation() {
	cases := []service.GenerateRequest{
		{YearsOfExperience: -1, TargetRole: "Engineer", NumQuestions: 5},
		{YearsOfExperience: 60, TargetRole: "Engineer", NumQuestions: 5},
		{YearsOfExperience: 4, TargetRole: "   ", NumQuestions: 5},
		{YearsOfExperience: 4, TargetRole: "Engineer", NumQuestions: 21},
	}

	for _, req := range cases {
		_, err := s.interviewService.Generate(context.Background(), s.testUser.ID, req)
		assert.ErrorIs(s.T(), err, service.ErrInvalidInterviewRequest)
	}
	assert.Equal(s.T(), 0, s.model.CallCount())
}

// TestGenerateStackFallback tests that an empty request stack falls back
// to the stored selection.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateStackFallback() {
	tech := models.Technology{Name: "Rust", Category: "Language"}
	require.NoError(s.T(), s.testDB.DB.Create(&tech).Error)
	require.NoError(s.T(), s.testDB.DB.Create(&models.UserTechnology{
		UserID:       s.testUser.ID,
		TechnologyID: tech.ID,
	}).Error)

	s.model.Script = []testutil.ModelStep{
		{Reply: questionsJSON(1, "ownership", "Technical", "Mid-level")},
	}

	_, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 4,
		TargetRole:        "Systems Engineer",
		NumQuestions:      1,
	})
	require.NoError(s.T(), err)

	prompts := s.model.Prompts()
	require.Len(s.T(), prompts, 1)
	assert.Contains(s.T(), prompts[0], "Rust")
}

// TestPracticeSet tests the fixed-size profile-driven set.
func (s *InterviewServiceIntegrationTestSuite) TestPracticeSet() {
	s.model.Script = []testutil.ModelStep{
		{Reply: questionsJSON(10, "practice", "Technical", "Mid-level")},
	}

	set, err := s.interviewService.PracticeSet(context.Background(), s.testUser.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), set.Questions, 10)
	assert.Equal(s.T(), "Backend Developer", set.UserContext["target_role"])
}

// TestListSavedUnknownCategory tests filter validation.
func (s *InterviewServiceIntegrationTestSuite) TestListSavedUnknownCategory() {
	_, err := s.interviewService.ListSaved(repository.QuestionFilter{Category: "Astrology"})
	assert.ErrorIs(s.T(), err, service.ErrInvalidInterviewRequest)
}

// TestGenerateReusesExistingQuestion tests that identical question text
// maps to the already stored row.
func (s *InterviewServiceIntegrationTestSuite) TestGenerateReusesExistingQuestion() {
	s.model.Script = []testutil.ModelStep{
		{Reply: questionsJSON(2, "dup", "Technical", "Mid-level")},
	}

	first, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 4,
		TargetRole:        "Backend Engineer",
		NumQuestions:      2,
	})
	require.NoError(s.T(), err)

	s.model.Reset()
	s.model.Script = []testutil.ModelStep{
		{Reply: questionsJSON(2, "dup", "Technical", "Mid-level")},
	}

	second, err := s.interviewService.Generate(context.Background(), s.testUser.ID, service.GenerateRequest{
		YearsOfExperience: 4,
		TargetRole:        "Backend Engineer",
		NumQuestions:      2,
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), first.Questions[0].ID, second.Questions[0].ID)

	var count int64
	s.testDB.DB.Model(&models.InterviewQuestion{}).Count(&count)
	assert.Equal(s.T(), int64(2), count)
}

// TestSuite runs all tests in the suite
func TestInterviewServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(InterviewServiceIntegrationTestSuite))
}
