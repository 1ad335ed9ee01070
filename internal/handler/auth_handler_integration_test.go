package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/stackmentor/backend/internal/handler"
	"github.com/stackmentor/backend/internal/middleware"
	"github.com/stackmentor/backend/internal/repository"
	"github.com/stackmentor/backend/internal/service"
	"github.com/stackmentor/backend/internal/testutil"
	"github.com/stackmentor/backend/pkg/logger"
)

const testJWTSecret = "test-secret-key"

// AuthHandlerIntegrationTestSuite defines test suite
type AuthHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	router *gin.Engine
}

// SetupSuite runs before all tests
func (s *AuthHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	userRepo := repository.NewUserRepository(s.testDB.DB)
	authService := service.NewAuthService(userRepo, testJWTSecret, 1*time.Hour, "development")
	authHandler := handler.NewAuthHandler(authService)

	s.router = gin.New()
	s.router.POST("/api/auth/register", authHandler.Register)
	s.router.POST("/api/auth/login", authHandler.Login)

	protected := s.router.Group("/api")
	protected.Use(middleware.AuthMiddleware(testJWTSecret))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/me", authHandler.UpdateMe)
	}
}

// TearDownSuite runs after all tests
func (s *AuthHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test (clean database)
func (s *AuthHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *AuthHandlerIntegrationTestSuite) postJSON(path string, body interface{}, token string) *httptest.ResponseRecorder {
	return s.doJSON(http.MethodPost, path, body, token)
}

func (s *AuthHandlerIntegrationTestSuite) doJSON(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// TestRegisterSuccess tests successful user registration
func (s *AuthHandlerIntegrationTestSuite) TestRegisterSuccess() {
	w := s.postJSON("/api/auth/register", map[string]interface{}{
		"username":            "newuser",
		"email":               "newuser@example.com",
		"password":            "SecurePass123",
		"full_name":           "New User",
		"years_of_experience": 3,
		"current_role":        "Backend Developer",
	}, "")

	assert.Equal(s.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(s.T(), "User registered successfully", response["message"])
	assert.Equal(s.T(), "bearer", response["token_type"])
	assert.NotEmpty(s.T(), response["access_token"])

	user := response["user"].(map[string]interface{})
	assert.Equal(s.T(), "newuser", user["username"])
	assert.Equal(s.T(), "newuser@example.com", user["email"])
	assert.Equal(s.T(), float64(3), user["years_of_experience"])
	assert.NotContains(s.T(), user, "password_hash", "password hash must never leave the server")
}

// TestRegisterDuplicateEmail tests registration with existing email
func (s *AuthHandlerIntegrationTestSuite) TestRegisterDuplicateEmail() {
	existing, err := testutil.CreateTestUser("existing", "taken@example.com", "Pass123456", 2)
	require.NoError(s.T(), err)
	s.testDB.DB.Create(existing)

	w := s.postJSON("/api/auth/register", map[string]interface{}{
		"username": "different",
		"email":    "taken@example.com",
		"password": "SecurePass123",
	}, "")

	assert.Equal(s.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Contains(s.T(), response["error"], "email already exists")
}

// TestRegisterInvalidInput tests registration with invalid input
func (s *AuthHandlerIntegrationTestSuite) TestRegisterInvalidInput() {
	testCases := []struct {
		name     string
		reqBody  map[string]interface{}
		expected string
	}{
		{
			name: "Short username",
			reqBody: map[string]interface{}{
				"username": "ab",
				"email":    "test@example.com",
				"password": "Pass123456",
			},
			expected: "username must be at least 3 characters",
		},
		{
			name: "Invalid email",
			reqBody: map[string]interface{}{
				"username": "testuser",
				"email":    "invalid-email",
				"password": "Pass123456",
			},
			expected: "invalid email format",
		},
		{
			name: "Short password",
			reqBody: map[string]interface{}{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "short",
			},
			expected: "password must be at least 8 characters",
		},
		{
			name: "Negative experience",
			reqBody: map[string]interface{}{
				"username":            "testuser",
				"email":               "test@example.com",
				"password":            "Pass123456",
				"years_of_experience": -1,
			},
			expected: "years of experience must be non-negative",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.postJSON("/api/auth/register", tc.reqBody, "")

			assert.Equal(s.T(), http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			json.Unmarshal(w.Body.Bytes(), &response)
			assert.Contains(s.T(), response["error"], tc.expected)
		})
	}
}

// TestLoginSuccess tests successful login
func (s *AuthHandlerIntegrationTestSuite) TestLoginSuccess() {
	testUser, err := testutil.CreateTestUser("loginuser", "login@example.com", "LoginPass123", 4)
	require.NoError(s.T(), err)
	s.testDB.DB.Create(testUser)

	w := s.postJSON("/api/auth/login", map[string]interface{}{
		"username": "loginuser",
		"password": "LoginPass123",
	}, "")

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(s.T(), response["access_token"])
	assert.Equal(s.T(), "bearer", response["token_type"])

	user := response["user"].(map[string]interface{})
	assert.Equal(s.T(), "loginuser", user["username"])
}

// TestLoginInvalidCredentials tests login with wrong password
func (s *AuthHandlerIntegrationTestSuite) TestLoginInvalidCredentials() {
	testUser, err := testutil.CreateTestUser("loginuser", "login@example.com", "CorrectPass123", 4)
	require.NoError(s.T(), err)
	s.testDB.DB.Create(testUser)

	w := s.postJSON("/api/auth/login", map[string]interface{}{
		"username": "loginuser",
		"password": "WrongPass123",
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

// TestLoginNonExistentUser tests login with an unknown username
func (s *AuthHandlerIntegrationTestSuite) TestLoginNonExistentUser() {
	w := s.postJSON("/api/auth/login", map[string]interface{}{
		"username": "nobody",
		"password": "SomePass123",
	}, "")

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

// TestMeRoundTrip registers, then reads and updates the profile with the
// issued token.
func (s *AuthHandlerIntegrationTestSuite) TestMeRoundTrip() {
	w := s.postJSON("/api/auth/register", map[string]interface{}{
		"username":            "profileuser",
		"email":               "profile@example.com",
		"password":            "SecurePass123",
		"years_of_experience": 2,
	}, "")
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var registered map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &registered))
	token := registered["access_token"].(string)

	w = s.doJSON(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var me map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(s.T(), "profileuser", me["username"])

	w = s.doJSON(http.MethodPut, "/api/auth/me", map[string]interface{}{
		"current_role":        "Staff Engineer",
		"years_of_experience": 11,
	}, token)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var updated map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(s.T(), "Staff Engineer", updated["current_role"])
	assert.Equal(s.T(), float64(11), updated["years_of_experience"])
}

// TestMeWithoutToken tests that protected routes reject anonymous calls.
func (s *AuthHandlerIntegrationTestSuite) TestMeWithoutToken() {
	w := s.doJSON(http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

// TestSuite runs all tests in the suite
func TestAuthHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerIntegrationTestSuite))
}
