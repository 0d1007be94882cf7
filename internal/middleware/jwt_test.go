package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/internal/service"
)

type stubEmployeeRepo struct {
	employee *models.Employee
	tokens   map[string]*models.RefreshToken
}

func (s *stubEmployeeRepo) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	if s.employee == nil || s.employee.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.employee, nil
}

func (s *stubEmployeeRepo) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if s.employee == nil || s.employee.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.employee, nil
}

func (s *stubEmployeeRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *stubEmployeeRepo) RevokeEmployeeRefreshTokens(ctx context.Context, employeeID string) error {
	return nil
}

func (s *stubEmployeeRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if s.tokens == nil {
		s.tokens = make(map[string]*models.RefreshToken)
	}
	s.tokens[token.Token] = token
	return nil
}

func (s *stubEmployeeRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := s.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (s *stubEmployeeRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return nil
}

func newJWTFixture(t *testing.T, role models.Role) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubEmployeeRepo{employee: &models.Employee{
		ID:           "emp-1",
		EmployeeCode: "EMP-001",
		Name:         "Jane Doe",
		Email:        "jane@origenhr.com",
		PasswordHash: string(hash),
		Role:         role,
		Salary:       45000,
		Active:       true,
	}}

	auth := service.NewAuthService(repo, nil, zap.NewNop(), service.AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})

	login, err := auth.Login(context.Background(), models.LoginRequest{Email: "jane@origenhr.com", Password: "password"})
	require.NoError(t, err)

	r := gin.New()
	protected := r.Group("/", JWT(auth))
	protected.GET("/mine", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	protected.GET("/reviewers", RequireRoles(models.RoleHR, models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r, login.AccessToken
}

func TestJWTMissingAndMalformedTokens(t *testing.T) {
	r, _ := newJWTFixture(t, models.RoleEmployee)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mine", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mine", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/mine", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTValidTokenPasses(t *testing.T) {
	r, token := newJWTFixture(t, models.RoleEmployee)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesGatesByRole(t *testing.T) {
	r, employeeToken := newJWTFixture(t, models.RoleEmployee)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviewers", nil)
	req.Header.Set("Authorization", "Bearer "+employeeToken)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r, hrToken := newJWTFixture(t, models.RoleHR)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/reviewers", nil)
	req.Header.Set("Authorization", "Bearer "+hrToken)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
