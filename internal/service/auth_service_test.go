package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/origenhr/advance-api/internal/models"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

type mockAuthRepo struct {
	employeeByEmail  *models.Employee
	employeeByID     *models.Employee
	findByEmailErr   error
	findByIDErr      error
	refreshTokens    map[string]*models.RefreshToken
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.employeeByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.employeeByID != nil {
		return m.employeeByID, nil
	}
	return m.employeeByEmail, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) RevokeEmployeeRefreshTokens(ctx context.Context, employeeID string) error {
	now := time.Now().UTC()
	for _, token := range m.refreshTokens {
		if token.EmployeeID == employeeID && !token.Revoked {
			token.Revoked = true
			token.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "advance-api",
	})
}

func testEmployee(t *testing.T, password string) *models.Employee {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Employee{
		ID:           "emp-1",
		EmployeeCode: "EMP-001",
		Name:         "Jane Doe",
		Email:        "jane@origenhr.com",
		PasswordHash: string(hash),
		Role:         models.RoleEmployee,
		Salary:       45000,
		Active:       true,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{employeeByEmail: testEmployee(t, "password")}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@origenhr.com", Password: "password"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.InDelta(t, 30000, res.EligibleAmount, 1e-9)
	require.Equal(t, "EMP-001", res.Employee.EmployeeCode)
	require.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "emp-1", claims.EmployeeID)
	require.Equal(t, models.RoleEmployee, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{employeeByEmail: testEmployee(t, "password")}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@origenhr.com", Password: "nope"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@origenhr.com", Password: "password"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	employee := testEmployee(t, "password")
	employee.Active = false
	repo := &mockAuthRepo{employeeByEmail: employee}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@origenhr.com", Password: "password"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockAuthRepo{employeeByEmail: testEmployee(t, "password")}
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@origenhr.com", Password: "password"})
	require.NoError(t, err)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, res.RefreshToken)
	require.True(t, repo.refreshTokens[login.RefreshToken].Revoked)

	// The spent token cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := &mockAuthRepo{employeeByEmail: testEmployee(t, "password")}
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@origenhr.com", Password: "password"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "emp-1"))
	require.True(t, repo.refreshTokens[login.RefreshToken].Revoked)
}

func TestAuthServiceLogoutAllRevokesEverySession(t *testing.T) {
	repo := &mockAuthRepo{employeeByEmail: testEmployee(t, "password")}
	svc := newTestAuthService(repo)

	first, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@origenhr.com", Password: "password"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@origenhr.com", Password: "password"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(context.Background(), "emp-1"))
	require.True(t, repo.refreshTokens[first.RefreshToken].Revoked)
	require.True(t, repo.refreshTokens[second.RefreshToken].Revoked)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
