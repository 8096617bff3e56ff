package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/school-api/internal/auth"
	"github.com/spec-kit/school-api/internal/config"
	"github.com/spec-kit/school-api/internal/domain"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

type fakePrincipalRepo struct {
	creds map[string]*domain.Credential
}

func credKey(role domain.Role, email string) string {
	return string(role) + "|" + email
}

func (f *fakePrincipalRepo) GetCredentialByEmail(_ context.Context, role domain.Role, email string) (*domain.Credential, error) {
	cred, ok := f.creds[credKey(role, email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cred, nil
}

func (f *fakePrincipalRepo) GetByID(_ context.Context, role domain.Role, id int64) (*domain.Principal, error) {
	for key, cred := range f.creds {
		if cred.ID == id && key == credKey(role, cred.Email) {
			return &domain.Principal{ID: cred.ID, Email: cred.Email, Name: cred.Name, Surname: cred.Surname, Role: role}, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func testAuthConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1}}
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	return domainErr.Code
}

func newFakePrincipals(t *testing.T) *fakePrincipalRepo {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	require.NoError(t, err)
	return &fakePrincipalRepo{creds: map[string]*domain.Credential{
		credKey(domain.RoleTeacher, "t@example.com"): {
			ID: 5, Email: "t@example.com", Name: "Thandi", Surname: "Mokoena", PasswordHash: hash,
		},
	}}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(testAuthConfig(), newFakePrincipals(t), nil)

	result, err := svc.Login(context.Background(), "t@example.com", "password123", "teacher")
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Principal.ID)
	assert.Equal(t, domain.RoleTeacher, result.Principal.Role)
	assert.NotEmpty(t, result.Token)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, domain.RoleTeacher, claims.UserType)
}

func TestLoginValidation(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(testAuthConfig(), newFakePrincipals(t), nil)

	cases := []struct {
		name, email, password, userType, code string
	}{
		{"missing email", "", "password123", "teacher", "VALIDATION_FAILED"},
		{"missing password", "t@example.com", "", "teacher", "VALIDATION_FAILED"},
		{"missing user type", "t@example.com", "password123", "", "VALIDATION_FAILED"},
		{"malformed email", "not-an-email", "password123", "teacher", "VALIDATION_FAILED"},
		{"unknown user type", "t@example.com", "password123", "superuser", "UNKNOWN_USER_TYPE"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Login(context.Background(), tc.email, tc.password, tc.userType)
			require.Error(t, err)
			assert.Equal(t, tc.code, errorCode(t, err))
		})
	}
}

func TestLoginUniformFailure(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(testAuthConfig(), newFakePrincipals(t), nil)

	_, missErr := svc.Login(context.Background(), "nobody@example.com", "password123", "teacher")
	require.Error(t, missErr)

	_, pwErr := svc.Login(context.Background(), "t@example.com", "wrong-password", "teacher")
	require.Error(t, pwErr)

	// unknown account and wrong password must be indistinguishable
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, missErr))
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, pwErr))
	assert.Equal(t, missErr.Error(), pwErr.Error())
}

func TestLoginWrongRoleTable(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(testAuthConfig(), newFakePrincipals(t), nil)

	// account exists in teachers, login attempted as mentor
	_, err := svc.Login(context.Background(), "t@example.com", "password123", "mentor")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, err))
}
