package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/school-api/internal/domain"
)

// PrincipalRepository reads credential rows out of the role-specific tables.
// Which table a row lives in is what determines the role.
type PrincipalRepository interface {
	GetCredentialByEmail(ctx context.Context, role domain.Role, email string) (*domain.Credential, error)
	GetByID(ctx context.Context, role domain.Role, id int64) (*domain.Principal, error)
}

type principalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(pool *pgxpool.Pool) PrincipalRepository {
	return &principalRepository{pool: pool}
}

func (r *principalRepository) GetCredentialByEmail(ctx context.Context, role domain.Role, email string) (*domain.Credential, error) {
	// Table and id column come from the fixed role enum, never from input.
	query := fmt.Sprintf(`
        SELECT %s, email, password, name, surname
        FROM %s WHERE email=$1`, role.IDColumn(), role.Table())

	var cred domain.Credential
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&cred.ID,
		&cred.Email,
		&cred.PasswordHash,
		&cred.Name,
		&cred.Surname,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *principalRepository) GetByID(ctx context.Context, role domain.Role, id int64) (*domain.Principal, error) {
	query := fmt.Sprintf(`
        SELECT %s, email, name, surname
        FROM %s WHERE %s=$1`, role.IDColumn(), role.Table(), role.IDColumn())

	principal := domain.Principal{Role: role}
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&principal.ID,
		&principal.Email,
		&principal.Name,
		&principal.Surname,
	); err != nil {
		return nil, err
	}
	return &principal, nil
}
