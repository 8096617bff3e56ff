package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/school-api/internal/domain"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// Enrollment failure signals surfaced to the service layer.
var (
	ErrSessionFull     = errors.New("session full")
	ErrAlreadyEnrolled = errors.New("student already enrolled")
)

// SessionFilter captures session listing parameters.
type SessionFilter struct {
	Subject  *int64
	Hoster   *int64
	Status   *domain.SessionStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// SessionRepository encapsulates session persistence.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	List(ctx context.Context, filter SessionFilter) ([]domain.SessionSummary, int, error)
	Enroll(ctx context.Context, sessionID, studentID int64) error
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (hoster, capacity, name, subject, description, duration, start_time, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		session.Hoster,
		session.Capacity,
		session.Name,
		session.Subject,
		session.Description,
		session.Duration,
		session.StartTime,
		session.Status,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
}

func (r *sessionRepository) List(ctx context.Context, filter SessionFilter) ([]domain.SessionSummary, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Subject != nil {
		args = append(args, *filter.Subject)
		clauses = append(clauses, fmt.Sprintf("s.subject=$%d", len(args)))
	}
	if filter.Hoster != nil {
		args = append(args, *filter.Hoster)
		clauses = append(clauses, fmt.Sprintf("s.hoster=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("s.status=$%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("s.start_time >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		clauses = append(clauses, fmt.Sprintf("s.start_time <= $%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM sessions s WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// hoster_name coalesces over teachers and mentors: the hoster id may live
	// in either table.
	query := fmt.Sprintf(`
        SELECT s.id, s.hoster, s.capacity, s.name, s.subject, s.description,
               s.duration, s.start_time, s.status, s.created_at, s.updated_at,
               sub.name AS subject_name,
               COUNT(sp.student_id) AS enrolled_count,
               CASE
                   WHEN t.id IS NOT NULL THEN t.name || ' ' || t.surname
                   WHEN m.id IS NOT NULL THEN m.name || ' ' || m.surname
               END AS hoster_name
        FROM sessions s
        LEFT JOIN subjects sub ON s.subject = sub.id
        LEFT JOIN teachers t ON s.hoster = t.id
        LEFT JOIN mentors m ON s.hoster = m.id
        LEFT JOIN session_participants sp ON s.id = sp.session_id
        WHERE %s
        GROUP BY s.id, sub.name, t.id, t.name, t.surname, m.id, m.name, m.surname
        ORDER BY s.start_time DESC
        LIMIT %d OFFSET %d`, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.SessionSummary
	for rows.Next() {
		var session domain.SessionSummary
		if err := rows.Scan(
			&session.ID,
			&session.Hoster,
			&session.Capacity,
			&session.Name,
			&session.Subject,
			&session.Description,
			&session.Duration,
			&session.StartTime,
			&session.Status,
			&session.CreatedAt,
			&session.UpdatedAt,
			&session.SubjectName,
			&session.EnrolledCount,
			&session.HosterName,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, session)
	}
	return result, total, rows.Err()
}

// Enroll inserts the participation row inside a transaction that locks the
// session row first, so concurrent requests for the last seat serialize on
// the capacity check. The unique (session_id, student_id) constraint is the
// authoritative duplicate signal.
func (r *sessionRepository) Enroll(ctx context.Context, sessionID, studentID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var capacity int
	if err := tx.QueryRow(ctx,
		"SELECT capacity FROM sessions WHERE id=$1 FOR UPDATE", sessionID,
	).Scan(&capacity); err != nil {
		return err
	}

	var enrolled int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM session_participants WHERE session_id=$1", sessionID,
	).Scan(&enrolled); err != nil {
		return err
	}
	if enrolled >= capacity {
		return ErrSessionFull
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO session_participants (session_id, student_id) VALUES ($1,$2)",
		sessionID, studentID,
	); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return ErrAlreadyEnrolled
		}
		return err
	}

	return tx.Commit(ctx)
}
