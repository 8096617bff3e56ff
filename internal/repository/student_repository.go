package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/school-api/internal/domain"
)

// StudentFilter defines query params for student listing.
type StudentFilter struct {
	Grade   *int
	GroupID *int64
	Search  *string
	Limit   int
	Offset  int
}

// StudentRepository handles persistence for students.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	Update(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id int64) (*domain.StudentDetail, error)
	List(ctx context.Context, filter StudentFilter) ([]domain.StudentDetail, int, error)
	Delete(ctx context.Context, id int64) error
	HasConflict(ctx context.Context, excludeID int64, email, idNum string) (bool, error)
}

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	const query = `
        INSERT INTO students (name, surname, email, grade, id_num, province, address, password, group_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING student_number, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		student.Name,
		student.Surname,
		student.Email,
		student.Grade,
		student.IDNum,
		student.Province,
		student.Address,
		student.PasswordHash,
		student.GroupID,
	).Scan(&student.StudentNumber, &student.CreatedAt, &student.UpdatedAt)
}

func (r *studentRepository) Update(ctx context.Context, student *domain.Student) error {
	const query = `
        UPDATE students
        SET name=$1, surname=$2, email=$3, grade=$4, id_num=$5, province=$6, address=$7, group_id=$8, updated_at=NOW()
        WHERE student_number=$9`

	cmd, err := r.pool.Exec(ctx, query,
		student.Name,
		student.Surname,
		student.Email,
		student.Grade,
		student.IDNum,
		student.Province,
		student.Address,
		student.GroupID,
		student.StudentNumber,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const studentSelect = `
        SELECT s.student_number, s.name, s.surname, s.email, s.grade, s.id_num,
               s.province, s.address, s.password, s.group_id, s.created_at, s.updated_at,
               g.name AS group_name, sch.name AS school_name
        FROM students s
        LEFT JOIN groups g ON s.group_id = g.id
        LEFT JOIN schools sch ON g.school = sch.id`

func (r *studentRepository) GetByID(ctx context.Context, id int64) (*domain.StudentDetail, error) {
	query := studentSelect + " WHERE s.student_number=$1"

	var student domain.StudentDetail
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&student.StudentNumber,
		&student.Name,
		&student.Surname,
		&student.Email,
		&student.Grade,
		&student.IDNum,
		&student.Province,
		&student.Address,
		&student.PasswordHash,
		&student.GroupID,
		&student.CreatedAt,
		&student.UpdatedAt,
		&student.GroupName,
		&student.SchoolName,
	); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]domain.StudentDetail, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Grade != nil {
		args = append(args, *filter.Grade)
		clauses = append(clauses, fmt.Sprintf("s.grade=$%d", len(args)))
	}
	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		clauses = append(clauses, fmt.Sprintf("s.group_id=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(s.name ILIKE %s OR s.surname ILIKE %s OR s.email ILIKE %s)",
			placeholder, placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM students s WHERE " + where
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

	query := fmt.Sprintf("%s WHERE %s ORDER BY s.created_at DESC LIMIT %d OFFSET %d",
		studentSelect, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.StudentDetail
	for rows.Next() {
		var student domain.StudentDetail
		if err := rows.Scan(
			&student.StudentNumber,
			&student.Name,
			&student.Surname,
			&student.Email,
			&student.Grade,
			&student.IDNum,
			&student.Province,
			&student.Address,
			&student.PasswordHash,
			&student.GroupID,
			&student.CreatedAt,
			&student.UpdatedAt,
			&student.GroupName,
			&student.SchoolName,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, student)
	}
	return result, total, rows.Err()
}

func (r *studentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM students WHERE student_number=$1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// HasConflict reports whether another student already uses the email or
// national id number. excludeID skips the row being updated; pass 0 on create.
func (r *studentRepository) HasConflict(ctx context.Context, excludeID int64, email, idNum string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM students
            WHERE student_number != $1 AND (email = $2 OR id_num = $3)
        )`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, excludeID, email, idNum).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
