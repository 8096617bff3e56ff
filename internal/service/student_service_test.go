package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/school-api/internal/auth"
	"github.com/spec-kit/school-api/internal/domain"
	"github.com/spec-kit/school-api/internal/repository"
)

type fakeStudentRepo struct {
	nextID   int64
	students map[int64]*domain.StudentDetail
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{nextID: 1, students: make(map[int64]*domain.StudentDetail)}
}

func (f *fakeStudentRepo) Create(_ context.Context, student *domain.Student) error {
	student.StudentNumber = f.nextID
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	f.nextID++
	f.students[student.StudentNumber] = &domain.StudentDetail{Student: *student}
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *domain.Student) error {
	existing, ok := f.students[student.StudentNumber]
	if !ok {
		return pgx.ErrNoRows
	}
	student.CreatedAt = existing.CreatedAt
	student.UpdatedAt = time.Now()
	f.students[student.StudentNumber] = &domain.StudentDetail{Student: *student}
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id int64) (*domain.StudentDetail, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *student
	return &copied, nil
}

func (f *fakeStudentRepo) List(_ context.Context, _ repository.StudentFilter) ([]domain.StudentDetail, int, error) {
	result := make([]domain.StudentDetail, 0, len(f.students))
	for _, student := range f.students {
		result = append(result, *student)
	}
	return result, len(result), nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.students[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) HasConflict(_ context.Context, excludeID int64, email, idNum string) (bool, error) {
	for _, student := range f.students {
		if student.StudentNumber == excludeID {
			continue
		}
		if student.Email == email || student.IDNum == idNum {
			return true, nil
		}
	}
	return false, nil
}

func validStudentInput() StudentCreateInput {
	return StudentCreateInput{
		Name:     "Lerato",
		Surname:  "Dlamini",
		Email:    "lerato@example.com",
		Grade:    10,
		IDNum:    "0601014800086",
		Province: "Gauteng",
		Address:  "12 Main Rd",
		Password: "secret123",
	}
}

func newStudentService(repo repository.StudentRepository) *StudentService {
	return NewStudentService(repo, auth.NewPrincipalCache(nil, 60), nil, 4)
}

func TestStudentCreate(t *testing.T) {
	t.Parallel()

	svc := newStudentService(newFakeStudentRepo())

	student, err := svc.Create(context.Background(), validStudentInput())
	require.NoError(t, err)
	assert.NotZero(t, student.StudentNumber)
	assert.NotEqual(t, "secret123", student.PasswordHash)
	assert.NoError(t, auth.ComparePassword(student.PasswordHash, "secret123"))
}

func TestStudentCreateSanitizesInput(t *testing.T) {
	t.Parallel()

	svc := newStudentService(newFakeStudentRepo())

	input := validStudentInput()
	input.Name = "  Lerato<script>alert(1)</script>  "
	student, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Lerato", student.Name)
}

func TestStudentCreateValidation(t *testing.T) {
	t.Parallel()

	svc := newStudentService(newFakeStudentRepo())

	cases := []struct {
		name   string
		mutate func(*StudentCreateInput)
	}{
		{"missing name", func(in *StudentCreateInput) { in.Name = "" }},
		{"missing email", func(in *StudentCreateInput) { in.Email = "" }},
		{"bad email", func(in *StudentCreateInput) { in.Email = "not-an-email" }},
		{"grade too high", func(in *StudentCreateInput) { in.Grade = 13 }},
		{"short id number", func(in *StudentCreateInput) { in.IDNum = "12345" }},
		{"short password", func(in *StudentCreateInput) { in.Password = "abc" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			input := validStudentInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
		})
	}
}

func TestStudentCreateConflict(t *testing.T) {
	t.Parallel()

	svc := newStudentService(newFakeStudentRepo())

	_, err := svc.Create(context.Background(), validStudentInput())
	require.NoError(t, err)

	dup := validStudentInput()
	dup.IDNum = "0601014800185"
	_, err = svc.Create(context.Background(), dup)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", errorCode(t, err))

	dup = validStudentInput()
	dup.Email = "other@example.com"
	_, err = svc.Create(context.Background(), dup)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", errorCode(t, err))
}

func TestStudentUpdate(t *testing.T) {
	t.Parallel()

	repo := newFakeStudentRepo()
	svc := newStudentService(repo)

	created, err := svc.Create(context.Background(), validStudentInput())
	require.NoError(t, err)

	newName := "Naledi"
	updated, err := svc.Update(context.Background(), created.StudentNumber, StudentUpdateInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Naledi", updated.Name)
	assert.Equal(t, created.Email, updated.Email)
}

func TestStudentUpdateKeepingOwnEmail(t *testing.T) {
	t.Parallel()

	svc := newStudentService(newFakeStudentRepo())

	created, err := svc.Create(context.Background(), validStudentInput())
	require.NoError(t, err)

	// re-submitting the student's own email must not trip the conflict check
	email := created.Email
	_, err = svc.Update(context.Background(), created.StudentNumber, StudentUpdateInput{Email: &email})
	assert.NoError(t, err)
}

func TestStudentUpdateConflictWithOther(t *testing.T) {
	t.Parallel()

	svc := newStudentService(newFakeStudentRepo())

	first, err := svc.Create(context.Background(), validStudentInput())
	require.NoError(t, err)

	second := validStudentInput()
	second.Email = "other@example.com"
	second.IDNum = "0601014800185"
	other, err := svc.Create(context.Background(), second)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), other.StudentNumber, StudentUpdateInput{Email: &first.Email})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", errorCode(t, err))
}

func TestStudentUpdateNotFound(t *testing.T) {
	t.Parallel()

	svc := newStudentService(newFakeStudentRepo())

	name := "Nobody"
	_, err := svc.Update(context.Background(), 999, StudentUpdateInput{Name: &name})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestStudentDelete(t *testing.T) {
	t.Parallel()

	svc := newStudentService(newFakeStudentRepo())

	created, err := svc.Create(context.Background(), validStudentInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.StudentNumber))

	_, err = svc.GetByID(context.Background(), created.StudentNumber)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	err = svc.Delete(context.Background(), created.StudentNumber)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}
