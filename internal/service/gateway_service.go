package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/school-api/internal/auth"
	"github.com/spec-kit/school-api/internal/domain"
	"github.com/spec-kit/school-api/internal/registry"
	"github.com/spec-kit/school-api/internal/repository"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// GatewayListInput captures query options for a generic list call.
type GatewayListInput struct {
	Search      string
	SearchField string
	SortBy      string
	Order       string
	Page        int
	PageSize    int
}

// Pagination is the envelope returned alongside list results.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// NewPagination computes the envelope for a page of results.
func NewPagination(page, size, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	pages := (total + size - 1) / size
	return Pagination{CurrentPage: page, PageSize: size, TotalCount: total, TotalPages: pages}
}

// GatewayService performs CRUD over the registry's table catalog. Every
// dynamic identifier is validated against the registry before any SQL is
// built; the password column never leaves the service.
type GatewayService struct {
	tables     *registry.Registry
	repo       repository.GatewayRepository
	cache      *auth.PrincipalCache
	bcryptCost int
}

// NewGatewayService builds the service.
func NewGatewayService(tables *registry.Registry, repo repository.GatewayRepository, cache *auth.PrincipalCache, bcryptCost int) *GatewayService {
	return &GatewayService{tables: tables, repo: repo, cache: cache, bcryptCost: bcryptCost}
}

func (s *GatewayService) resolve(tableName string) (*registry.Table, error) {
	table, ok := s.tables.Lookup(tableName)
	if !ok {
		return nil, apperrors.NewNotFound("resource", map[string]any{"table": tableName})
	}
	return table, nil
}

// List returns a page of rows plus the pagination envelope.
func (s *GatewayService) List(ctx context.Context, tableName string, input GatewayListInput) ([]map[string]any, Pagination, error) {
	table, err := s.resolve(tableName)
	if err != nil {
		return nil, Pagination{}, err
	}

	params := repository.GatewayListParams{}
	if input.Search != "" || input.SearchField != "" {
		if input.Search == "" || input.SearchField == "" {
			return nil, Pagination{}, apperrors.NewValidationError("search and search_field must be used together", nil)
		}
		if !table.HasColumn(input.SearchField) {
			return nil, Pagination{}, apperrors.NewValidationError("unknown search field", map[string]any{"search_field": input.SearchField})
		}
		params.SearchField = &input.SearchField
		params.SearchValue = &input.Search
	}
	if input.SortBy != "" {
		if !table.HasColumn(input.SortBy) {
			return nil, Pagination{}, apperrors.NewValidationError("unknown sort field", map[string]any{"sort_by": input.SortBy})
		}
		params.SortBy = input.SortBy
	}
	switch strings.ToLower(input.Order) {
	case "", "asc":
	case "desc":
		params.Descending = true
	default:
		return nil, Pagination{}, apperrors.NewValidationError("order must be asc or desc", nil)
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	size := input.PageSize
	if size < 1 {
		size = 10
	}
	params.Limit = size
	params.Offset = (page - 1) * size

	rows, total, err := s.repo.List(ctx, table, params)
	if err != nil {
		return nil, Pagination{}, apperrors.MapError(err)
	}
	for _, row := range rows {
		delete(row, "password")
	}
	return rows, NewPagination(page, size, total), nil
}

// GetByID fetches one row by the table's id column.
func (s *GatewayService) GetByID(ctx context.Context, tableName, id string) (map[string]any, error) {
	table, err := s.resolve(tableName)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, table, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(tableName, nil)
		}
		return nil, apperrors.MapError(err)
	}
	delete(row, "password")
	return row, nil
}

// Create inserts a row built from the request body's fields.
func (s *GatewayService) Create(ctx context.Context, tableName string, values map[string]any) (map[string]any, error) {
	table, err := s.resolve(tableName)
	if err != nil {
		return nil, err
	}
	if err := s.prepareValues(table, values); err != nil {
		return nil, err
	}

	row, err := s.repo.Insert(ctx, table, values)
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("resource already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}
	delete(row, "password")
	return row, nil
}

// Update modifies a row; zero matched rows is a NotFound.
func (s *GatewayService) Update(ctx context.Context, tableName, id string, values map[string]any) (map[string]any, error) {
	table, err := s.resolve(tableName)
	if err != nil {
		return nil, err
	}
	if err := s.prepareValues(table, values); err != nil {
		return nil, err
	}

	row, err := s.repo.Update(ctx, table, id, values)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(tableName, nil)
		}
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("resource already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}
	delete(row, "password")
	return row, nil
}

// Delete removes a row. Deleting from a role table also drops the cached
// principal existence entry so outstanding tokens stop validating.
func (s *GatewayService) Delete(ctx context.Context, tableName, id string) error {
	table, err := s.resolve(tableName)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, table, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound(tableName, nil)
		}
		return apperrors.MapError(err)
	}

	if role, ok := domain.RoleForTable(table.Name); ok {
		if principalID, err := strconv.ParseInt(id, 10, 64); err == nil {
			s.cache.Invalidate(ctx, role, principalID)
		}
	}
	return nil
}

// BulkInsert performs one multi-row insert. The first record's field set
// defines the column list for every row.
func (s *GatewayService) BulkInsert(ctx context.Context, tableName string, records []map[string]any) (int, error) {
	table, err := s.resolve(tableName)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, apperrors.NewValidationError("records must be a non-empty array", nil)
	}

	for _, record := range records {
		if err := s.prepareValues(table, record); err != nil {
			return 0, err
		}
	}

	columns := make([]string, 0, len(records[0]))
	for col := range records[0] {
		columns = append(columns, col)
	}

	count, err := s.repo.BulkInsert(ctx, table, columns, records)
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return 0, apperrors.NewConflict("resource already exists", nil)
		}
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// Search matches the term against every searchable column of the table.
func (s *GatewayService) Search(ctx context.Context, tableName, term string) ([]map[string]any, error) {
	table, err := s.resolve(tableName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(term) == "" {
		return nil, apperrors.NewValidationError("query parameter q is required", nil)
	}

	rows, err := s.repo.Search(ctx, table, term, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, row := range rows {
		delete(row, "password")
	}
	return rows, nil
}

// prepareValues rejects unknown columns and hashes any supplied password so
// plaintext never reaches storage.
func (s *GatewayService) prepareValues(table *registry.Table, values map[string]any) error {
	if len(values) == 0 {
		return apperrors.NewValidationError("request body must contain at least one field", nil)
	}
	for col := range values {
		if !table.HasColumn(col) {
			return apperrors.NewValidationError("unknown column", map[string]any{"column": col})
		}
	}
	if raw, ok := values["password"]; ok {
		plain, ok := raw.(string)
		if !ok || plain == "" {
			return apperrors.NewValidationError("password must be a non-empty string", nil)
		}
		hash, err := auth.HashPassword(plain, s.bcryptCost)
		if err != nil {
			return apperrors.MapError(err)
		}
		values["password"] = hash
	}
	return nil
}
