package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/school-api/internal/registry"
)

// GatewayListParams captures generic list options. Field names must already
// be validated against the registry by the caller; values always travel as
// bind parameters.
type GatewayListParams struct {
	SearchField *string
	SearchValue *string
	SortBy      string
	Descending  bool
	Limit       int
	Offset      int
}

// GatewayRepository performs CRUD over any registry table.
type GatewayRepository interface {
	List(ctx context.Context, table *registry.Table, params GatewayListParams) ([]map[string]any, int, error)
	GetByID(ctx context.Context, table *registry.Table, id string) (map[string]any, error)
	Insert(ctx context.Context, table *registry.Table, values map[string]any) (map[string]any, error)
	Update(ctx context.Context, table *registry.Table, id string, values map[string]any) (map[string]any, error)
	Delete(ctx context.Context, table *registry.Table, id string) error
	BulkInsert(ctx context.Context, table *registry.Table, columns []string, records []map[string]any) (int, error)
	Search(ctx context.Context, table *registry.Table, term string, limit int) ([]map[string]any, error)
}

type gatewayRepository struct {
	pool *pgxpool.Pool
}

// NewGatewayRepository instantiates the repository.
func NewGatewayRepository(pool *pgxpool.Pool) GatewayRepository {
	return &gatewayRepository{pool: pool}
}

func (r *gatewayRepository) List(ctx context.Context, table *registry.Table, params GatewayListParams) ([]map[string]any, int, error) {
	where := "1=1"
	args := []any{}

	if params.SearchField != nil && params.SearchValue != nil {
		args = append(args, "%"+*params.SearchValue+"%")
		where = fmt.Sprintf("%s::text ILIKE $%d", *params.SearchField, len(args))
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table.Name, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = table.IDColumn
	}
	order := "ASC"
	if params.Descending {
		order = "DESC"
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		table.Name, where, sortBy, order, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := collectRowMaps(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *gatewayRepository) GetByID(ctx context.Context, table *registry.Table, id string) (map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s::text = $1", table.Name, table.IDColumn)

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSingleRowMap(rows)
}

func (r *gatewayRepository) Insert(ctx context.Context, table *registry.Table, values map[string]any) (map[string]any, error) {
	columns := sortedKeys(values)
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table.Name, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSingleRowMap(rows)
}

func (r *gatewayRepository) Update(ctx context.Context, table *registry.Table, id string, values map[string]any) (map[string]any, error) {
	columns := sortedKeys(values)
	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		args = append(args, values[col])
		assignments[i] = fmt.Sprintf("%s=$%d", col, len(args))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s::text = $%d RETURNING *",
		table.Name, strings.Join(assignments, ", "), table.IDColumn, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSingleRowMap(rows)
}

func (r *gatewayRepository) Delete(ctx context.Context, table *registry.Table, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s::text = $1", table.Name, table.IDColumn)

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *gatewayRepository) BulkInsert(ctx context.Context, table *registry.Table, columns []string, records []map[string]any) (int, error) {
	valueGroups := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*len(columns))

	for _, record := range records {
		placeholders := make([]string, len(columns))
		for i, col := range columns {
			args = append(args, record[col])
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		valueGroups = append(valueGroups, "("+strings.Join(placeholders, ", ")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table.Name, strings.Join(columns, ", "), strings.Join(valueGroups, ", "))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *gatewayRepository) Search(ctx context.Context, table *registry.Table, term string, limit int) ([]map[string]any, error) {
	searchable := table.SearchableColumns()
	if len(searchable) == 0 {
		return []map[string]any{}, nil
	}

	clauses := make([]string, len(searchable))
	for i, col := range searchable {
		clauses[i] = fmt.Sprintf("%s::text ILIKE $1", col)
	}
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT %d",
		table.Name, strings.Join(clauses, " OR "), limit)

	rows, err := r.pool.Query(ctx, query, "%"+term+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRowMaps(rows)
}

func collectRowMaps(rows pgx.Rows) ([]map[string]any, error) {
	fields := rows.FieldDescriptions()
	result := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func collectSingleRowMap(rows pgx.Rows) (map[string]any, error) {
	result, err := collectRowMaps(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, pgx.ErrNoRows
	}
	return result[0], nil
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	// deterministic column order regardless of map iteration
	sort.Strings(keys)
	return keys
}
