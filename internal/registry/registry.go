package registry

import "strings"

// Table describes one permitted resource table: its columns, its id column,
// and which columns free-text search may touch. Dynamic identifiers from
// requests are only ever used after validation against this catalog.
type Table struct {
	Name      string
	IDColumn  string
	Columns   []string
	columnSet map[string]struct{}
}

// HasColumn reports whether the column belongs to the table.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columnSet[name]
	return ok
}

// SearchableColumns returns columns eligible for free-text search. Columns
// whose name contains "id" and the password column are excluded.
func (t *Table) SearchableColumns() []string {
	result := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if strings.Contains(col, "id") || col == "password" {
			continue
		}
		result = append(result, col)
	}
	return result
}

// Registry is the startup-time catalog of permitted tables.
type Registry struct {
	tables map[string]*Table
}

// New builds a registry from table definitions.
func New(tables ...Table) *Registry {
	r := &Registry{tables: make(map[string]*Table, len(tables))}
	for i := range tables {
		t := tables[i]
		t.columnSet = make(map[string]struct{}, len(t.Columns))
		for _, col := range t.Columns {
			t.columnSet[col] = struct{}{}
		}
		r.tables[t.Name] = &t
	}
	return r
}

// Lookup resolves a client-supplied table name.
func (r *Registry) Lookup(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Default returns the catalog of tables this service exposes.
func Default() *Registry {
	return New(
		Table{
			Name:     "admin",
			IDColumn: "id",
			Columns:  []string{"id", "email", "password", "name", "surname", "role", "created_at", "updated_at"},
		},
		Table{
			Name:     "teachers",
			IDColumn: "id",
			Columns:  []string{"id", "name", "surname", "email", "password", "salary", "incentives", "created_at", "updated_at"},
		},
		Table{
			Name:     "mentors",
			IDColumn: "id",
			Columns:  []string{"id", "name", "surname", "email", "password", "salary", "incentives", "created_at", "updated_at"},
		},
		Table{
			Name:     "students",
			IDColumn: "student_number",
			Columns:  []string{"student_number", "name", "surname", "email", "grade", "id_num", "province", "address", "password", "group_id", "created_at", "updated_at"},
		},
		Table{
			Name:     "schools",
			IDColumn: "id",
			Columns:  []string{"id", "name", "province", "address", "created_at", "updated_at"},
		},
		Table{
			Name:     "groups",
			IDColumn: "id",
			Columns:  []string{"id", "name", "school", "created_at", "updated_at"},
		},
		Table{
			Name:     "subjects",
			IDColumn: "id",
			Columns:  []string{"id", "name", "description", "created_at", "updated_at"},
		},
		Table{
			Name:     "resources",
			IDColumn: "id",
			Columns:  []string{"id", "name", "subject", "url", "description", "created_at", "updated_at"},
		},
		Table{
			Name:     "quizzes",
			IDColumn: "id",
			Columns:  []string{"id", "name", "subject", "duration", "total_marks", "created_at", "updated_at"},
		},
		Table{
			Name:     "sessions",
			IDColumn: "id",
			Columns:  []string{"id", "hoster", "capacity", "name", "subject", "description", "duration", "start_time", "status", "created_at", "updated_at"},
		},
		Table{
			Name:     "session_participants",
			IDColumn: "id",
			Columns:  []string{"id", "session_id", "student_id", "created_at"},
		},
	)
}
