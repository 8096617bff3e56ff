package dto

// BulkInsertRequest wraps the records for a multi-row insert.
type BulkInsertRequest struct {
	Records []map[string]any `json:"records"`
}
