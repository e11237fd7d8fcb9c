package database

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// First unwraps the first record of the first statement in a Query result.
// Scalar statement results are returned as-is.
func First(results []interface{}) (interface{}, error) {
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	first := results[0]
	resp, ok := first.(map[string]interface{})
	if !ok {
		return first, nil
	}
	if status, ok := resp["status"].(string); !ok || status != "OK" {
		return first, nil
	}
	rows, ok := resp["result"].([]interface{})
	if !ok {
		return resp["result"], nil
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Rows returns the records of the first statement in a Query result.
func Rows(results []interface{}) []interface{} {
	if len(results) == 0 {
		return nil
	}
	if resp, ok := results[0].(map[string]interface{}); ok {
		if rows, ok := resp["result"].([]interface{}); ok {
			return rows
		}
	}
	return results
}

// RecordID extracts the "table:key" id of a record, or of a raw id value.
func RecordID(v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok && m["tb"] == nil {
		if id, ok := m["id"]; ok {
			v = id
		}
	}
	switch id := v.(type) {
	case string:
		return id
	case models.RecordID:
		return id.String()
	case *models.RecordID:
		if id != nil {
			return id.String()
		}
		return ""
	case map[string]interface{}:
		if tb, ok := id["tb"].(string); ok {
			if key, ok := id["id"].(string); ok {
				return tb + ":" + key
			}
		}
	}

	if data, err := json.Marshal(v); err == nil {
		var recordID models.RecordID
		if err := json.Unmarshal(data, &recordID); err == nil {
			return recordID.String()
		}
	}
	return ""
}

// SplitRecordID splits "table:key" into its parts.
func SplitRecordID(id string) (table, key string, err error) {
	table, key, ok := strings.Cut(id, ":")
	if !ok || table == "" || key == "" {
		return "", "", fmt.Errorf("malformed record id %q", id)
	}
	return table, strings.Trim(key, "⟨⟩`"), nil
}

// Count reads the count field of a "SELECT count() ... GROUP ALL" result.
func Count(results []interface{}) int {
	rows := Rows(results)
	if len(rows) == 0 {
		return 0
	}
	data, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0
	}
	switch c := data["count"].(type) {
	case float64:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	}
	return 0
}

// UnmarshalResult unwraps a Query or QueryOne result down to a single
// value of type T.
func UnmarshalResult[T any](result interface{}) (T, error) {
	var zero T

	if results, ok := result.([]interface{}); ok {
		first, err := First(results)
		if err != nil {
			return zero, err
		}
		result = first
	}

	if typed, ok := result.(T); ok {
		return typed, nil
	}
	return zero, fmt.Errorf("failed to unmarshal result to type %T", zero)
}
