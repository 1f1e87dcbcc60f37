package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/bookshelf/internal/database"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Record tables
const (
	tableBook    = "book"
	tablePost    = "post"
	tableComment = "comment"
	tableUser    = "user"
)

// scopedID returns id as a "table:key" record id when it names a record of
// table. Bare keys are accepted. Ids of any other table, and keys with
// characters outside [A-Za-z0-9_], are refused.
func scopedID(table, id string) (string, bool) {
	key := id
	if tb, k, found := strings.Cut(id, ":"); found {
		if tb != table {
			return "", false
		}
		key = k
	}
	if key == "" {
		return "", false
	}
	for _, c := range key {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return "", false
		}
	}
	return table + ":" + key, true
}

// statementRows returns the result rows of statement idx in a multi-statement query
func statementRows(results []interface{}, idx int) []interface{} {
	if idx >= len(results) {
		return nil
	}
	if resp, ok := results[idx].(map[string]interface{}); ok {
		if rows, ok := resp["result"].([]interface{}); ok {
			return rows
		}
		return nil
	}
	return nil
}

// decodeRecord converts one SurrealDB record into T. Record links become
// "table:id" strings and datetimes become time.Time before the JSON round trip.
func decodeRecord[T any](raw interface{}) (*T, error) {
	if raw == nil {
		return nil, database.ErrNotFound
	}
	data, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	jsonBytes, err := json.Marshal(normalizeRecord(data))
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &out, nil
}

// decodeRows decodes every row of a statement result
func decodeRows[T any](rows []interface{}) ([]*T, error) {
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		item, err := decodeRecord[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func normalizeRecord(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case models.RecordID, *models.RecordID:
		return convertSurrealID(t)
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t == nil {
			return nil
		}
		return t.Time
	case []interface{}:
		items := make([]interface{}, len(t))
		for i, item := range t {
			items[i] = normalizeValue(item)
		}
		return items
	case map[string]interface{}:
		// record link expanded as {tb, id}
		if _, hasTB := t["tb"]; hasTB {
			return convertSurrealID(t)
		}
		return normalizeRecord(t)
	}
	return v
}

// convertSurrealID converts a SurrealDB ID (which may be a complex object) to a string
func convertSurrealID(id interface{}) string {
	if str, ok := id.(string); ok {
		return str
	}

	if rid, ok := id.(models.RecordID); ok {
		return fmt.Sprintf("%s:%v", rid.Table, rid.ID)
	}
	if rid, ok := id.(*models.RecordID); ok && rid != nil {
		return fmt.Sprintf("%s:%v", rid.Table, rid.ID)
	}

	// {"tb": "book", "id": {"String": "abc"}} or similar
	if m, ok := id.(map[string]interface{}); ok {
		tb := ""
		idPart := ""

		if t, ok := m["tb"].(string); ok {
			tb = t
		} else if t, ok := m["Table"].(string); ok {
			tb = t
		}

		if idVal, ok := m["id"]; ok {
			idPart = extractIDValue(idVal)
		} else if idVal, ok := m["ID"]; ok {
			idPart = extractIDValue(idVal)
		}

		if tb != "" && idPart != "" {
			return tb + ":" + idPart
		}
		if idPart != "" {
			return idPart
		}
	}

	return fmt.Sprintf("%v", id)
}

// extractIDValue extracts the ID value which may be nested
func extractIDValue(val interface{}) string {
	if str, ok := val.(string); ok {
		return str
	}
	if m, ok := val.(map[string]interface{}); ok {
		if s, ok := m["String"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", val)
}

// extractCount reads {count: n} from the first row of a statement result
func extractCount(rows []interface{}) int {
	if len(rows) == 0 {
		return 0
	}
	if data, ok := rows[0].(map[string]interface{}); ok {
		return extractCountValue(data["count"])
	}
	return 0
}

// extractCountValue converts various numeric types to int
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
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

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// notFoundAsNil turns database.ErrNotFound into a nil record
func notFoundAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// firstRow returns the first row of the first statement, nil when empty
func firstRow(results []interface{}) interface{} {
	rows := statementRows(results, 0)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// lastRow returns the first row of the last statement, for LET ... ; SELECT queries
func lastRow(results []interface{}) interface{} {
	if len(results) == 0 {
		return nil
	}
	rows := statementRows(results, len(results)-1)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}
