package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forgo/inkwell/internal/database"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already exists")
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

	// Handle map format: {"tb": "user", "id": "xxx"} or similar
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

// parseTime parses time from the formats the driver hands back
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// recordData unwraps a QueryOne result down to the record map, normalizing
// the id field and driver datetime values so the map survives a JSON round
// trip into a model struct.
func recordData(result interface{}) (map[string]interface{}, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	// Navigate through SurrealDB response structure
	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, database.ErrNotFound
				}
				result = resultData[0]
			}
		}
	}

	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	normalizeRecord(data)
	return data, nil
}

// normalizeRecord rewrites driver-specific value types in place
func normalizeRecord(data map[string]interface{}) {
	for k, v := range data {
		switch t := v.(type) {
		case models.RecordID, *models.RecordID:
			data[k] = convertSurrealID(t)
		case models.CustomDateTime:
			data[k] = t.Time.Format(time.RFC3339Nano)
		case *models.CustomDateTime:
			if t != nil {
				data[k] = t.Time.Format(time.RFC3339Nano)
			}
		case map[string]interface{}:
			if k == "id" {
				data[k] = convertSurrealID(t)
			}
		}
	}
}

// decodeRecord maps a single query result onto a model struct
func decodeRecord[T any](result interface{}) (*T, error) {
	data, err := recordData(result)
	if err != nil {
		return nil, err
	}
	return decodeData[T](data)
}

func decodeData[T any](data map[string]interface{}) (*T, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// listData unwraps a Query result (first statement) into a slice of
// normalized record maps. An empty result is a valid empty list.
func listData(results []interface{}) ([]map[string]interface{}, error) {
	if len(results) == 0 {
		return nil, nil
	}

	first := results[0]
	resp, ok := first.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	rows, ok := resp["result"].([]interface{})
	if !ok {
		return nil, nil
	}

	records := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		normalizeRecord(data)
		records = append(records, data)
	}
	return records, nil
}

// decodeList maps a Query result onto a slice of model structs
func decodeList[T any](results []interface{}) ([]*T, error) {
	records, err := listData(results)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(records))
	for _, data := range records {
		item, err := decodeData[T](data)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// extractCreated pulls id and audit timestamps from a CREATE result
type createdRecord struct {
	ID         string
	CreatedOn  time.Time
	ModifiedOn time.Time
}

func extractCreated(result []interface{}) (*createdRecord, error) {
	if len(result) == 0 {
		return nil, errors.New("no result returned")
	}

	data, err := recordData(result[0])
	if err != nil {
		return nil, err
	}

	record := &createdRecord{}
	if id, ok := data["id"]; ok {
		record.ID = convertSurrealID(id)
	}
	record.CreatedOn = parseTime(data["created_on"])
	record.ModifiedOn = parseTime(data["modified_on"])
	return record, nil
}
