package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// rowScanner is implemented by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// encodeJSON marshals v for a TEXT column.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode column: %w", err)
	}
	return string(b), nil
}

// decodeJSON unmarshals a TEXT column into v. Empty columns are left untouched.
func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	return nil
}

// expectRows reports err when an UPDATE or DELETE touched no rows.
func expectRows(result sql.Result, err error) error {
	rows, rerr := result.RowsAffected()
	if rerr != nil {
		return fmt.Errorf("failed to get affected rows: %w", rerr)
	}
	if rows == 0 {
		return err
	}
	return nil
}
