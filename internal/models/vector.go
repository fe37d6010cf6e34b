package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Vector is an embedding stored as a JSON array so that Postgres and SQLite
// share one column type.
type Vector []float32

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal([]float32(v))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(src interface{}) error {
	switch s := src.(type) {
	case nil:
		*v = nil
		return nil
	case string:
		return json.Unmarshal([]byte(s), (*[]float32)(v))
	case []byte:
		return json.Unmarshal(s, (*[]float32)(v))
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}
}
