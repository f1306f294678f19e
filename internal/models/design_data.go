package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DesignData is a client-authored design document. The server stores it
// verbatim and never interprets its shape.
type DesignData json.RawMessage

func (d DesignData) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *DesignData) UnmarshalJSON(b []byte) error {
	if d == nil {
		return errors.New("design data: UnmarshalJSON on nil pointer")
	}
	*d = append((*d)[0:0], b...)
	return nil
}

// Structured reports whether d holds a JSON object or array.
func (d DesignData) Structured() bool {
	trimmed := bytes.TrimSpace(d)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return false
	}
	return trimmed[0] == '{' || trimmed[0] == '['
}

func (d DesignData) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	if !json.Valid(d) {
		return nil, errors.New("design data: invalid json")
	}
	return string(d), nil
}

func (d *DesignData) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append(DesignData(nil), v...)
	case string:
		*d = DesignData(v)
	default:
		return fmt.Errorf("design data: cannot scan %T", src)
	}
	return nil
}

func (DesignData) GormDataType() string { return "json" }

func (DesignData) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
