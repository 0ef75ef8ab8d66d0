package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonValue marshals a slice/struct column into its JSON database form.
func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// jsonScan unmarshals a JSON database column into dest.
func jsonScan(dest interface{}, src interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}

// StringList is a JSON array column of strings.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return jsonValue(l)
}

func (l *StringList) Scan(src interface{}) error { return jsonScan(l, src) }

// Contains reports whether s is present in the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}
