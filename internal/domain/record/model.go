// Package record holds the typed row model produced by mapping and the
// boxscore identity key that makes loads idempotent.
package record

import (
	"fmt"

	"github.com/statline/statline/internal/domain/fieldspec"
)

// Record is one validated, typed row bound for storage. Values hold
// string, int64, float64 or bool per the catalog's field kinds; a
// missing optional field is simply absent from the map.
type Record struct {
	Sport      string
	DataKind   string
	Season     int
	BoxscoreID string
	Values     map[string]any
}

func (r Record) Validate(catalog *fieldspec.Catalog) error {
	if r.Sport != catalog.Sport {
		return fmt.Errorf("record sport %q does not match catalog %q", r.Sport, catalog.Sport)
	}
	if r.Season <= 0 {
		return fmt.Errorf("record season is required")
	}
	if r.BoxscoreID == "" {
		return fmt.Errorf("record boxscore id is required")
	}

	for _, f := range catalog.Fields {
		v, ok := r.Values[f.Name]
		if !ok || v == nil {
			if f.Required {
				return fmt.Errorf("required field %s is missing", f.Name)
			}
			continue
		}
		if err := checkValue(f, v); err != nil {
			return err
		}
	}

	return nil
}

func checkValue(f fieldspec.FieldSpec, v any) error {
	switch f.Kind {
	case fieldspec.KindText:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("field %s: expected text, got %T", f.Name, v)
		}
	case fieldspec.KindInteger:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("field %s: expected integer, got %T", f.Name, v)
		}
		return checkRange(f, float64(n))
	case fieldspec.KindDecimal:
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("field %s: expected decimal, got %T", f.Name, v)
		}
		return checkRange(f, n)
	case fieldspec.KindBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("field %s: expected boolean, got %T", f.Name, v)
		}
	case fieldspec.KindEnum:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("field %s: expected enum text, got %T", f.Name, v)
		}
		if !f.AllowsEnumValue(s) {
			return fmt.Errorf("field %s: value %q not in %v", f.Name, s, f.Enum)
		}
	}

	return nil
}

func checkRange(f fieldspec.FieldSpec, n float64) error {
	if f.MinValue != nil && n < *f.MinValue {
		return fmt.Errorf("field %s: value %v below minimum %v", f.Name, n, *f.MinValue)
	}
	if f.MaxValue != nil && n > *f.MaxValue {
		return fmt.Errorf("field %s: value %v above maximum %v", f.Name, n, *f.MaxValue)
	}
	return nil
}

// MappingError reports one row-level coercion or validation failure.
// Rows fail individually; the batch continues.
type MappingError struct {
	Row      int
	Field    string
	RawValue string
	Reason   string
}

func (e MappingError) Error() string {
	return fmt.Sprintf("row %d field %s: %s (raw %q)", e.Row, e.Field, e.Reason, e.RawValue)
}
