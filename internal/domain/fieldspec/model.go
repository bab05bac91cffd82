// Package fieldspec describes the per-sport field catalogs that drive
// record mapping and storage schema derivation.
package fieldspec

import "fmt"

// Kind is the primitive type a field's cell text is coerced into.
type Kind string

const (
	KindText    Kind = "text"
	KindInteger Kind = "integer"
	KindDecimal Kind = "decimal"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
)

var AllKinds = map[Kind]struct{}{
	KindText:    {},
	KindInteger: {},
	KindDecimal: {},
	KindBoolean: {},
	KindEnum:    {},
}

// FieldSpec is one catalog entry: how a source column is named, typed,
// validated, and stored.
type FieldSpec struct {
	// Name is the logical field and storage column name.
	Name string
	// Label is the display header under which the field appears in
	// source tables. Empty means the label equals Name.
	Label    string
	Kind     Kind
	Required bool
	// Enum lists the allowed values for KindEnum fields.
	Enum []string
	// MinValue and MaxValue bound numeric fields when set.
	MinValue *float64
	MaxValue *float64
	// Indexed marks the field as a sport-specific secondary index hint.
	Indexed bool
}

func (f FieldSpec) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func (f FieldSpec) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("field name is required")
	}
	if _, ok := AllKinds[f.Kind]; !ok {
		return fmt.Errorf("invalid kind for field %s: %s", f.Name, f.Kind)
	}
	if f.Kind == KindEnum && len(f.Enum) == 0 {
		return fmt.Errorf("enum field %s declares no values", f.Name)
	}
	if f.Kind != KindEnum && len(f.Enum) > 0 {
		return fmt.Errorf("non-enum field %s declares enum values", f.Name)
	}
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return fmt.Errorf("field %s has min %v greater than max %v", f.Name, *f.MinValue, *f.MaxValue)
	}

	return nil
}

func (f FieldSpec) AllowsEnumValue(value string) bool {
	for _, v := range f.Enum {
		if v == value {
			return true
		}
	}
	return false
}

// Catalog is the immutable field set for one (sport, data kind) pair,
// loaded once at startup and passed explicitly to mapping and schema
// derivation.
type Catalog struct {
	// Sport is the schema name in the store, e.g. "nfl".
	Sport string
	// DataKind names the logical table, e.g. "game_log".
	DataKind string
	Fields   []FieldSpec

	byName  map[string]int
	byLabel map[string]int
}

func NewCatalog(sport, dataKind string, fields []FieldSpec) (*Catalog, error) {
	if sport == "" {
		return nil, fmt.Errorf("catalog sport is required")
	}
	if dataKind == "" {
		return nil, fmt.Errorf("catalog data kind is required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("catalog %s.%s has no fields", sport, dataKind)
	}

	c := &Catalog{
		Sport:    sport,
		DataKind: dataKind,
		Fields:   append([]FieldSpec(nil), fields...),
		byName:   make(map[string]int, len(fields)),
		byLabel:  make(map[string]int, len(fields)),
	}
	for i, f := range c.Fields {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byName[f.Name]; exists {
			return nil, fmt.Errorf("duplicate field name in catalog %s.%s: %s", sport, dataKind, f.Name)
		}
		c.byName[f.Name] = i
		c.byLabel[f.DisplayLabel()] = i
	}

	return c, nil
}

// MustCatalog panics on an invalid catalog. Catalogs are static package
// data, so a bad one is a programming error caught at startup.
func MustCatalog(sport, dataKind string, fields []FieldSpec) *Catalog {
	c, err := NewCatalog(sport, dataKind, fields)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Field(name string) (FieldSpec, bool) {
	i, ok := c.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return c.Fields[i], true
}

// FieldByLabel resolves a source header label to its field.
func (c *Catalog) FieldByLabel(label string) (FieldSpec, bool) {
	i, ok := c.byLabel[label]
	if !ok {
		return FieldSpec{}, false
	}
	return c.Fields[i], true
}

func (c *Catalog) RequiredFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range c.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

func (c *Catalog) IndexedFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range c.Fields {
		if f.Indexed {
			out = append(out, f)
		}
	}
	return out
}

// TableName is the fully qualified store target, e.g. "nfl.game_log".
func (c *Catalog) TableName() string {
	return c.Sport + "." + c.DataKind
}
