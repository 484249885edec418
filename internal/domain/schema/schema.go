package schema

// Type is the declared primitive type of a schema field.
type Type string

// Declared field types. Any other value is kept verbatim and treated as unrecognized.
const (
	String     Type = "string"
	Number     Type = "number"
	Boolean    Type = "boolean"
	Date       Type = "date"
	Identifier Type = "identifier"
	Object     Type = "object"
)

// NumberKind refines a Number field.
type NumberKind string

// Number subtypes.
const (
	NumberAny     NumberKind = ""
	NumberFloat   NumberKind = "float"
	NumberInteger NumberKind = "integer"
)

// IsValid reports whether k is a known subtype.
func (k NumberKind) IsValid() bool {
	switch k {
	case NumberAny, NumberFloat, NumberInteger:
		return true
	default:
		return false
	}
}

// DefaultPrimaryKey is the store's internal identifier field.
const DefaultPrimaryKey = "_id"

// Field is the statically typed attribute record of one schema field.
// Nil pointers mean the attribute was not declared.
type Field struct {
	Name         string
	Type         Type
	NumberKind   NumberKind
	Indexed      *bool
	TypeOverride string
	Boost        *float64
}

// Schema is an ordered field description plus its primary key.
type Schema struct {
	primaryKey string
	fields     []Field
}

// New creates a Schema. An empty primary key falls back to DefaultPrimaryKey.
// Validation is left to mapping generation.
func New(primaryKey string, fields ...Field) Schema {
	if primaryKey == "" {
		primaryKey = DefaultPrimaryKey
	}
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Schema{primaryKey: primaryKey, fields: cp}
}

// PrimaryKey returns the name of the primary-key field.
func (s Schema) PrimaryKey() string { return s.primaryKey }

// Fields returns the fields in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of declared fields.
func (s Schema) Len() int { return len(s.fields) }

// Bool returns a pointer to v, for declaring Indexed.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v, for declaring Boost.
func Float(v float64) *float64 { return &v }
