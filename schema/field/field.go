package field

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind is the scalar kind of a field.
type Kind uint8

// Field kinds.
const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindJSON
	KindEnum
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindString:  "string",
	KindInt:     "int",
	KindFloat:   "float",
	KindBool:    "bool",
	KindTime:    "datetime",
	KindJSON:    "json",
	KindEnum:    "enum",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Numeric reports whether the kind supports arithmetic and _avg/_sum aggregates.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Orderable reports whether values of the kind can be ranged, sorted and
// aggregated with _min/_max.
func (k Kind) Orderable() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindTime, KindEnum:
		return true
	default:
		return false
	}
}

// ParseKind returns the kind for the given name. Aliases used by schema files
// ("number", "integer", "boolean", "time", "timestamp") are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "string", "text":
		return KindString, nil
	case "int", "integer", "bigint":
		return KindInt, nil
	case "float", "number", "decimal":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBool, nil
	case "datetime", "time", "timestamp":
		return KindTime, nil
	case "json":
		return KindJSON, nil
	case "enum":
		return KindEnum, nil
	default:
		return KindInvalid, fmt.Errorf("unknown field kind %q", s)
	}
}

// FormatUUID marks string fields whose values must be UUIDs.
const FormatUUID = "uuid"

// A Descriptor for field configuration.
type Descriptor struct {
	Name     string   // field name.
	Kind     Kind     // scalar kind.
	Format   string   // value format for string fields, e.g. FormatUUID.
	Nillable bool     // column may hold NULL.
	Optional bool     // not required on create.
	Default  bool     // storage provides a value when omitted on create.
	Unique   bool     // identifies a row on its own.
	ID       bool     // primary identifier.
	Values   []string // enum values.
	Comment  string   // field comment.
	Err      error
}

// Builder for fields.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, kind Kind) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: kind}}
}

// String returns a new Builder for a string field.
func String(name string) *Builder {
	return newBuilder(name, KindString)
}

// UUID returns a new Builder for a string field holding UUIDs.
func UUID(name string) *Builder {
	b := newBuilder(name, KindString)
	b.desc.Format = FormatUUID
	return b
}

// Int returns a new Builder for an integer field.
func Int(name string) *Builder {
	return newBuilder(name, KindInt)
}

// Float returns a new Builder for a floating point field.
func Float(name string) *Builder {
	return newBuilder(name, KindFloat)
}

// Bool returns a new Builder for a boolean field.
func Bool(name string) *Builder {
	return newBuilder(name, KindBool)
}

// Time returns a new Builder for a datetime field.
func Time(name string) *Builder {
	return newBuilder(name, KindTime)
}

// JSON returns a new Builder for a JSON document field.
func JSON(name string) *Builder {
	return newBuilder(name, KindJSON)
}

// Enum returns a new Builder for an enum field. Values must be set with Values.
func Enum(name string) *Builder {
	return newBuilder(name, KindEnum)
}

// New returns a new Builder for a field of the given kind.
func New(name string, kind Kind) *Builder {
	return newBuilder(name, kind)
}

// Values sets the allowed values of an enum field.
func (b *Builder) Values(values ...string) *Builder {
	if b.desc.Kind != KindEnum {
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("values are only valid on enum fields, not %s", b.desc.Kind))
		return b
	}
	b.desc.Values = append(b.desc.Values, values...)
	return b
}

// Format sets the value format of a string field.
func (b *Builder) Format(format string) *Builder {
	if b.desc.Kind != KindString {
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("format is only valid on string fields, not %s", b.desc.Kind))
		return b
	}
	b.desc.Format = format
	return b
}

// Nillable indicates that the column may hold NULL.
func (b *Builder) Nillable() *Builder {
	b.desc.Nillable = true
	return b
}

// Optional indicates that the field is not required on create.
func (b *Builder) Optional() *Builder {
	b.desc.Optional = true
	return b
}

// Default indicates that storage provides a value when the field is omitted on create.
func (b *Builder) Default() *Builder {
	b.desc.Default = true
	return b
}

// Unique makes the field identify a row on its own.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// ID marks the field as the primary identifier. Primary identifiers are unique.
func (b *Builder) ID() *Builder {
	switch b.desc.Kind {
	case KindJSON, KindBool:
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("%s field cannot be an identifier", b.desc.Kind))
	}
	b.desc.ID = true
	b.desc.Unique = true
	return b
}

// Comment sets the comment of the field.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the field descriptor.
func (b *Builder) Descriptor() *Descriptor {
	if b.desc.Kind == KindEnum && len(b.desc.Values) == 0 && b.desc.Err == nil {
		b.desc.Err = fmt.Errorf("enum field %q has no values", b.desc.Name)
	}
	return b.desc
}

// Required reports whether a create must supply the field.
func (d *Descriptor) Required() bool {
	return !d.Nillable && !d.Optional && !d.Default
}

// HasValue reports whether v is one of the enum values of the field.
func (d *Descriptor) HasValue(v string) bool {
	return slices.Contains(d.Values, v)
}
