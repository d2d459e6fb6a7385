package sem

import (
	"context"
	"strings"

	"github.com/halcyondb/semql/pkg/catalog"
)

// TypeKind is a coarse classification of expression types.
type TypeKind int

// Type kinds.
const (
	TypeUnknown TypeKind = iota
	TypeString
	TypeNumber
	TypeBoolean
	TypeNull
	TypeComposite
)

// ValueType describes the type of a value expression. For catalog-backed
// columns it wraps the declaring attribute, which makes composite member
// lookup possible.
type ValueType struct {
	Kind TypeKind
	Name string              // declared type name, lowercase
	Attr *catalog.Attribute  // backing attribute, nil for predefined types
	Def  Definition          // declaring symbol definition, may be nil
}

// Predefined types for literals and unresolved expressions.
var (
	UnknownType = &ValueType{Kind: TypeUnknown, Name: "unknown"}
	StringType  = &ValueType{Kind: TypeString, Name: "string"}
	NumberType  = &ValueType{Kind: TypeNumber, Name: "number"}
	BooleanType = &ValueType{Kind: TypeBoolean, Name: "boolean"}
	NullType    = &ValueType{Kind: TypeNull, Name: "null"}
)

// TypeOfAttribute builds a value type for a catalog attribute.
func TypeOfAttribute(attr *catalog.Attribute) *ValueType {
	if attr == nil {
		return UnknownType
	}
	kind := kindOfTypeName(attr.TypeName)
	if len(attr.Members) > 0 {
		kind = TypeComposite
	}
	return &ValueType{
		Kind: kind,
		Name: strings.ToLower(attr.TypeName),
		Attr: attr,
	}
}

// NamedType builds a value type from a declared type name, as in CAST.
func NamedType(name string) *ValueType {
	return &ValueType{Kind: kindOfTypeName(name), Name: strings.ToLower(name)}
}

func kindOfTypeName(name string) TypeKind {
	switch strings.ToLower(name) {
	case "int", "integer", "bigint", "smallint", "tinyint", "decimal",
		"numeric", "real", "float", "double", "double precision":
		return TypeNumber
	case "char", "varchar", "character", "character varying", "text",
		"string", "clob":
		return TypeString
	case "bool", "boolean":
		return TypeBoolean
	default:
		return TypeUnknown
	}
}

// Members returns the named members of a composite type. Non-composite
// types have none.
func (t *ValueType) Members(ctx context.Context) ([]*catalog.Attribute, error) {
	if err := ctx.Err(); err != nil {
		return nil, &catalog.AccessError{Op: "type members", Object: t.Name, Err: err}
	}
	if t.Attr == nil {
		return nil, nil
	}
	return t.Attr.Members, nil
}

// FindNamedMember looks up a member of a composite type by name,
// case-insensitively. Returns nil when the type has no such member.
func (t *ValueType) FindNamedMember(ctx context.Context, name string) (*catalog.Attribute, error) {
	members, err := t.Members(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, nil
}
