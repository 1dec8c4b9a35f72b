package crate

// SpecType classifes a Spec's role (spec.md §3: "Spec-type ∈ {PseudoRoot,
// Prim, PrimProperty, Attribute, Relationship, RelationshipTarget,
// Connection, Variant, VariantSet, Mapper, MapperArg, Expression,
// Unknown}"). RelationshipTarget and Connection are never persisted — see
// pathops.go and specstore's synthesis layer (spec.md §4.5.2) — but the
// enum still names them so Document.SpecType values and
// specstore.Store.GetSpecType's synthesized results share one vocabulary.
type SpecType uint8

const (
	SpecUnknown SpecType = iota
	SpecPseudoRoot
	SpecPrim
	SpecPrimProperty
	SpecAttribute
	SpecRelationship
	SpecRelationshipTarget
	SpecConnection
	SpecVariant
	SpecVariantSet
	SpecMapper
	SpecMapperArg
	SpecExpression
)

func (t SpecType) String() string {
	switch t {
	case SpecPseudoRoot:
		return "PseudoRoot"
	case SpecPrim:
		return "Prim"
	case SpecPrimProperty:
		return "PrimProperty"
	case SpecAttribute:
		return "Attribute"
	case SpecRelationship:
		return "Relationship"
	case SpecRelationshipTarget:
		return "RelationshipTarget"
	case SpecConnection:
		return "Connection"
	case SpecVariant:
		return "Variant"
	case SpecVariantSet:
		return "VariantSet"
	case SpecMapper:
		return "Mapper"
	case SpecMapperArg:
		return "MapperArg"
	case SpecExpression:
		return "Expression"
	default:
		return "Unknown"
	}
}

// IsSynthesizedOnly reports whether specs of this type are never stored
// directly (spec.md §3 invariant, §4.5.2).
func (t SpecType) IsSynthesizedOnly() bool {
	return t == SpecRelationshipTarget || t == SpecConnection
}
