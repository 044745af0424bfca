package theme

// Variant is the closed set of stylesheet variants a form can request.
type Variant int

const (
	// VariantGenerated is selected for any name outside the built-in set. It
	// renders the default stylesheet plus per-field selector stubs.
	VariantGenerated Variant = iota
	VariantSimple
	VariantHeavy
	VariantNone
	VariantMinimum
	VariantWideHeavy
)

// Built-in theme names.
const (
	NameSimple    = "simple"
	NameHeavy     = "heavy"
	NameNone      = "none"
	NameMinimum   = "minimum"
	NameWideHeavy = "wide-heavy"

	// NameDefault is the catalog entry backing VariantGenerated.
	NameDefault = "default"
)

var variantNames = map[Variant]string{
	VariantGenerated: NameDefault,
	VariantSimple:    NameSimple,
	VariantHeavy:     NameHeavy,
	VariantNone:      NameNone,
	VariantMinimum:   NameMinimum,
	VariantWideHeavy: NameWideHeavy,
}

// ParseVariant maps a theme name to its variant. Matching is exact; every
// other name, including the empty string, selects VariantGenerated.
func ParseVariant(name string) Variant {
	switch name {
	case NameSimple:
		return VariantSimple
	case NameHeavy:
		return VariantHeavy
	case NameNone:
		return VariantNone
	case NameMinimum:
		return VariantMinimum
	case NameWideHeavy:
		return VariantWideHeavy
	default:
		return VariantGenerated
	}
}

// String returns the catalog name of the variant.
func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return NameDefault
}

// Names lists the built-in theme names in display order.
func Names() []string {
	return []string{NameSimple, NameHeavy, NameNone, NameMinimum, NameWideHeavy}
}
