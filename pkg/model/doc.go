// Package model defines the typed form configuration shared by the metadata
// store, the field orderer, and the theme resolver. Stored values are decoded
// once, at the store boundary (see DecodeMeta), so downstream packages always
// receive typed structures: a Meta is an insertion-ordered mapping whose
// `field*` entries hold field blobs and whose reserved keys (custom_css, token,
// title, ...) hold scalars. Field lifts a blob into a struct while keeping every
// attribute it does not model in Attributes, so renderers can still reach
// type-specific settings.
package model
