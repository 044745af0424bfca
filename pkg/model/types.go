package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the kind of input a webform field renders as.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNote        FieldType = "note"
	FieldTypeTel         FieldType = "tel"
	FieldTypeEmail       FieldType = "email"
	FieldTypeDate        FieldType = "date"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeDropdown    FieldType = "dropdown"
	FieldTypeMultiRadio  FieldType = "multi_radio"
	FieldTypeKeySelect   FieldType = "key_select"
	FieldTypeMultiSelect FieldType = "multi_select"
	FieldTypeLocation    FieldType = "location"
	FieldTypeHeader      FieldType = "header"
	FieldTypeDescription FieldType = "description"
	FieldTypeDivider     FieldType = "divider"
	FieldTypeCustomLabel FieldType = "custom_label"
)

const (
	// FieldKeyPrefix marks meta entries that hold field blobs.
	FieldKeyPrefix = "field"

	KeyCustomCSS = "custom_css"
	KeyToken     = "token"
	KeyTitle     = "title"
	KeyTheme     = "theme"
	KeyEditLast  = "_edit_last"
	KeyEditLock  = "_edit_lock"
)

// attribute names lifted out of a field blob.
const (
	attrKey    = "key"
	attrOrder  = "order"
	attrType   = "type"
	attrLabels = "labels"
)

// Labels holds a field's display text: absent, a single string, or a list of
// option labels for multi-option fields.
type Labels struct {
	values []string
	multi  bool
}

// SingleLabel returns scalar labels.
func SingleLabel(text string) Labels {
	return Labels{values: []string{text}}
}

// MultiLabels returns collection labels. The slice is copied.
func MultiLabels(values ...string) Labels {
	return Labels{values: append([]string{}, values...), multi: true}
}

// IsMulti reports whether the labels came in as a collection.
func (l Labels) IsMulti() bool { return l.multi }

// IsEmpty reports whether the labels count as unset: absent, a collection with
// no items, or a scalar "" or "0". Whitespace is label text.
func (l Labels) IsEmpty() bool {
	if len(l.values) == 0 {
		return true
	}
	if !l.multi {
		return l.values[0] == "" || l.values[0] == "0"
	}
	return false
}

// Text returns the scalar label, or the collection joined with ", ".
func (l Labels) Text() string {
	return strings.Join(l.values, ", ")
}

// Values returns a copy of the label values.
func (l Labels) Values() []string {
	if len(l.values) == 0 {
		return nil
	}
	return append([]string{}, l.values...)
}

// MarshalJSON encodes scalar labels as a string and collections as an array.
func (l Labels) MarshalJSON() ([]byte, error) {
	if l.multi {
		if l.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(l.values)
	}
	if len(l.values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(l.values[0])
}

// UnmarshalJSON accepts a string, an array, an object of labels, or null.
func (l *Labels) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: decode labels: %w", err)
	}
	*l = labelsFromValue(raw)
	return nil
}

func labelsFromValue(raw any) Labels {
	switch v := raw.(type) {
	case nil:
		return Labels{}
	case string:
		return SingleLabel(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, scalarString(item))
		}
		return MultiLabels(out...)
	case []string:
		return MultiLabels(v...)
	case map[string]any:
		// option maps (value => label) keep a deterministic order by key
		keys := sortedKeys(v)
		out := make([]string, 0, len(keys))
		for _, key := range keys {
			out = append(out, scalarString(v[key]))
		}
		return MultiLabels(out...)
	default:
		return SingleLabel(scalarString(v))
	}
}

// Field is one webform field definition.
type Field struct {
	Key        string
	Order      int
	Type       FieldType
	Labels     Labels
	Attributes map[string]any
}

// IsLocation reports whether the field renders the map/geocoder widget.
func (f Field) IsLocation() bool {
	return f.Type == FieldTypeLocation
}

// FieldFromBlob lifts a decoded field blob into a Field. metaKey is used as the
// field key when the blob carries none. ok is false when value is not a blob.
func FieldFromBlob(metaKey string, value any) (Field, bool) {
	blob, isMap := value.(map[string]any)
	if !isMap {
		return Field{}, false
	}

	field := Field{
		Key:   strings.TrimSpace(scalarString(blob[attrKey])),
		Order: parseOrder(blob[attrOrder]),
		Type:  FieldType(strings.TrimSpace(scalarString(blob[attrType]))),
	}
	if field.Key == "" {
		field.Key = metaKey
	}
	if raw, exists := blob[attrLabels]; exists {
		field.Labels = labelsFromValue(raw)
	}

	for name, attr := range blob {
		switch name {
		case attrKey, attrOrder, attrType, attrLabels:
			continue
		}
		if field.Attributes == nil {
			field.Attributes = make(map[string]any, len(blob))
		}
		field.Attributes[name] = attr
	}
	return field, true
}

// MarshalJSON flattens Attributes next to the modelled attributes so the
// encoded field matches the stored blob shape.
func (f Field) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Attributes)+4)
	for name, attr := range f.Attributes {
		out[name] = attr
	}
	out[attrKey] = f.Key
	out[attrOrder] = f.Order
	out[attrType] = string(f.Type)
	if f.Labels.multi || len(f.Labels.values) > 0 {
		out[attrLabels] = f.Labels
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a stored blob.
func (f *Field) UnmarshalJSON(data []byte) error {
	var blob map[string]any
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("model: decode field: %w", err)
	}
	field, _ := FieldFromBlob("", blob)
	*f = field
	return nil
}

// parseOrder returns 0 when the value is absent or not numeric; callers treat
// anything below 1 as rank 1.
func parseOrder(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0
			}
			return int(f)
		}
		return int(n)
	case string:
		trimmed := strings.TrimSpace(v)
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

func scalarString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}
