package model

import (
	"encoding/json"
	"strings"
)

// Row is one stored meta record as the repository returns it.
type Row struct {
	Key   string
	Value string
}

// DecodeMeta turns repository rows into a Meta. Bookkeeping keys written by the
// host editor are dropped, and for repeated keys the first row wins.
func DecodeMeta(rows []Row) *Meta {
	meta := &Meta{}
	for _, row := range rows {
		if row.Key == KeyEditLast || row.Key == KeyEditLock {
			continue
		}
		if _, exists := meta.Get(row.Key); exists {
			continue
		}
		meta.Set(row.Key, DecodeValue(row.Value))
	}
	return meta
}

// DecodeValue decodes a stored value. JSON objects and arrays are unmarshalled;
// every other value, including malformed JSON, stays a string.
func DecodeValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	switch trimmed[0] {
	case '{', '[':
	default:
		return raw
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return raw
	}
	return decoded
}

// EncodeValue is the inverse of DecodeValue, used by adapters that write meta.
func EncodeValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(payload), nil
	}
}
