// Package fields orders webform field definitions for rendering.
package fields

import (
	"sort"

	"github.com/goliatone/go-webform/pkg/model"
)

// MinOrder is the rank assigned to fields with a missing or non-positive order.
const MinOrder = 1

type slot struct {
	rank int
	pos  int
}

// Order groups fields by their normalised order rank and flattens the groups
// in ascending rank. Fields sharing a rank keep their input order. A key that
// appears more than once is placed by its last definition, since the input
// stands for a mapping. The returned fields carry the normalised rank.
func Order(in []model.Field) []model.Field {
	if len(in) == 0 {
		return nil
	}

	buckets := make(map[int][]model.Field)
	placed := make(map[string]slot, len(in))

	for _, field := range in {
		rank := Rank(field)
		field.Order = rank

		if prev, seen := placed[field.Key]; seen {
			if prev.rank == rank {
				buckets[rank][prev.pos] = field
				continue
			}
			bucket := buckets[prev.rank]
			bucket = append(bucket[:prev.pos], bucket[prev.pos+1:]...)
			buckets[prev.rank] = bucket
			for i, moved := range bucket[prev.pos:] {
				placed[moved.Key] = slot{rank: prev.rank, pos: prev.pos + i}
			}
		}

		placed[field.Key] = slot{rank: rank, pos: len(buckets[rank])}
		buckets[rank] = append(buckets[rank], field)
	}

	ranks := make([]int, 0, len(buckets))
	for rank := range buckets {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)

	out := make([]model.Field, 0, len(in))
	for _, rank := range ranks {
		out = append(out, buckets[rank]...)
	}
	return out
}

// OrderMeta orders the field entries of a form's meta.
func OrderMeta(meta *model.Meta) []model.Field {
	return Order(meta.Fields())
}

// Rank returns the normalised order rank of a field.
func Rank(field model.Field) int {
	if field.Order < MinOrder {
		return MinOrder
	}
	return field.Order
}

// Keys returns the field keys in slice order.
func Keys(in []model.Field) []string {
	if len(in) == 0 {
		return nil
	}
	keys := make([]string, 0, len(in))
	for _, field := range in {
		keys = append(keys, field.Key)
	}
	return keys
}
