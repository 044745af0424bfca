package fields

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-webform/pkg/model"
)

func field(key string, order int) model.Field {
	return model.Field{Key: key, Order: order, Type: model.FieldTypeText, Labels: model.SingleLabel(key)}
}

func TestOrder_EmptyInput(t *testing.T) {
	if got := Order(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestOrder_GroupsByRankAndKeepsInsertionOrder(t *testing.T) {
	in := []model.Field{
		field("field_c", 2),
		field("field_a", 1),
		field("field_d", 3),
		field("field_b", 2),
		field("field_e", 1),
	}

	got := Keys(Order(in))
	want := []string{"field_a", "field_e", "field_c", "field_b", "field_d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrder_DefaultsMissingAndNonPositiveRanks(t *testing.T) {
	in := []model.Field{
		field("field_two", 2),
		field("field_zero", 0),
		field("field_negative", -4),
		field("field_one", 1),
	}

	out := Order(in)
	want := []string{"field_zero", "field_negative", "field_one", "field_two"}
	if diff := cmp.Diff(want, Keys(out)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	for _, f := range out[:3] {
		if f.Order != 1 {
			t.Fatalf("expected %s normalised to rank 1, got %d", f.Key, f.Order)
		}
	}
}

func TestOrder_AllDefaultRanksReturnInputOrder(t *testing.T) {
	in := []model.Field{field("field_3", 0), field("field_1", 0), field("field_2", 0)}
	if diff := cmp.Diff(Keys(in), Keys(Order(in))); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrder_RepeatedKeyUsesLastDefinition(t *testing.T) {
	in := []model.Field{
		field("field_a", 1),
		field("field_b", 1),
		field("field_a", 3),
		field("field_c", 2),
	}
	got := Keys(Order(in))
	if diff := cmp.Diff([]string{"field_b", "field_c", "field_a"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrder_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iteration := 0; iteration < 200; iteration++ {
		n := rng.Intn(12)
		in := make([]model.Field, 0, n)
		for i := 0; i < n; i++ {
			in = append(in, field(fmt.Sprintf("field_%d", i), rng.Intn(6)-2))
		}

		out := Order(in)

		// permutation
		inKeys, outKeys := Keys(in), Keys(out)
		sort.Strings(inKeys)
		sort.Strings(outKeys)
		if diff := cmp.Diff(inKeys, outKeys); diff != "" {
			t.Fatalf("output is not a permutation (-want +got):\n%s", diff)
		}

		// non-decreasing ranks and stability
		position := make(map[string]int, len(in))
		for i, f := range in {
			position[f.Key] = i
		}
		for i := 1; i < len(out); i++ {
			prev, cur := out[i-1], out[i]
			if prev.Order > cur.Order {
				t.Fatalf("ranks out of order: %s(%d) before %s(%d)", prev.Key, prev.Order, cur.Key, cur.Order)
			}
			if prev.Order == cur.Order && position[prev.Key] > position[cur.Key] {
				t.Fatalf("unstable order for rank %d: %s before %s", cur.Order, prev.Key, cur.Key)
			}
		}

		// idempotence
		if diff := cmp.Diff(Keys(out), Keys(Order(out))); diff != "" {
			t.Fatalf("ordering is not idempotent (-want +got):\n%s", diff)
		}
	}
}

func TestOrderMeta(t *testing.T) {
	meta := model.NewMeta(
		model.Entry{Key: "token", Value: "abc"},
		model.Entry{Key: "field_late", Value: map[string]any{"order": "5", "type": "text", "labels": "Late"}},
		model.Entry{Key: "field_early", Value: map[string]any{"type": "tel", "labels": "Phone"}},
	)

	if diff := cmp.Diff([]string{"field_early", "field_late"}, Keys(OrderMeta(meta))); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
