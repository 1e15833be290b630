package docstore

import "testing"

func TestJoinRejectsSlashes(t *testing.T) {
	if _, err := Join("users", "u1", "pantry", "salt/pepper"); err == nil {
		t.Fatalf("expected slash in id to be rejected")
	}
	p, err := Join("users", "u1", "pantry", "Sea Salt")
	if err != nil || p != "users/u1/pantry/Sea Salt" {
		t.Fatalf("unexpected join result %q %v", p, err)
	}
}

func TestSplit(t *testing.T) {
	coll, id, err := Split("users/u1/groups/g1")
	if err != nil || coll != "users/u1/groups" || id != "g1" {
		t.Fatalf("unexpected split %q %q %v", coll, id, err)
	}
	if _, _, err := Split("users/u1/groups"); err == nil {
		t.Fatalf("collection path should not split as a document")
	}
}

func TestTransformApply(t *testing.T) {
	got := ArrayUnion("b", "a").Apply([]any{"a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected union %v", got)
	}
	got = ArrayRemove("a").Apply([]string{"a", "b", "a"})
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("unexpected remove %v", got)
	}
	if got := ArrayRemove("a").Apply(nil); got == nil || len(got) != 0 {
		t.Fatalf("remove on missing field should yield an empty array, got %v", got)
	}
}

func TestFieldsAccessors(t *testing.T) {
	f := Fields{
		"count":  int64(3),
		"names":  []any{"a", 1, "b"},
		"frozen": true,
		"when":   "2026-01-02T03:04:05Z",
	}
	if f.Int("count") != 3 {
		t.Fatalf("unexpected int %d", f.Int("count"))
	}
	if got := f.Strings("names"); len(got) != 2 {
		t.Fatalf("unexpected strings %v", got)
	}
	if !f.Bool("frozen") {
		t.Fatalf("expected frozen")
	}
	if _, ok := f.Time("when"); !ok {
		t.Fatalf("expected RFC3339 time to parse")
	}
	if f.TimePtr("missing") != nil {
		t.Fatalf("expected nil for missing time")
	}
}
