package state

import "testing"

func TestMergePromotesSecondOccurrenceToList(t *testing.T) {
	rec := NewRecord()
	rec.Merge("NPC", Scalar("Gorak"))

	got, ok := rec.Get("NPC")
	if !ok || got.Kind() != KindScalar {
		t.Fatalf("expected single occurrence to stay scalar, got kind %v", got.Kind())
	}

	rec.Merge("NPC", Scalar("Mira"))
	got, _ = rec.Get("NPC")
	if got.Kind() != KindList {
		t.Fatalf("expected second occurrence to promote to list, got kind %v", got.Kind())
	}
	if got.Len() != 2 || got.Items()[0].Text() != "Gorak" || got.Items()[1].Text() != "Mira" {
		t.Fatalf("promoted list lost order or items: %v", got.Items())
	}

	rec.Merge("NPC", Scalar("Sela"))
	got, _ = rec.Get("NPC")
	if got.Len() != 3 {
		t.Fatalf("expected third occurrence appended, got len %d", got.Len())
	}
}

func TestRecordPreservesInsertionOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("b", Scalar("1"))
	rec.Set("a", Scalar("2"))
	rec.Set("c", Scalar("3"))
	rec.Set("a", Scalar("4")) // overwrite keeps original position

	keys := rec.Keys()
	want := []string{"b", "a", "c"}
	for i, key := range want {
		if keys[i] != key {
			t.Fatalf("expected key order %v, got %v", want, keys)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := NewRecord()
	inner := NewRecord()
	inner.Set("hp", Scalar("10"))
	rec.Set("player", inner)
	rec.Set("items", NewList(Scalar("Rope")))

	clone := rec.Clone()
	if !rec.Equal(clone) {
		t.Fatalf("clone should equal original")
	}

	inner.Set("hp", Scalar("3"))
	if rec.Equal(clone) {
		t.Fatalf("mutating the original must not affect the clone")
	}
}

func TestEqualDistinguishesKindsAndOrder(t *testing.T) {
	if Scalar("x").Equal(NewList(Scalar("x"))) {
		t.Fatalf("scalar must not equal one-element list")
	}

	a := NewRecord()
	a.Set("x", Scalar("1"))
	a.Set("y", Scalar("2"))
	b := NewRecord()
	b.Set("y", Scalar("2"))
	b.Set("x", Scalar("1"))
	if a.Equal(b) {
		t.Fatalf("records with different key order must not be equal")
	}
}
