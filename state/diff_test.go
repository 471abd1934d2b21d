package state

import (
	"math"
	"testing"
)

type point struct {
	X, Y int
}

type tagged struct {
	Name string
	Tags []string
}

func TestSame(t *testing.T) {
	slice := []int{1, 2, 3}
	m := map[string]int{"a": 1}
	p := &point{1, 2}
	tags := []string{"x"}

	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil value", nil, 0, false},
		{"equal ints", 3, 3, true},
		{"different ints", 3, 4, false},
		{"int vs int64", 3, int64(3), false},
		{"equal strings", "a", "a", true},
		{"bools", true, false, false},
		{"nan", math.NaN(), math.NaN(), false},
		{"same slice", slice, slice, true},
		{"resliced", slice, slice[:2], false},
		{"copied slice", slice, append([]int(nil), slice...), false},
		{"same map", m, m, true},
		{"copied map", m, map[string]int{"a": 1}, false},
		{"same pointer", p, p, true},
		{"equal pointees", p, &point{1, 2}, false},
		{"struct values", point{1, 2}, point{1, 2}, true},
		{"struct differs", point{1, 2}, point{2, 1}, false},
		{"struct sharing slice", tagged{"a", tags}, tagged{"a", tags}, true},
		{"struct copied slice", tagged{"a", tags}, tagged{"a", []string{"x"}}, false},
		{"arrays", [2]int{1, 2}, [2]int{1, 2}, true},
		{"nested state", State{"a": 1}, State{"a": 1}, false},
	}

	for _, tc := range cases {
		if got := Same(tc.a, tc.b); got != tc.want {
			t.Fatalf("%s: Same(%v, %v) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestChangedKeys(t *testing.T) {
	prev := State{"b": 1, "a": 1, "c": 1}
	next := State{"a": 1, "b": 2, "d": 1, "c": 2}

	got := ChangedKeys(prev, next)
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestChangedKeys_PresenceCounts(t *testing.T) {
	got := ChangedKeys(State{"gone": nil}, State{"new": nil})
	if len(got) != 2 || got[0] != "gone" || got[1] != "new" {
		t.Fatalf("expected [gone new], got %v", got)
	}
	if got := ChangedKeys(State{"a": nil}, State{"a": nil}); len(got) != 0 {
		t.Fatalf("expected no changes for equal nil values, got %v", got)
	}
}

func TestChangedKeys_Empty(t *testing.T) {
	if got := ChangedKeys(nil, State{}); len(got) != 0 {
		t.Fatalf("expected no changes, got %v", got)
	}
}

func TestSame_PointerIdentity(t *testing.T) {
	type empty struct{}
	type box struct{ n int }

	e := &empty{}
	if !Same(e, e) {
		t.Fatalf("expected a zero-size pointer to be the same as itself")
	}
	a, b := &box{1}, &box{1}
	if Same(a, b) {
		t.Fatalf("expected distinct non-empty pointers to differ")
	}
}
