package state

import "testing"

func TestInterest_Matches(t *testing.T) {
	cases := []struct {
		interest Interest
		changed  []string
		want     bool
	}{
		{AllKeys(), []string{"a"}, true},
		{Interest{}, []string{"z"}, true},
		{Keys("a"), []string{"a"}, true},
		{Keys("a", "b"), []string{"c", "b"}, true},
		{Keys("a"), []string{"b"}, false},
		{Keys(), []string{"a"}, false},
		{Keys(), nil, false},
	}

	for i, tc := range cases {
		if got := tc.interest.Matches(tc.changed); got != tc.want {
			t.Fatalf("case %d interest=%v changed=%v got %v want %v", i, tc.interest.List(), tc.changed, got, tc.want)
		}
	}
}

func TestInterest_Equal(t *testing.T) {
	if !Keys("a", "b").Equal(Keys("a", "b")) {
		t.Fatalf("expected identical key lists to be equal")
	}
	if Keys("a", "b").Equal(Keys("b", "a")) {
		t.Fatalf("expected reordered key lists to differ")
	}
	if AllKeys().Equal(Keys()) {
		t.Fatalf("expected unfiltered and empty interests to differ")
	}
	if !AllKeys().Equal(Interest{}) {
		t.Fatalf("expected zero value to equal AllKeys")
	}
}

func TestInterest_KeysCopiesInput(t *testing.T) {
	keys := []string{"a"}
	interest := Keys(keys...)
	keys[0] = "b"

	if !interest.Matches([]string{"a"}) {
		t.Fatalf("expected interest to keep its own copy of keys")
	}
	list := interest.List()
	list[0] = "c"
	if !interest.Matches([]string{"a"}) {
		t.Fatalf("expected List to return a copy")
	}
}
