package models

import "testing"

func TestQueryNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Capital of France", "capital of france"},
		{"  capital   OF  france  ", "capital of france"},
		{"capital of france", "capital of france"},
		{"", ""},
	}
	for _, c := range cases {
		got := Query{Raw: c.raw}.Normalize()
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestQueryKey_EqualForEquivalentQueries(t *testing.T) {
	a := Query{Raw: "Capital of France"}.Key()
	b := Query{Raw: " capital  of FRANCE "}.Key()
	if a != b {
		t.Errorf("equivalent queries got different keys: %s vs %s", a, b)
	}
	c := Query{Raw: "capital of germany"}.Key()
	if a == c {
		t.Error("different queries got the same key")
	}
}
