package prompt

import (
	"reflect"
	"strings"
	"testing"
)

func TestParsePoints(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		max  int
		want []string
	}{
		{
			name: "bulleted",
			raw:  "- one\n- two\n- three",
			max:  5,
			want: []string{"one", "two", "three"},
		},
		{
			name: "truncates to max",
			raw:  "- one\n- two\n- three\n- four",
			max:  3,
			want: []string{"one", "two", "three"},
		},
		{
			name: "numbered with blanks",
			raw:  "1. first fact\n\n2) second fact\n",
			max:  5,
			want: []string{"first fact", "second fact"},
		},
		{
			name: "asterisk bullets",
			raw:  "* a\n* b",
			max:  5,
			want: []string{"a", "b"},
		},
		{
			name: "empty",
			raw:  "\n\n",
			max:  5,
			want: nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParsePoints(c.raw, c.max)
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("ParsePoints(%q, %d) = %v, want %v", c.raw, c.max, got, c.want)
			}
		})
	}
}

func TestKeyPoints_ContainsInputs(t *testing.T) {
	p := KeyPoints("the page text", 4)
	if p == "" {
		t.Fatal("empty prompt")
	}
	for _, want := range []string{"the page text", "4"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
