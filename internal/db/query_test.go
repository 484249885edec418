package db

import "testing"

func TestTagFilter(t *testing.T) {
	tests := []struct {
		field, value string
		want         string
	}{
		{"__type", "tweet", "@__type:{tweet}"},
		{"__type", "blog-post", `@__type:{blog\-post}`},
		{"owner", "a b", `@owner:{a\ b}`},
		{"email", "x@y.z", `@email:{x\@y\.z}`},
	}
	for _, tc := range tests {
		if got := TagFilter(tc.field, tc.value); got != tc.want {
			t.Errorf("TagFilter(%q, %q) = %q, want %q", tc.field, tc.value, got, tc.want)
		}
	}
}
