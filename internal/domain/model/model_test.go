package model

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
	"github.com/kailas-cloud/searchsync/internal/domain/schema"
)

func TestNew_Defaults(t *testing.T) {
	m, err := New(Definition{Name: "Tweet", Schema: schema.New("")}, mapping.Reconstruct())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Index() != "tweets" {
		t.Errorf("Index() = %q, want tweets", m.Index())
	}
	if m.Type() != "tweet" {
		t.Errorf("Type() = %q, want tweet", m.Type())
	}
	if m.Collection() != "tweets" {
		t.Errorf("Collection() = %q, want tweets", m.Collection())
	}
	if m.Hydrate() {
		t.Error("hydrate should default to false")
	}
	if m.PrimaryKey() != schema.DefaultPrimaryKey {
		t.Errorf("PrimaryKey() = %q", m.PrimaryKey())
	}
}

func TestNew_ExplicitBinding(t *testing.T) {
	m, err := New(Definition{
		Name:    "Talk",
		Index:   "searchsync-test",
		Type:    "talks",
		Hydrate: true,
	}, mapping.Reconstruct())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Index() != "searchsync-test" || m.Type() != "talks" || !m.Hydrate() {
		t.Errorf("binding = %s/%s hydrate=%v", m.Index(), m.Type(), m.Hydrate())
	}
	if m.Collection() != "talks" {
		t.Errorf("Collection() = %q, want talks", m.Collection())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want string
	}{
		{"empty_name", Definition{}, "required"},
		{"bad_name", Definition{Name: "1tweet"}, "must start with a letter"},
		{"bad_index", Definition{Name: "Tweet", Index: "a b"}, "index name"},
		{"bad_type", Definition{Name: "Tweet", Type: "a/b"}, "type name"},
		{"empty_always", Definition{Name: "Tweet", AlwaysIndexed: []string{""}}, "always-indexed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.def, mapping.Reconstruct())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want substring %q", err, tc.want)
			}
		})
	}
}

func TestPluralize(t *testing.T) {
	tests := map[string]string{
		"tweet":  "tweets",
		"talk":   "talks",
		"person": "people",
		"bus":    "buses",
		"box":    "boxes",
		"church": "churches",
		"dish":   "dishes",
		"city":   "cities",
		"day":    "days",
		"news":   "news",
		"":       "",
	}
	for in, want := range tests {
		if got := Pluralize(in); got != want {
			t.Errorf("Pluralize(%q) = %q, want %q", in, got, want)
		}
	}
}
