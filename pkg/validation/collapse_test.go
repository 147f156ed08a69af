package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-activityform/pkg/validation"
)

func TestCollapse_AggregatesCoverIssues(t *testing.T) {
	issues := []validation.Issue{
		{Path: "cover.2", Message: "must be a URL"},
		{Path: "name", Message: "is required"},
		{Path: "cover", Message: "needs at least one image"},
		{Path: "ticketPrice.0.price", Message: "must be numeric"},
		{Path: "coverage", Message: "unrelated"},
	}

	got := validation.Collapse(issues, validation.CollapseOptions{})

	want := []validation.Issue{
		{Path: "cover", Message: validation.DefaultMessagePrefix + "must be a URL"},
		{Path: "name", Message: validation.DefaultMessagePrefix + "is required"},
		{Path: "cover", Message: validation.DefaultMessagePrefix + "needs at least one image"},
		{Path: "ticketPrice.0.price", Message: validation.DefaultMessagePrefix + "must be numeric"},
		{Path: "coverage", Message: validation.DefaultMessagePrefix + "unrelated"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collapsed issues mismatch (-want +got):\n%s", diff)
	}
}

func TestCollapse_CustomOptions(t *testing.T) {
	prefix := ""
	got := validation.Collapse([]validation.Issue{
		{Path: "cover.1", Message: "bad"},
		{Path: "gallery.3.url", Message: "bad"},
	}, validation.CollapseOptions{
		AggregateFields: []string{"gallery"},
		MessagePrefix:   &prefix,
	})

	want := []validation.Issue{
		{Path: "cover.1", Message: "bad"},
		{Path: "gallery", Message: "bad"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collapsed issues mismatch (-want +got):\n%s", diff)
	}
}

func TestCollapse_Empty(t *testing.T) {
	if got := validation.Collapse(nil, validation.CollapseOptions{}); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"ticketPrice[0].price": "ticketPrice.0.price",
		"ticketPrice/0/price":  "ticketPrice.0.price",
		"/organizer/name":      "organizer.name",
		" cover.1 ":            "cover.1",
		"name":                 "name",
		"":                     "",
	}
	for in, want := range tests {
		if got := validation.NormalizePath(in); got != want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDedupe(t *testing.T) {
	got := validation.Dedupe([]validation.Issue{
		{Path: "a", Message: "x"},
		{Path: "a", Message: "x"},
		{Path: "a", Message: "y"},
	})
	want := []validation.Issue{{Path: "a", Message: "x"}, {Path: "a", Message: "y"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dedupe mismatch (-want +got):\n%s", diff)
	}
}
