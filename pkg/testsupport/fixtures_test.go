package testsupport_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/testsupport"
)

func TestFixturesAreAccepted(t *testing.T) {
	v := testsupport.Validator(t)
	for name, entries := range map[string][]formdata.Entry{
		"online":  testsupport.OnlineActivity(),
		"offline": testsupport.OfflineActivity(),
	} {
		t.Run(name, func(t *testing.T) {
			tree, err := formdata.Reconstruct(entries)
			if err != nil {
				t.Fatalf("Reconstruct: %v", err)
			}
			if result := v.Validate(context.Background(), tree); !result.OK() {
				t.Fatalf("expected no issues, got %#v", result.Issues)
			}
		})
	}
}

func TestURLEncodedRoundTrip(t *testing.T) {
	entries := append(testsupport.OnlineActivity(), formdata.File("cover.0", &formdata.Blob{Filename: "a.png"}))
	parsed, err := formdata.ParseURLEncoded(testsupport.URLEncoded(entries))
	if err != nil {
		t.Fatalf("ParseURLEncoded: %v", err)
	}
	if diff := cmp.Diff(formdata.FlattenEntries(testsupport.OnlineActivity()), formdata.FlattenEntries(parsed)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if len(parsed) != len(testsupport.OnlineActivity()) {
		t.Fatalf("blob entry should be skipped, got %d entries", len(parsed))
	}
}
