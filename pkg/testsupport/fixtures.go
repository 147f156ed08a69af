package testsupport

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-activityform/pkg/activity"
	"github.com/goliatone/go-activityform/pkg/formdata"
)

// OnlineActivity returns a complete online activity submission in the order a
// browser would send it.
func OnlineActivity() []formdata.Entry {
	return []formdata.Entry{
		formdata.Text("name", "Go Meetup"),
		formdata.Text("details", "<p>Talks</p>"),
		formdata.Text("organizer.name", "Gophers"),
		formdata.Text("cover", "https://img.example.com/a.png"),
		formdata.Text("category", "tech"),
		formdata.Text("type", activity.TypeOnline),
		formdata.Text("link", "https://meet.example.com/go"),
		formdata.Text("totalParticipantCapacity", "30"),
		formdata.Text("startDateTime", "2026-11-01T19:00"),
		formdata.Text("noEndDate", "on"),
		formdata.Text("ticketPrice.0.name", "General"),
		formdata.Text("ticketPrice.0.price", "0"),
	}
}

// OfflineActivity returns a complete offline activity with two ticket tiers.
func OfflineActivity() []formdata.Entry {
	return []formdata.Entry{
		formdata.Text("name", "Jazz Night"),
		formdata.Text("details", "<p>Live music</p>"),
		formdata.Text("organizer.name", "Taipei Jazz Club"),
		formdata.Text("cover", "https://img.example.com/a.jpg, https://img.example.com/b.jpg"),
		formdata.Text("category", "music"),
		formdata.Text("type", activity.TypeOffline),
		formdata.Text("location", "Blue Note Taipei"),
		formdata.Text("totalParticipantCapacity", "120"),
		formdata.Text("startDateTime", "2026-05-01T19:00"),
		formdata.Text("endDateTime", "2026-05-01T22:00"),
		formdata.Text("ticketPrice.0.name", "General"),
		formdata.Text("ticketPrice.0.price", "500"),
		formdata.Text("ticketPrice.1.name", "VIP"),
		formdata.Text("ticketPrice.1.price", "1200"),
	}
}

// URLEncoded renders the text entries as an x-www-form-urlencoded body,
// keeping their order. Blob entries are skipped.
func URLEncoded(entries []formdata.Entry) string {
	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsFile() || e.Value == nil {
			continue
		}
		pairs = append(pairs, url.QueryEscape(e.Path)+"="+url.QueryEscape(e.Value.Text))
	}
	return strings.Join(pairs, "&")
}

// Validator builds the default activity validator, failing the test on error.
func Validator(t testing.TB) *activity.Validator {
	t.Helper()
	v, err := activity.NewValidator(context.Background())
	if err != nil {
		t.Fatalf("testsupport: new validator: %v", err)
	}
	return v
}
