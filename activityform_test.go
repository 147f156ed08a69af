package activityform_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	activityform "github.com/goliatone/go-activityform"
	"github.com/goliatone/go-activityform/pkg/backend"
	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/submission"
	"github.com/goliatone/go-activityform/pkg/testsupport"
)

func TestCheck_Accepts(t *testing.T) {
	report := activityform.Check(context.Background(), testsupport.Validator(t), testsupport.OnlineActivity())
	if !report.OK() || report.Record == nil {
		t.Fatalf("expected a record, got issues %#v", report.Issues)
	}
	if report.Record.Name != "Go Meetup" || len(report.Record.TicketPrice) != 1 {
		t.Fatalf("unexpected record %+v", report.Record)
	}
}

func TestCheck_ReportsStructuralIssues(t *testing.T) {
	in := append(testsupport.OnlineActivity(), formdata.Text("ticketPrice.name", "oops"))
	report := activityform.Check(context.Background(), testsupport.Validator(t), in)
	if report.OK() || report.Record != nil {
		t.Fatalf("expected a rejection")
	}
	found := false
	for _, issue := range report.Issues {
		if issue.Path == "ticketPrice.name" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing structural issue in %#v", report.Issues)
	}
	if report.Tree == nil {
		t.Fatalf("partial tree should still be returned")
	}
}

func TestOrchestrator_ForwardsToBackend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != backend.ActivitiesPath || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		_, _ = w.Write([]byte(`{"_id":"act-42"}`))
	}))
	defer srv.Close()

	client, err := backend.New(srv.URL)
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	orch, err := activityform.NewOrchestrator(testsupport.Validator(t), client)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	out := orch.Submit(context.Background(), "tok", testsupport.OnlineActivity())
	if out.State != submission.StateSucceeded || out.ActivityID != "act-42" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	wantTrace := []submission.State{
		submission.StateIdle, submission.StateSubmitted, submission.StateForwarding, submission.StateSucceeded,
	}
	if diff := cmp.Diff(wantTrace, out.Trace); diff != "" {
		t.Fatalf("trace mismatch (-want +got):\n%s", diff)
	}
	if got["name"] != "Go Meetup" || got["type"] != "online" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestNewOrchestrator_RequiresClient(t *testing.T) {
	if _, err := activityform.NewOrchestrator(testsupport.Validator(t), nil); err == nil {
		t.Fatalf("expected an error without a backend client")
	}
}
