package activity_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-activityform/pkg/activity"
	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/validation"
)

func validEntries() []formdata.Entry {
	return []formdata.Entry{
		formdata.Text("name", "<b>Jazz</b> & Blues"),
		formdata.Text("summary", "An evening of live music"),
		formdata.Text("details", "<p>Doors open at 7<script>alert(1)</script></p>"),
		formdata.Text("organizer.name", "Taipei Jazz Club"),
		formdata.Text("organizer.contactEmail", "hello@example.com"),
		formdata.Text("cover", "https://img.example.com/a.jpg, https://img.example.com/b.jpg"),
		formdata.Text("category", "music"),
		formdata.Text("type", "offline"),
		formdata.Text("location", "Blue Note Taipei"),
		formdata.Text("lat", "25.03"),
		formdata.Text("lng", "121.56"),
		formdata.Text("totalParticipantCapacity", "１２０"),
		formdata.Text("startDateTime", "2024-05-01T19:00"),
		formdata.Text("endDateTime", "2024-05-01T22:00"),
		formdata.Text("ticketPrice.0.name", "General"),
		formdata.Text("ticketPrice.0.price", "500"),
		formdata.Text("ticketPrice.1.name", "VIP"),
		formdata.Text("ticketPrice.1.price", "１２００"),
	}
}

func newValidator(t *testing.T) *activity.Validator {
	t.Helper()
	v, err := activity.NewValidator(context.Background())
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func validate(t *testing.T, v *activity.Validator, entries []formdata.Entry) validation.Result[activity.Record] {
	t.Helper()
	tree, err := formdata.Reconstruct(entries)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	return v.Validate(context.Background(), tree)
}

func hasIssue(issues []validation.Issue, path, message string) bool {
	for _, issue := range issues {
		if issue.Path == path && (message == "" || issue.Message == message) {
			return true
		}
	}
	return false
}

func TestValidator_AcceptsCompleteForm(t *testing.T) {
	result := validate(t, newValidator(t), validEntries())
	if !result.OK() {
		t.Fatalf("expected no issues, got %#v", result.Issues)
	}

	lat, lng := 25.03, 121.56
	start := time.Date(2024, 5, 1, 19, 0, 0, 0, activity.DefaultLocation)
	end := time.Date(2024, 5, 1, 22, 0, 0, 0, activity.DefaultLocation)
	want := activity.Record{
		Name:    "Jazz & Blues",
		Summary: "An evening of live music",
		Details: "<p>Doors open at 7</p>",
		Organizer: activity.Organizer{
			Name:         "Taipei Jazz Club",
			ContactEmail: "hello@example.com",
		},
		Cover:                    []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"},
		Thumbnail:                "https://img.example.com/a.jpg",
		Category:                 "music",
		Type:                     activity.TypeOffline,
		Location:                 "Blue Note Taipei",
		Lat:                      &lat,
		Lng:                      &lng,
		TotalParticipantCapacity: 120,
		StartDateTime:            start,
		EndDateTime:              &end,
		TicketPrice: []activity.TicketPrice{
			{Name: "General", Price: 500},
			{Name: "VIP", Price: 1200},
		},
	}
	if diff := cmp.Diff(want, result.Value); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_MissingRequiredUsesSchemaMessage(t *testing.T) {
	var entries []formdata.Entry
	for _, entry := range validEntries() {
		if entry.Path != "name" {
			entries = append(entries, entry)
		}
	}

	result := validate(t, newValidator(t), entries)
	if result.OK() {
		t.Fatal("expected issues")
	}
	if !hasIssue(result.Issues, "name", "活動名稱為必填，且不可超過 100 字") {
		t.Fatalf("missing name issue in %#v", result.Issues)
	}
}

func TestValidator_SchemaReportsEveryField(t *testing.T) {
	entries := append(validEntries(),
		formdata.Text("ticketPrice.0.price", "free"),
		formdata.Text("type", "hybrid"),
	)

	result := validate(t, newValidator(t), entries)
	if !hasIssue(result.Issues, "ticketPrice.0.price", "票價必須為整數") {
		t.Fatalf("missing price issue in %#v", result.Issues)
	}
	if !hasIssue(result.Issues, "type", "請選擇活動類型") {
		t.Fatalf("missing type issue in %#v", result.Issues)
	}
}

func TestValidator_TicketGapUsesSchemaMessage(t *testing.T) {
	entries := append(validEntries(),
		formdata.Text("ticketPrice.3.name", "Student"),
		formdata.Text("ticketPrice.3.price", "300"),
	)

	result := validate(t, newValidator(t), entries)
	if !hasIssue(result.Issues, "ticketPrice.2", "請填寫完整的票種資料") {
		t.Fatalf("missing gap issue in %#v", result.Issues)
	}
	for _, issue := range result.Issues {
		if strings.Contains(issue.Message, "nullable") {
			t.Fatalf("untranslated schema reason %q", issue.Message)
		}
	}
}

func TestValidator_OnlineNeedsLink(t *testing.T) {
	entries := append(validEntries(), formdata.Text("type", "online"))

	result := validate(t, newValidator(t), entries)
	want := []validation.Issue{{Path: "link", Message: "線上活動須提供活動連結"}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_EndMustFollowStart(t *testing.T) {
	entries := append(validEntries(),
		formdata.Text("endDateTime", "2024-05-01T18:00"),
		formdata.Text("ticketPrice.1.startDateTime", "2024-04-10"),
		formdata.Text("ticketPrice.1.endDateTime", "2024-04-01"),
	)

	result := validate(t, newValidator(t), entries)
	want := []validation.Issue{
		{Path: "endDateTime", Message: "結束時間必須晚於開始時間"},
		{Path: "ticketPrice.1.endDateTime", Message: "結束時間必須晚於開始時間"},
	}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_NoEndDateSkipsEnd(t *testing.T) {
	var entries []formdata.Entry
	for _, entry := range validEntries() {
		if entry.Path != "endDateTime" {
			entries = append(entries, entry)
		}
	}

	result := validate(t, newValidator(t), entries)
	if !hasIssue(result.Issues, "endDateTime", "請設定結束時間或勾選無結束日期") {
		t.Fatalf("missing end issue in %#v", result.Issues)
	}

	result = validate(t, newValidator(t), append(entries, formdata.Text("noEndDate", "on")))
	if !result.OK() {
		t.Fatalf("expected no issues, got %#v", result.Issues)
	}
	if !result.Value.NoEndDate || result.Value.EndDateTime != nil {
		t.Fatalf("unexpected end fields: %v %v", result.Value.NoEndDate, result.Value.EndDateTime)
	}
}

func TestValidator_ImpossibleDateIsDecodeIssue(t *testing.T) {
	entries := append(validEntries(), formdata.Text("startDateTime", "2024-13-45T19:00"))

	result := validate(t, newValidator(t), entries)
	if !hasIssue(result.Issues, "startDateTime", "日期時間格式錯誤") {
		t.Fatalf("missing date issue in %#v", result.Issues)
	}
}

func TestValidator_WithLocation(t *testing.T) {
	v, err := activity.NewValidator(context.Background(), activity.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	result := validate(t, v, validEntries())
	if !result.OK() {
		t.Fatalf("expected no issues, got %#v", result.Issues)
	}
	if got := result.Value.StartDateTime.Location(); got != time.UTC {
		t.Fatalf("expected UTC start, got %v", got)
	}
}

func TestValidator_RejectsNonMapping(t *testing.T) {
	result := newValidator(t).Validate(context.Background(), formdata.TextValue("x"))
	if len(result.Issues) != 1 || result.Issues[0].Path != "" {
		t.Fatalf("expected one form-level issue, got %#v", result.Issues)
	}
}

func TestNewValidator_UnknownSchema(t *testing.T) {
	_, err := activity.NewValidator(context.Background(),
		activity.WithSchemaDocument(activity.DefaultSchema(), "Missing"))
	if err == nil {
		t.Fatal("expected error for unknown schema name")
	}
}

func TestNormalize_NarrowsOnlyMachineFields(t *testing.T) {
	tree, err := formdata.Reconstruct([]formdata.Entry{
		formdata.Text("name", "音樂會，歡迎！"),
		formdata.Text("ticketPrice.0.price", "１００"),
	})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	got := activity.Normalize(tree)
	if diff := cmp.Diff("音樂會，歡迎！", got.Lookup("name").Text); diff != "" {
		t.Fatalf("name mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("100", got.Lookup("ticketPrice.0.price").Text); diff != "" {
		t.Fatalf("price mismatch (-want +got):\n%s", diff)
	}
}
