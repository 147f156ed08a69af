package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-activityform/pkg/activity"
	"github.com/goliatone/go-activityform/pkg/formdata"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string
	infos     []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func onlineDriver() *stubDriver {
	return &stubDriver{
		inputs: []string{
			"Go Meetup", "", "tech", "https://img.example.com/a.png, https://img.example.com/b.png",
			"https://meet.example.com/go",
			"30", "2026-11-01 19:00",
			"Gophers", "", "", "",
			"General", "0",
			"VIP", "300",
		},
		textAreas: []string{"<p>Talks and pizza</p>"},
		selectIdx: []int{1},
		confirm:   []bool{true, true, false},
	}
}

func TestCollect_OnlineActivity(t *testing.T) {
	driver := onlineDriver()
	entries, err := Collect(context.Background(), driver)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	want := []string{
		"name", "details", "category", "cover", "type", "link",
		"totalParticipantCapacity", "startDateTime", "noEndDate", "organizer.name",
		"ticketPrice.0.name", "ticketPrice.0.price",
		"ticketPrice.1.name", "ticketPrice.1.price",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if driver.inputPos != len(driver.inputs) || driver.confirmPos != len(driver.confirm) {
		t.Fatalf("prompts not consumed as expected")
	}
}

func TestCollect_AnswersPassValidation(t *testing.T) {
	entries, err := Collect(context.Background(), onlineDriver())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	tree, err := formdata.Reconstruct(entries)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	v, err := activity.NewValidator(context.Background())
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	result := v.Validate(context.Background(), tree)
	if !result.OK() {
		t.Fatalf("expected no issues, got %#v", result.Issues)
	}
	if result.Value.Type != activity.TypeOnline || len(result.Value.TicketPrice) != 2 || len(result.Value.Cover) != 2 {
		t.Fatalf("unexpected record %+v", result.Value)
	}
}

func TestCollect_OfflineAskForLocation(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"Jazz Night", "", "music", "https://img.example.com/a.png",
			"Blue Note", "", "25.03", "121.56",
			"80", "2026-11-01 19:00", "2026-11-01 22:00",
			"Jazz Club", "", "", "",
			"General", "500",
		},
		textAreas: []string{"live"},
		selectIdx: []int{0},
		confirm:   []bool{false, false},
	}
	entries, err := Collect(context.Background(), driver)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if v, ok := formdata.Lookup(entries, "location"); !ok || v.Text != "Blue Note" {
		t.Fatalf("location not collected: %+v", entries)
	}
	if v, ok := formdata.Lookup(entries, "endDateTime"); !ok || v.Text != "2026-11-01 22:00" {
		t.Fatalf("endDateTime not collected: %+v", entries)
	}
	if _, ok := formdata.Lookup(entries, "link"); ok {
		t.Fatalf("offline activity should not ask for a link")
	}
}

func TestCollect_ValidatorRejectsAnswer(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Go", "", "tech", "https://img.example.com/a.png", "https://meet", "many"},
		textAreas: []string{"x"},
		selectIdx: []int{1},
	}
	_, err := Collect(context.Background(), driver)
	if err == nil {
		t.Fatalf("expected an error for a non-integer capacity")
	}
}

func TestCollect_AbortStopsPrompting(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Go"}}
	_, err := Collect(context.Background(), driver)
	if err == nil {
		t.Fatalf("expected an error once the script runs out")
	}
	if driver.inputPos != 1 || driver.textPos != 0 {
		t.Fatalf("collection continued after the first error")
	}
}

func TestTranslateSurveyErr(t *testing.T) {
	other := errors.New("tty closed")
	if got := translateSurveyErr(other); got != other {
		t.Fatalf("unexpected translation %v", got)
	}
}
