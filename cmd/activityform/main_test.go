package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-activityform/internal/logger"
	"github.com/goliatone/go-activityform/internal/prompt"
	"github.com/goliatone/go-activityform/pkg/testsupport"
)

var validBody = testsupport.URLEncoded(testsupport.OnlineActivity())

func testApp(env map[string]string) *app {
	return &app{
		fs: afero.NewMemMapFs(),
		lookup: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheck_ValidForm(t *testing.T) {
	a := testApp(nil)
	require.NoError(t, afero.WriteFile(a.fs, "form.txt", []byte(validBody+"\n"), 0o644))

	out, err := run(t, a, "check", "form.txt")
	require.NoError(t, err)

	var report struct {
		Record map[string]any `json:"record"`
		Issues []any          `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Empty(t, report.Issues)
	require.Equal(t, "Go Meetup", report.Record["name"])
}

func TestCheck_RejectedForm(t *testing.T) {
	a := testApp(nil)
	require.NoError(t, afero.WriteFile(a.fs, "form.txt", []byte("name=&ticketPrice.0.name=A&ticketPrice.x=1"), 0o644))

	out, err := run(t, a, "check", "form.txt")
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, `"ticketPrice.x"`)
}

func TestCheck_ReadsStdinAndConfig(t *testing.T) {
	a := testApp(nil)
	require.NoError(t, afero.WriteFile(a.fs, "activityform.yaml", []byte("form:\n  max_index: 20\n  timezone: UTC\n"), 0o644))

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(validBody))
	cmd.SetArgs([]string{"--config", "activityform.yaml", "check", "-"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
}

func TestCheck_Errors(t *testing.T) {
	a := testApp(nil)
	_, err := run(t, a, "check", "missing.txt")
	require.Error(t, err)
	require.NotErrorIs(t, err, errRejected)

	_, err = run(t, a, "check")
	require.Error(t, err)
}

type scriptedDriver struct {
	inputs   []string
	confirms []bool
}

func (d *scriptedDriver) Input(_ context.Context, _ prompt.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, _ prompt.ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	v := d.confirms[0]
	d.confirms = d.confirms[1:]
	return v, nil
}

func (d *scriptedDriver) Select(_ context.Context, _ prompt.SelectConfig) (int, error) {
	return 1, nil
}

func (d *scriptedDriver) TextArea(_ context.Context, _ prompt.TextAreaConfig) (string, error) {
	return "<p>Talks</p>", nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func onlineAnswers() *scriptedDriver {
	return &scriptedDriver{
		inputs: []string{
			"Go Meetup", "", "tech", "https://img.example.com/a.png",
			"https://meet.example.com/go", "30", "2026-11-01 19:00",
			"Gophers", "", "", "",
			"General", "0",
		},
		confirms: []bool{true, false},
	}
}

func TestPrompt_PrintsReport(t *testing.T) {
	a := testApp(nil)
	a.driver = onlineAnswers()

	out, err := run(t, a, "prompt")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "Go Meetup"`)
}

func TestPrompt_Submit(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"_id":"act-7"}`))
	}))
	defer backend.Close()

	a := testApp(map[string]string{
		"ACTIVITYFORM_BACKEND_URL": backend.URL,
		"ACTIVITYFORM_CREDENTIAL":  "tok",
		"ACTIVITYFORM_ENV":         "test",
	})
	a.driver = onlineAnswers()

	out, err := run(t, a, "prompt", "--submit")
	require.NoError(t, err)
	require.Contains(t, out, `"activityId": "act-7"`)
}

func TestPrompt_SubmitNeedsBackend(t *testing.T) {
	a := testApp(nil)
	a.driver = onlineAnswers()

	_, err := run(t, a, "prompt", "--submit")
	require.Error(t, err)
}

func TestRunServer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv, time.Second, logger.Nop()) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not return after cancel")
	}
}
