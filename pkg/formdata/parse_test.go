package formdata_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-activityform/pkg/formdata"
)

func TestParseURLEncoded_KeepsOrder(t *testing.T) {
	entries, err := formdata.ParseURLEncoded("name=A&ticketPrice.0.name=VIP&cover=a.jpg%2C+b.jpg&name=B&&flag")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var got []string
	for _, entry := range entries {
		got = append(got, entry.Path+"="+entry.Value.Text)
	}
	want := []string{"name=A", "ticketPrice.0.name=VIP", "cover=a.jpg, b.jpg", "name=B", "flag="}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseURLEncoded_BadEscape(t *testing.T) {
	if _, err := formdata.ParseURLEncoded("name=%zz"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestReadMultipart_TextAndFiles(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("name", "Jazz")
	part, err := writer.CreateFormFile("uploadImage", "poster.png")
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	_, _ = part.Write([]byte("png-bytes"))
	_ = writer.WriteField("name", "Jazz night")
	_ = writer.Close()

	entries, err := formdata.ReadMultipart(multipart.NewReader(&body, writer.Boundary()), formdata.MultipartLimits{})
	if err != nil {
		t.Fatalf("read multipart: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !entries[1].IsFile() || entries[1].Value.Blob.Filename != "poster.png" || string(entries[1].Value.Blob.Data) != "png-bytes" {
		t.Fatalf("unexpected file entry: %+v", entries[1].Value)
	}

	value, ok := formdata.Lookup(entries, "name")
	if !ok || value.Text != "Jazz night" {
		t.Fatalf("expected last name value, got %+v", value)
	}
}

func TestReadMultipart_FileTooLarge(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("uploadImage", "big.png")
	_, _ = part.Write(bytes.Repeat([]byte("x"), 32))
	_ = writer.Close()

	_, err := formdata.ReadMultipart(multipart.NewReader(&body, writer.Boundary()), formdata.MultipartLimits{MaxFileBytes: 16})
	if !errors.Is(err, formdata.ErrPartTooLarge) {
		t.Fatalf("expected ErrPartTooLarge, got %v", err)
	}
}
