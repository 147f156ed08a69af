package submission_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-activityform/pkg/backend"
	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/submission"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeImageUploader struct {
	data  json.RawMessage
	err   error
	calls int
}

func (f *fakeImageUploader) UploadImage(context.Context, string, *formdata.Blob) (json.RawMessage, error) {
	f.calls++
	return f.data, f.err
}

func newUploader(t *testing.T, fake *fakeImageUploader, options ...submission.UploaderOption) *submission.Uploader {
	t.Helper()
	u, err := submission.NewUploader(fake, options...)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	return u
}

func imageEntries(data []byte) []formdata.Entry {
	return []formdata.Entry{formdata.File(submission.UploadField, &formdata.Blob{
		Filename:    "cover.png",
		ContentType: "image/png",
		Data:        data,
	})}
}

func TestUploader_Success(t *testing.T) {
	fake := &fakeImageUploader{data: json.RawMessage(`{"imgUrl":"https://img/x.png"}`)}
	out := newUploader(t, fake).Upload(context.Background(), "token", imageEntries(pngHeader))

	if !out.OK() {
		t.Fatalf("expected success, got %+v", out)
	}
	want := submission.UploadResponse{Status: "success", Data: json.RawMessage(`{"imgUrl":"https://img/x.png"}`)}
	if diff := cmp.Diff(want, submission.RespondUpload(out, submission.DefaultMessages())); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestUploader_Failures(t *testing.T) {
	messages := submission.DefaultMessages()
	tests := []struct {
		name       string
		credential string
		entries    []formdata.Entry
		err        error
		options    []submission.UploaderOption
		want       string
		wantCalls  int
	}{
		{
			name:    "no credential",
			entries: imageEntries(pngHeader),
			want:    "請先登入",
		},
		{
			name:       "text instead of file",
			credential: "token",
			entries:    []formdata.Entry{formdata.Text(submission.UploadField, "cover.png")},
			want:       "請傳送正確的圖檔格式",
		},
		{
			name:       "not an image",
			credential: "token",
			entries:    imageEntries([]byte("plain text")),
			want:       "請傳送正確的圖檔格式",
		},
		{
			name:       "too large",
			credential: "token",
			entries:    imageEntries(pngHeader),
			options:    []submission.UploaderOption{submission.WithMaxImageBytes(4)},
			want:       "請傳送正確的圖檔格式",
		},
		{
			name:       "backend status",
			credential: "token",
			entries:    imageEntries(pngHeader),
			err:        &backend.StatusError{StatusCode: 502, Body: "bad gateway"},
			want:       "伺服器無回應請確認網路或稍後再試，造成原因bad gateway",
			wantCalls:  1,
		},
		{
			name:       "backend refuses credential",
			credential: "token",
			entries:    imageEntries(pngHeader),
			err:        &backend.StatusError{StatusCode: 401, Body: "token expired"},
			want:       "伺服器無回應請確認網路或稍後再試，造成原因token expired",
			wantCalls:  1,
		},
		{
			name:       "unknown error",
			credential: "token",
			entries:    imageEntries(pngHeader),
			err:        errors.New("boom"),
			want:       "伺服器無回應請確認網路或稍後再試，造成原因boom",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeImageUploader{err: tt.err}
			out := newUploader(t, fake, tt.options...).Upload(context.Background(), tt.credential, tt.entries)
			if out.OK() {
				t.Fatal("expected failure")
			}
			resp := submission.RespondUpload(out, messages)
			want := submission.UploadResponse{Status: "failed", Message: tt.want}
			if diff := cmp.Diff(want, resp); diff != "" {
				t.Fatalf("response mismatch (-want +got):\n%s", diff)
			}
			if fake.calls != tt.wantCalls {
				t.Fatalf("expected %d backend calls, got %d", tt.wantCalls, fake.calls)
			}
		})
	}
}

func TestRespond_Shapes(t *testing.T) {
	messages := submission.DefaultMessages()

	rejected := submission.Respond(submission.Outcome[event]{State: submission.StateRejected}, messages)
	if rejected.Message != "表單驗證失敗" || rejected.Fields == nil || rejected.Issues == nil {
		t.Fatalf("unexpected reject response: %+v", rejected)
	}

	success := submission.Respond(submission.Outcome[event]{State: submission.StateSucceeded, ActivityID: "act_9"}, messages)
	want := submission.Response{Message: "新增活動成功！跳轉至活動頁中，請稍候⋯⋯", ActivityID: "act_9"}
	if diff := cmp.Diff(want, success); diff != "" {
		t.Fatalf("success mismatch (-want +got):\n%s", diff)
	}

	unauth := submission.Respond(submission.Outcome[event]{
		State: submission.StateFailed,
		Err:   &submission.Error{Kind: submission.KindUnauthenticated},
	}, messages)
	if diff := cmp.Diff(submission.Response{Message: "請登入後再試"}, unauth); diff != "" {
		t.Fatalf("unauthenticated mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_KeepsTypedErrors(t *testing.T) {
	typed := &submission.Error{Kind: submission.KindCanceled}
	if got := submission.Classify(typed); got != typed {
		t.Fatalf("expected same error, got %+v", got)
	}
	if submission.Classify(nil) != nil {
		t.Fatal("nil error must classify to nil")
	}
	got := submission.Classify(backend.ErrMissingCredential)
	if got.Kind != submission.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", got.Kind)
	}
}
