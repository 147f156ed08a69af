package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-activityform/pkg/formdata"
)

// UploadField is the form field holding the image.
const UploadField = "uploadImage"

// DefaultMaxImageBytes caps accepted image uploads.
const DefaultMaxImageBytes = 5 << 20

// ErrInvalidImage marks an upload without a usable image part.
var ErrInvalidImage = errors.New("submission: upload is not a supported image")

// ImageUploader forwards one image to the API. *backend.Client satisfies it.
type ImageUploader interface {
	UploadImage(ctx context.Context, credential string, blob *formdata.Blob) (json.RawMessage, error)
}

// UploadOutcome is the result of one image upload.
type UploadOutcome struct {
	Data json.RawMessage
	// Invalid is set when the request held no acceptable image.
	Invalid bool
	Err     *Error
}

// OK reports whether the image was stored.
func (u UploadOutcome) OK() bool { return u.Err == nil && !u.Invalid }

// Uploader validates and forwards image uploads.
type Uploader struct {
	uploader ImageUploader
	maxBytes int
	logger   Logger
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithMaxImageBytes overrides DefaultMaxImageBytes.
func WithMaxImageBytes(n int) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.maxBytes = n
		}
	}
}

// WithUploadLogger sets the uploader's logger.
func WithUploadLogger(l Logger) UploaderOption {
	return func(u *Uploader) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewUploader wraps an ImageUploader.
func NewUploader(uploader ImageUploader, options ...UploaderOption) (*Uploader, error) {
	if uploader == nil {
		return nil, errors.New("submission: image uploader is required")
	}
	u := &Uploader{
		uploader: uploader,
		maxBytes: DefaultMaxImageBytes,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(u)
		}
	}
	return u, nil
}

// Upload checks the credential and the UploadField part, then forwards the
// image.
func (u *Uploader) Upload(ctx context.Context, credential string, entries []formdata.Entry) UploadOutcome {
	requestID := RequestID(ctx)
	if strings.TrimSpace(credential) == "" {
		return UploadOutcome{Err: &Error{Kind: KindUnauthenticated, Cause: errors.New("submission: credential is required")}}
	}

	value, ok := formdata.Lookup(entries, UploadField)
	if !ok || value.Kind != formdata.KindBlob || !u.acceptable(value.Blob) {
		u.logger.Debugw("upload rejected", "request_id", requestID)
		return UploadOutcome{Invalid: true}
	}

	data, err := u.uploader.UploadImage(ctx, credential, value.Blob)
	if err != nil {
		failure := Classify(err)
		u.logger.Warnw("upload failed", "request_id", requestID, "kind", failure.Kind.String(), "error", err)
		return UploadOutcome{Err: failure}
	}
	u.logger.Infow("upload stored", "request_id", requestID, "filename", value.Blob.Filename, "bytes", value.Blob.Size())
	return UploadOutcome{Data: data}
}

func (u *Uploader) acceptable(blob *formdata.Blob) bool {
	if blob == nil || len(blob.Data) == 0 || len(blob.Data) > u.maxBytes {
		return false
	}
	sniffed := http.DetectContentType(blob.Data)
	return strings.HasPrefix(sniffed, "image/")
}

// UploadResponse is the wire shape of an upload result.
type UploadResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// RespondUpload maps an upload outcome onto its response.
func RespondUpload(out UploadOutcome, messages Messages) UploadResponse {
	switch {
	case out.OK():
		return UploadResponse{Status: "success", Data: out.Data}
	case out.Invalid:
		return UploadResponse{Status: "failed", Message: messages.UploadInvalidImage}
	case out.Err.StatusCode != 0:
		return UploadResponse{Status: "failed", Message: format(messages.UploadFailure, out.Err.Body)}
	case out.Err.Kind == KindUnauthenticated:
		return UploadResponse{Status: "failed", Message: messages.UploadUnauthenticated}
	default:
		reason := ""
		if out.Err.Cause != nil {
			reason = out.Err.Cause.Error()
		}
		return UploadResponse{Status: "failed", Message: format(messages.UploadFailure, reason)}
	}
}
