package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/goliatone/go-activityform/pkg/formdata"
)

// ImageField is the multipart field the upload endpoint reads.
const ImageField = "image"

// UploadImage forwards blob to the upload endpoint and returns the raw JSON
// result so callers can pass it through untouched.
func (c *Client) UploadImage(ctx context.Context, credential string, blob *formdata.Blob) (json.RawMessage, error) {
	if blob == nil || len(blob.Data) == 0 {
		return nil, errors.New("backend: image is empty")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImageField, blob.Filename))
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("backend: build upload: %w", err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return nil, fmt.Errorf("backend: build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("backend: build upload: %w", err)
	}

	body, err := c.do(ctx, credential, UploadImagesPath, writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("backend: upload response is not JSON")
	}
	return json.RawMessage(body), nil
}
