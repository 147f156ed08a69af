package formdata

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
)

// ErrPartTooLarge is returned when a multipart field or file exceeds the
// configured limit.
var ErrPartTooLarge = errors.New("formdata: part exceeds size limit")

// ParseURLEncoded decodes an application/x-www-form-urlencoded body while
// keeping the submission order of its fields.
func ParseURLEncoded(body string) ([]Entry, error) {
	var entries []Entry
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("formdata: decode key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("formdata: decode value for %q: %w", key, err)
		}
		entries = append(entries, Text(key, value))
	}
	return entries, nil
}

// MultipartLimits bounds the size of individual parts read by ReadMultipart.
// Zero means unlimited.
type MultipartLimits struct {
	MaxFieldBytes int64
	MaxFileBytes  int64
}

// ReadMultipart consumes a multipart/form-data stream in part order. Parts
// with a filename become blob entries; all others become text entries.
func ReadMultipart(reader *multipart.Reader, limits MultipartLimits) ([]Entry, error) {
	if reader == nil {
		return nil, errors.New("formdata: multipart reader is nil")
	}

	var entries []Entry
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("formdata: read part: %w", err)
		}

		entry, keep, err := readPart(part, limits)
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		if keep {
			entries = append(entries, entry)
		}
	}
}

func readPart(part *multipart.Part, limits MultipartLimits) (Entry, bool, error) {
	name := part.FormName()
	if name == "" {
		return Entry{}, false, nil
	}

	limit := limits.MaxFieldBytes
	filename := part.FileName()
	if filename != "" {
		limit = limits.MaxFileBytes
	}

	data, err := readLimited(part, limit)
	if err != nil {
		return Entry{}, false, fmt.Errorf("formdata: field %q: %w", name, err)
	}

	if filename == "" {
		return Text(name, string(data)), true, nil
	}
	return File(name, &Blob{
		Filename:    filename,
		ContentType: part.Header.Get("Content-Type"),
		Data:        data,
	}), true, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrPartTooLarge
	}
	return data, nil
}
