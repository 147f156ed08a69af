package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-activityform/internal/idgen"
	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/submission"
)

const (
	ActivitiesRoute   = "/activities"
	UploadImagesRoute = "/upload-images"

	// SessionCookie carries the user's credential.
	SessionCookie = "session"
	// RequestIDHeader is read from and echoed on every response.
	RequestIDHeader = "X-Request-ID"

	DefaultMaxBodyBytes int64 = 10 << 20

	// StatusClientClosedRequest reports a submission the client abandoned.
	StatusClientClosedRequest = 499
)

var (
	errUnsupportedMedia = errors.New("httpapi: unsupported content type")
	errEmptyBody        = errors.New("httpapi: request body is empty")
)

// Submitter runs one submission. *submission.Orchestrator satisfies it.
type Submitter[T any] interface {
	Submit(ctx context.Context, credential string, entries []formdata.Entry) submission.Outcome[T]
}

// Uploader runs one image upload. *submission.Uploader satisfies it.
type Uploader interface {
	Upload(ctx context.Context, credential string, entries []formdata.Entry) submission.UploadOutcome
}

// Option configures a Server.
type Option func(*options)

type options struct {
	messages       submission.Messages
	limits         formdata.MultipartLimits
	maxBodyBytes   int64
	view           *View
	logger         submission.Logger
	uploadObserver func(submission.UploadOutcome)
	cookieName     string
}

// WithMessages overrides the user-facing message catalog.
func WithMessages(messages submission.Messages) Option {
	return func(o *options) {
		o.messages = messages
	}
}

// WithMultipartLimits bounds individual multipart fields and files.
func WithMultipartLimits(limits formdata.MultipartLimits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithMaxBodyBytes bounds the whole request body.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithView enables HTML responses for clients that accept text/html.
func WithView(view *View) Option {
	return func(o *options) {
		o.view = view
	}
}

// WithLogger sets the request logger.
func WithLogger(logger submission.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithUploadObserver is called once per finished upload.
func WithUploadObserver(fn func(submission.UploadOutcome)) Option {
	return func(o *options) {
		o.uploadObserver = fn
	}
}

// WithCookieName changes the cookie the credential is read from.
func WithCookieName(name string) Option {
	return func(o *options) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			o.cookieName = trimmed
		}
	}
}

// Server exposes the submission and upload actions over HTTP.
type Server[T any] struct {
	submitter Submitter[T]
	uploader  Uploader
	options
}

// New constructs a Server. uploader may be nil, in which case the upload
// route is not registered.
func New[T any](submitter Submitter[T], uploader Uploader, opts ...Option) (*Server[T], error) {
	if submitter == nil {
		return nil, errors.New("httpapi: submitter is required")
	}
	s := &Server[T]{
		submitter: submitter,
		uploader:  uploader,
		options: options{
			messages:     submission.DefaultMessages(),
			maxBodyBytes: DefaultMaxBodyBytes,
			logger:       zap.NewNop().Sugar(),
			cookieName:   SessionCookie,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s.options)
		}
	}
	return s, nil
}

// Handler returns the routed handler with request id and recovery
// middleware applied.
func (s *Server[T]) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+ActivitiesRoute, s.handleSubmit)
	if s.uploader != nil {
		mux.HandleFunc("POST "+UploadImagesRoute, s.handleUpload)
	}
	return s.withRequestID(s.withRecover(mux))
}

func (s *Server[T]) handleSubmit(w http.ResponseWriter, r *http.Request) {
	entries, status, err := s.readEntries(w, r)
	if err != nil {
		s.logger.Warnw("submission: unreadable request", "request_id", submission.RequestID(r.Context()), "error", err)
		s.writeJSON(w, status, submission.Response{Message: s.messages.BadRequest})
		return
	}

	out := s.submitter.Submit(r.Context(), Credential(r, s.cookieName), entries)
	resp := submission.Respond(out, s.messages)
	status = StatusFor(out.State, out.Err)

	if s.view != nil && wantsHTML(r) {
		s.writeHTML(w, r, status, out.State, resp)
		return
	}
	s.writeJSON(w, status, resp)
}

func (s *Server[T]) handleUpload(w http.ResponseWriter, r *http.Request) {
	entries, status, err := s.readEntries(w, r)
	if err != nil {
		s.logger.Warnw("upload: unreadable request", "request_id", submission.RequestID(r.Context()), "error", err)
		s.writeJSON(w, status, submission.UploadResponse{Status: "failed", Message: s.messages.UploadInvalidImage})
		return
	}

	out := s.uploader.Upload(r.Context(), Credential(r, s.cookieName), entries)
	if s.uploadObserver != nil {
		s.uploadObserver(out)
	}

	status = http.StatusOK
	switch {
	case out.Invalid:
		status = http.StatusUnprocessableEntity
	case out.Err != nil:
		status = StatusFor(submission.StateFailed, out.Err)
	}
	s.writeJSON(w, status, submission.RespondUpload(out, s.messages))
}

// readEntries decodes the body in submission order. The returned status is
// meaningful only when err is non-nil.
func (s *Server[T]) readEntries(w http.ResponseWriter, r *http.Request) ([]formdata.Entry, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, http.StatusUnsupportedMediaType, fmt.Errorf("%w: %v", errUnsupportedMedia, err)
	}

	var entries []formdata.Entry
	switch mediaType {
	case "multipart/form-data":
		reader, rerr := r.MultipartReader()
		if rerr != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("httpapi: multipart: %w", rerr)
		}
		entries, err = formdata.ReadMultipart(reader, s.limits)
	case "application/x-www-form-urlencoded":
		var body []byte
		body, err = io.ReadAll(r.Body)
		if err == nil {
			entries, err = formdata.ParseURLEncoded(string(body))
		}
	default:
		return nil, http.StatusUnsupportedMediaType, fmt.Errorf("%w: %s", errUnsupportedMedia, mediaType)
	}

	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, formdata.ErrPartTooLarge) {
			return nil, http.StatusRequestEntityTooLarge, err
		}
		return nil, http.StatusBadRequest, err
	}
	if len(entries) == 0 {
		return nil, http.StatusBadRequest, errEmptyBody
	}
	return entries, 0, nil
}

// StatusFor maps a terminal state onto an HTTP status code.
func StatusFor(state submission.State, failure *submission.Error) int {
	switch state {
	case submission.StateSucceeded:
		return http.StatusCreated
	case submission.StateRejected:
		return http.StatusUnprocessableEntity
	}
	if failure == nil {
		return http.StatusInternalServerError
	}
	switch failure.Kind {
	case submission.KindUnauthenticated:
		return http.StatusUnauthorized
	case submission.KindStatus, submission.KindTransport:
		return http.StatusBadGateway
	case submission.KindCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// Credential returns the session cookie value, falling back to a bearer
// token. An empty result means the request is anonymous.
func Credential(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (s *Server[T]) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorw("httpapi: write response", "error", err)
	}
}

func (s *Server[T]) writeHTML(w http.ResponseWriter, r *http.Request, status int, state submission.State, resp submission.Response) {
	var buf bytes.Buffer
	requestID := submission.RequestID(r.Context())
	if err := s.view.Render(&buf, resultTemplate, resultContext(state, resp, requestID)); err != nil {
		s.logger.Errorw("httpapi: render result", "request_id", requestID, "error", err)
		s.writeJSON(w, status, resp)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server[T]) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			generated, err := idgen.RequestID()
			if err != nil {
				s.logger.Warnw("httpapi: request id", "error", err)
			}
			id = generated
		}
		if id != "" {
			w.Header().Set(RequestIDHeader, id)
			r = r.WithContext(submission.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server[T]) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Errorw("httpapi: panic", "request_id", submission.RequestID(r.Context()), "panic", rec)
				s.writeJSON(w, http.StatusInternalServerError, submission.Response{Message: s.messages.Unknown})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
