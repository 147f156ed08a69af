package submission

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-activityform/pkg/validation"
)

// Messages holds the user-facing strings chosen for each outcome. Failure
// and UploadFailure take one %s verb for the API's response body.
type Messages struct {
	Rejected        string
	BadRequest      string
	Succeeded       string
	Failure         string
	Unauthenticated string
	Canceled        string
	Unknown         string

	UploadUnauthenticated string
	UploadInvalidImage    string
	UploadFailure         string
}

// DefaultMessages returns the zh-TW catalog used by the activity site.
func DefaultMessages() Messages {
	return Messages{
		Rejected:        "表單驗證失敗",
		BadRequest:      "無法讀取表單內容，請重新送出",
		Succeeded:       "新增活動成功！跳轉至活動頁中，請稍候⋯⋯",
		Failure:         "建立活動上傳失敗，原因：%s",
		Unauthenticated: "請登入後再試",
		Canceled:        "請求已取消",
		Unknown:         "系統發生未預期的錯誤，請稍後再試",

		UploadUnauthenticated: "請先登入",
		UploadInvalidImage:    "請傳送正確的圖檔格式",
		UploadFailure:         "伺服器無回應請確認網路或稍後再試，造成原因%s",
	}
}

// Response is the wire shape returned to the form. Reject responses carry
// Fields and Issues, success carries ActivityID, failures carry only Message.
type Response struct {
	Message    string             `json:"message"`
	Fields     map[string]string  `json:"fields,omitempty"`
	Issues     []validation.Issue `json:"issues,omitempty"`
	ActivityID string             `json:"activityId,omitempty"`
}

type rejectResponse struct {
	Message string             `json:"message"`
	Fields  map[string]string  `json:"fields"`
	Issues  []validation.Issue `json:"issues"`
}

// MarshalJSON always writes fields and issues for a reject response, even
// when both are empty. A response is a reject when either is non-nil.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Fields == nil && r.Issues == nil {
		type plain Response
		return json.Marshal(plain(r))
	}
	reject := rejectResponse{Message: r.Message, Fields: r.Fields, Issues: r.Issues}
	if reject.Fields == nil {
		reject.Fields = map[string]string{}
	}
	if reject.Issues == nil {
		reject.Issues = []validation.Issue{}
	}
	return json.Marshal(reject)
}

// Respond maps an outcome onto its response.
func Respond[T any](out Outcome[T], messages Messages) Response {
	switch out.State {
	case StateRejected:
		fields := out.Fields
		if fields == nil {
			fields = map[string]string{}
		}
		issues := out.Issues
		if issues == nil {
			issues = []validation.Issue{}
		}
		return Response{Message: messages.Rejected, Fields: fields, Issues: issues}
	case StateSucceeded:
		return Response{Message: messages.Succeeded, ActivityID: out.ActivityID}
	case StateFailed:
		return Response{Message: messages.forFailure(out.Err)}
	default:
		return Response{Message: messages.Unknown}
	}
}

func (m Messages) forFailure(err *Error) string {
	if err == nil {
		return m.Unknown
	}
	// Any answer from the API, refused credentials included, shows its body.
	if err.StatusCode != 0 {
		return format(m.Failure, err.Body)
	}
	switch err.Kind {
	case KindUnauthenticated:
		return m.Unauthenticated
	case KindCanceled:
		return m.Canceled
	case KindTransport:
		reason := ""
		if err.Cause != nil {
			reason = err.Cause.Error()
		}
		return format(m.Failure, reason)
	default:
		return m.Unknown
	}
}

func format(tmpl, reason string) string {
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, reason)
	}
	return tmpl
}
