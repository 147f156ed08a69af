package activity

import (
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-activityform/pkg/validation"
)

var ruleMessages = map[string]string{
	"required_online":  "線上活動須提供活動連結",
	"required_offline": "實體活動須提供活動地點",
	"after_start":      "結束時間必須晚於開始時間",
	"end_or_open":      "請設定結束時間或勾選無結束日期",
}

func newRules() *validation.StructValidator {
	options := []validation.StructOption{
		validation.WithStructLevel(recordRules, Record{}),
	}
	for tag, msg := range ruleMessages {
		options = append(options, validation.WithMessage(tag, msg))
	}
	return validation.NewStructValidator(options...)
}

func recordRules(sl validator.StructLevel) {
	rec, ok := sl.Current().Interface().(Record)
	if !ok {
		return
	}

	switch rec.Type {
	case TypeOnline:
		if rec.Link == "" {
			sl.ReportError(rec.Link, "link", "Link", "required_online", "")
		}
	case TypeOffline:
		if rec.Location == "" {
			sl.ReportError(rec.Location, "location", "Location", "required_offline", "")
		}
	}

	switch {
	case rec.NoEndDate:
	case rec.EndDateTime == nil:
		sl.ReportError(rec.EndDateTime, "endDateTime", "EndDateTime", "end_or_open", "")
	case !rec.StartDateTime.IsZero() && !rec.EndDateTime.After(rec.StartDateTime):
		sl.ReportError(rec.EndDateTime, "endDateTime", "EndDateTime", "after_start", "")
	}

	for i, tier := range rec.TicketPrice {
		if tier.StartDateTime == nil || tier.EndDateTime == nil {
			continue
		}
		if !tier.EndDateTime.After(*tier.StartDateTime) {
			field := "ticketPrice[" + strconv.Itoa(i) + "].endDateTime"
			sl.ReportError(tier.EndDateTime, field, "EndDateTime", "after_start", "")
		}
	}
}
