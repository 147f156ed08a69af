package activity

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/validation"
)

// DefaultLocation is used for date-time inputs that carry no offset. The
// activity site serves Taiwan, so wall-clock input is read as UTC+8.
var DefaultLocation = time.FixedZone("UTC+8", 8*60*60)

var dateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const (
	msgInteger  = "必須為整數"
	msgNumber   = "必須為數字"
	msgDateTime = "日期時間格式錯誤"
)

// Decoder converts a normalised tree into a Record. It is lenient about
// shape and strict about scalar formats; every unparsable scalar becomes an
// issue.
type Decoder struct {
	location  *time.Location
	sanitizer *Sanitizer
}

// NewDecoder builds a decoder reading naive date-times in loc. A nil loc
// falls back to DefaultLocation.
func NewDecoder(loc *time.Location) *Decoder {
	if loc == nil {
		loc = DefaultLocation
	}
	return &Decoder{location: loc, sanitizer: NewSanitizer()}
}

type decodeState struct {
	d      *Decoder
	issues []validation.Issue
}

// Decode builds the record and returns any scalar format issues.
func (d *Decoder) Decode(tree *formdata.Value) (Record, []validation.Issue) {
	s := &decodeState{d: d}

	rec := Record{
		Name:     s.plain(tree, "name"),
		Summary:  s.plain(tree, "summary"),
		Details:  d.sanitizer.Rich(text(tree, "details")),
		Category: s.plain(tree, "category"),
		Type:     strings.ToLower(s.plain(tree, "type")),
		Link:     s.plain(tree, "link"),
		Location: s.plain(tree, "location"),
		Address:  s.plain(tree, "address"),
		Organizer: Organizer{
			Name:         s.plain(tree, "organizer.name"),
			ContactName:  s.plain(tree, "organizer.contactName"),
			ContactPhone: s.plain(tree, "organizer.contactPhone"),
			ContactEmail: s.plain(tree, "organizer.contactEmail"),
		},
		Lat:                      s.float(tree, "lat"),
		Lng:                      s.float(tree, "lng"),
		TotalParticipantCapacity: s.integer(tree, "totalParticipantCapacity"),
		NoEndDate:                flag(text(tree, "noEndDate")),
		EndDateTime:              s.optionalTime(tree, "endDateTime"),
	}
	if start := s.optionalTime(tree, "startDateTime"); start != nil {
		rec.StartDateTime = *start
	}
	if rec.NoEndDate {
		rec.EndDateTime = nil
	}

	if cover := tree.Get("cover"); cover != nil {
		for _, item := range cover.Items {
			if item.Kind != formdata.KindText {
				continue
			}
			if url := strings.TrimSpace(item.Text); url != "" {
				rec.Cover = append(rec.Cover, url)
			}
		}
		if cover.Kind == formdata.KindText && strings.TrimSpace(cover.Text) != "" {
			rec.Cover = append(rec.Cover, strings.TrimSpace(cover.Text))
		}
	}
	if len(rec.Cover) > 0 {
		rec.Thumbnail = rec.Cover[0]
	}

	if tiers := tree.Get("ticketPrice"); tiers != nil {
		for i, item := range tiers.Items {
			if item.IsNull() {
				continue
			}
			prefix := "ticketPrice." + strconv.Itoa(i) + "."
			rec.TicketPrice = append(rec.TicketPrice, TicketPrice{
				Name:          s.plain(tree, prefix+"name"),
				Price:         s.integer(tree, prefix+"price"),
				StartDateTime: s.optionalTime(tree, prefix+"startDateTime"),
				EndDateTime:   s.optionalTime(tree, prefix+"endDateTime"),
			})
		}
	}

	return rec, s.issues
}

func (s *decodeState) report(path, msg string) {
	s.issues = append(s.issues, validation.Issue{Path: path, Message: msg})
}

func (s *decodeState) plain(tree *formdata.Value, path string) string {
	return s.d.sanitizer.Plain(text(tree, path))
}

func (s *decodeState) integer(tree *formdata.Value, path string) int {
	raw := text(tree, path)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.report(path, msgInteger)
		return 0
	}
	return n
}

func (s *decodeState) float(tree *formdata.Value, path string) *float64 {
	raw := text(tree, path)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.report(path, msgNumber)
		return nil
	}
	return &f
}

func (s *decodeState) optionalTime(tree *formdata.Value, path string) *time.Time {
	raw := text(tree, path)
	if raw == "" {
		return nil
	}
	t, ok := s.d.parseTime(raw)
	if !ok {
		s.report(path, msgDateTime)
		return nil
	}
	return &t
}

func (d *Decoder) parseTime(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, d.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func text(tree *formdata.Value, path string) string {
	v := tree.Lookup(path)
	if v == nil || v.Kind != formdata.KindText {
		return ""
	}
	return strings.TrimSpace(v.Text)
}

func flag(raw string) bool {
	switch strings.ToLower(raw) {
	case "on", "true", "1":
		return true
	}
	return false
}
