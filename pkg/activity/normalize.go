package activity

import (
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/goliatone/go-activityform/pkg/formdata"
)

// narrowFields hold machine-readable values where full-width input from CJK
// keyboards (for example "１００") must be folded to ASCII.
var narrowFields = map[string]struct{}{
	"price":                    {},
	"totalParticipantCapacity": {},
	"lat":                      {},
	"lng":                      {},
	"startDateTime":            {},
	"endDateTime":              {},
	"contactPhone":             {},
	"contactEmail":             {},
	"link":                     {},
	"cover":                    {},
	"type":                     {},
	"noEndDate":                {},
}

// Normalize returns a copy of tree with every text leaf in NFC form and
// machine-readable fields narrowed to half-width characters.
func Normalize(tree *formdata.Value) *formdata.Value {
	return normalizeValue(tree, "")
}

func normalizeValue(v *formdata.Value, field string) *formdata.Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case formdata.KindText:
		text := v.Text
		if _, ok := narrowFields[field]; ok {
			text = width.Narrow.String(text)
		}
		return formdata.TextValue(norm.NFC.String(text))
	case formdata.KindSequence:
		items := make([]*formdata.Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = normalizeValue(item, field)
		}
		return formdata.Sequence(items...)
	case formdata.KindMapping:
		out := formdata.Mapping()
		for key, child := range v.Fields {
			out.Fields[key] = normalizeValue(child, key)
		}
		return out
	default:
		return v.Clone()
	}
}
