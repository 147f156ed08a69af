package formdata

import (
	"encoding/json"
	"sort"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindNull marks an absent value, including holes left in sparse
	// sequences.
	KindNull Kind = iota
	KindText
	KindBlob
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Blob is an uploaded file part.
type Blob struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size reports the payload length in bytes.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Value is the recursive tree produced by Reconstruct. Only the fields that
// match Kind are meaningful.
type Value struct {
	Kind   Kind
	Text   string
	Blob   *Blob
	Items  []*Value
	Fields map[string]*Value
}

// Null returns an absent value.
func Null() *Value { return &Value{Kind: KindNull} }

// TextValue wraps a string leaf.
func TextValue(s string) *Value { return &Value{Kind: KindText, Text: s} }

// BlobValue wraps a file leaf.
func BlobValue(b *Blob) *Value { return &Value{Kind: KindBlob, Blob: b} }

// Sequence builds a sequence from the provided items. Nil items are stored as
// holes.
func Sequence(items ...*Value) *Value {
	out := make([]*Value, len(items))
	for i, item := range items {
		if item == nil {
			item = Null()
		}
		out[i] = item
	}
	return &Value{Kind: KindSequence, Items: out}
}

// Mapping builds an empty mapping.
func Mapping() *Value {
	return &Value{Kind: KindMapping, Fields: make(map[string]*Value)}
}

// IsNull reports whether v is nil or an explicit null.
func (v *Value) IsNull() bool {
	return v == nil || v.Kind == KindNull
}

// Get returns the child stored under key for mappings and nil otherwise.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != KindMapping {
		return nil
	}
	return v.Fields[key]
}

// Index returns the item at i for sequences and nil otherwise.
func (v *Value) Index(i int) *Value {
	if v == nil || v.Kind != KindSequence || i < 0 || i >= len(v.Items) {
		return nil
	}
	return v.Items[i]
}

// Lookup walks a dotted path from v.
func (v *Value) Lookup(path string) *Value {
	segments, err := Tokenize(path)
	if err != nil {
		return nil
	}
	current := v
	for _, segment := range segments {
		switch {
		case current == nil:
			return nil
		case current.Kind == KindMapping:
			current = current.Fields[segment]
		case current.Kind == KindSequence:
			idx, ok := parseIndex(segment)
			if !ok {
				return nil
			}
			current = current.Index(idx)
		default:
			return nil
		}
	}
	return current
}

// Keys returns mapping keys in lexical order.
func (v *Value) Keys() []string {
	if v == nil || v.Kind != KindMapping || len(v.Fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(v.Fields))
	for key := range v.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts the tree into plain Go values: string, *Blob, []any,
// map[string]any, or nil for null.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindText:
		return v.Text
	case KindBlob:
		return v.Blob
	case KindSequence:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.Fields))
		for key, child := range v.Fields {
			out[key] = child.Interface()
		}
		return out
	default:
		return nil
	}
}

// JSON converts the tree into values accepted by JSON consumers. Blobs become
// an object describing the file without its payload.
func (v *Value) JSON() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindText:
		return v.Text
	case KindBlob:
		return blobJSON(v.Blob)
	case KindSequence:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.JSON()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.Fields))
		for key, child := range v.Fields {
			out[key] = child.JSON()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the JSON form of the tree. Map keys are sorted by
// encoding/json so the output is stable.
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.JSON())
}

// Clone returns a deep copy. Blob payloads are shared.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{Kind: v.Kind, Text: v.Text, Blob: v.Blob}
	if v.Items != nil {
		out.Items = make([]*Value, len(v.Items))
		for i, item := range v.Items {
			out.Items[i] = item.Clone()
		}
	}
	if v.Fields != nil {
		out.Fields = make(map[string]*Value, len(v.Fields))
		for key, child := range v.Fields {
			out.Fields[key] = child.Clone()
		}
	}
	return out
}

// MapText returns a copy of the tree with fn applied to every text leaf.
func (v *Value) MapText(fn func(string) string) *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindText:
		return TextValue(fn(v.Text))
	case KindSequence:
		items := make([]*Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.MapText(fn)
		}
		return &Value{Kind: KindSequence, Items: items}
	case KindMapping:
		fields := make(map[string]*Value, len(v.Fields))
		for key, child := range v.Fields {
			fields[key] = child.MapText(fn)
		}
		return &Value{Kind: KindMapping, Fields: fields}
	default:
		return v.Clone()
	}
}

// String renders leaves as text and containers as their comma-joined form,
// matching how a browser stringifies form values.
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindText:
		return v.Text
	case KindBlob:
		if v.Blob == nil {
			return ""
		}
		return v.Blob.Filename
	case KindSequence:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	case KindMapping:
		return "[object]"
	default:
		return ""
	}
}

func blobJSON(b *Blob) any {
	if b == nil {
		return nil
	}
	return map[string]any{
		"filename":    b.Filename,
		"contentType": b.ContentType,
		"size":        float64(len(b.Data)),
	}
}
