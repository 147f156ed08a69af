package formdata

// Entry is one submitted field: a dotted path and a text or file value.
type Entry struct {
	Path  string
	Value *Value
}

// Text builds a text entry.
func Text(path, value string) Entry {
	return Entry{Path: path, Value: TextValue(value)}
}

// File builds a file entry.
func File(path string, blob *Blob) Entry {
	return Entry{Path: path, Value: BlobValue(blob)}
}

// IsFile reports whether the entry carries a blob.
func (e Entry) IsFile() bool {
	return e.Value != nil && e.Value.Kind == KindBlob
}

// Lookup returns the value of the last entry submitted under path.
func Lookup(entries []Entry, path string) (*Value, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Path == path {
			return entries[i].Value, true
		}
	}
	return nil, false
}
