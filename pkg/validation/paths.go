package validation

import "strings"

// NormalizePath converts the paths validators report into dotted field paths
// such as "ticketPrice.0.price". It accepts schema pointer segments joined
// with "/" and validator namespaces with bracketed indices.
func NormalizePath(path string) string {
	path = strings.NewReplacer("[", ".", "]", "").Replace(strings.TrimSpace(path))
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/'
	})
	return strings.Join(parts, ".")
}

// dropRoot removes the leading type name from a validator namespace such as
// "Record.organizer.name".
func dropRoot(namespace string) string {
	if idx := strings.IndexByte(namespace, '.'); idx >= 0 && idx+1 < len(namespace) {
		return namespace[idx+1:]
	}
	return namespace
}
