package girocheckout

import (
	"net/url"
	"strings"
)

// Fields is an insertion-ordered string map. Order matters: the request hash
// is computed over the values in exactly the order they were added, so this
// cannot be a url.Values.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields creates an empty ordered field map.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set appends the key, or replaces the value in place if the key exists.
func (f *Fields) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value for key, or "" if absent.
func (f *Fields) Get(key string) string {
	return f.values[key]
}

// Has reports whether key is present.
func (f *Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Del removes key, preserving the order of the remaining fields.
func (f *Fields) Del(key string) {
	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of fields.
func (f *Fields) Len() int { return len(f.keys) }

// Encode renders the map as an application/x-www-form-urlencoded body,
// keeping insertion order. The provider does not care about body order, but
// deterministic output keeps request logs diffable.
func (f *Fields) Encode() string {
	var sb strings.Builder
	for i, k := range f.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(f.values[k]))
	}
	return sb.String()
}

// Clone returns an independent copy.
func (f *Fields) Clone() *Fields {
	c := NewFields()
	for _, k := range f.keys {
		c.Set(k, f.values[k])
	}
	return c
}
