// ABOUTME: Filter state for entity lists, kept in sync with a URL-style query string
// ABOUTME: Parses leniently, serializes canonically, and resets paging on filter change

package listctl

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// PageKey is the filter key that carries the current page number
const PageKey = "page"

// AllValue is the sentinel meaning "no constraint"
const AllValue = "all"

// FilterSet maps recognized filter keys to values. A missing key means no constraint.
type FilterSet map[string]string

// Clone returns an independent copy of the set
func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold the same keys and values
func (f FilterSet) Equal(other FilterSet) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Key describes one recognized filter key of a page
type Key struct {
	Name string
	// Values is the closed set of accepted values. Empty means free text.
	Values []string
	// Local keys are applied as client-side predicates and never trigger a fetch.
	Local bool
}

// Schema is the set of filter keys a page understands
type Schema struct {
	keys  map[string]Key
	order []string
}

// NewSchema builds a schema from keys. The page key is always recognized.
func NewSchema(keys ...Key) *Schema {
	s := &Schema{keys: make(map[string]Key, len(keys)+1)}
	for _, k := range keys {
		if _, dup := s.keys[k.Name]; !dup {
			s.order = append(s.order, k.Name)
		}
		s.keys[k.Name] = k
	}
	if _, ok := s.keys[PageKey]; !ok {
		s.keys[PageKey] = Key{Name: PageKey}
		s.order = append(s.order, PageKey)
	}
	return s
}

// Keys returns the recognized key names in declaration order
func (s *Schema) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Lookup returns the key definition for name
func (s *Schema) Lookup(name string) (Key, bool) {
	k, ok := s.keys[name]
	return k, ok
}

// IsLocal reports whether name is a client-side key
func (s *Schema) IsLocal(name string) bool {
	k, ok := s.keys[name]
	return ok && k.Local
}

// Normalize returns the canonical value for key, or "" when the pair means "no constraint"
func (s *Schema) Normalize(name, value string) (string, bool) {
	k, ok := s.keys[name]
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, AllValue) {
		return "", true
	}
	if name == PageKey {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 1 {
			return "", true
		}
		return strconv.Itoa(n), true
	}
	if len(k.Values) == 0 {
		return value, true
	}
	for _, allowed := range k.Values {
		if strings.EqualFold(allowed, value) {
			return allowed, true
		}
	}
	return "", true
}

// Parse reads a query-string representation. It never fails: malformed input yields no filters.
func (s *Schema) Parse(raw string) FilterSet {
	out := FilterSet{}
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	if raw == "" {
		return out
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return out
	}
	for name, vals := range values {
		if len(vals) == 0 {
			continue
		}
		v, ok := s.Normalize(name, vals[0])
		if !ok || v == "" {
			continue
		}
		out[name] = v
	}
	return out
}

// Serialize renders f as a query string with sorted keys, omitting empty and "all" values
func (s *Schema) Serialize(f FilterSet) string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	values := url.Values{}
	for _, name := range names {
		v, ok := s.Normalize(name, f[name])
		if !ok || v == "" {
			continue
		}
		values.Set(name, v)
	}
	return values.Encode()
}

// FilterState holds the active filters of one list
type FilterState struct {
	schema  *Schema
	filters FilterSet
}

// NewFilterState creates an empty state for schema
func NewFilterState(schema *Schema) *FilterState {
	return &FilterState{schema: schema, filters: FilterSet{}}
}

// Schema returns the schema backing the state
func (fs *FilterState) Schema() *Schema {
	return fs.schema
}

// Set updates one key. Any key other than page clears the page, since a new filter
// invalidates the meaning of the previous page. Unknown keys are ignored.
func (fs *FilterState) Set(name, value string) bool {
	v, ok := fs.schema.Normalize(name, value)
	if !ok {
		return false
	}
	if v == "" {
		delete(fs.filters, name)
	} else {
		fs.filters[name] = v
	}
	if name != PageKey {
		delete(fs.filters, PageKey)
	}
	return true
}

// Get returns the value of name, or "" when unset
func (fs *FilterState) Get(name string) string {
	return fs.filters[name]
}

// Values returns a copy of the active filters
func (fs *FilterState) Values() FilterSet {
	return fs.filters.Clone()
}

// Replace swaps the whole set after normalizing it through the schema
func (fs *FilterState) Replace(f FilterSet) {
	fs.filters = fs.schema.Parse(fs.schema.Serialize(f))
}

// Load replaces the state from a query string
func (fs *FilterState) Load(raw string) {
	fs.filters = fs.schema.Parse(raw)
}

// Clear drops every filter, including the page
func (fs *FilterState) Clear() {
	fs.filters = FilterSet{}
}

// Page returns the current page, defaulting to 1
func (fs *FilterState) Page() int {
	if p, err := strconv.Atoi(fs.filters[PageKey]); err == nil && p > 1 {
		return p
	}
	return 1
}

// Active reports whether any filter other than the page is set
func (fs *FilterState) Active() bool {
	for name := range fs.filters {
		if name != PageKey {
			return true
		}
	}
	return false
}

// String returns the serialized form of the state
func (fs *FilterState) String() string {
	return fs.schema.Serialize(fs.filters)
}
