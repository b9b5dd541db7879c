package forensic

// Record is the loosely-typed key/value mapping extracted from a backend
// reply. It may be missing required keys or hold out-of-range values;
// accessors report shape mismatches so the normalizer can substitute
// defaults field by field.
type Record map[string]any

func (r Record) String(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

func (r Record) StringOr(key, def string) string {
	if s, ok := r.String(key); ok && s != "" {
		return s
	}
	return def
}

// Number returns a numeric value. JSON numbers decode as float64; other
// shapes report absence.
func (r Record) Number(key string) (float64, bool) {
	n, ok := r[key].(float64)
	return n, ok
}

func (r Record) IntOr(key string, def int) int {
	if n, ok := r.Number(key); ok {
		return int(n)
	}
	return def
}

func (r Record) Bool(key string) (bool, bool) {
	b, ok := r[key].(bool)
	return b, ok
}

func (r Record) Map(key string) (map[string]any, bool) {
	m, ok := r[key].(map[string]any)
	return m, ok
}

func (r Record) Slice(key string) ([]any, bool) {
	s, ok := r[key].([]any)
	return s, ok
}

// StringSlice flattens a JSON array to its string elements, dropping
// anything else. A missing or misshaped value yields an empty slice.
func (r Record) StringSlice(key string) []string {
	out := []string{}
	items, ok := r.Slice(key)
	if !ok {
		return out
	}
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
