package domain

// Field is one custom key/value pair attached to an app. The engine never
// interprets fields; they pass through to notifications verbatim.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Fields is an ordered set of custom fields. Order is the header-row order of
// the backing store and must survive round-trips.
type Fields []Field

func (f Fields) Get(key string) (string, bool) {
	for _, kv := range f {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key in place, or appends when absent.
func (f Fields) Set(key, value string) Fields {
	for i, kv := range f {
		if kv.Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}
