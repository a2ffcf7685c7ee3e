package normalize

import "github.com/tidwall/gjson"

// Kind tags the shape a collection response arrived in.
type Kind int

const (
	KindEmpty Kind = iota
	KindArray
	KindWrapped
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindArray:
		return "array"
	case KindWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// Envelope is a parsed collection response.
type Envelope struct {
	Kind Kind
	// Key names the wrapper field for KindWrapped.
	Key   string
	items []gjson.Result
}

// ParseEnvelope recognises a bare array, null, or an object holding an array under
// the first matching key. Keys are tried in order.
func ParseEnvelope(raw gjson.Result, keys ...string) Envelope {
	if IsNull(raw) {
		return Envelope{Kind: KindEmpty}
	}
	if raw.IsArray() {
		return Envelope{Kind: KindArray, items: raw.Array()}
	}
	if raw.IsObject() {
		for _, key := range keys {
			v := raw.Get(key)
			if v.IsArray() {
				return Envelope{Kind: KindWrapped, Key: key, items: v.Array()}
			}
		}
	}
	return Envelope{Kind: KindUnknown}
}

// Records returns the object entries of the collection. Non-object entries are
// dropped. An unknown shape is an error, not an empty list.
func (e Envelope) Records() ([]Record, error) {
	if e.Kind == KindUnknown {
		return nil, ErrUnexpectedShape
	}
	out := make([]Record, 0, len(e.items))
	for _, it := range e.items {
		if it.IsObject() {
			out = append(out, Record{raw: it})
		}
	}
	return out, nil
}

// Collection parses raw and maps every record with fn.
func Collection[T any](raw gjson.Result, fn func(Record) T, keys ...string) ([]T, error) {
	recs, err := ParseEnvelope(raw, keys...).Records()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, fn(r))
	}
	return out, nil
}

// Single returns the object in a single-item response, either bare or wrapped
// under the first of keys that holds an object.
func Single(raw gjson.Result, keys ...string) (Record, error) {
	if !raw.IsObject() {
		return Record{}, ErrUnexpectedShape
	}
	for _, key := range keys {
		if v := raw.Get(key); v.IsObject() {
			return Record{raw: v}, nil
		}
	}
	return Record{raw: raw}, nil
}
