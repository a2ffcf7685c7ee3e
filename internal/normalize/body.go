// Package normalize turns loosely shaped backend payloads into canonical records.
//
// The backend has gone through several revisions, so the same field may arrive
// camelCased, snake_cased or PascalCased, and collections may be bare arrays or
// wrapped in an object under one of a few keys.
package normalize

import (
	"bytes"
	"errors"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON     = errors.New("invalid JSON from server")
	ErrUnexpectedShape = errors.New("unexpected response shape from server")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Clean strips a leading byte-order mark and surrounding whitespace.
func Clean(body []byte) []byte {
	body = bytes.TrimPrefix(body, utf8BOM)
	return bytes.TrimSpace(body)
}

// Decode cleans and parses body. An empty body yields a null result.
func Decode(body []byte) (gjson.Result, error) {
	body = Clean(body)
	if len(body) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, ErrInvalidJSON
	}
	return gjson.ParseBytes(body), nil
}

// IsNull reports whether v is absent or JSON null.
func IsNull(v gjson.Result) bool {
	return !v.Exists() || v.Type == gjson.Null
}
