package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDecode(t *testing.T) {
	clean := []byte(`[{"id":1}]`)
	want, err := Decode(clean)
	require.NoError(t, err)

	t.Run("BOM and whitespace parse like a clean body", func(t *testing.T) {
		padded := append([]byte{0xEF, 0xBB, 0xBF}, []byte("\n\t  [{\"id\":1}]  \r\n")...)
		got, err := Decode(padded)
		require.NoError(t, err)
		assert.Equal(t, want.Raw, got.Raw)
	})

	t.Run("empty body is null", func(t *testing.T) {
		got, err := Decode([]byte("  \n"))
		require.NoError(t, err)
		assert.True(t, IsNull(got))
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := Decode([]byte(`{"id":`))
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}

func TestParseEnvelope(t *testing.T) {
	keys := []string{"tickets", "data", "items", "results"}
	bodies := map[string]string{
		"bare array": `[{"id":"a"},{"id":"b"}]`,
		"data":       `{"data":[{"id":"a"},{"id":"b"}]}`,
		"items":      `{"items":[{"id":"a"},{"id":"b"}],"total":2}`,
		"results":    `{"results":[{"id":"a"},{"id":"b"}]}`,
		"named":      `{"tickets":[{"id":"a"},{"id":"b"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ids, err := Collection(gjson.Parse(body), func(r Record) string { return r.String("id") }, keys...)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, ids)
		})
	}

	t.Run("kinds", func(t *testing.T) {
		assert.Equal(t, KindEmpty, ParseEnvelope(gjson.Result{}, keys...).Kind)
		assert.Equal(t, KindEmpty, ParseEnvelope(gjson.Parse("null"), keys...).Kind)
		assert.Equal(t, KindArray, ParseEnvelope(gjson.Parse("[]"), keys...).Kind)

		env := ParseEnvelope(gjson.Parse(`{"items":[]}`), keys...)
		assert.Equal(t, KindWrapped, env.Kind)
		assert.Equal(t, "items", env.Key)
	})

	t.Run("unknown shape is an error", func(t *testing.T) {
		_, err := ParseEnvelope(gjson.Parse(`{"message":"ok"}`), keys...).Records()
		assert.ErrorIs(t, err, ErrUnexpectedShape)

		_, err = ParseEnvelope(gjson.Parse(`"text"`), keys...).Records()
		assert.ErrorIs(t, err, ErrUnexpectedShape)
	})

	t.Run("non-object entries are dropped", func(t *testing.T) {
		recs, err := ParseEnvelope(gjson.Parse(`[{"id":"a"},null,3,"x"]`)).Records()
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})
}

func TestRecord_Casing(t *testing.T) {
	variants := []string{
		`{"userId":"7","isAdmin":true,"createdAt":"2024-05-01T10:00:00Z"}`,
		`{"user_id":"7","is_admin":true,"created_at":"2024-05-01T10:00:00Z"}`,
		`{"UserId":"7","IsAdmin":true,"CreatedAt":"2024-05-01T10:00:00Z"}`,
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for _, body := range variants {
		r := NewRecord(gjson.Parse(body))
		assert.Equal(t, "7", r.String("userId"))
		assert.True(t, r.Bool("isAdmin"))
		assert.True(t, want.Equal(r.Time("createdAt")), body)
	}
}

func TestRecord_Defaults(t *testing.T) {
	r := NewRecord(gjson.Parse(`{"id":12,"title":null,"tags":["x",2]}`))

	assert.Equal(t, "12", r.String("id"))
	assert.Equal(t, "", r.String("title"))
	assert.False(t, r.Has("title"))
	assert.False(t, r.Bool("missing"))
	assert.Nil(t, r.Strings("missing"))
	assert.Equal(t, []string{"x", "2"}, r.Strings("tags"))
	assert.True(t, r.Time("createdAt").IsZero())
}

func TestRecord_Time(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want time.Time
	}{
		{"rfc3339 nano", `{"t":"2024-01-02T03:04:05.123Z"}`, time.Date(2024, 1, 2, 3, 4, 5, 123000000, time.UTC)},
		{"no zone", `{"t":"2024-01-02T03:04:05.5"}`, time.Date(2024, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"space separated", `{"t":"2024-01-02 03:04:05"}`, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"unix millis", `{"t":1704164645000}`, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"garbage", `{"t":"yesterday"}`, time.Time{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewRecord(gjson.Parse(tc.body)).Time("t")
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}
}

func TestVariants(t *testing.T) {
	assert.Equal(t, []string{"htmlContent", "html_content", "HtmlContent"}, Variants("htmlContent"))
	assert.Equal(t, []string{"id", "Id"}, Variants("id"))
}

func TestSingle(t *testing.T) {
	bare, err := Single(gjson.Parse(`{"id":"t1"}`), "ticket", "data")
	require.NoError(t, err)
	assert.Equal(t, "t1", bare.String("id"))

	wrapped, err := Single(gjson.Parse(`{"data":{"id":"t1"}}`), "ticket", "data")
	require.NoError(t, err)
	assert.Equal(t, "t1", wrapped.String("id"))

	_, err = Single(gjson.Parse(`[{"id":"t1"}]`), "ticket")
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}
