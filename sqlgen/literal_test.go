package sqlgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeField(t *testing.T) {
	assert.Equal(t, "AAA", NormalizeField("aAa"))
	assert.Equal(t, "A#AA", NormalizeField("a#Aa"))
	assert.Equal(t, "2", NormalizeField("2"))
	assert.Equal(t, "T.ABC", NormalizeField("t.abc"))
}

func TestNormalizeFields(t *testing.T) {
	assert.Empty(t, NormalizeFields(nil))
	assert.Equal(t, []string{"AAA", "B", "C", "2"}, NormalizeFields([]string{"aAa", "b", "c", "2"}))
}

func TestNormalizeFieldSet(t *testing.T) {
	assert.Empty(t, NormalizeFieldSet(nil))
	got := NormalizeFieldSet(map[string]bool{"aAa": true, "b": true, "c": true, "2": true})
	assert.Equal(t, map[string]bool{"AAA": true, "B": true, "C": true, "2": true}, got)
}

func TestFormatValues(t *testing.T) {
	dt := time.Date(2023, 1, 12, 9, 59, 12, 2344000, time.UTC)

	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"int", Int(2), "2"},
		{"int zero", Int(0), "0"},
		{"float", Float(2.4), "2.4"},
		{"text", Text("AA"), "'AA'"},
		{"text empty", Text(""), "''"},
		{"text spaces", Text("a b c"), "'a b c'"},
		{"text double quotes", Text(`a "b" c`), `'a "b" c'`},
		{"text single quotes", Text("a 'b'\nc"), "'a ''b''\nc'"},
		{"field", Field("aa"), "AA"},
		{"param", Param{}, "?"},
		{"raw", Raw("getdate()"), "getdate()"},
		{"datetime", DateTime(dt), "'2023-01-12T09:59:12.002'"},
		{"date", Date(dt), "'20230112'"},
		{"time", Time(dt), "'09:59:12.002'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(tc.v)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatNil(t *testing.T) {
	_, err := Format(nil)
	require.Error(t, err)
	var ferr *FormatError
	assert.ErrorAs(t, err, &ferr)
	assert.Contains(t, err.Error(), "null is not a valid literal")
}

// Rendering a string literal, stripping the outer quotes and undoubling
// internal quote pairs must reproduce the input exactly.
func TestStringEscapingRoundTrip(t *testing.T) {
	for _, s := range []string{"", "abc", "it's", "''", "a 'b' 'c'", "äöü'ß"} {
		got, err := Format(Text(s))
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(got, "'") && strings.HasSuffix(got, "'"))
		inner := got[1 : len(got)-1]
		assert.Equal(t, s, strings.ReplaceAll(inner, "''", "'"))
	}
}

func TestLit(t *testing.T) {
	dt := time.Date(2023, 1, 12, 9, 59, 12, 0, time.UTC)

	cases := []struct {
		in   any
		want string
	}{
		{2, "2"},
		{int64(-7), "-7"},
		{uint8(255), "255"},
		{2.4, "2.4"},
		{float32(0.5), "0.5"},
		{"AA", "'AA'"},
		{dt, "'2023-01-12T09:59:12.000'"},
		{Field("aa"), "AA"},
		{Param{}, "?"},
	}
	for _, tc := range cases {
		v, err := Lit(tc.in)
		require.NoError(t, err)
		got, err := Format(v)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestLitUnsupported(t *testing.T) {
	_, err := Lit(struct{ X int }{1})
	require.Error(t, err)
	var ferr *FormatError
	assert.ErrorAs(t, err, &ferr)
	assert.Contains(t, err.Error(), "unsupported literal type")

	_, err = Lit(nil)
	assert.Error(t, err)
}
