// Package sqlgen builds SELECT statements for the APplus database as
// plain strings. The application server expects statements as text: it
// rewrites them (adding client and permission filters) before they reach
// the database, which rules out parameter-binding query builders that
// keep the SQL opaque. Positional parameters ('?') are still supported
// and are filled in by the database layer at execution time.
package sqlgen

import (
	"strconv"
	"strings"
	"time"
)

// NormalizeField normalizes a database field name. Field identity in
// APplus is case-insensitive, so all bare field names are upper-cased at
// the point of use.
func NormalizeField(f string) string {
	return strings.ToUpper(f)
}

// NormalizeFields normalizes a list of field names, preserving order.
func NormalizeFields(fields []string) []string {
	res := make([]string, len(fields))
	for i, f := range fields {
		res[i] = NormalizeField(f)
	}
	return res
}

// NormalizeFieldSet normalizes a set of field names.
func NormalizeFieldSet(fields map[string]bool) map[string]bool {
	res := make(map[string]bool, len(fields))
	for f := range fields {
		res[NormalizeField(f)] = true
	}
	return res
}

// Value is a typed SQL literal. The set of implementations is closed:
// Int, Float, Text, Field, Raw, Param, Date, Time and DateTime. Use Lit
// to convert native Go values at the API boundary.
type Value interface {
	literal() string
}

// Int is an integer literal.
type Int int64

func (v Int) literal() string { return strconv.FormatInt(int64(v), 10) }

// Float is a floating-point literal.
type Float float64

func (v Float) literal() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// Text is a string literal. It renders single-quoted with embedded
// quotes doubled.
type Text string

func (v Text) literal() string { return quoteString(string(v)) }

// Field is a reference to a database field. It renders as the
// upper-cased field name, unquoted.
type Field string

func (v Field) literal() string { return NormalizeField(string(v)) }

// Raw is a SQL fragment taken over verbatim, without quoting or
// escaping.
type Raw string

func (v Raw) literal() string { return string(v) }

// Param is a positional parameter placeholder, rendered as '?'. The
// value is supplied when the statement is executed.
type Param struct{}

func (Param) literal() string { return "?" }

// DateTime is a point in time, rendered as 'YYYY-MM-DDTHH:MM:SS.mmm'
// (millisecond precision, the finest the database supports).
type DateTime time.Time

func (v DateTime) literal() string {
	return "'" + time.Time(v).Format("2006-01-02T15:04:05.000") + "'"
}

// Date is a calendar date, rendered as 'YYYYMMDD'.
type Date time.Time

func (v Date) literal() string {
	return "'" + time.Time(v).Format("20060102") + "'"
}

// Time is a time of day, rendered as 'HH:MM:SS.mmm'.
type Time time.Time

func (v Time) literal() string {
	return "'" + time.Time(v).Format("15:04:05.000") + "'"
}

// quoteString wraps s in single quotes and doubles embedded quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Format renders a literal to its SQL text. A nil Value is an error: SQL
// null has no literal form here, use a null-check condition instead.
func Format(v Value) (string, error) {
	if v == nil {
		return "", errNullLiteral()
	}
	return v.literal(), nil
}

// Lit converts a native Go value into a Value. Values pass through
// unchanged; integers, floats, strings and time.Time are converted;
// anything else is a FormatError.
func Lit(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return nil, errNullLiteral()
	case Value:
		return x, nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(x), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case string:
		return Text(x), nil
	case time.Time:
		return DateTime(x), nil
	default:
		return nil, errUnsupportedLiteral(v)
	}
}

// formatAny converts with Lit and renders in one step.
func formatAny(v any) (string, error) {
	val, err := Lit(v)
	if err != nil {
		return "", err
	}
	return Format(val)
}
