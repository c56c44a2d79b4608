package sqlgen

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Condition is a boolean-valued SQL expression. Conditions are built
// eagerly: constructors render their operands immediately and a
// construction error is carried until Render is called.
type Condition interface {
	Render() (string, error)
}

// prepared is a condition that always renders the same pre-built string
// (or reports the error that occurred while building it).
type prepared struct {
	sql string
	err error
}

func (c prepared) Render() (string, error) { return c.sql, c.err }

// Prepared wraps an already-rendered fragment; it is taken over
// unchanged.
func Prepared(s string) Condition { return prepared{sql: s} }

// freeze renders a condition once and fixes the result.
func freeze(c Condition) Condition {
	s, err := c.Render()
	return prepared{sql: s, err: err}
}

// failed produces a condition that reports err on render.
func failed(err error) Condition { return prepared{err: err} }

// True is the always-true condition, the identity of AND.
func True() Condition { return prepared{sql: "(1=1)"} }

// False is the always-false condition, the identity of OR.
func False() Condition { return prepared{sql: "(1=0)"} }

// Bool is a fixed true-or-false condition.
func Bool(b bool) Condition {
	if b {
		return True()
	}
	return False()
}

// Not negates another condition.
func Not(c Condition) Condition {
	s, err := c.Render()
	if err != nil {
		return failed(err)
	}
	return prepared{sql: "(not " + s + ")"}
}

// IsNull requires the value to be null.
func IsNull(v Value) Condition {
	s, err := Format(v)
	if err != nil {
		return failed(err)
	}
	return prepared{sql: "(" + s + " is null)"}
}

// FieldIsNull requires the field to be null.
func FieldIsNull(field string) Condition { return IsNull(Field(field)) }

// IsNotNull requires the value to be non-null.
func IsNotNull(v Value) Condition {
	s, err := Format(v)
	if err != nil {
		return failed(err)
	}
	return prepared{sql: "(" + s + " is not null)"}
}

// FieldIsNotNull requires the field to be non-null.
func FieldIsNotNull(field string) Condition { return IsNotNull(Field(field)) }

// StartsWith requires the field to begin with the given prefix. An
// empty prefix matches everything and short-circuits to the always-true
// condition. The prefix length is counted in characters, not bytes.
func StartsWith(field, prefix string) Condition {
	if prefix == "" {
		return True()
	}
	n := utf8.RuneCountInString(prefix)
	return prepared{sql: fmt.Sprintf("(left(%s, %d) = %s)", NormalizeField(field), n, quoteString(prefix))}
}

// FieldNotEmpty requires the field to be neither null nor the empty
// string.
func FieldNotEmpty(field string) Condition {
	f := NormalizeField(field)
	return prepared{sql: "(" + f + " is not null and " + f + " != '')"}
}

// In requires the value to be one of the candidates. An empty candidate
// list is always false; a single candidate degenerates to Eq.
func In(value Value, candidates ...Value) Condition {
	switch len(candidates) {
	case 0:
		return False()
	case 1:
		return Eq(value, candidates[0])
	}
	vs, err := Format(value)
	if err != nil {
		return failed(err)
	}
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		cs, err := Format(c)
		if err != nil {
			return failed(err)
		}
		parts[i] = cs
	}
	return prepared{sql: "(" + vs + " in (" + strings.Join(parts, ", ") + "))"}
}

// FieldIn requires the field to have one of the candidate values.
func FieldIn(field string, candidates ...Value) Condition {
	return In(Field(field), candidates...)
}

// Eq compares two operands for equality. Either operand may be a Value,
// a native Go value, a bool or nil. Booleans get special treatment
// because the database stores false as either 0 or null: comparing a
// column to true renders "(X = 1)", comparing to false renders
// "(X = 0 OR X is null)". Two literal booleans collapse to a fixed
// true/false condition, and a nil operand turns the comparison into a
// null check on the other side.
func Eq(value1, value2 any) Condition {
	if value1 == nil && value2 == nil {
		return True()
	}
	if value1 == nil {
		return eqNull(value2)
	}
	if value2 == nil {
		return eqNull(value1)
	}

	b1, ok1 := value1.(bool)
	b2, ok2 := value2.(bool)
	switch {
	case ok1 && ok2:
		return Bool(b1 == b2)
	case ok1:
		return eqBool(value2, b1)
	case ok2:
		return eqBool(value1, b2)
	}

	s1, err := formatAny(value1)
	if err != nil {
		return failed(err)
	}
	s2, err := formatAny(value2)
	if err != nil {
		return failed(err)
	}
	return prepared{sql: "(" + s1 + " = " + s2 + ")"}
}

// eqNull compares a non-nil operand against null. A literal boolean can
// never equal null.
func eqNull(v any) Condition {
	if _, ok := v.(bool); ok {
		return False()
	}
	val, err := Lit(v)
	if err != nil {
		return failed(err)
	}
	return IsNull(val)
}

// eqBool compares a non-boolean operand against a literal boolean.
func eqBool(v any, b bool) Condition {
	s, err := formatAny(v)
	if err != nil {
		return failed(err)
	}
	if b {
		return prepared{sql: "(" + s + " = 1)"}
	}
	return prepared{sql: "(" + s + " = 0 OR " + s + " is null)"}
}

// FieldEq compares a field against a value (or bool, or nil).
func FieldEq(field string, value any) Condition { return Eq(Field(field), value) }

// FieldsEq compares two fields for equality.
func FieldsEq(field1, field2 string) Condition { return Eq(Field(field1), Field(field2)) }

// compare renders a binary ordering comparison. Unlike Eq, both
// operands must be present.
func compare(op string, value1, value2 any) Condition {
	if value1 == nil || value2 == nil {
		return failed(errMissingOperand(op))
	}
	s1, err := formatAny(value1)
	if err != nil {
		return failed(err)
	}
	s2, err := formatAny(value2)
	if err != nil {
		return failed(err)
	}
	return prepared{sql: "(" + s1 + " " + op + " " + s2 + ")"}
}

// Lt renders "(value1 < value2)".
func Lt(value1, value2 any) Condition { return compare("<", value1, value2) }

// Le renders "(value1 <= value2)".
func Le(value1, value2 any) Condition { return compare("<=", value1, value2) }

// Gt renders "(value1 > value2)".
func Gt(value1, value2 any) Condition { return compare(">", value1, value2) }

// Ge renders "(value1 >= value2)".
func Ge(value1, value2 any) Condition { return compare(">=", value1, value2) }

// FieldLt renders "(FIELD < value)".
func FieldLt(field string, value any) Condition { return Lt(Field(field), value) }

// FieldLe renders "(FIELD <= value)".
func FieldLe(field string, value any) Condition { return Le(Field(field), value) }

// FieldGt renders "(FIELD > value)".
func FieldGt(field string, value any) Condition { return Gt(Field(field), value) }

// FieldGe renders "(FIELD >= value)".
func FieldGe(field string, value any) Condition { return Ge(Field(field), value) }

// ConditionList combines an ordered list of sub-conditions with a fixed
// connector, either AND or OR. An empty list renders to the connector's
// identity element, a singleton renders to its single element without
// extra parentheses, and two or more elements render fully
// parenthesized.
type ConditionList struct {
	connector string
	identity  string
	elems     []Condition
}

// NewAnd creates an AND-list; its identity element is "(1=1)".
func NewAnd(conds ...Condition) *ConditionList {
	l := &ConditionList{connector: "AND", identity: "(1=1)"}
	l.Add(conds...)
	return l
}

// NewOr creates an OR-list; its identity element is "(1=0)".
func NewOr(conds ...Condition) *ConditionList {
	l := &ConditionList{connector: "OR", identity: "(1=0)"}
	l.Add(conds...)
	return l
}

// Add appends conditions to the list. Nil conditions are silently
// skipped so that optional filters compose without special-casing.
func (l *ConditionList) Add(conds ...Condition) {
	for _, c := range conds {
		if c == nil {
			continue
		}
		l.elems = append(l.elems, c)
	}
}

// AddRaw appends a raw SQL fragment, parenthesized and taken over
// verbatim.
func (l *ConditionList) AddRaw(s string) {
	l.Add(Prepared("(" + s + ")"))
}

// AddFieldEq appends a field = value condition.
func (l *ConditionList) AddFieldEq(field string, value any) {
	l.Add(FieldEq(field, value))
}

// AddFieldsEq appends a field = field condition.
func (l *ConditionList) AddFieldsEq(field1, field2 string) {
	l.Add(FieldsEq(field1, field2))
}

// AddEq appends an equality condition over two operands.
func (l *ConditionList) AddEq(value1, value2 any) {
	l.Add(Eq(value1, value2))
}

// AddFieldIn appends a membership condition for a field.
func (l *ConditionList) AddFieldIn(field string, candidates ...Value) {
	l.Add(FieldIn(field, candidates...))
}

// AddFieldNotEmpty appends a not-null-and-not-empty condition for a
// field.
func (l *ConditionList) AddFieldNotEmpty(field string) {
	l.Add(FieldNotEmpty(field))
}

// AddFieldIsNull appends a null check for a field.
func (l *ConditionList) AddFieldIsNull(field string) {
	l.Add(FieldIsNull(field))
}

// AddFieldIsNotNull appends a not-null check for a field.
func (l *ConditionList) AddFieldIsNotNull(field string) {
	l.Add(FieldIsNotNull(field))
}

// AddFieldLt appends "(FIELD < value)".
func (l *ConditionList) AddFieldLt(field string, value any) { l.Add(FieldLt(field, value)) }

// AddFieldLe appends "(FIELD <= value)".
func (l *ConditionList) AddFieldLe(field string, value any) { l.Add(FieldLe(field, value)) }

// AddFieldGt appends "(FIELD > value)".
func (l *ConditionList) AddFieldGt(field string, value any) { l.Add(FieldGt(field, value)) }

// AddFieldGe appends "(FIELD >= value)".
func (l *ConditionList) AddFieldGe(field string, value any) { l.Add(FieldGe(field, value)) }

// AddFieldsLt appends "(FIELD1 < FIELD2)".
func (l *ConditionList) AddFieldsLt(field1, field2 string) { l.Add(Lt(Field(field1), Field(field2))) }

// AddFieldsLe appends "(FIELD1 <= FIELD2)".
func (l *ConditionList) AddFieldsLe(field1, field2 string) { l.Add(Le(Field(field1), Field(field2))) }

// AddFieldsGt appends "(FIELD1 > FIELD2)".
func (l *ConditionList) AddFieldsGt(field1, field2 string) { l.Add(Gt(Field(field1), Field(field2))) }

// AddFieldsGe appends "(FIELD1 >= FIELD2)".
func (l *ConditionList) AddFieldsGe(field1, field2 string) { l.Add(Ge(Field(field1), Field(field2))) }

// Empty reports whether the list has no elements.
func (l *ConditionList) Empty() bool { return len(l.elems) == 0 }

// Render renders the list with its connector.
func (l *ConditionList) Render() (string, error) {
	switch len(l.elems) {
	case 0:
		return l.identity, nil
	case 1:
		return l.elems[0].Render()
	}
	var b strings.Builder
	b.WriteString("(")
	for i, c := range l.elems {
		s, err := c.Render()
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(" " + l.connector + " ")
		}
		b.WriteString(s)
	}
	b.WriteString(")")
	return b.String(), nil
}

// DateTimeInRange requires a datetime field to lie in [from, to). A nil
// bound leaves that side open.
func DateTimeInRange(field string, from, to *time.Time) Condition {
	cond := NewAnd()
	if from != nil {
		cond.AddFieldGe(field, DateTime(*from))
	}
	if to != nil {
		cond.AddFieldLt(field, DateTime(*to))
	}
	return freeze(cond)
}

// DateTimeInMonth requires a datetime field to lie in the given month.
func DateTimeInMonth(field string, year, month int) Condition {
	nyear, nmonth := year, month+1
	if month == 12 {
		nyear, nmonth = year+1, 1
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(nyear, time.Month(nmonth), 1, 0, 0, 0, 0, time.UTC)
	return DateTimeInRange(field, &from, &to)
}

// DateTimeInYear requires a datetime field to lie in the given year.
func DateTimeInYear(field string, year int) Condition {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return DateTimeInRange(field, &from, &to)
}

// DateTimeInDay requires a datetime field to lie on the given day.
func DateTimeInDay(field string, year, month, day int) Condition {
	from := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	return DateTimeInRange(field, &from, &to)
}
