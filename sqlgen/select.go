package sqlgen

import (
	"strconv"
	"strings"
)

// SelectStatement accumulates the parts of a SELECT statement and
// renders them on demand. Fields, joins and GROUP BY entries are
// append-only; Where, Having, Order and Top may be reassigned wholesale
// at any time before rendering. Rendering is idempotent and performs no
// semantic validation: undefined tables, fields or aliases are passed
// through untouched and left to the database to reject.
type SelectStatement struct {
	// Table is the main table, including an optional alias
	// ("tabelle t").
	Table string

	// Top caps the number of returned rows; 0 means no cap.
	Top int

	// Fields are the output expressions; empty renders "*".
	Fields []string

	// GroupBy lists the GROUP BY expressions. Having is only emitted
	// when GroupBy is non-empty.
	GroupBy []string

	// Where is the WHERE condition. It may be replaced with a
	// different list (e.g. an OR-list) wholesale.
	Where *ConditionList

	// Having is the HAVING condition.
	Having *ConditionList

	// Order is a raw ORDER BY fragment; empty emits no ORDER BY.
	Order string

	joins []joinClause
}

// NewSelect creates a SELECT statement over the given table with an
// optional initial field list.
func NewSelect(table string, fields ...string) *SelectStatement {
	s := &SelectStatement{
		Table:  table,
		Where:  NewAnd(),
		Having: NewAnd(),
	}
	s.AddFields(fields...)
	return s
}

// AddFields appends output fields.
func (s *SelectStatement) AddFields(fields ...string) {
	s.Fields = append(s.Fields, fields...)
}

// AddFieldsTable appends output fields qualified with a table alias,
// saving the caller the "t." prefixes.
func (s *SelectStatement) AddFieldsTable(table string, fields ...string) {
	for _, f := range fields {
		s.Fields = append(s.Fields, table+"."+f)
	}
}

// AddGroupBy appends GROUP BY expressions.
func (s *SelectStatement) AddGroupBy(fields ...string) {
	s.GroupBy = append(s.GroupBy, fields...)
}

// AddJoin appends a pre-built join.
func (s *SelectStatement) AddJoin(j *Join) {
	s.joins = append(s.joins, j)
}

// AddJoinRaw appends a join written out by the caller, e.g.
// "LEFT JOIN personal p ON t.UPDUSER = p.PERSONAL".
func (s *SelectStatement) AddJoinRaw(join string) {
	s.joins = append(s.joins, rawJoin(join))
}

// AddInnerJoin creates an INNER JOIN, attaches it and returns it so the
// ON condition can be extended.
func (s *SelectStatement) AddInnerJoin(table string, conds ...Condition) *Join {
	j := InnerJoin(table, conds...)
	s.AddJoin(j)
	return j
}

// AddLeftJoin creates a LEFT JOIN, attaches it and returns it.
func (s *SelectStatement) AddLeftJoin(table string, conds ...Condition) *Join {
	j := LeftJoin(table, conds...)
	s.AddJoin(j)
	return j
}

// SQL renders the statement. The clause order is fixed:
// SELECT [TOP n] fields FROM table [joins] [WHERE] [GROUP BY [HAVING]]
// [ORDER BY].
func (s *SelectStatement) SQL() (string, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Top > 0 {
		b.WriteString("TOP " + strconv.Itoa(s.Top) + " ")
	}
	if len(s.Fields) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(s.Fields, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(s.Table)

	for _, j := range s.joins {
		js, err := j.renderJoin()
		if err != nil {
			return "", err
		}
		b.WriteString(" ")
		b.WriteString(js)
	}

	if s.Where != nil && !s.Where.Empty() {
		w, err := s.Where.Render()
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(w)
	}

	if len(s.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(s.GroupBy, ", "))
		if s.Having != nil && !s.Having.Empty() {
			h, err := s.Having.Render()
			if err != nil {
				return "", err
			}
			b.WriteString(" HAVING ")
			b.WriteString(h)
		}
	}

	if s.Order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(s.Order)
	}
	return b.String(), nil
}
