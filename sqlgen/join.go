package sqlgen

// joinClause is either a built Join or a raw join fragment.
type joinClause interface {
	renderJoin() (string, error)
}

// rawJoin is a join written out by the caller, taken over verbatim.
type rawJoin string

func (j rawJoin) renderJoin() (string, error) { return string(j), nil }

// Join is a table joined into a SELECT statement. The ON condition is
// an AND-list and may be extended after the join has been attached.
type Join struct {
	Kind  string
	Table string
	On    *ConditionList
}

// NewJoin creates a join with an arbitrary keyword, e.g. "LEFT JOIN".
func NewJoin(kind, table string, conds ...Condition) *Join {
	return &Join{Kind: kind, Table: table, On: NewAnd(conds...)}
}

// InnerJoin creates an INNER JOIN.
func InnerJoin(table string, conds ...Condition) *Join {
	return NewJoin("INNER JOIN", table, conds...)
}

// LeftJoin creates a LEFT JOIN.
func LeftJoin(table string, conds ...Condition) *Join {
	return NewJoin("LEFT JOIN", table, conds...)
}

// Render renders the join as "<KEYWORD> <table> ON <condition>".
func (j *Join) Render() (string, error) {
	on, err := j.On.Render()
	if err != nil {
		return "", err
	}
	return j.Kind + " " + j.Table + " ON " + on, nil
}

func (j *Join) renderJoin() (string, error) { return j.Render() }
