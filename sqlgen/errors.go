package sqlgen

import "fmt"

// FormatError reports an operand that cannot be rendered as a SQL
// literal. It is the only error class the builder produces: rendering
// itself performs no I/O and no semantic validation.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string { return e.msg }

func errNullLiteral() error {
	return &FormatError{msg: "null is not a valid literal; use a null-check condition instead"}
}

func errUnsupportedLiteral(v any) error {
	return &FormatError{msg: fmt.Sprintf("unsupported literal type %T", v)}
}

func errMissingOperand(op string) error {
	return &FormatError{msg: fmt.Sprintf("comparison %q requires both operands", op)}
}
