package soap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// The app server exposes RPC-style operations whose parameters are
// positional elements in0, in1, ... and whose result is the text of the
// single element inside the response. request and Result implement that
// shape generically so callers do not need one struct pair per
// operation.

type request struct {
	op   string
	args []any
}

func (r *request) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: r.op}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for i, a := range r.args {
		el := xml.StartElement{Name: xml.Name{Local: fmt.Sprintf("in%d", i)}}
		if err := e.EncodeElement(formatArg(a), el); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func formatArg(a any) string {
	switch v := a.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Result captures the text content of an RPC response, regardless of
// what the result element is called.
type Result struct {
	value string
	found bool
}

// Value returns the result text.
func (r *Result) Value() string { return r.value }

// Found reports whether the response carried a result element at all.
func (r *Result) Found() bool { return r.found }

func (r *Result) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	depth := 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			r.found = true
		case xml.EndElement:
			if depth == 0 && t.Name == start.Name {
				return nil
			}
			depth--
		case xml.CharData:
			if depth > 0 {
				r.value += string(t)
			}
		}
	}
}

// Invoke performs one RPC operation with positional arguments. A nil
// result discards the response.
func Invoke(ctx context.Context, c Caller, op string, args []any, result *Result) error {
	if result == nil {
		result = &Result{}
	}
	req := &request{op: op, args: args}
	if err := c.CallContext(ctx, op, req, result); err != nil {
		return fmt.Errorf("soap: call %s: %w", op, err)
	}
	return nil
}

// CallVoid performs an operation whose result is ignored.
func CallVoid(ctx context.Context, c Caller, op string, args ...any) error {
	return Invoke(ctx, c, op, args, nil)
}

// CallString performs an operation returning a string. A response
// without a result element yields the empty string.
func CallString(ctx context.Context, c Caller, op string, args ...any) (string, error) {
	var res Result
	if err := Invoke(ctx, c, op, args, &res); err != nil {
		return "", err
	}
	return res.value, nil
}

// CallInt performs an operation returning an integer.
func CallInt(ctx context.Context, c Caller, op string, args ...any) (int, error) {
	s, err := CallString(ctx, c, op, args...)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("soap: %s returned %q, want integer: %w", op, s, err)
	}
	return n, nil
}

// CallFloat performs an operation returning a float.
func CallFloat(ctx context.Context, c Caller, op string, args ...any) (float64, error) {
	s, err := CallString(ctx, c, op, args...)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("soap: %s returned %q, want float: %w", op, s, err)
	}
	return f, nil
}

// CallBool performs an operation returning a boolean.
func CallBool(ctx context.Context, c Caller, op string, args ...any) (bool, error) {
	s, err := CallString(ctx, c, op, args...)
	if err != nil {
		return false, err
	}
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("soap: %s returned %q, want boolean: %w", op, s, err)
	}
	return b, nil
}
