package entities

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Arguments holds call values bound to a keyword signature.
type Arguments struct {
	values  map[string]interface{}
	varargs []interface{}
	varName string
}

// Bind applies a declared signature to positional and named call arguments.
// Positional values fill parameters in declaration order, a variadic parameter
// collects the rest, named values match declared non-variadic parameters and
// defaults fill whatever is left.
func Bind(sig []Arg, positional []interface{}, named map[string]interface{}) (Arguments, error) {
	bound := Arguments{values: make(map[string]interface{}, len(sig))}

	pos := 0
	for _, a := range sig {
		if a.Variadic {
			bound.varName = a.Name
			if pos < len(positional) {
				bound.varargs = append(bound.varargs, positional[pos:]...)
			}
			pos = len(positional)
			break
		}
		if pos < len(positional) {
			bound.values[a.Name] = positional[pos]
			pos++
		}
	}
	if pos < len(positional) {
		return Arguments{}, fmt.Errorf("%w: expected at most %d positional arguments, got %d",
			ErrInvalidArguments, pos, len(positional))
	}

	for name, value := range named {
		a, ok := findArg(sig, name)
		if !ok || a.Variadic {
			return Arguments{}, fmt.Errorf("%w: unexpected named argument %q", ErrInvalidArguments, name)
		}
		if _, dup := bound.values[a.Name]; dup {
			return Arguments{}, fmt.Errorf("%w: got multiple values for argument %q", ErrInvalidArguments, a.Name)
		}
		bound.values[a.Name] = value
	}

	var missing []string
	for _, a := range sig {
		if a.Variadic {
			continue
		}
		if _, ok := bound.values[a.Name]; ok {
			continue
		}
		if a.HasDefault {
			bound.values[a.Name] = a.Default
			continue
		}
		missing = append(missing, a.Name)
	}
	if len(missing) > 0 {
		return Arguments{}, fmt.Errorf("%w: missing value for %s", ErrInvalidArguments, strings.Join(missing, ", "))
	}

	return bound, nil
}

func findArg(sig []Arg, name string) (Arg, bool) {
	for _, a := range sig {
		if a.Name == name {
			return a, true
		}
	}
	return Arg{}, false
}

// Raw returns the bound value as given by the caller.
func (a Arguments) Raw(name string) interface{} {
	return a.values[name]
}

// Has reports whether name carries a non-nil value.
func (a Arguments) Has(name string) bool {
	v, ok := a.values[name]
	return ok && v != nil && !isNone(v)
}

// String returns the value rendered as a string, "" when absent.
func (a Arguments) String(name string) string {
	v, ok := a.values[name]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

// OptionalString returns the value and whether it was set to something other than None.
func (a Arguments) OptionalString(name string) (string, bool) {
	if !a.Has(name) {
		return "", false
	}
	return a.String(name), true
}

// Bool coerces the value to a boolean. Strings accept the usual
// true/false, yes/no, on/off and 1/0 spellings.
func (a Arguments) Bool(name string) (bool, error) {
	switch v := a.values[name].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0", "", "none":
			return false, nil
		}
		return false, fmt.Errorf("%w: argument %q: %q is not a boolean", ErrInvalidArguments, name, v)
	default:
		return false, fmt.Errorf("%w: argument %q: %T is not a boolean", ErrInvalidArguments, name, v)
	}
}

// Int coerces the value to an integer.
func (a Arguments) Int(name string) (int, error) {
	switch v := a.values[name].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: argument %q: %v is not an integer", ErrInvalidArguments, name, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: argument %q: %q is not an integer", ErrInvalidArguments, name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: argument %q: %T is not an integer", ErrInvalidArguments, name, v)
	}
}

// Float coerces the value to a float.
func (a Arguments) Float(name string) (float64, error) {
	switch v := a.values[name].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: argument %q: %q is not a number", ErrInvalidArguments, name, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: argument %q: %T is not a number", ErrInvalidArguments, name, v)
	}
}

// Duration coerces the value to a duration. Plain numbers are seconds,
// strings may also use Go duration syntax ("500ms", "1m30s").
func (a Arguments) Duration(name string) (time.Duration, error) {
	switch v := a.values[name].(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case int:
		return time.Duration(v) * time.Second, nil
	case string:
		s := strings.TrimSpace(v)
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: argument %q: %q is not a duration", ErrInvalidArguments, name, v)
		}
		return time.Duration(f * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%w: argument %q: %T is not a duration", ErrInvalidArguments, name, v)
	}
}

// Strings returns the variadic values when name is the variadic parameter,
// otherwise the single value as a one-element slice.
func (a Arguments) Strings(name string) []string {
	if name == a.varName {
		out := make([]string, 0, len(a.varargs))
		for _, v := range a.varargs {
			out = append(out, stringify(v))
		}
		return out
	}
	if !a.Has(name) {
		return nil
	}
	return []string{a.String(name)}
}

func isNone(v interface{}) bool {
	s, ok := v.(string)
	return ok && s == "None"
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
