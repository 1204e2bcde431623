package entities

import (
	"context"
	"strings"
)

// KeywordFunc is the operation behind a keyword. It receives arguments already
// bound to the keyword's declared signature.
type KeywordFunc func(ctx context.Context, args Arguments) (interface{}, error)

// Arg declares one keyword parameter
type Arg struct {
	Name       string      `json:"name"`
	Default    interface{} `json:"default,omitempty"`
	HasDefault bool        `json:"has_default,omitempty"`
	Variadic   bool        `json:"variadic,omitempty"`
}

// Required declares a parameter without a default value.
func Required(name string) Arg {
	return Arg{Name: name}
}

// Optional declares a parameter with a default value. A nil default means
// the parameter is absent unless given.
func Optional(name string, def interface{}) Arg {
	return Arg{Name: name, Default: def, HasDefault: true}
}

// Variadic declares a parameter that collects the remaining positional arguments.
func Variadic(name string) Arg {
	return Arg{Name: name, Variadic: true}
}

// String renders the parameter the way hosts display keyword signatures:
// "url", "url=None", "*keys".
func (a Arg) String() string {
	switch {
	case a.Variadic:
		return "*" + a.Name
	case a.HasDefault && a.Default == nil:
		return a.Name + "=None"
	case a.HasDefault:
		return a.Name + "=" + stringify(a.Default)
	default:
		return a.Name
	}
}

// Keyword is a single host-invocable operation with its declared signature.
type Keyword struct {
	Name  string
	Group string
	Doc   string
	Args  []Arg
	Run   KeywordFunc
}

// Signature returns the rendered parameter list.
func (k Keyword) Signature() []string {
	sig := make([]string, 0, len(k.Args))
	for _, a := range k.Args {
		sig = append(sig, a.String())
	}
	return sig
}

// NormalizeKeywordName folds a keyword name to the host's matching convention:
// case-insensitive, spaces and underscores ignored.
func NormalizeKeywordName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if r == ' ' || r == '_' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
