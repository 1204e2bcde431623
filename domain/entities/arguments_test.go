package entities

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind(t *testing.T) {
	sig := []Arg{Required("selector"), Optional("button", "left"), Optional("clickCount", 1)}

	t.Run("positional fills in order", func(t *testing.T) {
		args, err := Bind(sig, []interface{}{"#btn", "right"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "#btn", args.String("selector"))
		assert.Equal(t, "right", args.String("button"))
		n, err := args.Int("clickCount")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("named arguments", func(t *testing.T) {
		args, err := Bind(sig, []interface{}{"#btn"}, map[string]interface{}{"clickCount": "2"})
		require.NoError(t, err)
		n, err := args.Int("clickCount")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, "left", args.String("button"))
	})

	t.Run("missing required", func(t *testing.T) {
		_, err := Bind(sig, nil, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidArguments))
		assert.Contains(t, err.Error(), "selector")
	})

	t.Run("too many positional", func(t *testing.T) {
		_, err := Bind(sig, []interface{}{"a", "b", 1, "extra"}, nil)
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})

	t.Run("unknown named", func(t *testing.T) {
		_, err := Bind(sig, []interface{}{"a"}, map[string]interface{}{"force": true})
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})

	t.Run("positional and named for same parameter", func(t *testing.T) {
		_, err := Bind(sig, []interface{}{"a", "left"}, map[string]interface{}{"button": "right"})
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})
}

func TestBindVariadic(t *testing.T) {
	sig := []Arg{Required("selector"), Variadic("keys"), Optional("delay", nil)}

	args, err := Bind(sig, []interface{}{"#input", "Enter", "Tab"}, map[string]interface{}{"delay": "100ms"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Enter", "Tab"}, args.Strings("keys"))
	d, err := args.Duration("delay")
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, d)

	args, err = Bind(sig, []interface{}{"#input"}, nil)
	require.NoError(t, err)
	assert.Empty(t, args.Strings("keys"))
	assert.False(t, args.Has("delay"))

	_, err = Bind(sig, []interface{}{"#input"}, map[string]interface{}{"keys": "x"})
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestArgumentCoercion(t *testing.T) {
	sig := []Arg{Optional("v", nil)}
	bind := func(v interface{}) Arguments {
		args, err := Bind(sig, []interface{}{v}, nil)
		require.NoError(t, err)
		return args
	}

	for _, tc := range []struct {
		in   interface{}
		want bool
	}{
		{"True", true}, {"yes", true}, {"off", false}, {"None", false}, {true, true}, {0.0, false},
	} {
		t.Run(fmt.Sprintf("bool %v", tc.in), func(t *testing.T) {
			got, err := bind(tc.in).Bool("v")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := bind("maybe").Bool("v")
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = bind(1.5).Int("v")
	assert.ErrorIs(t, err, ErrInvalidArguments)

	d, err := bind("2.5").Duration("v")
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)

	d, err = bind(3.0).Duration("v")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	f, err := bind("0.25").Float("v")
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)

	assert.Equal(t, "3", bind(3.0).String("v"))
	_, ok := bind("None").OptionalString("v")
	assert.False(t, ok)
}

func TestArgString(t *testing.T) {
	kw := Keyword{Args: []Arg{Required("url"), Optional("browser", "chrome"), Optional("path", nil), Variadic("keys")}}
	assert.Equal(t, []string{"url", "browser=chrome", "path=None", "*keys"}, kw.Signature())
}

func TestNormalizeKeywordName(t *testing.T) {
	assert.Equal(t, "takepagescreenshot", NormalizeKeywordName("Take Page Screenshot"))
	assert.Equal(t, "takepagescreenshot", NormalizeKeywordName("take_page_screenshot"))
	assert.Equal(t, NormalizeKeywordName("take page screenshot"), NormalizeKeywordName("TakePageScreenshot"))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "assertion", ErrorKind(fmt.Errorf("wrapped: %w", Assertionf("title %q", "x"))))
	assert.Equal(t, "unknown_keyword", ErrorKind(fmt.Errorf("%w: Foo", ErrUnknownKeyword)))
	assert.Equal(t, "handle_closed", ErrorKind(ErrHandleClosed))
	assert.Equal(t, "invalid_arguments", ErrorKind(ErrInvalidArguments))
	assert.Equal(t, "error", ErrorKind(errors.New("boom")))
	assert.Equal(t, "", ErrorKind(nil))
	assert.False(t, IsAssertion(errors.New("boom")))
}
