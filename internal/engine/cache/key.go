package cache

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MaxKeyArgs is the maximum number of arguments a Key can hold after its scope.
const MaxKeyArgs = 4

// keySeparator joins scope and arguments in Key.String.
const keySeparator = "/"

// Key identifies a cached query. It is a comparable tuple of a scope (the
// endpoint or query name) followed by up to MaxKeyArgs normalised arguments,
// so it can be used directly as a map key without string concatenation.
type Key struct {
	scope string
	args  [MaxKeyArgs]string
	n     int
}

// NewKey builds a Key from a scope and arguments. Strings are trimmed, integers
// are formatted in base 10 and anything else goes through fmt.Sprint.
// It panics if more than MaxKeyArgs arguments are given.
func NewKey(scope string, args ...any) Key {
	if len(args) > MaxKeyArgs {
		panic(fmt.Sprintf("cache: key %q has %d args, max is %d", scope, len(args), MaxKeyArgs))
	}
	k := Key{scope: strings.TrimSpace(scope), n: len(args)}
	for i, a := range args {
		k.args[i] = normalizeArg(a)
	}
	return k
}

func normalizeArg(a any) string {
	switch v := a.(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Scope returns the key's scope.
func (k Key) Scope() string {
	return k.scope
}

// Args returns a copy of the key's arguments.
func (k Key) Args() []string {
	out := make([]string, k.n)
	copy(out, k.args[:k.n])
	return out
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k == Key{}
}

// HasPrefix reports whether p is a prefix of k: same scope and p's arguments
// equal the first arguments of k. A scope-only prefix matches every key in
// that scope.
func (k Key) HasPrefix(p Key) bool {
	if k.scope != p.scope || p.n > k.n {
		return false
	}
	for i := range p.n {
		if k.args[i] != p.args[i] {
			return false
		}
	}
	return true
}

// String renders the key as scope/arg/arg with each part path-escaped.
func (k Key) String() string {
	parts := make([]string, 0, k.n+1)
	parts = append(parts, url.PathEscape(k.scope))
	for _, a := range k.args[:k.n] {
		parts = append(parts, url.PathEscape(a))
	}
	return strings.Join(parts, keySeparator)
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, ErrInvalidCacheKey
	}
	raw := strings.Split(s, keySeparator)
	if len(raw)-1 > MaxKeyArgs {
		return Key{}, fmt.Errorf("%w: %q has too many parts", ErrInvalidCacheKey, s)
	}
	parts := make([]string, len(raw))
	for i, p := range raw {
		u, err := url.PathUnescape(p)
		if err != nil {
			return Key{}, fmt.Errorf("%w: %q: %w", ErrInvalidCacheKey, s, err)
		}
		parts[i] = u
	}
	k := Key{scope: parts[0], n: len(parts) - 1}
	copy(k.args[:], parts[1:])
	return k, nil
}
