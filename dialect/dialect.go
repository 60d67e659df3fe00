package dialect

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect encapsulates how a database engine quotes the identifiers, literals
// and parameter placeholders that appear in its SQL text. It is used to author
// expected baselines, and makes no attempt to model the engine's grammar.
type Dialect struct {
	Identifierer
	Literaler
	Placeholderer
}

// Identifierer takes path components and returns a raw SQL identifier with
// necessary quoting applied.
type Identifierer interface {
	Identifier(path ...string) string
}

// Literaler takes a string and returns a raw SQL literal with required quoting
// and escaping already applied.
type Literaler interface {
	Literal(str string) string
}

// Placeholderer returns the placeholder representation for a parameter at the
// given zero-offset index.
type Placeholderer interface {
	Placeholder(index int) string
}

// IdentifierFn is a function that implements Identifierer.
type IdentifierFn func(path ...string) string

func (f IdentifierFn) Identifier(path ...string) string { return f(path...) }

// LiteralFn is a function that implements Literaler.
type LiteralFn func(s string) string

func (f LiteralFn) Literal(str string) string { return f(str) }

// PlaceholderFn is a function that implements Placeholderer.
type PlaceholderFn func(index int) string

func (f PlaceholderFn) Placeholder(index int) string { return f(index) }

// Jet quotes identifiers with backticks, which is how the Jet provider renders
// every table alias and column reference.
var Jet = Dialect{
	Identifierer:  IdentifierFn(JoinTransform(".", QuoteTransform("`", "``"))),
	Literaler:     LiteralFn(QuoteTransform("'", "''")),
	Placeholderer: PlaceholderFn(func(index int) string { return fmt.Sprintf("@p%d", index) }),
}

// JetBracket is the Jet dialect using `[name]` identifier quoting.
var JetBracket = Dialect{
	Identifierer:  IdentifierFn(JoinTransform(".", BracketTransform)),
	Literaler:     Jet.Literaler,
	Placeholderer: Jet.Placeholderer,
}

// PassThroughTransform returns a function that evaluates `if_` over its input
// and, if true, returns its input unmodified. Otherwise it returns the
// result of `else_` over its input.
func PassThroughTransform(
	if_ func(string) bool,
	else_ func(string) string,
) func(string) string {
	return func(s string) string {
		if if_(s) {
			return s
		}
		return else_(s)
	}
}

// IsSimpleIdentifier returns true on identifier components that typically do not need quoting:
// strings having only letters, decimal numbers, and underscore, not starting with a number.
var IsSimpleIdentifier = regexp.MustCompile(`^[_\p{L}]+[_\p{L}\p{Nd}]*$`).MatchString

// QuoteTransform returns a function that wraps its input with `quote` on either side,
// and replaces all occurrences of `quote` _within_ the string with `escape`.
func QuoteTransform(quote string, escape string) func(string) string {
	return func(s string) string {
		return quote + strings.ReplaceAll(s, quote, escape) + quote
	}
}

// BracketTransform wraps its input in square brackets, doubling any closing
// bracket within it.
func BracketTransform(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

// JoinTransform returns a function that takes component `parts` and processes
// each through the `delegate` transform.
// Then, it joins their results around `joiner`.
func JoinTransform(
	joiner string,
	delegate func(string) string,
) func(parts ...string) string {
	return func(parts ...string) string {
		var cp = make([]string, len(parts))
		for i := range parts {
			cp[i] = delegate(parts[i])
		}
		return strings.Join(cp, joiner)
	}
}
