package sqllog

import (
	"strconv"
	"strings"
)

// Parameter describes one bound parameter of a recorded statement.
type Parameter struct {
	// Name of the parameter, without the leading '@'.
	Name string `json:"name"`
	// Value is the rendered literal value. It's ignored if Null is set.
	Value string `json:"value,omitempty"`
	Null  bool   `json:"null,omitempty"`

	// Optional metadata. Zero values are omitted from the rendering.
	Size      int    `json:"size,omitempty"`
	Precision int    `json:"precision,omitempty"`
	Scale     int    `json:"scale,omitempty"`
	Nullable  *bool  `json:"nullable,omitempty"`
	DbType    string `json:"dbType,omitempty"`
}

// String renders the parameter as a baseline preamble line, for example
// `@p0='ALFKI' (Size = 5)` or `@p1=NULL (Nullable = true)`.
func (p Parameter) String() string {
	var b strings.Builder
	b.WriteByte('@')
	b.WriteString(strings.TrimPrefix(p.Name, "@"))
	b.WriteByte('=')
	if p.Null {
		b.WriteString("NULL")
	} else {
		b.WriteByte('\'')
		b.WriteString(p.Value)
		b.WriteByte('\'')
	}

	if meta := p.metadata(); len(meta) != 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(meta, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

func (p Parameter) metadata() []string {
	var out []string
	if p.Size != 0 {
		out = append(out, "Size = "+strconv.Itoa(p.Size))
	}
	if p.Precision != 0 {
		out = append(out, "Precision = "+strconv.Itoa(p.Precision))
	}
	if p.Scale != 0 {
		out = append(out, "Scale = "+strconv.Itoa(p.Scale))
	}
	if p.Nullable != nil {
		out = append(out, "Nullable = "+strconv.FormatBool(*p.Nullable))
	}
	if p.DbType != "" {
		out = append(out, "DbType = "+p.DbType)
	}
	return out
}

// Statement is one SQL command issued by the code under test, along with the
// parameters bound to it.
type Statement struct {
	Parameters []Parameter `json:"parameters,omitempty"`
	// SQL text of the statement, normalized by NewStatement.
	SQL string `json:"sql"`
}

// NewStatement returns a Statement with normalized SQL text.
func NewStatement(sql string, params ...Parameter) Statement {
	return Statement{Parameters: params, SQL: Normalize(sql)}
}

// Text renders the statement in baseline form: one preamble line per
// parameter, a blank line, and then the SQL. Statements without parameters
// render as their SQL alone.
func (s Statement) Text() string {
	if len(s.Parameters) == 0 {
		return s.SQL
	}

	var b strings.Builder
	for _, p := range s.Parameters {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(s.SQL)
	return b.String()
}

// Normalize converts line endings to '\n', trims trailing whitespace from each
// line, and drops leading and trailing blank lines. Indentation and all other
// content are preserved.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines = strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\f\v")
	}
	for len(lines) != 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) != 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Texts renders each statement with Text.
func Texts(statements []Statement) []string {
	var out = make([]string, len(statements))
	for i, s := range statements {
		out[i] = s.Text()
	}
	return out
}
