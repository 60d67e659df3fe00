package baseline

import (
	"strings"
	"text/template"

	"github.com/estuary/sql-baseline/dialect"
	log "github.com/sirupsen/logrus"
)

// MustParseTemplate is a convenience which parses the baseline template
// `body` and installs common functions for accessing Dialect behavior, so
// that Jet's backtick-quoted identifiers need not be written in Go raw
// strings:
//
//	SELECT {{Identifier "c" "CustomerID"}}
//	FROM {{Identifier "Customers"}} AS {{Identifier "c"}}
//	WHERE {{Identifier "c" "City"}} = {{Literal "London"}}
func MustParseTemplate(d dialect.Dialect, name, body string) *template.Template {
	var tpl = template.New(name).Funcs(template.FuncMap{
		"Identifier":  d.Identifier,
		"Literal":     d.Literal,
		"Placeholder": d.Placeholder,
		"Join":        func(s []string, delim string) string { return strings.Join(s, delim) },
		"Add":         func(a, b int) int { return a + b },
		"Last":        func(s []string) string { return s[len(s)-1] },
	})
	return template.Must(tpl.Parse(body))
}

// RenderBaseline executes `tpl` with `data` and returns the expected
// statements it describes. Output framed as a fixture file yields one
// statement per block. Any other output is a single statement.
func RenderBaseline(tpl *template.Template, data any) ([]string, error) {
	var w strings.Builder
	if err := tpl.Execute(&w, data); err != nil {
		return nil, err
	}
	var s = w.String()
	log.WithField("rendered", s).WithField("template", tpl.Name()).Debug("rendered baseline template")

	if strings.Contains(s, beginPrefix) {
		return ParseFixture(s)
	}
	return []string{s}, nil
}
