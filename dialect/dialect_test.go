package dialect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJetQuoting(t *testing.T) {
	for _, tt := range []struct {
		name    string
		dialect Dialect
		path    []string
		want    string
	}{
		{"backtick single", Jet, []string{"CustomerID"}, "`CustomerID`"},
		{"backtick path", Jet, []string{"c", "CustomerID"}, "`c`.`CustomerID`"},
		{"backtick escape", Jet, []string{"we`ird"}, "`we``ird`"},
		{"bracket single", JetBracket, []string{"Order Details"}, "[Order Details]"},
		{"bracket path", JetBracket, []string{"o", "OrderID"}, "[o].[OrderID]"},
		{"bracket escape", JetBracket, []string{"a]b"}, "[a]]b]"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.dialect.Identifier(tt.path...))
		})
	}

	require.Equal(t, "'O''Brien'", Jet.Literal("O'Brien"))
	require.Equal(t, "@p0", Jet.Placeholder(0))
	require.Equal(t, "@p3", JetBracket.Placeholder(3))
}

func TestPassThroughTransform(t *testing.T) {
	var fn = JoinTransform(".", PassThroughTransform(IsSimpleIdentifier, QuoteTransform("`", "``")))

	require.Equal(t, "c.CustomerID", fn("c", "CustomerID"))
	require.Equal(t, "`Order Details`.Quantity", fn("Order Details", "Quantity"))
	require.Equal(t, "`1abc`", fn("1abc"))
}
