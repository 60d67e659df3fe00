package sqllog

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParameterString(t *testing.T) {
	var yes, no = true, false

	for _, tt := range []struct {
		name  string
		param Parameter
		want  string
	}{
		{"value only", Parameter{Name: "p0", Value: "ALFKI"}, "@p0='ALFKI'"},
		{"leading at", Parameter{Name: "@__city_0", Value: "London"}, "@__city_0='London'"},
		{"null", Parameter{Name: "p1", Null: true}, "@p1=NULL"},
		{"size", Parameter{Name: "p0", Value: "ALFKI", Size: 5}, "@p0='ALFKI' (Size = 5)"},
		{
			"every attribute",
			Parameter{Name: "p2", Value: "1.5", Size: 16, Precision: 18, Scale: 2, Nullable: &no, DbType: "Decimal"},
			"@p2='1.5' (Size = 16, Precision = 18, Scale = 2, Nullable = false, DbType = Decimal)",
		},
		{"nullable null", Parameter{Name: "p3", Null: true, Nullable: &yes, Size: 255}, "@p3=NULL (Size = 255, Nullable = true)"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.param.String())
		})
	}
}

func TestStatementText(t *testing.T) {
	require.Equal(t, "SELECT 1", NewStatement("SELECT 1").Text())

	var s = NewStatement("SELECT `c`.`CustomerID`\r\nFROM `Customers` AS `c`   \r\nWHERE `c`.`City` = @__city_0\n\n",
		Parameter{Name: "__city_0", Value: "London", Size: 255})

	require.Equal(t, "@__city_0='London' (Size = 255)\n"+
		"\n"+
		"SELECT `c`.`CustomerID`\n"+
		"FROM `Customers` AS `c`\n"+
		"WHERE `c`.`City` = @__city_0", s.Text())

	require.Equal(t, []string{"A", "@p0='1'\n\nB"}, Texts([]Statement{
		NewStatement("A"),
		NewStatement("B", Parameter{Name: "p0", Value: "1"}),
	}))
}

func TestNormalize(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   string
		want string
	}{
		{"unchanged", "SELECT 1", "SELECT 1"},
		{"crlf", "SELECT 1\r\nFROM t", "SELECT 1\nFROM t"},
		{"lone cr", "SELECT 1\rFROM t", "SELECT 1\nFROM t"},
		{"trailing spaces per line", "SELECT 1  \nFROM t\t", "SELECT 1\nFROM t"},
		{"leading and trailing blank lines", "\n\n  \nSELECT 1\n\n", "SELECT 1"},
		{"indentation kept", "SELECT 1\n    FROM t", "SELECT 1\n    FROM t"},
		{"inner blank line kept", "@p0='1'\n\nSELECT 1", "@p0='1'\n\nSELECT 1"},
		{"empty", "  \r\n", ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestDescribeParameter(t *testing.T) {
	var ts = time.Date(1997, 1, 1, 13, 4, 5, 0, time.UTC)

	for _, tt := range []struct {
		name string
		arg  driver.NamedValue
		want string
	}{
		{"positional", driver.NamedValue{Ordinal: 1, Value: "ALFKI"}, "@p0='ALFKI'"},
		{"named", driver.NamedValue{Name: "__p_0", Ordinal: 1, Value: int64(10)}, "@__p_0='10'"},
		{"nil", driver.NamedValue{Ordinal: 2, Value: nil}, "@p1=NULL (Nullable = true)"},
		{"bool", driver.NamedValue{Ordinal: 1, Value: true}, "@p0='True'"},
		{"float", driver.NamedValue{Ordinal: 1, Value: 1.5}, "@p0='1.5'"},
		{"bytes", driver.NamedValue{Ordinal: 1, Value: []byte{0x01, 0xab}}, "@p0='0x01AB'"},
		{"time", driver.NamedValue{Ordinal: 1, Value: ts}, "@p0='1997-01-01T13:04:05.0000000' (DbType = DateTime)"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DescribeParameter(tt.arg).String())
		})
	}
}
