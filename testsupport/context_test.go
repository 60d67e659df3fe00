package testsupport

import (
	"context"
	"errors"
	"testing"

	"github.com/estuary/sql-baseline/baseline"
	"github.com/estuary/sql-baseline/sqllog"
	"github.com/stretchr/testify/require"
)

func TestSeededContext(t *testing.T) {
	var ctx = context.Background()
	var c = NewContext(t)

	// Seeding statements are not part of the log.
	c.AssertBaseline(t)

	var londoners []Customer
	require.NoError(t, c.DB.SelectContext(ctx, &londoners,
		"SELECT CustomerID, CompanyName, City, Region\nFROM Customers\nWHERE City = ?\nORDER BY CustomerID", "London"))
	require.Equal(t, []Customer{Customers[1], Customers[2]}, londoners)

	c.AssertBaseline(t,
		"@p0='London'\n"+
			"\n"+
			"SELECT CustomerID, CompanyName, City, Region\n"+
			"FROM Customers\n"+
			"WHERE City = ?\n"+
			"ORDER BY CustomerID",
	)

	c.ClearLog()

	var count int
	require.NoError(t, c.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM Orders WHERE Freight > ?", 40.0))
	require.Equal(t, 2, count)

	c.AssertBaseline(t, "@p0='40'\n\nSELECT COUNT(*) FROM Orders WHERE Freight > ?")
}

func TestTransactionsAreNotRecorded(t *testing.T) {
	var ctx = context.Background()
	var c = NewContext(t)

	var txn = c.DB.MustBeginTx(ctx, nil)
	_, err := txn.ExecContext(ctx, "UPDATE Orders SET Freight = ? WHERE OrderID = ?", 12.5, 10249)
	require.NoError(t, err)
	require.NoError(t, txn.Commit())

	c.AssertBaseline(t, "@p0='12.5'\n@p1='10249'\n\nUPDATE Orders SET Freight = ? WHERE OrderID = ?")
}

func TestFixtureBaseline(t *testing.T) {
	t.Setenv(baseline.UpdateEnvVar, "")

	var ctx = context.Background()
	var c = NewContext(t)

	var orders []Order
	require.NoError(t, c.DB.SelectContext(ctx, &orders,
		"SELECT o.OrderID, o.Freight\n"+
			"FROM Orders AS o\n"+
			"JOIN Customers AS c ON c.CustomerID = o.CustomerID\n"+
			"WHERE c.City = ?\n"+
			"ORDER BY o.OrderID", "London"))
	require.Len(t, orders, 2)

	_, err := c.DB.ExecContext(ctx, "UPDATE Orders SET Freight = ? WHERE OrderID = ?", 12.5, orders[0].OrderID)
	require.NoError(t, err)

	c.AssertFixture(t, "testdata/london_orders.sql")
}

func TestMismatchedBaseline(t *testing.T) {
	var ctx = context.Background()
	var c = NewContext(t)

	_, err := c.DB.ExecContext(ctx, "DELETE FROM Orders WHERE CustomerID = ?", "LONEP")
	require.NoError(t, err)

	var content *baseline.ContentMismatchError
	require.True(t, errors.As(c.Check("DELETE FROM Orders WHERE CustomerID = ?"), &content))
	require.Equal(t, 0, content.Index)
	require.Contains(t, content.Diff(), "+@p0='LONEP'")

	var count *baseline.CountMismatchError
	require.True(t, errors.As(c.Check(), &count))
	require.Equal(t, 0, count.Expected)
	require.Equal(t, 1, count.Actual)
}

func TestIgnoringParameters(t *testing.T) {
	var ctx = context.Background()
	var c = NewContext(t, WithVerifierOptions(baseline.IgnoreParameters()))

	var name string
	require.NoError(t, c.DB.GetContext(ctx, &name, "SELECT CompanyName FROM Customers WHERE CustomerID = ?", "ALFKI"))
	require.Equal(t, "Alfreds Futterkiste", name)

	c.AssertBaseline(t, "SELECT CompanyName FROM Customers WHERE CustomerID = ?")
}

func TestUnseededContext(t *testing.T) {
	var ctx = context.Background()
	var c = NewContext(t, WithoutSeed())

	// A failing statement was still issued, and is recorded.
	_, err := c.DB.ExecContext(ctx, "DELETE FROM Customers")
	require.ErrorContains(t, err, "no such table")
	c.AssertBaseline(t, "DELETE FROM Customers")
}

func TestContextsAreIsolated(t *testing.T) {
	var ctx = context.Background()
	var first, second = NewContext(t), NewContext(t)
	require.NotEqual(t, first.Name, second.Name)

	_, err := first.DB.ExecContext(ctx, "DELETE FROM Orders")
	require.NoError(t, err)

	var count int
	require.NoError(t, second.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM Orders"))
	require.Equal(t, len(Orders), count)

	first.AssertBaseline(t, "DELETE FROM Orders")
	second.AssertBaseline(t, "SELECT COUNT(*) FROM Orders")
}

func TestContextDisposal(t *testing.T) {
	var c *Context
	t.Run("scoped", func(t *testing.T) {
		c = NewContext(t)
	})

	require.Error(t, c.DB.PingContext(context.Background()))

	// Statements recorded after disposal are dropped.
	c.Recorder.Record(sqllog.NewStatement("SELECT 1"))
	require.Equal(t, 0, c.Recorder.Len())
}
