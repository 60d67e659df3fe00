package testsupport

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Customer is a row of the seeded Customers table.
type Customer struct {
	CustomerID  string         `db:"CustomerID"`
	CompanyName string         `db:"CompanyName"`
	City        string         `db:"City"`
	Region      sql.NullString `db:"Region"`
}

// Order is a row of the seeded Orders table.
type Order struct {
	OrderID    int64   `db:"OrderID"`
	CustomerID string  `db:"CustomerID"`
	ShipCity   string  `db:"ShipCity"`
	Freight    float64 `db:"Freight"`
}

var schema = []string{
	`CREATE TABLE Customers (
	CustomerID TEXT PRIMARY KEY,
	CompanyName TEXT NOT NULL,
	City TEXT NOT NULL,
	Region TEXT
)`,
	`CREATE TABLE Orders (
	OrderID INTEGER PRIMARY KEY,
	CustomerID TEXT NOT NULL REFERENCES Customers (CustomerID),
	ShipCity TEXT NOT NULL,
	Freight REAL NOT NULL
)`,
}

// Customers is the seeded content of the Customers table, in key order.
var Customers = []Customer{
	{CustomerID: "ALFKI", CompanyName: "Alfreds Futterkiste", City: "Berlin"},
	{CustomerID: "AROUT", CompanyName: "Around the Horn", City: "London"},
	{CustomerID: "BSBEV", CompanyName: "B's Beverages", City: "London"},
	{CustomerID: "LONEP", CompanyName: "Lonesome Pine Restaurant", City: "Portland", Region: sql.NullString{String: "OR", Valid: true}},
}

// Orders is the seeded content of the Orders table, in key order.
var Orders = []Order{
	{OrderID: 10248, CustomerID: "ALFKI", ShipCity: "Berlin", Freight: 32.38},
	{OrderID: 10249, CustomerID: "AROUT", ShipCity: "London", Freight: 11.61},
	{OrderID: 10250, CustomerID: "AROUT", ShipCity: "Colchester", Freight: 65.83},
	{OrderID: 10251, CustomerID: "LONEP", ShipCity: "Portland", Freight: 41.34},
}

// Seed creates and populates the Customers and Orders tables within a single
// transaction.
func Seed(ctx context.Context, db *sqlx.DB) (err error) {
	txn, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = txn.Rollback()
		}
	}()

	for _, statement := range schema {
		if _, err = txn.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, c := range Customers {
		if _, err = txn.NamedExecContext(ctx,
			`INSERT INTO Customers (CustomerID, CompanyName, City, Region)
			VALUES (:CustomerID, :CompanyName, :City, :Region)`, c); err != nil {
			return fmt.Errorf("inserting customer %s: %w", c.CustomerID, err)
		}
	}
	for _, o := range Orders {
		if _, err = txn.NamedExecContext(ctx,
			`INSERT INTO Orders (OrderID, CustomerID, ShipCity, Freight)
			VALUES (:OrderID, :CustomerID, :ShipCity, :Freight)`, o); err != nil {
			return fmt.Errorf("inserting order %d: %w", o.OrderID, err)
		}
	}

	if err = txn.Commit(); err != nil {
		return fmt.Errorf("txn.Commit: %w", err)
	}
	return nil
}
