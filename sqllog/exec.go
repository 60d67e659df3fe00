package sqllog

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ExecStatements runs `statements` in order over a single connection of `db`,
// logging each one under SQLField at Info level once it has executed. They are not wrapped
// in a transaction, so scripts may include their own BEGIN and COMMIT.
func ExecStatements(ctx context.Context, db *sql.DB, statements []string) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("connecting to DB: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); err == nil {
			err = closeErr
		}
	}()

	if err = conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping DB: %w", err)
	}

	for _, statement := range statements {
		if _, err := conn.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("executing statement (%s): %w", statement, err)
		}
		log.WithField(SQLField, statement).Info("executed statement")
	}

	return nil
}
