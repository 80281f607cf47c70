package core

import "context"

// DBPinger reports whether the database is reachable. *sql.DB satisfies it.
type DBPinger interface {
	PingContext(ctx context.Context) error
}
