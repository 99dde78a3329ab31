package handlers

import (
	"database/sql"

	"github.com/rs/zerolog"
)

// Handlers holds all dependencies for the route handlers. It is built
// once in main and injected into the router; nothing here is a package
// singleton.
type Handlers struct {
	DB  *sql.DB
	Log zerolog.Logger
}
