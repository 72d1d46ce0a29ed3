package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql
var sqliteFS embed.FS

//go:embed postgres/*.sql
var postgresFS embed.FS

// SQLite returns the migrations for the embedded SQLite store.
func SQLite() fs.FS {
	return mustSub(sqliteFS, "sqlite")
}

// Postgres returns the migrations for the PostgreSQL store.
func Postgres() fs.FS {
	return mustSub(postgresFS, "postgres")
}

func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
