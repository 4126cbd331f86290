//go:build cgo

// A cgo build picks up mattn/go-sqlite3 instead of the pure-Go
// modernc.org/sqlite: same DSN shape, registered under the "sqlite3"
// driver name, which db.Open picks up through sqliteDriverName.
package db

import _ "github.com/mattn/go-sqlite3"

const sqliteDriverName = "sqlite3"

func sqliteBuildDSN(config Config) string {
	if config.DbName == "" {
		return ":memory:"
	}
	return config.DbName
}
