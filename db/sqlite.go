//go:build !cgo

package db

import _ "modernc.org/sqlite"

const sqliteDriverName = "sqlite"

func sqliteBuildDSN(config Config) string {
	if config.DbName == "" {
		return ":memory:"
	}
	return config.DbName
}
