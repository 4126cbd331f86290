// Package db wires a *sql.DB connection to the compile.Dialect the filter
// engine needs to pick the right Query Compiler branch, one per backend
// driver in the corpus (spec §4.6; SPEC_FULL §11 domain stack).
package db

import (
	"database/sql"
	"fmt"

	"github.com/Thysk/rucio/filter/compile"
)

// Config names one backend connection. DbType selects both the driver
// registered with database/sql and the compile.Dialect paired with it.
type Config struct {
	DbType   string // "mysql", "postgres", "mssql", or "sqlite"
	Host     string
	Port     int
	User     string
	Password string
	DbName   string
}

// Conn bundles an open connection with the dialect the filter engine
// should compile against. The filter engine never holds this itself —
// callers pass Dialect to CreateQuery and hand the resulting query to
// SQLPlugin.ListDIDs, which runs it on DB.
type Conn struct {
	DB      *sql.DB
	Dialect compile.Dialect
}

// Open builds the DSN for config.DbType, opens the connection, and pairs
// it with the matching compile.Dialect.
func Open(config Config) (*Conn, error) {
	var driverName, dsn string
	var dialect compile.Dialect

	switch config.DbType {
	case "mysql":
		driverName, dsn, dialect = "mysql", mysqlBuildDSN(config), compile.MySQL
	case "postgres":
		driverName, dsn, dialect = "postgres", postgresBuildDSN(config), compile.Postgres
	case "mssql":
		driverName, dsn, dialect = "sqlserver", mssqlBuildDSN(config), compile.MSSQL
	case "sqlite":
		driverName, dsn, dialect = sqliteDriverName, sqliteBuildDSN(config), compile.SQLite
	default:
		return nil, fmt.Errorf("database type must be one of 'mysql', 'postgres', 'mssql', 'sqlite', got %q", config.DbType)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return &Conn{DB: sqlDB, Dialect: dialect}, nil
}

func (c *Conn) Close() error {
	return c.DB.Close()
}
