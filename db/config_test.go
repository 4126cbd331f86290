package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thysk/rucio/filter/compile"
)

func TestOpenRejectsUnknownDbType(t *testing.T) {
	_, err := Open(Config{DbType: "oracle"})
	assert.Error(t, err)
}

func TestOpenSQLitePairsSQLiteDialect(t *testing.T) {
	conn, err := Open(Config{DbType: "sqlite"})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, compile.SQLite, conn.Dialect)
}

func TestMySQLBuildDSNIncludesParseTime(t *testing.T) {
	dsn := mysqlBuildDSN(Config{Host: "db.internal", Port: 3306, User: "u", Password: "p", DbName: "rucio"})
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "rucio")
}

func TestPostgresBuildDSNDefaultsHostAndPort(t *testing.T) {
	dsn := postgresBuildDSN(Config{User: "u", Password: "p", DbName: "rucio"})
	assert.Contains(t, dsn, "127.0.0.1:5432")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestMSSQLBuildDSNDefaultsPort(t *testing.T) {
	dsn := mssqlBuildDSN(Config{Host: "mssql.internal", User: "u", Password: "p", DbName: "rucio"})
	assert.Contains(t, dsn, "mssql.internal:1433")
	assert.Contains(t, dsn, "database=rucio")
}

func TestSQLiteBuildDSNDefaultsToInMemory(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteBuildDSN(Config{}))
	assert.Equal(t, "/tmp/rucio.db", sqliteBuildDSN(Config{DbName: "/tmp/rucio.db"}))
}
