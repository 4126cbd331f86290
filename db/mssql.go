package db

import (
	"fmt"
	"net/url"

	_ "github.com/denisenkom/go-mssqldb"
)

func mssqlBuildDSN(config Config) string {
	host := config.Host
	port := config.Port
	if port == 0 {
		port = 1433
	}
	u := url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(config.User, config.Password),
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	q := u.Query()
	q.Set("database", config.DbName)
	u.RawQuery = q.Encode()
	return u.String()
}
