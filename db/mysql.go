package db

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

func mysqlBuildDSN(config Config) string {
	c := mysql.NewConfig()
	c.User = config.User
	c.Passwd = config.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", config.Host, config.Port)
	c.DBName = config.DbName
	c.ParseTime = true // needed so created_at/updated_at scan straight into time.Time
	return c.FormatDSN()
}
