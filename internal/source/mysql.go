package source

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"retailetl/internal/config"
)

func init() {
	Register("mysql", Driver{Name: "mysql", DSN: mysqlDSN, Dialect: MySQL})
}

// mysqlDSN builds a go-sql-driver DSN. ParseTime makes DATE and DATETIME
// columns arrive as time.Time.
func mysqlDSN(s config.Source) (string, error) {
	c := mysql.NewConfig()
	c.User = s.User
	c.Passwd = s.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	c.DBName = s.Database
	c.ParseTime = true
	return c.FormatDSN(), nil
}
