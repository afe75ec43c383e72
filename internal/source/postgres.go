package source

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"retailetl/internal/config"
)

func init() {
	Register("postgres", Driver{Name: "pgx", DSN: postgresDSN, Dialect: Postgres})
}

func postgresDSN(s config.Source) (string, error) {
	if s.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	port := s.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(port)),
		Path:   "/" + s.Database,
	}
	if s.Password != "" {
		u.User = url.UserPassword(s.User, s.Password)
	} else if s.User != "" {
		u.User = url.User(s.User)
	}
	return u.String(), nil
}
