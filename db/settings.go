// Package db wraps database/sql with the small query surface the rest
// of the module needs: statements render to strings, rows come back as
// maps keyed by upper-cased column names, and every call takes a
// context.
package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"
)

// Settings holds the coordinates of the SQL Server database.
type Settings struct {
	Server   string `mapstructure:"server"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// ConnectionString builds the sqlserver:// URL for the driver.
func (s Settings) ConnectionString() string {
	u := url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(s.User, s.Password),
		Host:   s.Server,
	}
	q := url.Values{}
	q.Set("database", s.Database)
	u.RawQuery = q.Encode()
	return u.String()
}

// Connect opens a connection pool to the configured database and
// verifies nothing; the first query will surface connectivity errors.
func (s Settings) Connect() (*sql.DB, error) {
	conn, err := sql.Open("sqlserver", s.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("db: open %s/%s: %w", s.Server, s.Database, err)
	}
	return conn, nil
}
