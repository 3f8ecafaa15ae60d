package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Supported dialects.
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DefaultPort returns the well-known port of a dialect, 0 for file based ones.
func DefaultPort(dialect string) int {
	switch dialect {
	case DialectMySQL:
		return 3306
	case DialectPostgres:
		return 5432
	default:
		return 0
	}
}

// Descriptor names everything needed to reach a database. Fields are taken
// as-is: an empty user or database is rendered as an empty token, and the
// failure surfaces only when the connection is first used.
type Descriptor struct {
	Dialect  string
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

// MySQLScheme is the URL scheme of MySQL descriptors: dialect plus connector.
const MySQLScheme = "mysql+mysqlconnector"

// Scheme is the URL scheme used by String and Redacted. It is independent
// of DriverName, which only matters to database/sql.
func (d Descriptor) Scheme() string {
	if d.Dialect == DialectMySQL {
		return MySQLScheme
	}
	return d.Dialect
}

// String renders <scheme>://<user>:<password>@<host>:<port>/<database>.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s", d.Scheme(), d.User, d.Password, d.Host, d.Port, d.Database)
}

// Redacted is String with the password masked, for logs.
func (d Descriptor) Redacted() string {
	pass := ""
	if d.Password != "" {
		pass = "****"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s", d.Scheme(), d.User, pass, d.Host, d.Port, d.Database)
}

// DriverName is the database/sql driver registered for the dialect.
func (d Descriptor) DriverName() (string, error) {
	switch d.Dialect {
	case DialectMySQL:
		return "mysql", nil
	case DialectPostgres:
		return "postgres", nil
	case DialectSQLite:
		return sqliteshim.ShimName, nil
	default:
		return "", fmt.Errorf("unsupported database dialect: %q", d.Dialect)
	}
}

// Timeouts bounds the driver's network operations.
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
	Write   time.Duration
}

// DSN renders the driver-native data source name.
func (d Descriptor) DSN(t Timeouts) (string, error) {
	switch d.Dialect {
	case DialectMySQL:
		cfg := mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = d.Host + ":" + strconv.Itoa(d.Port)
		cfg.DBName = d.Database
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		cfg.Timeout = t.Connect
		cfg.ReadTimeout = t.Read
		cfg.WriteTimeout = t.Write
		return cfg.FormatDSN(), nil
	case DialectPostgres:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(d.User, d.Password),
			Host:   d.Host + ":" + strconv.Itoa(d.Port),
			Path:   "/" + d.Database,
		}
		q := url.Values{}
		q.Set("sslmode", "disable")
		if secs := int(t.Connect.Seconds()); secs > 0 {
			q.Set("connect_timeout", strconv.Itoa(secs))
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	case DialectSQLite:
		name := d.Database
		if name == "" {
			name = "app"
		}
		if strings.HasPrefix(name, "file:") || name == ":memory:" || strings.HasSuffix(name, ".db") {
			return name, nil
		}
		return name + ".db", nil
	default:
		return "", fmt.Errorf("unsupported database dialect: %q", d.Dialect)
	}
}
