package database

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrorKind is a coarse reason attached to startup failures in logs.
type ErrorKind string

const (
	KindUnknown         ErrorKind = "unknown"
	KindUnreachable     ErrorKind = "unreachable"
	KindTimeout         ErrorKind = "timeout"
	KindAccessDenied    ErrorKind = "access_denied"
	KindUnknownDatabase ErrorKind = "unknown_database"
	KindTableExists     ErrorKind = "table_exists"
	KindNoTable         ErrorKind = "no_table"
	KindDuplicateKey    ErrorKind = "duplicate_key"
	KindForeignKey      ErrorKind = "foreign_key"
	KindSchemaOrder     ErrorKind = "schema_order"
	KindNoRows          ErrorKind = "no_rows"
)

// Classify inspects err without changing it. MySQL server errors are mapped
// by number; other drivers fall back to message matching.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrCyclicDependency) || errors.Is(err, ErrUnknownDependency) {
		return KindSchemaOrder
	}
	if errors.Is(err, sql.ErrNoRows) {
		return KindNoRows
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1044, 1045, 1142, 1143:
			return KindAccessDenied
		case 1049:
			return KindUnknownDatabase
		case 1050:
			return KindTableExists
		case 1146:
			return KindNoTable
		case 1062:
			return KindDuplicateKey
		case 1215, 1216, 1217, 1451, 1452:
			return KindForeignKey
		default:
			return KindUnknown
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindUnreachable
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return KindUnreachable
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "connection refused"), strings.Contains(s, "no such host"):
		return KindUnreachable
	case strings.Contains(s, "password authentication failed"), strings.Contains(s, "permission denied"):
		return KindAccessDenied
	case strings.Contains(s, "already exists") && strings.Contains(s, "table"):
		return KindTableExists
	case strings.Contains(s, "no such table"), strings.Contains(s, "undefined table"):
		return KindNoTable
	case strings.Contains(s, "unique constraint failed"), strings.Contains(s, "duplicate key value"):
		return KindDuplicateKey
	case strings.Contains(s, "foreign key constraint"):
		return KindForeignKey
	}
	return KindUnknown
}
