package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"access denied", &mysql.MySQLError{Number: 1045, Message: "Access denied for user"}, KindAccessDenied},
		{"create denied", fmt.Errorf("create: %w", &mysql.MySQLError{Number: 1142}), KindAccessDenied},
		{"unknown database", &mysql.MySQLError{Number: 1049}, KindUnknownDatabase},
		{"table exists", &mysql.MySQLError{Number: 1050}, KindTableExists},
		{"duplicate", &mysql.MySQLError{Number: 1062}, KindDuplicateKey},
		{"foreign key", &mysql.MySQLError{Number: 1452}, KindForeignKey},
		{"other mysql", &mysql.MySQLError{Number: 1064}, KindUnknown},
		{"dial refused", fmt.Errorf("ping: %w", refused), KindUnreachable},
		{"invalid conn", mysql.ErrInvalidConn, KindUnreachable},
		{"deadline", fmt.Errorf("ping: %w", context.DeadlineExceeded), KindTimeout},
		{"no rows", sql.ErrNoRows, KindNoRows},
		{"cycle", fmt.Errorf("order: %w", ErrCyclicDependency), KindSchemaOrder},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: authors.name"), KindDuplicateKey},
		{"pg auth", errors.New(`pq: password authentication failed for user "app"`), KindAccessDenied},
		{"plain", errors.New("something else"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}
