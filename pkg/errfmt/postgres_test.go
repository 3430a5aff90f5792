package errfmt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniqueViolation() *pgconn.PgError {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "users_email_key"`,
		Detail:         "Key (email)=(a@b.com) already exists.",
		TableName:      "users",
		ConstraintName: "users_email_key",
	}
}

func TestFromPgError_UniqueViolation(t *testing.T) {
	sql := "INSERT INTO users (email) VALUES ($1)"

	err := FromPgError(uniqueViolation(), sql)

	var dbErr *DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "SequelizeUniqueConstraintError", dbErr.Name())
	assert.Equal(t, `duplicate key value violates unique constraint "users_email_key"`, dbErr.Error())

	out := FormatError(err)
	assert.Contains(t, out, "[Sequelize Error Details]\n"+
		"  Constraint: users_email_key\n"+
		"  Table: users\n"+
		`  Fields: {"email":"a@b.com"}`+"\n"+
		"  Detail: Key (email)=(a@b.com) already exists.\n"+
		"  SQL: INSERT INTO users (email) VALUES ($1)\n"+
		`  Original Error: ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)
}

func TestFromPgError_KeepsPgErrorReachable(t *testing.T) {
	pgErr := uniqueViolation()

	err := FromPgError(fmt.Errorf("insert user: %w", pgErr), "")

	var got *pgconn.PgError
	require.ErrorAs(t, err, &got)
	assert.Same(t, pgErr, got)
	assert.NotContains(t, FormatError(err), "SQL:")
}

func TestFromPgError_Names(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"23505", "SequelizeUniqueConstraintError"},
		{"23503", "SequelizeForeignKeyConstraintError"},
		{"23P01", "SequelizeExclusionConstraintError"},
		{"23502", "SequelizeValidationError"},
		{"23514", "SequelizeValidationError"},
		{"42P01", "SequelizeDatabaseError"},
		{"42601", "SequelizeDatabaseError"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := FromPgError(&pgconn.PgError{Code: tt.code, Message: "failed"}, "SELECT 1")

			var dbErr *DatabaseError
			if !errors.As(err, &dbErr) {
				t.Fatalf("expected *DatabaseError, got %T", err)
			}
			if dbErr.Name() != tt.want {
				t.Errorf("code %s: expected %s, got %s", tt.code, tt.want, dbErr.Name())
			}
		})
	}
}

func TestFromPgError_ForeignKeyOnlyConstraint(t *testing.T) {
	err := FromPgError(&pgconn.PgError{
		Code:           "23503",
		Message:        "Foreign key constraint",
		ConstraintName: "fk_user_id",
	}, "")

	out := FormatError(err)

	assert.Contains(t, out, "SequelizeForeignKeyConstraintError: Foreign key constraint\n[Sequelize Error Details]\n  Constraint: fk_user_id\n")
	assert.NotContains(t, out, "Table:")
	assert.NotContains(t, out, "Fields:")
	assert.NotContains(t, out, "SQL:")
}

func TestFromPgError_CompositeKey(t *testing.T) {
	err := FromPgError(&pgconn.PgError{
		Code:    "23505",
		Message: "duplicate key",
		Detail:  "Key (tenant_id, slug)=(7, home) already exists.",
	}, "")

	assert.Contains(t, FormatError(err), `  Fields: {"tenant_id":"7","slug":"home"}`)
}

func TestFromPgError_MismatchedKeyParts(t *testing.T) {
	err := FromPgError(&pgconn.PgError{
		Code:    "23505",
		Message: "duplicate key",
		Detail:  "Key (lower(name))=(a, b) already exists.",
	}, "")

	assert.Contains(t, FormatError(err), `  Fields: {"lower(name)":"a, b"}`)
}

func TestFromPgError_NotNull(t *testing.T) {
	err := FromPgError(&pgconn.PgError{
		Code:       "23502",
		Message:    `null value in column "email" of relation "users" violates not-null constraint`,
		TableName:  "users",
		ColumnName: "email",
	}, "INSERT INTO users (name) VALUES ('x')")

	assert.Contains(t, FormatError(err), `  Fields: {"email":null}`)
}

func TestFromPgError_Passthrough(t *testing.T) {
	if FromPgError(nil, "SELECT 1") != nil {
		t.Errorf("nil error should stay nil")
	}

	plain := errors.New("connection refused")
	if got := FromPgError(plain, "SELECT 1"); got != plain {
		t.Errorf("non-postgres error should be returned unchanged, got %v", got)
	}
}
