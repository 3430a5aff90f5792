package errfmt

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error names by SQLSTATE.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
var pgErrorNames = map[string]string{
	"23505": "SequelizeUniqueConstraintError",     // unique_violation
	"23503": "SequelizeForeignKeyConstraintError", // foreign_key_violation
	"23P01": "SequelizeExclusionConstraintError",  // exclusion_violation
	"23502": "SequelizeValidationError",           // not_null_violation
	"23514": "SequelizeValidationError",           // check_violation
}

const defaultPgErrorName = "SequelizeDatabaseError"

// FromPgError converts a PostgreSQL error into a DatabaseError that
// records the failed statement. Errors that do not wrap a
// *pgconn.PgError are returned unchanged.
func FromPgError(err error, sql string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	name, ok := pgErrorNames[pgErr.Code]
	if !ok {
		name = defaultPgErrorName
	}

	opts := []Option{
		WithConstraint(pgErr.ConstraintName),
		WithTable(pgErr.TableName),
		WithDetail(pgErr.Detail),
		WithOriginal(pgErr),
	}
	if fields := fieldsFromPgError(pgErr); fields != nil {
		opts = append(opts, WithFields(fields))
	}
	if sql != "" {
		opts = append(opts, WithSQL(sql))
	}

	return NewDatabaseError(name, pgErr.Message, opts...)
}

// keyDetail matches "Key (email)=(test@mail.com) already exists."
var keyDetail = regexp.MustCompile(`Key \((.+?)\)=\((.*)\)`)

// fieldsFromPgError extracts the offending column values. Unique and
// foreign key violations name them in Detail; NOT NULL violations only
// name the column.
func fieldsFromPgError(pgErr *pgconn.PgError) *Fields {
	if m := keyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
		columns := strings.Split(m[1], ", ")
		values := strings.Split(m[2], ", ")
		if len(columns) != len(values) {
			return NewFields(m[1], m[2])
		}
		fields := NewFields()
		for i, column := range columns {
			fields.Set(column, values[i])
		}
		return fields
	}

	if pgErr.Code == "23502" && pgErr.ColumnName != "" {
		return NewFields(pgErr.ColumnName, nil)
	}

	return nil
}
