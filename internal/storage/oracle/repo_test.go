package oracle

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanetl/internal/storage"
	"loanetl/internal/typemap"
)

func TestInsertSQL(t *testing.T) {
	got := insertSQL("stg_loan_data", []string{"id", "int_rate"})
	assert.Equal(t, `INSERT INTO "STG_LOAN_DATA" ("ID", "INT_RATE") VALUES (:1, :2)`, got)
}

func TestCopyFromPreparedPerRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "T" ("ID") VALUES (:1)`))
	prep.ExpectExec().WithArgs("1").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := &Repository{db: db}
	n, err := r.CopyFrom(context.Background(), "t", []string{"id"}, [][]any{{"1"}, {"2"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO")
	prep.ExpectExec().WillReturnError(errors.New("ORA-01438: value larger than specified precision"))
	mock.ExpectRollback()

	r := &Repository{db: db}
	_, err = r.CopyFrom(context.Background(), "t", []string{"id"}, [][]any{{"1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORA-01438")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRepositoryRejectsBadDSN(t *testing.T) {
	for _, dsn := range []string{"", "system/root@XE", "postgres://h/db"} {
		_, _, err := NewRepository(context.Background(), Config{DSN: dsn})
		assert.Error(t, err, dsn)
	}
}

func TestDialect(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, ":3", d.Placeholder(3))

	v, err := d.Bind(12000.5, typemap.Decimal(15, 2))
	require.NoError(t, err)
	assert.Equal(t, "12000.50", v)

	_, err = d.Bind("ABCDEF", typemap.Varchar(5))
	var be *storage.BindError
	assert.ErrorAs(t, err, &be)
}

func TestRegistrationUsesHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "oracle", DSN: "oracle://u:p@h:1521/XE"})
	require.NoError(t, err)
	assert.Equal(t, "oracle", repo.Dialect().Name())
	repo.Close()
	assert.True(t, closed)
}
