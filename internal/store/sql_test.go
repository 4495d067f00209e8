package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/pkg/zclload"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db, zclload.DriverSQLite), mock
}

func TestSQLStore_ExecErrorWrapsDriverError(t *testing.T) {
	s, mock := newMockStore(t)
	driverErr := errors.New("database is locked")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM CLUSTER").WithArgs(int64(7)).WillReturnError(driverErr)
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.Exec(ctx, "DELETE FROM CLUSTER WHERE PACKAGE_REF = ?", int64(7))
	require.Error(t, err)
	assert.ErrorIs(t, err, zclload.ErrStoreFailed)
	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "DELETE FROM CLUSTER")

	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, tx.Rollback(ctx), "second rollback is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_QueryAllLowercasesColumns(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT PACKAGE_ID, PATH FROM PACKAGE").
		WillReturnRows(sqlmock.NewRows([]string{"PACKAGE_ID", "PATH"}).
			AddRow(int64(1), "/meta/zcl.json").
			AddRow(int64(2), "/meta/general.xml"))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	rows, err := tx.QueryAll(ctx, "SELECT PACKAGE_ID, PATH FROM PACKAGE")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[1].Int64("package_id"))
	assert.Equal(t, "/meta/general.xml", rows[1].String("PATH"))

	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_BeginFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("disk I/O error"))

	_, err := s.Begin(context.Background())
	assert.ErrorIs(t, err, zclload.ErrStoreFailed)
}

func TestSQLStore_InsertReturningID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO PACKAGE").
		WithArgs("/meta/zcl.json").
		WillReturnRows(sqlmock.NewRows([]string{"PACKAGE_ID"}).AddRow(int64(42)))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	id, err := tx.InsertReturningID(ctx, "INSERT INTO PACKAGE (PATH) VALUES (?) RETURNING PACKAGE_ID", "/meta/zcl.json")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, tx.Commit(ctx))
}
