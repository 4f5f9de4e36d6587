package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicketMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTicketRepositoryRegister(t *testing.T) {
	db, mock, cleanup := newTicketMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET available_tickets = available_tickets - 1 WHERE id = $1 AND available_tickets > 0")).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(sqlmock.AnyArg(), "ev-1", "user-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ticket, err := repo.Register(context.Background(), "ev-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-1", ticket.EventID)
	assert.Equal(t, "user-1", ticket.UserID)
	assert.NotEmpty(t, ticket.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryRegisterSoldOut(t *testing.T) {
	db, mock, cleanup := newTicketMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE events SET available_tickets").
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), "ev-1", "user-1")
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryCancel(t *testing.T) {
	db, mock, cleanup := newTicketMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tickets").
		WithArgs("ev-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE events SET available_tickets").
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Cancel(context.Background(), "ev-1", "user-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryCancelWithoutTicket(t *testing.T) {
	db, mock, cleanup := newTicketMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tickets").
		WithArgs("ev-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Cancel(context.Background(), "ev-1", "user-1")
	assert.ErrorIs(t, err, ErrNoRowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryFindByEventAndUserMissing(t *testing.T) {
	db, mock, cleanup := newTicketMock(t)
	defer cleanup()
	repo := NewTicketRepository(db)

	mock.ExpectQuery("SELECT id, event_id, user_id, purchase_date, created_at FROM tickets").
		WithArgs("ev-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "purchase_date", "created_at"}))

	ticket, err := repo.FindByEventAndUser(context.Background(), "ev-1", "user-1")
	require.NoError(t, err)
	assert.Nil(t, ticket)
	assert.NoError(t, mock.ExpectationsWereMet())
}
