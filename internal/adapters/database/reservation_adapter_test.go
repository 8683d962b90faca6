package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagoyameshi/backend/internal/adapters/database"
	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

var reservationRowColumns = []string{
	"id", "restaurant_id", "user_id", "reservation_datetime", "number_of_persons", "comment", "created_at",
}

func setupMockClient(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewClientFromDB(db), mock
}

func TestReservationAdapter_CreateExclusive(t *testing.T) {
	at := time.Date(2024, 1, 10, 19, 30, 0, 0, time.UTC)
	candidate := func() *entities.Reservation {
		return &entities.Reservation{
			ID:                  "rsv-new",
			RestaurantID:        "rest-1",
			UserID:              "user-1",
			ReservationDatetime: at,
			NumberOfPersons:     2,
		}
	}

	t.Run("locks, checks window and inserts", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewReservationAdapter(client, nil)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock\(1313690198\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FROM "reservations" AS "rv" WHERE .*"rv"."reservation_datetime" BETWEEN '2024-01-10T17:30:00Z' AND '2024-01-10T21:30:00Z'`).
			WillReturnRows(sqlmock.NewRows(reservationRowColumns))
		mock.ExpectExec(`INSERT INTO "reservations"`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		var seen []*entities.Reservation
		err := adapter.CreateExclusive(context.Background(), candidate(), func(existing []*entities.Reservation) error {
			seen = existing
			return nil
		})

		require.NoError(t, err)
		assert.Empty(t, seen)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the check rejects", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewReservationAdapter(client, nil)

		existingAt := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FROM "reservations"`).
			WillReturnRows(sqlmock.NewRows(reservationRowColumns).
				AddRow("rsv-old", "rest-2", "user-2", existingAt, 4, "", existingAt.Add(-24*time.Hour)))
		mock.ExpectRollback()

		rejection := apperrors.NewValidationError("another reservation exists within 2 hours")
		var seen []*entities.Reservation
		err := adapter.CreateExclusive(context.Background(), candidate(), func(existing []*entities.Reservation) error {
			seen = existing
			return rejection
		})

		assert.Same(t, rejection, err)
		require.Len(t, seen, 1)
		assert.Equal(t, "rsv-old", seen[0].ID)
		assert.True(t, existingAt.Equal(seen[0].ReservationDatetime))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when the lock cannot be taken", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewReservationAdapter(client, nil)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnError(context.DeadlineExceeded)
		mock.ExpectRollback()

		called := false
		err := adapter.CreateExclusive(context.Background(), candidate(), func([]*entities.Reservation) error {
			called = true
			return nil
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationAdapter_Delete(t *testing.T) {
	t.Run("not found when nothing was deleted", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewReservationAdapter(client, nil)

		mock.ExpectExec(`DELETE FROM "reservations"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Delete(context.Background(), "missing")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
