package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagoyameshi/backend/internal/adapters/database"
	"github.com/nagoyameshi/backend/internal/domain/entities"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

func TestUserAdapter_UpdateCustomerID(t *testing.T) {
	t.Run("clears the customer reference", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewUserAdapter(client)

		mock.ExpectExec(`UPDATE "users" SET "customer_id"=''.* WHERE \("id" = 'user-1'\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.UpdateCustomerID(context.Background(), "user-1", "")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found for unknown user", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewUserAdapter(client)

		mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.UpdateCustomerID(context.Background(), "ghost", "cus_1")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestUserAdapter_Create(t *testing.T) {
	t.Run("maps unique violations to conflict", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewUserAdapter(client)

		mock.ExpectExec(`INSERT INTO "users"`).WillReturnError(&pq.Error{Code: "23505"})

		err := adapter.Create(context.Background(), &entities.User{ID: "u", Email: "taro@example.com", Username: "taro"})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})
}

func TestUserAdapter_GetByEmail(t *testing.T) {
	columns := []string{
		"id", "email", "username", "password_hash", "first_name", "last_name",
		"first_name_kana", "last_name_kana", "phone_number", "age", "customer_id",
		"email_verified", "is_staff", "is_active", "date_joined", "updated_at",
	}

	t.Run("scans the user", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewUserAdapter(client)

		joined := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .* FROM "users" WHERE \("email" = 'taro@example.com'\) LIMIT 1`).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				"user-1", "taro@example.com", "taro", "hash", "Taro", "Nagoya",
				"タロウ", "ナゴヤ", "0521234567", nil, "cus_123",
				true, false, true, joined, joined,
			))

		user, err := adapter.GetByEmail(context.Background(), "taro@example.com")

		require.NoError(t, err)
		assert.Equal(t, "cus_123", user.CustomerID)
		assert.Nil(t, user.Age)
		assert.True(t, user.HasCustomer())
	})

	t.Run("not found", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := database.NewUserAdapter(client)

		mock.ExpectQuery(`FROM "users"`).WillReturnError(sql.ErrNoRows)

		_, err := adapter.GetByEmail(context.Background(), "nobody@example.com")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
