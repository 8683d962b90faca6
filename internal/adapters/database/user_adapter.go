package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

var userColumns = []interface{}{
	"id", "email", "username", "password_hash", "first_name", "last_name",
	"first_name_kana", "last_name_kana", "phone_number", "age", "customer_id",
	"email_verified", "is_staff", "is_active", "date_joined", "updated_at",
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	dbx    *sqlx.DB
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		dbx:    sqlx.NewDb(client.DB(), "postgres"),
	}
}

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	now := time.Now().UTC()
	if user.DateJoined.IsZero() {
		user.DateJoined = now
	}
	user.UpdatedAt = now

	query, _, err := a.db.Insert("users").Rows(goqu.Record{
		"id":              user.ID,
		"email":           user.Email,
		"username":        user.Username,
		"password_hash":   user.PasswordHash,
		"first_name":      user.FirstName,
		"last_name":       user.LastName,
		"first_name_kana": user.FirstNameKana,
		"last_name_kana":  user.LastNameKana,
		"phone_number":    user.PhoneNumber,
		"age":             user.Age,
		"customer_id":     user.CustomerID,
		"email_verified":  user.EmailVerified,
		"is_staff":        user.IsStaff,
		"is_active":       user.IsActive,
		"date_joined":     user.DateJoined,
		"updated_at":      user.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("email or username is already registered")
		}
		return apperrors.NewInternalError("failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, fmt.Sprintf("user with id %s not found", id))
}

// GetByEmail retrieves a user by login email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"email": email}, "user not found")
}

func (a *UserAdapter) getOne(ctx context.Context, where goqu.Ex, notFound string) (*entities.User, error) {
	query, _, err := a.db.From("users").Select(userColumns...).Where(where).Limit(1).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user := &entities.User{}
	if err := a.dbx.GetContext(ctx, user, query); err != nil {
		return nil, notFoundOr(err, notFound, "failed to get user")
	}
	return user, nil
}

// UpdateProfile persists the user-editable profile fields
func (a *UserAdapter) UpdateProfile(ctx context.Context, id string, update entities.ProfileUpdate) error {
	query, _, err := a.db.Update("users").Set(goqu.Record{
		"username":        update.Username,
		"first_name":      update.FirstName,
		"last_name":       update.LastName,
		"first_name_kana": update.FirstNameKana,
		"last_name_kana":  update.LastNameKana,
		"phone_number":    update.PhoneNumber,
		"age":             update.Age,
		"updated_at":      time.Now().UTC(),
	}).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execOne(ctx, query, id)
}

// UpdateCustomerID stores or clears the billing customer reference
func (a *UserAdapter) UpdateCustomerID(ctx context.Context, id, customerID string) error {
	query, _, err := a.db.Update("users").Set(goqu.Record{
		"customer_id": customerID,
		"updated_at":  time.Now().UTC(),
	}).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execOne(ctx, query, id)
}

func (a *UserAdapter) execOne(ctx context.Context, query, id string) error {
	result, err := a.client.DB().ExecContext(ctx, query)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("username is already taken")
		}
		return apperrors.NewInternalError("failed to update user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	return nil
}
