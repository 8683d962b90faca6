package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
	apperrors "github.com/nagoyameshi/backend/pkg/errors"
)

// ReservationLockKey is the advisory lock taken by every reservation insert.
// The conflict rule spans all restaurants, so one key serializes them all.
const ReservationLockKey int64 = 0x4e4d5256 // "NMRV"

var reservationColumns = []interface{}{
	goqu.I("rv.id"), goqu.I("rv.restaurant_id"), goqu.I("rv.user_id"),
	goqu.I("rv.reservation_datetime"), goqu.I("rv.number_of_persons"),
	goqu.I("rv.comment"), goqu.I("rv.created_at"),
}

// ReservationAdapter implements the ReservationRepository interface
type ReservationAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	dbx     *sqlx.DB
	metrics *observability.Metrics
}

// NewReservationAdapter creates a new reservation adapter
func NewReservationAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.ReservationRepository {
	return &ReservationAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		dbx:     sqlx.NewDb(client.DB(), "postgres"),
		metrics: metrics,
	}
}

func (a *ReservationAdapter) windowQuery(at time.Time) (string, error) {
	from := at.Add(-entities.ReservationConflictWindow)
	to := at.Add(entities.ReservationConflictWindow)

	query, _, err := a.db.From(goqu.T("reservations").As("rv")).
		Select(reservationColumns...).
		Where(goqu.I("rv.reservation_datetime").Between(goqu.Range(from.UTC(), to.UTC()))).
		Order(goqu.I("rv.reservation_datetime").Asc()).
		ToSQL()
	return query, err
}

// CreateExclusive runs check and the insert inside one transaction that holds
// the reservation advisory lock, so concurrent overlapping inserts cannot both pass.
func (a *ReservationAdapter) CreateExclusive(ctx context.Context, reservation *entities.Reservation, check repositories.ReservationCheck) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, "reservation.create_exclusive", time.Since(start))
	}()

	tx, err := a.dbx.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lockQuery, _, err := a.db.Select(goqu.Func("pg_advisory_xact_lock", ReservationLockKey)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build lock query", err)
	}
	if _, err = tx.ExecContext(ctx, lockQuery); err != nil {
		return apperrors.NewInternalError("failed to acquire reservation lock", err)
	}

	windowQuery, err := a.windowQuery(reservation.ReservationDatetime)
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}
	existing := []*entities.Reservation{}
	if err = tx.SelectContext(ctx, &existing, windowQuery); err != nil {
		return apperrors.NewInternalError("failed to load nearby reservations", err)
	}

	if err = check(existing); err != nil {
		return err
	}

	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}
	insertQuery, _, err := a.db.Insert("reservations").Rows(goqu.Record{
		"id":                   reservation.ID,
		"restaurant_id":        reservation.RestaurantID,
		"user_id":              reservation.UserID,
		"reservation_datetime": reservation.ReservationDatetime.UTC(),
		"number_of_persons":    reservation.NumberOfPersons,
		"comment":              reservation.Comment,
		"created_at":           reservation.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err = tx.ExecContext(ctx, insertQuery); err != nil {
		return apperrors.NewInternalError("failed to create reservation", err)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit reservation", err)
	}
	return nil
}

// GetByID retrieves a reservation by ID
func (a *ReservationAdapter) GetByID(ctx context.Context, id string) (*entities.Reservation, error) {
	query, _, err := a.db.From(goqu.T("reservations").As("rv")).
		Select(reservationColumns...).
		Where(goqu.I("rv.id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	reservation := &entities.Reservation{}
	if err := a.dbx.GetContext(ctx, reservation, query); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("reservation with id %s not found", id), "failed to get reservation")
	}
	return reservation, nil
}

// Delete removes a reservation
func (a *ReservationAdapter) Delete(ctx context.Context, id string) error {
	query, _, err := a.db.Delete("reservations").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query)
	if err != nil {
		return apperrors.NewInternalError("failed to delete reservation", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("reservation with id %s not found", id))
	}
	return nil
}

// ListByUser returns a user's reservations with restaurant names, newest first
func (a *ReservationAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Reservation, error) {
	columns := append([]interface{}{}, reservationColumns...)
	columns = append(columns, goqu.COALESCE(goqu.I("rs.name"), "").As("restaurant_name"))

	query, _, err := a.db.From(goqu.T("reservations").As("rv")).
		LeftJoin(goqu.T("restaurants").As("rs"), goqu.On(goqu.I("rs.id").Eq(goqu.I("rv.restaurant_id")))).
		Select(columns...).
		Where(goqu.I("rv.user_id").Eq(userID)).
		Order(goqu.I("rv.reservation_datetime").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	reservations := []*entities.Reservation{}
	if err := a.dbx.SelectContext(ctx, &reservations, query); err != nil {
		return nil, apperrors.NewInternalError("failed to list reservations", err)
	}
	return reservations, nil
}

// ListBetween returns reservations with from <= datetime <= to
func (a *ReservationAdapter) ListBetween(ctx context.Context, from, to time.Time) ([]*entities.Reservation, error) {
	query, _, err := a.db.From(goqu.T("reservations").As("rv")).
		Select(reservationColumns...).
		Where(goqu.I("rv.reservation_datetime").Between(goqu.Range(from.UTC(), to.UTC()))).
		Order(goqu.I("rv.reservation_datetime").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	reservations := []*entities.Reservation{}
	if err := a.dbx.SelectContext(ctx, &reservations, query); err != nil {
		return nil, apperrors.NewInternalError("failed to list reservations", err)
	}
	return reservations, nil
}
