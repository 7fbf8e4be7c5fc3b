package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentdesk/internal/models"
)

const bookingColumns = `id, channel, user_id, guest_name, guest_email, guest_phone,
	vehicle_id, vehicle_name, start_date, end_date, total_price, status,
	confirmation_code, created_at, updated_at, version`

// conflictClause implements the half-open overlap test: an existing
// confirmed booking [s, e) conflicts with a proposed [start, end) iff
// s < end AND e > start. Shared boundary dates do not conflict.
const conflictClause = `vehicle_id = ? AND status = ? AND start_date < ? AND end_date > ?`

// FindConflicting returns a confirmed booking for the vehicle whose range
// overlaps [start, end), or nil when the range is free.
func (db *DB) FindConflicting(ctx context.Context, vehicleID int64, start, end time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + conflictClause + ` LIMIT 1`
	row := db.QueryRowContext(ctx, query, vehicleID, models.StatusConfirmed,
		end.Format(models.DateLayout), start.Format(models.DateLayout))

	booking, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting booking: %w", err)
	}
	return booking, nil
}

// CheckAvailability reports whether [start, end) is free for the vehicle.
func (db *DB) CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time) (bool, error) {
	conflict, err := db.FindConflicting(ctx, vehicleID, start, end)
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}

// CreateBookingWithLock performs the conflict check and the insert inside a
// single immediate write transaction. Concurrent admissions queue on the
// busy timeout rather than aborting, and of two overlapping requests at most
// one can commit; the loser sees the winner's row and gets
// ErrRangeUnavailable.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var conflicts int
	queryCount := `SELECT COUNT(*) FROM bookings WHERE ` + conflictClause
	err = tx.QueryRowContext(ctx, queryCount, booking.VehicleID, models.StatusConfirmed,
		booking.EndDate.Format(models.DateLayout), booking.StartDate.Format(models.DateLayout)).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if conflicts > 0 {
		return ErrRangeUnavailable
	}

	queryInsert := `INSERT INTO bookings (
				channel, user_id, guest_name, guest_email, guest_phone,
				vehicle_id, vehicle_name, start_date, end_date, total_price,
				status, confirmation_code, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	var guestName, guestEmail, guestPhone sql.NullString
	if booking.Guest != nil {
		guestName = sql.NullString{String: booking.Guest.Name, Valid: true}
		guestEmail = sql.NullString{String: booking.Guest.Email, Valid: true}
		guestPhone = sql.NullString{String: booking.Guest.Phone, Valid: true}
	}
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.Channel,
		nullableID(booking.UserID),
		guestName,
		guestEmail,
		guestPhone,
		booking.VehicleID,
		booking.VehicleName,
		booking.StartDate.Format(models.DateLayout),
		booking.EndDate.Format(models.DateLayout),
		booking.TotalPrice,
		booking.Status,
		booking.ConfirmationCode,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// CancelBookingForUser flips a user-channel booking to cancelled in one
// conditional update scoped to the owner. Zero affected rows means the
// booking is absent or owned by someone else; the caller cannot distinguish
// the two. Re-cancelling an already-cancelled booking succeeds.
func (db *DB) CancelBookingForUser(ctx context.Context, id, userID int64) (*models.Booking, error) {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND user_id = ? AND channel = ?`
	result, err := db.ExecContext(ctx, query, models.StatusCancelled, time.Now(), id, userID, models.ChannelUser)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, ErrBookingNotFound
	}
	return db.GetBooking(ctx, id)
}

// GetUserBookings returns the user's bookings, newest first.
func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE user_id = ? AND channel = ? ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query, userID, models.ChannelUser)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetBookingsByDateRange returns bookings whose range intersects
// [start, end], any status, ordered by start date.
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE start_date <= ? AND end_date >= ? ORDER BY start_date ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, end.Format(models.DateLayout), start.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var userID sql.NullInt64
	var guestName, guestEmail, guestPhone sql.NullString
	var startStr, endStr string

	err := row.Scan(
		&b.ID, &b.Channel, &userID, &guestName, &guestEmail, &guestPhone,
		&b.VehicleID, &b.VehicleName, &startStr, &endStr, &b.TotalPrice,
		&b.Status, &b.ConfirmationCode, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}

	b.UserID = userID.Int64
	if guestName.Valid || guestEmail.Valid || guestPhone.Valid {
		b.Guest = &models.GuestInfo{
			Name:  guestName.String,
			Email: guestEmail.String,
			Phone: guestPhone.String,
		}
	}

	if b.StartDate, err = time.Parse(models.DateLayout, startStr); err != nil {
		return nil, fmt.Errorf("failed to parse start date %s: %w", startStr, err)
	}
	if b.EndDate, err = time.Parse(models.DateLayout, endStr); err != nil {
		return nil, fmt.Errorf("failed to parse end date %s: %w", endStr, err)
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func nullableID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
