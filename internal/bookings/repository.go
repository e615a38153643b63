package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/medibot/internal/booking"
)

// Status every persisted booking carries. Nothing in the product ever
// mutates a booking after creation.
const StatusConfirmed = "CONFIRMED"

const bookingType = "Doctor Appointment"

// Record is one persisted booking joined with its customer.
type Record struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats summarizes the booking table for the admin surface.
type Stats struct {
	Total            int64 `json:"total"`
	Upcoming         int64 `json:"upcoming"`
	DistinctPatients int64 `json:"distinct_patients"`
	DistinctContacts int64 `json:"distinct_contacts"`
}

// db is the subset of pgxpool.Pool the repository needs; pgxmock's pool
// satisfies it in tests.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists confirmed bookings.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool db) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: pool}
}

// Save stores one customer and one booking row in a single transaction and
// returns the persisted record with its server-assigned id. The pair is
// atomic: a failure on either insert leaves nothing behind.
func (r *Repository) Save(ctx context.Context, d booking.Draft) (*Record, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("bookings: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var customerID int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO customers (name, email, phone) VALUES ($1, $2, $3) RETURNING customer_id`,
		d.Name, d.Email, d.Phone,
	).Scan(&customerID); err != nil {
		return nil, fmt.Errorf("bookings: insert customer: %w", err)
	}

	createdAt := time.Now().UTC()
	var bookingID int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO bookings (customer_id, booking_type, date, time, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		customerID, bookingType, d.Date, d.Time, StatusConfirmed, createdAt,
	).Scan(&bookingID); err != nil {
		return nil, fmt.Errorf("bookings: insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("bookings: commit: %w", err)
	}

	return &Record{
		ID:        bookingID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Date:      d.Date,
		Time:      d.Time,
		Status:    StatusConfirmed,
		CreatedAt: createdAt,
	}, nil
}

// ListAll returns every booking joined with its customer, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.id, c.name, c.email, c.phone, b.date, b.time, b.status, b.created_at
		FROM bookings b
		JOIN customers c ON b.customer_id = c.customer_id
		ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("bookings: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.Date, &rec.Time, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("bookings: scan row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate rows: %w", err)
	}
	return records, nil
}

// QuickStats returns the admin dashboard counters. Dates are stored as
// YYYY-MM-DD text, so lexicographic comparison against the current date is
// a calendar comparison.
func (r *Repository) QuickStats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE b.date >= to_char(CURRENT_DATE, 'YYYY-MM-DD')),
		       COUNT(DISTINCT c.name),
		       COUNT(DISTINCT c.email)
		FROM bookings b
		JOIN customers c ON b.customer_id = c.customer_id`).
		Scan(&s.Total, &s.Upcoming, &s.DistinctPatients, &s.DistinctContacts)
	if err != nil {
		return nil, fmt.Errorf("bookings: stats: %w", err)
	}
	return &s, nil
}
