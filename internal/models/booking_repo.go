package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/supabase-community/postgrest-go"
)

// bookingColumns embeds the service through the service_id foreign key. A deleted service
// comes back as "service": null.
const bookingColumns = "*, service:services(*)"

func (su *SupabaseRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	raw, status, err := su.supabaseClient.From(BookingsTable).
		Insert(booking.row(), false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, postgrestError("failed to create booking", status, raw, err)
	}
	return firstBooking(raw)
}

func (su *SupabaseRepo) GetBookingByID(ctx context.Context, id int64) (*Booking, error) {
	raw, status, err := su.supabaseClient.From(BookingsTable).
		Select(bookingColumns, "", false).
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return nil, postgrestError("failed to get booking", status, raw, err)
	}
	return firstBooking(raw)
}

func (su *SupabaseRepo) ListBookings(ctx context.Context, filter BookingFilter) ([]*Booking, error) {
	q := su.supabaseClient.From(BookingsTable).Select(bookingColumns, "", false)
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		q = q.In("status", statuses)
	}
	if filter.PreferredDate != "" {
		q = q.Eq("preferred_date", filter.PreferredDate)
	}

	raw, status, err := q.Order("created_at", &postgrest.OrderOpts{Ascending: false}).Execute()
	if err != nil {
		return nil, postgrestError("failed to list bookings", status, raw, err)
	}

	bookings := []*Booking{}
	if err := json.Unmarshal(raw, &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookings: %w", err)
	}
	return bookings, nil
}

func (su *SupabaseRepo) UpdateBooking(ctx context.Context, id int64, fields map[string]interface{}) (*Booking, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	raw, status, err := su.supabaseClient.From(BookingsTable).
		Update(fields, "representation", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return nil, postgrestError("failed to update booking", status, raw, err)
	}
	return firstBooking(raw)
}

func firstBooking(raw []byte) (*Booking, error) {
	var rows []*Booking
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}
	return rows[0], nil
}
