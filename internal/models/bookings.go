package models

import (
	"context"
	"strconv"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions lists the statuses reachable from each status.
// Completed and cancelled have no way out.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) IsTerminal() bool {
	return s.Valid() && len(bookingTransitions[s]) == 0
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID             int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerName   string        `json:"customer_name" gorm:"not null"`
	WhatsAppNumber string        `json:"whatsapp_number" gorm:"not null"`
	CarType        string        `json:"car_type" gorm:"not null"`
	Area           string        `json:"area" gorm:"not null"`
	FullAddress    string        `json:"full_address" gorm:"not null"`
	PreferredDate  string        `json:"preferred_date" gorm:"type:varchar(10);not null;index"`
	PreferredTime  string        `json:"preferred_time" gorm:"not null"`
	Status         BookingStatus `json:"status" gorm:"type:varchar(16);not null;default:pending;index"`
	ServiceID      *int64        `json:"service_id"`
	Latitude       *float64      `json:"latitude"`
	Longitude      *float64      `json:"longitude"`
	ConfirmedTime  *string       `json:"confirmed_time"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	// Service is nil when the booking's service was deleted.
	Service *Service `json:"service" gorm:"foreignKey:ServiceID;constraint:OnDelete:SET NULL"`
}

func (Booking) TableName() string { return BookingsTable }

func (b *Booking) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}

func (b *Booking) MapsURL() string {
	if !b.HasCoordinates() {
		return ""
	}
	return "https://www.google.com/maps?q=" +
		strconv.FormatFloat(*b.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(*b.Longitude, 'f', -1, 64)
}

// EffectiveTime is the confirmed time when set, otherwise the requested slot.
func (b *Booking) EffectiveTime() string {
	if b.ConfirmedTime != nil && *b.ConfirmedTime != "" {
		return *b.ConfirmedTime
	}
	return b.PreferredTime
}

// row is the column set written on insert; the joined service is never sent.
func (b *Booking) row() map[string]interface{} {
	return map[string]interface{}{
		"customer_name":   b.CustomerName,
		"whatsapp_number": b.WhatsAppNumber,
		"car_type":        b.CarType,
		"area":            b.Area,
		"full_address":    b.FullAddress,
		"preferred_date":  b.PreferredDate,
		"preferred_time":  b.PreferredTime,
		"status":          b.Status,
		"service_id":      b.ServiceID,
		"latitude":        b.Latitude,
		"longitude":       b.Longitude,
	}
}

// BookingInput is what the public booking form submits. Status is accepted so that
// old clients keep working but it is never persisted.
type BookingInput struct {
	CustomerName   string   `json:"customer_name" validate:"required,max=120"`
	WhatsAppNumber string   `json:"whatsapp_number" validate:"required,kwphone"`
	CarType        string   `json:"car_type" validate:"required,cartype"`
	Area           string   `json:"area" validate:"required,area"`
	FullAddress    string   `json:"full_address" validate:"required,max=500"`
	PreferredDate  string   `json:"preferred_date" validate:"required,datetime=2006-01-02"`
	PreferredTime  string   `json:"preferred_time" validate:"required,timeslot"`
	ServiceID      *int64   `json:"service_id" validate:"required"`
	Latitude       *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,latitude"`
	Longitude      *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,longitude"`
	Status         string   `json:"status,omitempty"`
}

type BookingFilter struct {
	Statuses      []BookingStatus
	PreferredDate string
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	// GetBookingByID returns the booking joined with its service.
	GetBookingByID(ctx context.Context, id int64) (*Booking, error)
	// ListBookings returns bookings joined with their service, newest first.
	ListBookings(ctx context.Context, filter BookingFilter) ([]*Booking, error)
	UpdateBooking(ctx context.Context, id int64, fields map[string]interface{}) (*Booking, error)
}
