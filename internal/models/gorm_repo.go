package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate creates or updates the tables the Postgres driver needs.
func (g *GormRepo) AutoMigrate() error {
	if err := g.db.AutoMigrate(&Service{}, &Booking{}, &AdminPushSubscription{}, &Profile{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func gormErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (g *GormRepo) ListServices(ctx context.Context, activeOnly bool) ([]*Service, error) {
	q := g.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	services := []*Service{}
	if err := q.Find(&services).Error; err != nil {
		return nil, gormErr("failed to list services", err)
	}
	return services, nil
}

func (g *GormRepo) GetServiceByID(ctx context.Context, id int64) (*Service, error) {
	var service Service
	if err := g.db.WithContext(ctx).First(&service, id).Error; err != nil {
		return nil, gormErr("failed to get service", err)
	}
	return &service, nil
}

func (g *GormRepo) CreateService(ctx context.Context, service *Service) (*Service, error) {
	created := *service
	created.ID = 0
	if err := g.db.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, gormErr("failed to create service", err)
	}
	return &created, nil
}

func (g *GormRepo) UpdateService(ctx context.Context, id int64, fields map[string]interface{}) (*Service, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	res := g.db.WithContext(ctx).Model(&Service{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, gormErr("failed to update service", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return g.GetServiceByID(ctx, id)
}

func (g *GormRepo) DeleteService(ctx context.Context, id int64) error {
	res := g.db.WithContext(ctx).Delete(&Service{}, id)
	if res.Error != nil {
		return gormErr("failed to delete service", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *GormRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	created := *booking
	created.ID = 0
	created.Service = nil
	if err := g.db.WithContext(ctx).Omit(clause.Associations).Create(&created).Error; err != nil {
		return nil, gormErr("failed to create booking", err)
	}
	return &created, nil
}

func (g *GormRepo) GetBookingByID(ctx context.Context, id int64) (*Booking, error) {
	var booking Booking
	if err := g.db.WithContext(ctx).Preload("Service").First(&booking, id).Error; err != nil {
		return nil, gormErr("failed to get booking", err)
	}
	return &booking, nil
}

func (g *GormRepo) ListBookings(ctx context.Context, filter BookingFilter) ([]*Booking, error) {
	q := g.db.WithContext(ctx).Preload("Service").Order("created_at DESC")
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.PreferredDate != "" {
		q = q.Where("preferred_date = ?", filter.PreferredDate)
	}
	bookings := []*Booking{}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, gormErr("failed to list bookings", err)
	}
	return bookings, nil
}

func (g *GormRepo) UpdateBooking(ctx context.Context, id int64, fields map[string]interface{}) (*Booking, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	res := g.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, gormErr("failed to update booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return g.GetBookingByID(ctx, id)
}

func (g *GormRepo) UpsertSubscription(ctx context.Context, sub *AdminPushSubscription) (*AdminPushSubscription, error) {
	saved := *sub
	saved.UpdatedAt = time.Now().UTC()
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subscription_token", "updated_at"}),
	}).Create(&saved).Error
	if err != nil {
		return nil, gormErr("failed to save push subscription", err)
	}
	return &saved, nil
}

func (g *GormRepo) DeleteSubscription(ctx context.Context, userID uuid.UUID) error {
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&AdminPushSubscription{}).Error; err != nil {
		return gormErr("failed to delete push subscription", err)
	}
	return nil
}

func (g *GormRepo) ListSubscriptions(ctx context.Context) ([]*AdminPushSubscription, error) {
	subs := []*AdminPushSubscription{}
	if err := g.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, gormErr("failed to list push subscriptions", err)
	}
	return subs, nil
}

func (g *GormRepo) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var profile Profile
	if err := g.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, gormErr("failed to get profile", err)
	}
	return &profile, nil
}
