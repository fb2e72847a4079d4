package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/supabase-community/postgrest-go"
)

func (su *SupabaseRepo) ListServices(ctx context.Context, activeOnly bool) ([]*Service, error) {
	q := su.supabaseClient.From(ServicesTable).Select("*", "", false)
	if activeOnly {
		q = q.Eq("is_active", "true")
	}
	raw, status, err := q.Order("id", &postgrest.OrderOpts{Ascending: true}).Execute()
	if err != nil {
		return nil, postgrestError("failed to list services", status, raw, err)
	}

	services := []*Service{}
	if err := json.Unmarshal(raw, &services); err != nil {
		return nil, fmt.Errorf("failed to unmarshal services: %w", err)
	}
	return services, nil
}

func (su *SupabaseRepo) GetServiceByID(ctx context.Context, id int64) (*Service, error) {
	raw, status, err := su.supabaseClient.From(ServicesTable).
		Select("*", "", false).
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return nil, postgrestError("failed to get service", status, raw, err)
	}
	return firstService(raw)
}

func (su *SupabaseRepo) CreateService(ctx context.Context, service *Service) (*Service, error) {
	row := map[string]interface{}{
		"name_en":        service.NameEn,
		"name_ar":        service.NameAr,
		"description_en": service.DescriptionEn,
		"description_ar": service.DescriptionAr,
		"price":          service.Price.StringFixed(3),
		"is_active":      service.IsActive,
	}
	if service.ImageURL != "" {
		row["image_url"] = service.ImageURL
	}

	raw, status, err := su.supabaseClient.From(ServicesTable).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, postgrestError("failed to create service", status, raw, err)
	}
	return firstService(raw)
}

func (su *SupabaseRepo) UpdateService(ctx context.Context, id int64, fields map[string]interface{}) (*Service, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	raw, status, err := su.supabaseClient.From(ServicesTable).
		Update(fields, "representation", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return nil, postgrestError("failed to update service", status, raw, err)
	}
	return firstService(raw)
}

// DeleteService hard-deletes the row. Bookings keep their row with service_id set to null.
func (su *SupabaseRepo) DeleteService(ctx context.Context, id int64) error {
	raw, status, err := su.supabaseClient.From(ServicesTable).
		Delete("representation", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return postgrestError("failed to delete service", status, raw, err)
	}
	_, err = firstService(raw)
	return err
}

// PostgREST answers with an array even when at most one row can match.
func firstService(raw []byte) (*Service, error) {
	var rows []*Service
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}
	return rows[0], nil
}
