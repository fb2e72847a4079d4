package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	NameEn        string          `json:"name_en" gorm:"not null" validate:"required,max=120"`
	NameAr        string          `json:"name_ar" gorm:"not null" validate:"required,max=120"`
	DescriptionEn string          `json:"description_en" validate:"max=2000"`
	DescriptionAr string          `json:"description_ar" validate:"max=2000"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(10,3);not null"`
	IsActive      bool            `json:"is_active" gorm:"not null;default:true"`
	ImageURL      string          `json:"image_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Service) TableName() string { return ServicesTable }

// Name picks the display name for a locale.
func (s *Service) Name(locale string) string {
	if locale == "ar" && s.NameAr != "" {
		return s.NameAr
	}
	return s.NameEn
}

// ServiceInput is the admin create payload. Image is an optional https URL or base64 image data URI
// that gets uploaded before the row is written.
type ServiceInput struct {
	NameEn        string          `json:"name_en" validate:"required,max=120"`
	NameAr        string          `json:"name_ar" validate:"required,max=120"`
	DescriptionEn string          `json:"description_en" validate:"max=2000"`
	DescriptionAr string          `json:"description_ar" validate:"max=2000"`
	Price         decimal.Decimal `json:"price"`
	IsActive      *bool           `json:"is_active"`
	Image         string          `json:"image,omitempty"`
}

// ServicePatch holds the fields an admin may change; nil means unchanged.
type ServicePatch struct {
	NameEn        *string          `json:"name_en" validate:"omitnil,min=1,max=120"`
	NameAr        *string          `json:"name_ar" validate:"omitnil,min=1,max=120"`
	DescriptionEn *string          `json:"description_en" validate:"omitnil,max=2000"`
	DescriptionAr *string          `json:"description_ar" validate:"omitnil,max=2000"`
	Price         *decimal.Decimal `json:"price"`
	IsActive      *bool            `json:"is_active"`
	ImageURL      *string          `json:"image_url"`
	Image         string           `json:"image,omitempty"`
}

// Columns converts the patch into a column map for partial updates.
func (p *ServicePatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.NameEn != nil {
		cols["name_en"] = *p.NameEn
	}
	if p.NameAr != nil {
		cols["name_ar"] = *p.NameAr
	}
	if p.DescriptionEn != nil {
		cols["description_en"] = *p.DescriptionEn
	}
	if p.DescriptionAr != nil {
		cols["description_ar"] = *p.DescriptionAr
	}
	if p.Price != nil {
		cols["price"] = p.Price.StringFixed(3)
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

type ServiceRepo interface {
	// ListServices returns services ordered by id ascending.
	ListServices(ctx context.Context, activeOnly bool) ([]*Service, error)
	GetServiceByID(ctx context.Context, id int64) (*Service, error)
	CreateService(ctx context.Context, service *Service) (*Service, error)
	UpdateService(ctx context.Context, id int64, fields map[string]interface{}) (*Service, error)
	DeleteService(ctx context.Context, id int64) error
}
