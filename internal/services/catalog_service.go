package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/fasttrack/internal/events"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/shopspring/decimal"
)

// ServiceView is a catalog entry with its localized presentation fields.
type ServiceView struct {
	*models.Service
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceLabel  string `json:"price_label"`
}

type CatalogService struct {
	serviceRepo models.ServiceRepo
	uploader    ImageUploader
	changes     ChangePublisher
	logger      *slog.Logger
}

// NewCatalogService builds the catalog. uploader may be nil when image uploads are not configured.
func NewCatalogService(serviceRepo models.ServiceRepo, uploader ImageUploader, changes ChangePublisher, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		uploader:    uploader,
		changes:     changes,
		logger:      logger,
	}
}

func (cs *CatalogService) ListPublic(ctx context.Context, locale string) ([]ServiceView, error) {
	return cs.list(ctx, true, locale)
}

func (cs *CatalogService) ListAll(ctx context.Context, locale string) ([]ServiceView, error) {
	return cs.list(ctx, false, locale)
}

func (cs *CatalogService) list(ctx context.Context, activeOnly bool, locale string) ([]ServiceView, error) {
	services, err := cs.serviceRepo.ListServices(ctx, activeOnly)
	if err != nil {
		return nil, storeErr("failed to list services", err)
	}
	views := make([]ServiceView, len(services))
	for i, s := range services {
		views[i] = NewServiceView(s, locale)
	}
	return views, nil
}

func NewServiceView(s *models.Service, locale string) ServiceView {
	locale = helpers.NormalizeLocale(locale)
	desc := s.DescriptionEn
	if locale == helpers.LocaleArabic && s.DescriptionAr != "" {
		desc = s.DescriptionAr
	}
	return ServiceView{
		Service:     s,
		Name:        s.Name(locale),
		Description: desc,
		PriceLabel:  helpers.FormatCurrency(s.Price, locale),
	}
}

func (cs *CatalogService) Create(ctx context.Context, in *models.ServiceInput) (*models.Service, error) {
	in.NameEn = strings.TrimSpace(in.NameEn)
	in.NameAr = strings.TrimSpace(in.NameAr)

	verr, err := validationErrors(models.Validate.Struct(in))
	if err != nil {
		return nil, fmt.Errorf("failed to validate service: %w", err)
	}
	checkPrice(verr, in.Price)
	checkImage(verr, in.Image, cs.uploader != nil)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	service := &models.Service{
		NameEn:        in.NameEn,
		NameAr:        in.NameAr,
		DescriptionEn: in.DescriptionEn,
		DescriptionAr: in.DescriptionAr,
		Price:         in.Price,
		IsActive:      in.IsActive == nil || *in.IsActive,
	}
	if in.Image != "" {
		url, err := cs.uploader.UploadImage(ctx, in.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload service image: %w", err)
		}
		service.ImageURL = url
	}

	created, err := cs.serviceRepo.CreateService(ctx, service)
	if err != nil {
		return nil, storeErr("failed to create service", err)
	}
	cs.logger.Info("Service created", "service_id", created.ID)
	cs.publishChange(ctx, events.OpInsert, created.ID)
	return created, nil
}

func (cs *CatalogService) Update(ctx context.Context, id int64, patch *models.ServicePatch) (*models.Service, error) {
	verr, err := validationErrors(models.Validate.Struct(patch))
	if err != nil {
		return nil, fmt.Errorf("failed to validate service: %w", err)
	}
	if patch.Price != nil {
		checkPrice(verr, *patch.Price)
	}
	checkImage(verr, patch.Image, cs.uploader != nil)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if patch.Image != "" {
		url, err := cs.uploader.UploadImage(ctx, patch.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload service image: %w", err)
		}
		patch.ImageURL = &url
	}

	fields := patch.Columns()
	if len(fields) == 0 {
		return nil, fieldError("body", "no fields to update")
	}
	updated, err := cs.serviceRepo.UpdateService(ctx, id, fields)
	if err != nil {
		return nil, storeErr("failed to update service", err)
	}
	cs.publishChange(ctx, events.OpUpdate, id)
	return updated, nil
}

// Delete removes the service for good. Bookings that referenced it keep a null service.
func (cs *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := cs.serviceRepo.DeleteService(ctx, id); err != nil {
		return storeErr("failed to delete service", err)
	}
	cs.logger.Info("Service deleted", "service_id", id)
	cs.publishChange(ctx, events.OpDelete, id)
	return nil
}

func checkPrice(verr *ValidationError, price decimal.Decimal) {
	switch {
	case price.IsNegative():
		verr.add("price", "must be zero or greater")
	case !price.Equal(price.Round(3)):
		verr.add("price", "must have at most 3 decimal places")
	}
}

func (cs *CatalogService) publishChange(ctx context.Context, op string, id int64) {
	if cs.changes == nil {
		return
	}
	c := events.Change{Table: models.ServicesTable, Op: op, ID: id, At: time.Now().UTC()}
	if err := cs.changes.Publish(ctx, c); err != nil {
		cs.logger.Warn("Failed to publish change", "table", models.ServicesTable, "id", id, "error", err)
	}
}

func checkImage(verr *ValidationError, image string, uploads bool) {
	switch {
	case image == "":
	case !uploads:
		verr.add("image", "image uploads are not configured")
	case !helpers.ValidImageSource(image):
		verr.add("image", "must be an https URL or a base64 image data URI")
	}
}
