package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/denticare/clinic-ledger/internal/db"
	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/denticare/clinic-ledger/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServiceInput carries the editable catalog fields. Nil VAT fields fall back
// to the clinic defaults (VAT applicable at pricing.DefaultVATRate).
type ServiceInput struct {
	Name            string
	BasePrice       decimal.Decimal
	IsVATApplicable *bool
	VATRate         *decimal.Decimal
}

func (in ServiceInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.NonNegative("base_price", in.BasePrice, v)
	validation.Below("base_price", pricing.Round(in.BasePrice), pricing.MaxAmount, v)
	if in.VATRate != nil {
		validation.NonNegative("vat_rate", *in.VATRate, v)
		validation.Below("vat_rate", pricing.Round(*in.VATRate), pricing.MaxRate, v)
	}
	return v.Err()
}

func (in ServiceInput) model() models.Service {
	svc := models.Service{
		Name:            strings.TrimSpace(in.Name),
		BasePrice:       pricing.Round(in.BasePrice),
		IsVATApplicable: true,
		VATRate:         pricing.DefaultVATRate,
	}
	if in.IsVATApplicable != nil {
		svc.IsVATApplicable = *in.IsVATApplicable
	}
	if in.VATRate != nil {
		svc.VATRate = pricing.Round(*in.VATRate)
	}
	return svc
}

// CatalogService owns the current service records.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// WithTx returns a catalog whose reads run inside tx.
func (s *CatalogService) WithTx(tx *gorm.DB) *CatalogService {
	return &CatalogService{db: tx}
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	err := s.db.WithContext(ctx).First(&svc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ServiceNotFoundError{ServiceID: id}
	}
	if err != nil {
		return nil, persistence("get service", err)
	}
	return &svc, nil
}

// List returns every service ordered by name.
func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	svcs := []models.Service{}
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&svcs).Error; err != nil {
		return nil, persistence("list services", err)
	}
	return svcs, nil
}

// GetMany loads the given services keyed by id, holding shared row locks
// until the surrounding transaction ends so a concurrent price edit is seen
// whole or not at all. Missing ids are simply absent from the map.
func (s *CatalogService) GetMany(ctx context.Context, ids []uint) (map[uint]models.Service, error) {
	out := make(map[uint]models.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	q := s.db.WithContext(ctx)
	if db.Dialect(s.db) == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	var svcs []models.Service
	if err := q.Where("id IN ?", unique).Order("id").Find(&svcs).Error; err != nil {
		return nil, persistence("lookup services", err)
	}
	for _, svc := range svcs {
		out[svc.ID] = svc
	}
	return out, nil
}

func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	svc := in.model()
	if err := s.db.WithContext(ctx).Create(&svc).Error; err != nil {
		return nil, persistence("create service", err)
	}
	return s.Get(ctx, svc.ID)
}

// Update replaces the raw pricing inputs of a service. Line items already
// written keep their snapshots.
func (s *CatalogService) Update(ctx context.Context, id uint, in ServiceInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	svc := in.model()
	res := s.db.WithContext(ctx).Model(&models.Service{}).Where("id = ?", id).Updates(map[string]any{
		"name":              svc.Name,
		"base_price":        svc.BasePrice,
		"is_vat_applicable": svc.IsVATApplicable,
		"vat_rate":          svc.VATRate,
	})
	if res.Error != nil {
		return nil, persistence("update service", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &ServiceNotFoundError{ServiceID: id}
	}
	return s.Get(ctx, id)
}

// Delete removes a service that no line item references. The check is the
// foreign key itself, evaluated in the same transaction as the delete.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Service{}, id)
		if res.Error != nil {
			if db.IsForeignKeyViolation(res.Error) {
				return fmt.Errorf("%w: service %d", ErrServiceInUse, id)
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ServiceNotFoundError{ServiceID: id}
		}
		return nil
	})
	return persistence("delete service", err)
}
