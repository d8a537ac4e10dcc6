package repository

import (
	"context"

	"dailypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository reads products and manages tax types.
type CatalogRepository interface {
	FindProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindTaxType(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.TaxType, error)
	FindTaxTypeByLabel(ctx context.Context, label string) (*model.TaxType, error)
	ListTaxTypes(ctx context.Context) ([]model.TaxType, error)
	CreateTaxType(ctx context.Context, t *model.TaxType) error
	UpdateTaxType(ctx context.Context, t *model.TaxType) error
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) FindProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := conn(ctx, r.db, tx).First(&p, "id = ?", id).Error
	return notFoundAsNil(&p, err)
}

func (r *catalogRepo) FindTaxType(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.TaxType, error) {
	var t model.TaxType
	err := conn(ctx, r.db, tx).First(&t, "id = ?", id).Error
	return notFoundAsNil(&t, err)
}

func (r *catalogRepo) FindTaxTypeByLabel(ctx context.Context, label string) (*model.TaxType, error) {
	var t model.TaxType
	err := r.db.WithContext(ctx).Where("label = ?", label).First(&t).Error
	return notFoundAsNil(&t, err)
}

func (r *catalogRepo) ListTaxTypes(ctx context.Context) ([]model.TaxType, error) {
	var types []model.TaxType
	err := r.db.WithContext(ctx).Order("label ASC").Find(&types).Error
	return types, err
}

func (r *catalogRepo) CreateTaxType(ctx context.Context, t *model.TaxType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *catalogRepo) UpdateTaxType(ctx context.Context, t *model.TaxType) error {
	return r.db.WithContext(ctx).Model(&model.TaxType{}).Where("id = ?", t.ID).
		Updates(map[string]any{"label": t.Label, "percent": t.Percent}).Error
}
