package service

import (
	"context"
	"fmt"
	"strings"

	"dailypos/internal/dto"
	"dailypos/internal/model"
	"dailypos/internal/money"
	"dailypos/internal/repository"

	"github.com/google/uuid"
)

// TaxTypeService manages the VAT rates orders reference. Editing a rate
// never touches orders already recorded with it.
type TaxTypeService interface {
	List(ctx context.Context) ([]dto.TaxTypeResponse, error)
	Create(ctx context.Context, req dto.TaxTypeRequest) (*dto.TaxTypeResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.TaxTypeRequest) (*dto.TaxTypeResponse, error)
}

type taxTypeService struct {
	repo repository.CatalogRepository
}

func NewTaxTypeService(repo repository.CatalogRepository) TaxTypeService {
	return &taxTypeService{repo: repo}
}

func (s *taxTypeService) List(ctx context.Context) ([]dto.TaxTypeResponse, error) {
	types, err := s.repo.ListTaxTypes(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TaxTypeResponse, len(types))
	for i := range types {
		resp[i] = taxTypeToResponse(&types[i])
	}
	return resp, nil
}

func (s *taxTypeService) Create(ctx context.Context, req dto.TaxTypeRequest) (*dto.TaxTypeResponse, error) {
	label, err := s.validate(ctx, uuid.Nil, req)
	if err != nil {
		return nil, err
	}
	t := &model.TaxType{Label: label, Percent: req.Percent}
	if err := s.repo.CreateTaxType(ctx, t); err != nil {
		return nil, err
	}
	resp := taxTypeToResponse(t)
	return &resp, nil
}

func (s *taxTypeService) Update(ctx context.Context, id uuid.UUID, req dto.TaxTypeRequest) (*dto.TaxTypeResponse, error) {
	t, err := s.repo.FindTaxType(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: tax type %s", ErrNotFound, id)
	}
	label, err := s.validate(ctx, id, req)
	if err != nil {
		return nil, err
	}
	t.Label = label
	t.Percent = req.Percent
	if err := s.repo.UpdateTaxType(ctx, t); err != nil {
		return nil, err
	}
	resp := taxTypeToResponse(t)
	return &resp, nil
}

// validate checks the percent range and label uniqueness; self is the id
// being updated, uuid.Nil on create.
func (s *taxTypeService) validate(ctx context.Context, self uuid.UUID, req dto.TaxTypeRequest) (string, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return "", fmt.Errorf("%w: label is required", ErrInvalidTaxType)
	}
	if !money.ValidPercent(req.Percent) {
		return "", fmt.Errorf("%w: percent must be within 0-100 with at most 2 decimals", ErrInvalidTaxType)
	}
	existing, err := s.repo.FindTaxTypeByLabel(ctx, label)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.ID != self {
		return "", fmt.Errorf("%w: label %q already exists", ErrInvalidTaxType, label)
	}
	return label, nil
}

func taxTypeToResponse(t *model.TaxType) dto.TaxTypeResponse {
	return dto.TaxTypeResponse{ID: t.ID.String(), Label: t.Label, Percent: t.Percent}
}
