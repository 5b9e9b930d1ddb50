package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mfg/internal/entity"
	"github.com/bitfantasy/nimo-mfg/internal/repository"
	"github.com/google/uuid"
)

type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	catalog      *CatalogService
}

func NewSupplierService(supplierRepo *repository.SupplierRepository, catalog *CatalogService) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo, catalog: catalog}
}

type SupplierRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	PaymentTerms string `json:"payment_terms"`
	Notes        string `json:"notes"`
}

func (s *SupplierService) Create(ctx context.Context, req SupplierRequest, userID string) (*entity.Supplier, error) {
	supplier := &entity.Supplier{
		ID:           uuid.New().String(),
		SupplierCode: docCode("SUP"),
		Name:         req.Name,
		ContactName:  req.ContactName,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		PaymentTerms: req.PaymentTerms,
		Status:       entity.SupplierStatusActive,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}
	if err := s.supplierRepo.Create(supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	s.catalog.InvalidateSupplierOptions(ctx)
	return supplier, nil
}

func (s *SupplierService) GetByID(id string) (*entity.Supplier, error) {
	return s.supplierRepo.GetByID(id)
}

func (s *SupplierService) List(params repository.SupplierListParams) ([]entity.Supplier, int64, error) {
	return s.supplierRepo.List(params)
}

func (s *SupplierService) Update(ctx context.Context, id string, req SupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("供应商不存在: %w", err)
	}
	supplier.Name = req.Name
	supplier.ContactName = req.ContactName
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address
	supplier.PaymentTerms = req.PaymentTerms
	supplier.Notes = req.Notes
	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	s.catalog.InvalidateSupplierOptions(ctx)
	return supplier, nil
}

func (s *SupplierService) Delete(ctx context.Context, id string) error {
	if _, err := s.supplierRepo.GetByID(id); err != nil {
		return fmt.Errorf("供应商不存在: %w", err)
	}
	if err := s.supplierRepo.Delete(id); err != nil {
		return err
	}
	s.catalog.InvalidateSupplierOptions(ctx)
	return nil
}
