package services

import (
	"github.com/google/uuid"

	"shopcore/internal/domain"
	"shopcore/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

type ProductQuery struct {
	Term     string
	MinPrice float64
	MaxPrice float64
	Page     int
	Limit    int
}

type ProductPage struct {
	Items []domain.Product `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (s *CatalogService) List(q ProductQuery) (ProductPage, error) {
	items, total, err := s.Prods.Search(q.Term, q.MinPrice, q.MaxPrice, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) Create(p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Get(p.ID)
}

// Update edits catalog fields. Existing order items keep the price they
// were sold at.
func (s *CatalogService) Update(p domain.Product) (domain.Product, error) {
	if err := s.Prods.Update(p); err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Get(p.ID)
}

func (s *CatalogService) Delete(id string) error {
	return s.Prods.Delete(id)
}
