package dto

import (
	"time"
)

// CreateCatalogRequest represents the request to register a product catalog
type CreateCatalogRequest struct {
	AppUUID           string `json:"-" validate:"required,uuid4"`
	ExternalCatalogID string `json:"catalog_id" validate:"required,max=64"`
	Name              string `json:"name" validate:"required,min=1,max=256"`
}

// CatalogResponse represents one registered catalog in responses
type CatalogResponse struct {
	UUID              string    `json:"uuid"`
	ExternalCatalogID string    `json:"catalog_id"`
	Name              string    `json:"name"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListCatalogsResponse represents all catalogs registered for an app
type ListCatalogsResponse struct {
	Catalogs []CatalogResponse `json:"catalogs"`
}
