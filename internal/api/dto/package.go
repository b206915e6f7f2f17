package dto

import (
	"parcel-delivery-service/internal/domain"
)

type CreatePackageRequest struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	TypeID int     `json:"type_id"`
	Price  float64 `json:"price"`
}

// Validate returns field-level problems, empty when the request is valid.
func (r CreatePackageRequest) Validate() map[string]string {
	return domain.ValidatePackageInput(r.Name, r.Weight, r.Price, r.TypeID)
}

// TaskResponse acknowledges an accepted creation: the package exists and a
// pricing task is (normally) queued.
type TaskResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type PackageResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	TypeID       int     `json:"type_id"`
	Price        float64 `json:"price"`
	ShippingCost string  `json:"shipping_cost"`
}

func NewPackageResponse(p *domain.Package) PackageResponse {
	return PackageResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Weight:       p.Weight,
		TypeID:       p.TypeID,
		Price:        p.Price,
		ShippingCost: p.ShippingCost,
	}
}

type ListPackagesResponse struct {
	Packages []PackageResponse `json:"packages"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
	Pages    int               `json:"pages"`
}

type PackageTypeResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type RateResponse struct {
	USDRate float64 `json:"usd_rate"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
