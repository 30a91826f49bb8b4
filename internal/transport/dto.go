package transport

import (
	"github.com/Skotchmaster/inventory/internal/service"
)

// CredentialsRequest accepts "username" as an alias for "identity".
type CredentialsRequest struct {
	Identity string `json:"identity"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r CredentialsRequest) Handle() string {
	if r.Identity != "" {
		return r.Identity
	}
	return r.Username
}

type RegisterResponse struct {
	ID       string `json:"id"`
	Identity string `json:"identity"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ID        string `json:"id"`
	Identity  string `json:"identity"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
}

type CreateProductRequest struct {
	OwnerID  string `json:"ownerId"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Cost     Number `json:"cost"`
	Price    Number `json:"price"`
	Stock    Number `json:"stock"`
	Status   string `json:"status"`
}

func (r CreateProductRequest) Input() service.ProductInput {
	return service.ProductInput{
		Name:     r.Name,
		Category: r.Category,
		Cost:     r.Cost.Float64(),
		Price:    r.Price.Float64(),
		Stock:    r.Stock.Float64(),
		Status:   r.Status,
	}
}

// UpdateProductRequest deliberately has no owner field: any "owner",
// "ownerId" or "user" key in the payload is dropped while decoding.
type UpdateProductRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Cost     *Number `json:"cost"`
	Price    *Number `json:"price"`
	Stock    *Number `json:"stock"`
	Status   *string `json:"status"`
}

func (r UpdateProductRequest) Patch() service.ProductPatch {
	return service.ProductPatch{
		Name:     r.Name,
		Category: r.Category,
		Cost:     r.Cost.Ptr(),
		Price:    r.Price.Ptr(),
		Stock:    r.Stock.Ptr(),
		Status:   r.Status,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
