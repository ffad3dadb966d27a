package dto

import "time"

// CreateWarehouseRequest input to create a warehouse.
type CreateWarehouseRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// WarehouseResponse warehouse output.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
