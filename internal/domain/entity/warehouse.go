package entity

import "time"

// Warehouse is a kitting location.
type Warehouse struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
