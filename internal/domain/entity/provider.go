package entity

import "time"

// Provider is a medical provider that submits bills. The workflow only ever
// looks providers up; their CRUD lifecycle is managed elsewhere.
type Provider struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
