package entity

import "time"

// Analyst is a back-office user referenced by stage submissions.
// Lookup-only from the workflow's point of view.
type Analyst struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
