package models

// Team owns a set of riders.
type Team struct {
	ID          int    `json:"id"`
	Name        string `json:"name" validate:"required,max=30"`
	Description string `json:"description"`
	RiderIDs    []int  `json:"rider_ids"`
}
