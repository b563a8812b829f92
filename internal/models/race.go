package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Race is a staged race. StageIDs keeps insertion order, which is the
// racing order.
type Race struct {
	ID          int    `json:"id"`
	Name        string `json:"name" validate:"required,max=30"`
	Description string `json:"description"`
	StageIDs    []int  `json:"stage_ids"`
}

// Details renders the human-readable race summary: ID, name, description,
// stage count and total length.
func (r *Race) Details(totalLength decimal.Decimal) string {
	return fmt.Sprintf("Race[%d] %s: %s (%d stages, %skm total)",
		r.ID, r.Name, r.Description, len(r.StageIDs), totalLength.String())
}
