package entities

import "time"

// CatalogItem is a club-defined redeemable reward. Catalog rows are
// external configuration data; the ledger only ever reads them.
type CatalogItem struct {
	ID              string    `db:"id"`
	ClubID          string    `db:"club_id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	CreditsRequired int64     `db:"credits_required"`
	ItemType        string    `db:"item_type"`
	Active          bool      `db:"active"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// IsRedeemable returns true if the item can currently be redeemed
func (c *CatalogItem) IsRedeemable() bool {
	return c.Active && c.CreditsRequired > 0
}
