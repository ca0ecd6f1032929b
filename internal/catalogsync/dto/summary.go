package dto

import "time"

type SyncSummary struct {
	Scope                string    `json:"scope"`
	StoreExternalID      string    `json:"store_external_id,omitempty"`
	Fetched              int       `json:"fetched"`
	ProductsCreated      int       `json:"products_created"`
	ManufacturersCreated int       `json:"manufacturers_created"`
	CategoriesCreated    int       `json:"categories_created"`
	ProfilesCreated      int       `json:"profiles_created"`
	InventoryArchived    int64     `json:"inventory_archived"`
	InventoryInserted    int       `json:"inventory_inserted"`
	QuantityChanged      int       `json:"quantity_changed"`
	StoresSynced         int       `json:"stores_synced"`
	StoresSkipped        int       `json:"stores_skipped"`
	StartedAt            time.Time `json:"started_at"`
	FinishedAt           time.Time `json:"finished_at"`
}

// Merge adds the counters of o into s. Scope and timestamps are kept.
func (s *SyncSummary) Merge(o *SyncSummary) {
	if o == nil {
		return
	}
	s.Fetched += o.Fetched
	s.ProductsCreated += o.ProductsCreated
	s.ManufacturersCreated += o.ManufacturersCreated
	s.CategoriesCreated += o.CategoriesCreated
	s.ProfilesCreated += o.ProfilesCreated
	s.InventoryArchived += o.InventoryArchived
	s.InventoryInserted += o.InventoryInserted
	s.QuantityChanged += o.QuantityChanged
	s.StoresSynced += o.StoresSynced
	s.StoresSkipped += o.StoresSkipped
}

func (s *SyncSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
