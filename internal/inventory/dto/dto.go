package dto

type LatestFilters struct {
	StoreID       string
	ProductID     string
	AvailableOnly bool
}
