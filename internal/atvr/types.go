package atvr

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Product is one record of the DoSearch result. Only the fields the catalog
// uses are decoded.
type Product struct {
	ProductID                  int                   `json:"ProductID"`
	ProductName                string                `json:"ProductName"`
	ProductBottledVolume       float64               `json:"ProductBottledVolume"`
	ProductAlchoholVolume      float64               `json:"ProductAlchoholVolume"`
	ProductPrice               decimal.Decimal       `json:"ProductPrice"`
	ProductCountryOfOrigin     string                `json:"ProductCountryOfOrigin"`
	ProductPlaceOfOrigin       string                `json:"ProductPlaceOfOrigin"`
	ProductContainerType       string                `json:"ProductContainerType"`
	ProductInventory           int                   `json:"ProductInventory"`
	ProductIsTemporaryOnSale   bool                  `json:"ProductIsTemporaryOnSale"`
	ProductIsAvailableInStores bool                  `json:"ProductIsAvailableInStores"`
	ProductStoreSelected       *ProductSelectedStore `json:"ProductStoreSelected"`
	ProductTasteGroup          string                `json:"ProductTasteGroup"`
	ProductTasteGroup2         string                `json:"ProductTasteGroup2"`
	ProductProducer            string                `json:"ProductProducer"`
	ProductShortDescription    string                `json:"ProductShortDescription"`
}

// ExternalID is the catalog's natural key for the product.
func (p *Product) ExternalID() string {
	return strconv.Itoa(p.ProductID)
}

type ProductSelectedStore struct {
	ID       int    `json:"ID"`
	Code     string `json:"Code"`
	Name     string `json:"Name"`
	Quantity *int   `json:"Quantity"`
}

// InvalidRecordError reports an upstream record missing a field the current
// operation requires.
type InvalidRecordError struct {
	ProductID int
	Field     string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("atvr: product %d: missing %s", e.ProductID, e.Field)
}

// Validate checks the fields every sync needs. With requireStore the record
// must also carry the selected store's stock line with a quantity.
func (p *Product) Validate(requireStore bool) error {
	switch {
	case p.ProductID <= 0:
		return &InvalidRecordError{ProductID: p.ProductID, Field: "ProductID"}
	case p.ProductName == "":
		return &InvalidRecordError{ProductID: p.ProductID, Field: "ProductName"}
	case requireStore && p.ProductStoreSelected == nil:
		return &InvalidRecordError{ProductID: p.ProductID, Field: "ProductStoreSelected"}
	case requireStore && p.ProductStoreSelected.Quantity == nil:
		return &InvalidRecordError{ProductID: p.ProductID, Field: "ProductStoreSelected.Quantity"}
	}
	return nil
}

// StoreQuantity returns the selected store's quantity, 0 when unreported.
// Store-scoped records are validated first, so 0 only shows up for global ones.
func (p *Product) StoreQuantity() int {
	if p.ProductStoreSelected == nil || p.ProductStoreSelected.Quantity == nil {
		return 0
	}
	return *p.ProductStoreSelected.Quantity
}

type SearchFilter struct {
	Store string // Store external ID; empty searches the whole catalog
	Skip  int
	Count int
}

type SearchResult struct {
	Data  []Product `json:"data"`
	Total int       `json:"total"`
}

type Weekday struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Open      string `json:"open"`
	IsDefault bool   `json:"isDefault"`
}

type Store struct {
	NewsID   string  `json:"NewsID"`
	Name     string  `json:"Name"`
	Address  string  `json:"Address"`
	PostCode string  `json:"PostCode"`
	Today    Weekday `json:"today"`
	Day1     Weekday `json:"day1"`
	Day2     Weekday `json:"day2"`
	Day3     Weekday `json:"day3"`
	Day4     Weekday `json:"day4"`
	Day5     Weekday `json:"day5"`
	Day6     Weekday `json:"day6"`
}

// Week returns today followed by the next six days.
func (s *Store) Week() [7]Weekday {
	return [7]Weekday{s.Today, s.Day1, s.Day2, s.Day3, s.Day4, s.Day5, s.Day6}
}

type TasteCategory struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type TasteSubcategory struct {
	ID          string `json:"id"`
	Description string `json:"Description"`
	SuperTaste  string `json:"superTaste"`
}
