package catalogsync

import (
	"errors"
	"fmt"

	"github.com/bjorheimar/catalog-sync/internal/atvr"
	"github.com/bjorheimar/catalog-sync/internal/store"
)

var ErrStoreNotFound = errors.New("store not found")

type (
	UpstreamFetchError = atvr.UpstreamFetchError
	HoursParseError    = store.HoursParseError
)

// ProvisioningError is raised in strict mode for a product whose category or
// taste code cannot be resolved or created.
type ProvisioningError struct {
	ProductExternalID string
	CategoryCode      string
	TasteCode         string
	Reason            string
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision product %s (category %q, taste %q): %s",
		e.ProductExternalID, e.CategoryCode, e.TasteCode, e.Reason)
}

// ManufacturerResolutionError means a product's manufacturer has no row even
// after manufacturers were created for the batch.
type ManufacturerResolutionError struct {
	ProductExternalID string
	Name              string
}

func (e *ManufacturerResolutionError) Error() string {
	return fmt.Sprintf("product %s: no manufacturer row for %q", e.ProductExternalID, e.Name)
}

// ValidationError wraps an upstream record rejected before any write.
type ValidationError struct {
	StoreExternalID string
	Err             error
}

func (e *ValidationError) Error() string {
	if e.StoreExternalID == "" {
		return "validate upstream products: " + e.Err.Error()
	}
	return fmt.Sprintf("validate upstream products for store %s: %v", e.StoreExternalID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
