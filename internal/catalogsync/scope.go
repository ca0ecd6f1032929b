package catalogsync

import "fmt"

type Scope string

const (
	ScopeStores        Scope = "stores"
	ScopeManufacturers Scope = "manufacturers"
	ScopeCategories    Scope = "categories"
	ScopeProducts      Scope = "products"
	ScopeCatalog       Scope = "catalog"
	ScopeInventory     Scope = "inventory"
	ScopeAll           Scope = "all"
)

func ParseScope(s string) (Scope, error) {
	switch sc := Scope(s); sc {
	case ScopeStores, ScopeManufacturers, ScopeCategories, ScopeProducts,
		ScopeCatalog, ScopeInventory, ScopeAll:
		return sc, nil
	}
	return "", fmt.Errorf("unknown sync scope %q", s)
}
