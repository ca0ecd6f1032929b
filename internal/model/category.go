package model

// Sentinel taxonomy used when an upstream code cannot be resolved.
const (
	NoneCategoryCode = "NONE"
	NoneCategoryName = "None"

	UnknownCategoryName     = "Unknown category"
	UnknownTasteProfileName = "Unknown taste profile"
)

type ProductCategory struct {
	BaseModel
	ExternalCode  string         `db:"external_code" json:"external_code"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description"`
	TasteProfiles []TasteProfile `db:"-" json:"taste_profiles"` // Loaded separately
}

type TasteProfile struct {
	BaseModel
	ExternalCode string `db:"external_code" json:"external_code"`
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description"`
	CategoryID   string `db:"category_id" json:"category_id"`
}
