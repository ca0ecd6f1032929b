package model

type ContainerType string

const (
	ContainerCan     ContainerType = "CAN"
	ContainerBottle  ContainerType = "BOTTLE"
	ContainerBox     ContainerType = "BOX"
	ContainerGiftbox ContainerType = "GIFTBOX"
	ContainerOther   ContainerType = "OTHER"
)

type Product struct {
	BaseModel
	ExternalID     string        `db:"external_id" json:"external_id"`
	Name           string        `db:"name" json:"name"`
	Description    *string       `db:"description" json:"description"`
	ManufacturerID string        `db:"manufacturer_id" json:"manufacturer_id"`
	CategoryID     string        `db:"category_id" json:"category_id"`
	TasteProfileID string        `db:"taste_profile_id" json:"taste_profile_id"`
	ContainerType  ContainerType `db:"container_type" json:"container_type"`
	VolumeMl       float64       `db:"volume_ml" json:"volume_ml"`
	AlcoholPercent float64       `db:"alcohol_percent" json:"alcohol_percent"`
	PlaceOfOrigin  string        `db:"place_of_origin" json:"place_of_origin"`
	IsTemporary    bool          `db:"is_temporary" json:"is_temporary"`
	ImageURL       *string       `db:"image_url" json:"image_url"`
}

// ExistingProduct is the slice of a product the reconciler needs to decide
// whether an upstream record is new.
type ExistingProduct struct {
	ID         string `db:"id"`
	ExternalID string `db:"external_id"`
	Quantity   int    `db:"quantity"` // Most recent quantity at the scoped store, 0 if none
}
