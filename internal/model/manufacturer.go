package model

type Manufacturer struct {
	BaseModel
	Name string `db:"name" json:"name"`
}
