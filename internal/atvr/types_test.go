package atvr

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Decode(t *testing.T) {
	raw := `{
		"ProductID": 12345,
		"ProductName": "Kaldi Ljós",
		"ProductPrice": 459.5,
		"ProductContainerType": "FL.",
		"ProductStoreSelected": {"ID": 1, "Code": "110", "Name": "Heiðrún", "Quantity": 42},
		"ProductTasteGroup": "10",
		"ProductTasteGroup2": "101",
		"ProductProducer": "Bruggsmiðjan"
	}`
	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "12345", p.ExternalID())
	assert.True(t, decimal.RequireFromString("459.5").Equal(p.ProductPrice))
	assert.Equal(t, 42, p.StoreQuantity())
	assert.NoError(t, p.Validate(true))
}

func TestProduct_Validate(t *testing.T) {
	p := Product{ProductID: 7, ProductName: "Stout"}
	assert.NoError(t, p.Validate(false))

	err := p.Validate(true)
	var invalid *InvalidRecordError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "ProductStoreSelected", invalid.Field)
	assert.Equal(t, 7, invalid.ProductID)

	assert.Error(t, (&Product{ProductName: "x"}).Validate(false))
	assert.Error(t, (&Product{ProductID: 1}).Validate(false))
}

func TestProduct_ValidateRejectsMissingQuantity(t *testing.T) {
	p := Product{ProductID: 9, ProductName: "Bríó", ProductStoreSelected: &ProductSelectedStore{Code: "110"}}

	err := p.Validate(true)
	var invalid *InvalidRecordError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "ProductStoreSelected.Quantity", invalid.Field)
	assert.Equal(t, 9, invalid.ProductID)

	assert.NoError(t, p.Validate(false))
}

func TestPadIDAndImageURL(t *testing.T) {
	assert.Equal(t, "00042", PadID("42"))
	assert.Equal(t, "123456", PadID("123456"))
	assert.Equal(t, "https://img.test/orig/00042_r.jpg", ImageURL("https://img.test/orig/", "42"))
}
