package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ölgerðin", "olgerdin"},
		{"Egill Skallagrímsson", "egill skallagrimsson"},
		{"Þórsmörk", "thorsmork"},
		{"Ægir Brugghús", "aegir brugghus"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), tt.in)
	}
}

func TestFoldRune(t *testing.T) {
	assert.Equal(t, 'o', FoldRune('ö'))
	assert.Equal(t, 'd', FoldRune('ð'))
	assert.Equal(t, 't', FoldRune('þ'))
	assert.Equal(t, 'a', FoldRune('A'))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Heiðrún", "heidrun"},
		{"Skútuvogur", "skutuvogur"},
		{"Dalvegur Kópavogi", "dalvegur-kopavogi"},
		{"  Kringlan  ", "kringlan"},
		{"Hafnarfjörður - Helluhraun", "hafnarfjordur-helluhraun"},
		{"Vínbúðin, Akureyri", "vinbudin-akureyri"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}
