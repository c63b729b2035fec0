package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cian-feed/models"
)

func testVocab(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := LoadVocabulary(vocabularyYAML)
	require.NoError(t, err)
	return v
}

func flagValue(flags []models.BoolFlag, name string) (bool, bool) {
	for _, f := range flags {
		if f.XMLName.Local == name {
			return f.Value, true
		}
	}
	return false, false
}

func TestLoadVocabularyEmbedded(t *testing.T) {
	v := testVocab(t)
	assert.NotEmpty(t, v.Amenities)
	assert.NotEmpty(t, v.Flags)
}

func TestLoadVocabularyRejectsUnknownField(t *testing.T) {
	_, err := LoadVocabulary([]byte(`
flags:
  - name: HasSauna
    field: has_sauna
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has_sauna")
}

func TestLoadVocabularyRejectsMalformedYAML(t *testing.T) {
	_, err := LoadVocabulary([]byte("flags: [unclosed"))
	require.Error(t, err)
}

func TestParseAmenitiesMapsCanonicalVocabulary(t *testing.T) {
	v := testVocab(t)

	canonical, lowered := v.ParseAmenities("Холодильник, Интернет")
	assert.Equal(t, []string{"Fridge", "Internet"}, canonical)
	assert.Equal(t, []string{"холодильник", "интернет"}, lowered)
}

func TestParseAmenitiesPassesUnknownThrough(t *testing.T) {
	v := testVocab(t)

	canonical, _ := v.ParseAmenities("Холодильник, Джакузи")
	assert.Equal(t, []string{"Fridge", "Джакузи"}, canonical)
}

func TestResolveFlagsFromKeywords(t *testing.T) {
	v := testVocab(t)
	r := &models.ListingRecord{}
	_, lowered := v.ParseAmenities("Холодильник, Интернет")

	flags := v.ResolveFlags(r, lowered)

	fridge, ok := flagValue(flags, "HasFridge")
	require.True(t, ok)
	assert.True(t, fridge)

	internet, ok := flagValue(flags, "HasInternet")
	require.True(t, ok)
	assert.True(t, internet)

	// no keyword, no column: the flag is absent, not false
	_, ok = flagValue(flags, "HasTv")
	assert.False(t, ok)
}

func TestResolveFlagsExplicitColumnIsAuthoritative(t *testing.T) {
	v := testVocab(t)
	r := &models.ListingRecord{HasFridge: models.NewFlex("false")}
	_, lowered := v.ParseAmenities("Холодильник")

	flags := v.ResolveFlags(r, lowered)

	fridge, ok := flagValue(flags, "HasFridge")
	require.True(t, ok)
	assert.False(t, fridge, "explicit column must override the amenity keyword")
}

func TestResolveFlagsFurnitureBespoke(t *testing.T) {
	v := testVocab(t)

	// kitchen furniture amenity alone implies furniture
	_, lowered := v.ParseAmenities("Мебель на кухне")
	flags := v.ResolveFlags(&models.ListingRecord{}, lowered)
	furniture, ok := flagValue(flags, "HasFurniture")
	require.True(t, ok)
	assert.True(t, furniture)

	// dedicated room-furniture column alone implies furniture
	r := &models.ListingRecord{HasRoomFurniture: models.NewFlex(true)}
	flags = v.ResolveFlags(r, nil)
	furniture, ok = flagValue(flags, "HasFurniture")
	require.True(t, ok)
	assert.True(t, furniture)
}

func TestResolveFlagsPetsAndChildrenCues(t *testing.T) {
	v := testVocab(t)

	tests := []struct {
		rental       string
		flag         string
		want         bool
		wantResolved bool
	}{
		{"Можно с животными", "PetsAllowed", true, true},
		{"Без животных", "PetsAllowed", false, true},
		{"Можно с детьми", "ChildrenAllowed", true, true},
		{"Без детей", "ChildrenAllowed", false, true},
		{"Цена: 45 000", "PetsAllowed", false, false},
		{"Цена: 45 000", "ChildrenAllowed", false, false},
	}

	for _, tt := range tests {
		r := &models.ListingRecord{RentalConditions: flexStr(tt.rental)}
		flags := v.ResolveFlags(r, nil)
		got, resolved := flagValue(flags, tt.flag)
		assert.Equal(t, tt.wantResolved, resolved, "rental=%q flag=%s resolved", tt.rental, tt.flag)
		if tt.wantResolved {
			assert.Equal(t, tt.want, got, "rental=%q flag=%s", tt.rental, tt.flag)
		}
	}
}

func TestResolveFlagsOrderFollowsTable(t *testing.T) {
	v := testVocab(t)
	r := &models.ListingRecord{
		HasInternet: models.NewFlex(true),
		HasFridge:   models.NewFlex(true),
	}

	flags := v.ResolveFlags(r, nil)
	require.Len(t, flags, 2)
	assert.Equal(t, "HasInternet", flags[0].XMLName.Local)
	assert.Equal(t, "HasFridge", flags[1].XMLName.Local)
}
