package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cian-feed/models"
)

func TestSerializeEmptyFeed(t *testing.T) {
	body, err := Generate(testVocab(t), nil)
	require.NoError(t, err)

	want := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<Feed>\n" +
		"  <Feed_Version>2</Feed_Version>\n" +
		"</Feed>\n"
	assert.Equal(t, want, string(body))
}

func TestSerializeEscapesFreeText(t *testing.T) {
	r := &models.ListingRecord{
		Description: flexStr(`Квартира с видом на "Москва-Сити" & парк <центр>`),
	}
	body, err := Generate(testVocab(t), []*models.ListingRecord{r})
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "&amp;")
	assert.Contains(t, out, "&lt;центр&gt;")
	assert.NotContains(t, out, "& парк")
	assert.NotContains(t, out, "<центр>")
}

func TestSerializeElementOrder(t *testing.T) {
	r := &models.ListingRecord{
		ExternalID:         flexStr("apt-1"),
		ApartmentDetails:   flexStr("Площадь: 40. Санузел: раздельный. Окна во двор"),
		ApartmentAmenities: flexStr("Интернет"),
		MainPhotoURL:       flexStr("https://img.example.com/1.jpg"),
	}
	body, err := Generate(testVocab(t), []*models.ListingRecord{r})
	require.NoError(t, err)
	out := string(body)

	// spot-check the fixed child sequence
	ordered := []string{
		"<ExternalId>", "<Status>", "<Category>", "<Type>",
		"<Address>", "<Description>", "<FlatRoomsCount>",
		"<FloorNumber>", "<FloorsTotal>", "<TotalArea>",
		"<SeparateWcsCount>", "<WindowsViewType>",
		"<BargainTerms>", "<Photos>", "<PromotionType>",
		"<Building>", "<FlatAmenities>", "<HasInternet>",
	}
	last := -1
	for _, tag := range ordered {
		idx := strings.Index(out, tag)
		require.GreaterOrEqual(t, idx, 0, "missing %s", tag)
		assert.Greater(t, idx, last, "%s out of order", tag)
		last = idx
	}
}

func TestSerializeTriStateFlagOmitted(t *testing.T) {
	r := &models.ListingRecord{ApartmentAmenities: flexStr("Интернет")}
	body, err := Generate(testVocab(t), []*models.ListingRecord{r})
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "<HasInternet>true</HasInternet>")
	assert.NotContains(t, out, "<HasTv>", "unresolved flags must be absent, not false")
}
