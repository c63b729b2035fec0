package feed

import (
	"regexp"
	"strconv"
	"strings"

	"cian-feed/models"
)

// Label patterns for the Russian free-text blobs. Each pattern is paired
// with exactly one extractor below so precedence stays declarative.
var (
	totalAreaRe   = regexp.MustCompile(`Площадь:\s*(\d+(?:[.,]\d+)?)`)
	livingAreaRe  = regexp.MustCompile(`Жилая:\s*(\d+(?:[.,]\d+)?)`)
	kitchenAreaRe = regexp.MustCompile(`Кухня:\s*(\d+(?:[.,]\d+)?)`)
	priceRe       = regexp.MustCompile(`Цена:\s*(\d[\d \x{00A0}]*)`)
	depositRe     = regexp.MustCompile(`Залог:\s*(\d[\d \x{00A0}]*)`)
	prepayRe      = regexp.MustCompile(`Предоплата:\s*(\d+)`)
	buildYearRe   = regexp.MustCompile(`Год(?:\s+постройки)?:\s*(\d{4})`)
	balconiesRe   = regexp.MustCompile(`Балконов:\s*(\d+)`)
	loggiasRe     = regexp.MustCompile(`Лоджий:\s*(\d+)`)
	bedsRe        = regexp.MustCompile(`Спальных мест:\s*(\d+)`)
	wcRe          = regexp.MustCompile(`Санузел:?\s*([^.;\n]*)`)
	firstDigitsRe = regexp.MustCompile(`\d+`)
)

// Windows view enum values expected by the marketplace.
const (
	windowsStreet        = "street"
	windowsYard          = "yard"
	windowsYardAndStreet = "yardAndStreet"
)

// roomTypeCues are scanned in priority order; the first match wins. The
// combined form must come before its two substrings.
var roomTypeCues = []struct {
	cue  string
	enum string
}{
	{"смежно-изолирован", "both"},
	{"свободная планировка", "free"},
	{"изолирован", "separate"},
	{"смежн", "combined"},
}

// ExtractRooms clamps the room count to the [1,6] range the marketplace
// accepts; an absent or non-positive count becomes 1.
func ExtractRooms(r *models.ListingRecord) string {
	n := r.Rooms.Or(1)
	if n < 1 {
		n = 1
	}
	if n > 6 {
		n = 6
	}
	return strconv.Itoa(n)
}

// ExtractAreas returns the total/living/kitchen triad: text label first,
// explicit column second, "0" last.
func ExtractAreas(r *models.ListingRecord) (total, living, kitchen string) {
	details := r.ApartmentDetails.String()
	total = areaValue(totalAreaRe, details, r.TotalArea)
	living = areaValue(livingAreaRe, details, r.LivingArea)
	kitchen = areaValue(kitchenAreaRe, details, r.KitchenArea)
	return total, living, kitchen
}

func areaValue(re *regexp.Regexp, details string, explicit models.FlexString) string {
	if v := NormalizeDecimal(re, details); v != "0" {
		return v
	}
	return explicit.Or("0")
}

// ExtractBathrooms scans the single "Санузел" label: digits inside the
// match give the count (1 when the label matches without one), the
// separate/combined keywords decide which side it lands on. A side the
// text left unresolved falls back to its explicit column; both nil means
// the elements are omitted.
func ExtractBathrooms(r *models.ListingRecord) (separate, combined *string) {
	if m := wcRe.FindStringSubmatch(r.ApartmentDetails.String()); m != nil {
		segment := strings.ToLower(m[1])
		count := "1"
		if d := firstDigitsRe.FindString(segment); d != "" {
			count = d
		}
		if strings.Contains(segment, "раздель") {
			separate = &count
		}
		if strings.Contains(segment, "совмещ") || strings.Contains(segment, "совмест") {
			combined = &count
		}
	}
	if separate == nil && r.SeparateWcs.Valid {
		v := strconv.Itoa(r.SeparateWcs.Value)
		separate = &v
	}
	if combined == nil && r.CombinedWcs.Valid {
		v := strconv.Itoa(r.CombinedWcs.Value)
		combined = &v
	}
	return separate, combined
}

// ExtractLoggias returns the loggia count or nil for omission.
func ExtractLoggias(r *models.ListingRecord) *string {
	return countOrLabel(r.Loggias, loggiasRe, r.ApartmentDetails.String())
}

// ExtractBalconies returns the balcony count or nil for omission.
func ExtractBalconies(r *models.ListingRecord) *string {
	return countOrLabel(r.Balconies, balconiesRe, r.ApartmentDetails.String())
}

// ExtractBeds returns the beds count or nil for omission.
func ExtractBeds(r *models.ListingRecord) *string {
	return countOrLabel(r.BedsCount, bedsRe, r.ApartmentDetails.String())
}

func countOrLabel(explicit models.FlexInt, re *regexp.Regexp, text string) *string {
	if explicit.Valid {
		v := strconv.Itoa(explicit.Value)
		return &v
	}
	if m := re.FindStringSubmatch(text); m != nil {
		return &m[1]
	}
	return nil
}

// ExtractWindowsView resolves the windows orientation enum: the explicit
// column wins, then street/yard keyword cues in the details text. Both
// cues present yield the combined value; neither yields omission.
func ExtractWindowsView(r *models.ListingRecord) string {
	if v := r.WindowsView.String(); v != "" {
		return v
	}
	text := strings.ToLower(r.ApartmentDetails.String())
	street := strings.Contains(text, "улиц")
	yard := strings.Contains(text, "двор")
	switch {
	case street && yard:
		return windowsYardAndStreet
	case street:
		return windowsStreet
	case yard:
		return windowsYard
	}
	return ""
}

// ExtractRoomType resolves the room layout enum from the explicit column
// or the first matching layout cue; "" means omit.
func ExtractRoomType(r *models.ListingRecord) string {
	if v := r.RoomType.String(); v != "" {
		return v
	}
	text := strings.ToLower(r.ApartmentDetails.String())
	for _, c := range roomTypeCues {
		if strings.Contains(text, c.cue) {
			return c.enum
		}
	}
	return ""
}

// ExtractBuildYear pulls the four-digit build year out of house_details,
// falling back to the explicit column; "" means omit.
func ExtractBuildYear(r *models.ListingRecord) string {
	if m := buildYearRe.FindStringSubmatch(r.HouseDetails.String()); m != nil {
		return m[1]
	}
	if r.YearBuilt.Valid {
		return strconv.Itoa(r.YearBuilt.Value)
	}
	return ""
}

// ExtractPricing mines the rental-conditions text for the price triad.
// Price and deposit degrade to "0", prepay months to "1".
func ExtractPricing(r *models.ListingRecord) (price, deposit, prepay string) {
	rental := r.RentalConditions.String()

	price = "0"
	if m := priceRe.FindStringSubmatch(rental); m != nil {
		price = NormalizePrice(m[1])
	}
	deposit = "0"
	if m := depositRe.FindStringSubmatch(rental); m != nil {
		deposit = NormalizePrice(m[1])
	}
	prepay = "1"
	if m := prepayRe.FindStringSubmatch(rental); m != nil {
		prepay = m[1]
	}
	return price, deposit, prepay
}
