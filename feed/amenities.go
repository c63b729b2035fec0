package feed

import (
	"encoding/xml"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"cian-feed/models"
)

//go:embed vocabulary.yaml
var vocabularyYAML []byte

// Vocabulary holds the canonical amenity mapping and the ordered boolean
// flag table. It is built once at startup and only read afterwards, so it
// is safe for concurrent use.
type Vocabulary struct {
	Amenities map[string]string `yaml:"amenities"`
	Flags     []FlagRule        `yaml:"flags"`
}

// FlagRule is one (output flag, explicit column, amenity keyword) triple.
// An empty keyword means the flag resolves from its column and bespoke
// rules only.
type FlagRule struct {
	Name    string `yaml:"name"`
	Field   string `yaml:"field"`
	Keyword string `yaml:"keyword"`
}

// flagColumns maps the table's field names onto record columns. A rule
// naming a field absent here is a programmer error caught at load.
var flagColumns = map[string]func(*models.ListingRecord) any{
	"has_internet":          func(r *models.ListingRecord) any { return r.HasInternet.Raw() },
	"has_furniture":         func(r *models.ListingRecord) any { return r.HasFurniture.Raw() },
	"has_room_furniture":    func(r *models.ListingRecord) any { return r.HasRoomFurniture.Raw() },
	"has_kitchen_furniture": func(r *models.ListingRecord) any { return r.HasKitchenFurniture.Raw() },
	"has_tv":                func(r *models.ListingRecord) any { return r.HasTv.Raw() },
	"has_washer":            func(r *models.ListingRecord) any { return r.HasWasher.Raw() },
	"has_conditioner":       func(r *models.ListingRecord) any { return r.HasConditioner.Raw() },
	"has_bathtub":           func(r *models.ListingRecord) any { return r.HasBathtub.Raw() },
	"has_shower":            func(r *models.ListingRecord) any { return r.HasShower.Raw() },
	"has_dishwasher":        func(r *models.ListingRecord) any { return r.HasDishwasher.Raw() },
	"has_fridge":            func(r *models.ListingRecord) any { return r.HasFridge.Raw() },
	"pets_allowed":          func(r *models.ListingRecord) any { return r.PetsAllowed.Raw() },
	"children_allowed":      func(r *models.ListingRecord) any { return r.ChildrenAllowed.Raw() },
}

// LoadVocabulary parses and validates a vocabulary document.
func LoadVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("vocabulary: parse: %w", err)
	}
	if len(v.Flags) == 0 {
		return nil, fmt.Errorf("vocabulary: empty flag table")
	}
	for _, rule := range v.Flags {
		if rule.Name == "" {
			return nil, fmt.Errorf("vocabulary: flag with empty name")
		}
		if _, ok := flagColumns[rule.Field]; !ok {
			return nil, fmt.Errorf("vocabulary: flag %s references unknown field %q", rule.Name, rule.Field)
		}
	}
	return &v, nil
}

// MustLoadVocabulary loads the embedded vocabulary. A malformed table is
// a programmer error, fatal at process start.
func MustLoadVocabulary() *Vocabulary {
	v, err := LoadVocabulary(vocabularyYAML)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseAmenities splits the raw amenity text and maps each item through
// the canonical vocabulary, order preserved. The second return is the
// lowercased original items, kept for keyword lookups.
func (v *Vocabulary) ParseAmenities(text string) (canonical, lowered []string) {
	for _, item := range SplitItems(text) {
		low := strings.ToLower(item)
		lowered = append(lowered, low)
		if mapped, ok := v.Amenities[low]; ok {
			canonical = append(canonical, mapped)
		} else {
			canonical = append(canonical, item)
		}
	}
	return canonical, lowered
}

// ResolveFlags computes the ordered boolean flag list for one listing.
// Per flag: the explicit column is authoritative, then the amenity
// keyword sets true, then the bespoke furniture/pets/children rules.
// Flags with no signal at all are left out entirely.
func (v *Vocabulary) ResolveFlags(r *models.ListingRecord, lowered []string) []models.BoolFlag {
	rentalText := strings.ToLower(r.RentalConditions.String())

	var out []models.BoolFlag
	for _, rule := range v.Flags {
		val := CoerceBool(flagColumns[rule.Field](r))
		if val == nil && rule.Keyword != "" && hasKeyword(lowered, rule.Keyword) {
			val = boolPtr(true)
		}
		if val == nil {
			switch rule.Name {
			case "HasFurniture":
				val = resolveFurniture(r, lowered)
			case "PetsAllowed":
				val = resolveTermsCue(rentalText, "с животными", "без животных")
			case "ChildrenAllowed":
				val = resolveTermsCue(rentalText, "с детьми", "без детей")
			}
		}
		if val != nil {
			out = append(out, models.BoolFlag{
				XMLName: xml.Name{Local: rule.Name},
				Value:   *val,
			})
		}
	}
	return out
}

// resolveFurniture covers listings that only state room or kitchen
// furniture: either amenity keyword or either dedicated column counts.
func resolveFurniture(r *models.ListingRecord, lowered []string) *bool {
	if hasKeyword(lowered, "мебель в комнатах") || hasKeyword(lowered, "мебель на кухне") {
		return boolPtr(true)
	}
	if v := CoerceBool(r.HasRoomFurniture.Raw()); v != nil && *v {
		return boolPtr(true)
	}
	if v := CoerceBool(r.HasKitchenFurniture.Raw()); v != nil && *v {
		return boolPtr(true)
	}
	return nil
}

// resolveTermsCue scans the rental-terms text for an allow/deny pair.
// The negative cue is checked first since the affirmative is usually its
// substring ("с детьми" in "без детей и животных" style texts).
func resolveTermsCue(text, affirmative, negative string) *bool {
	if text == "" {
		return nil
	}
	if strings.Contains(text, negative) {
		return boolPtr(false)
	}
	if strings.Contains(text, affirmative) {
		return boolPtr(true)
	}
	return nil
}

func hasKeyword(lowered []string, keyword string) bool {
	for _, item := range lowered {
		if strings.Contains(item, keyword) {
			return true
		}
	}
	return false
}
