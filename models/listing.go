package models

import "strings"

// ListingRecord is one rental object row as fetched from the store.
// Source rows are loosely typed: any field may be missing, null, or carry a
// variant representation (number-as-string, bool-as-string, photo map vs
// list). The Flex* types absorb that at the decoding boundary so the feed
// engine only ever sees typed, nullable lookups.
type ListingRecord struct {
	ID         FlexString `json:"id"`
	ExternalID FlexString `json:"external_id"`
	Status     Flex       `json:"status"`

	Address     FlexString `json:"address"`
	Description FlexString `json:"description"`

	Rooms       FlexInt `json:"rooms"`
	BedsCount   FlexInt `json:"beds_count"`
	Floor       FlexInt `json:"floor"`
	TotalFloors FlexInt `json:"total_floors"`

	// Free-text blobs mined by the extractors.
	ApartmentDetails   FlexString `json:"apartment_details"`
	HouseDetails       FlexString `json:"house_details"`
	RentalConditions   FlexString `json:"rental_conditions"`
	ApartmentAmenities FlexString `json:"apartment_amenities"`

	TotalArea   FlexString `json:"total_area"`
	LivingArea  FlexString `json:"living_area"`
	KitchenArea FlexString `json:"kitchen_area"`

	RoomType    FlexString `json:"room_type"`
	WindowsView FlexString `json:"windows_view"`
	SeparateWcs FlexInt    `json:"separate_wcs"`
	CombinedWcs FlexInt    `json:"combined_wcs"`
	Loggias     FlexInt    `json:"loggias_count"`
	Balconies   FlexInt    `json:"balcony_count"`
	YearBuilt   FlexInt    `json:"year_built"`

	MainPhotoURL FlexString `json:"main_photo_url"`
	PhotosJSON   PhotoSet   `json:"photos_json"`

	PromotionType FlexString `json:"promotion_type"`
	AuctionBet    FlexString `json:"auction_bet"`
	IsApartments  Flex       `json:"is_apartments"`

	Phone       Flex       `json:"phone"`
	Phones      Flex       `json:"phones"`
	Email       FlexString `json:"email"`
	ContactName FlexString `json:"contact_name"`
	AgentID     FlexString `json:"agent_id"`

	SubAgentFirstName FlexString `json:"subagent_first_name"`
	SubAgentLastName  FlexString `json:"subagent_last_name"`
	SubAgentEmail     FlexString `json:"subagent_email"`
	SubAgentPhone     FlexString `json:"subagent_phone"`
	SubAgentAvatarURL FlexString `json:"subagent_avatar_url"`

	BuildingName  FlexString `json:"building_name"`
	ComplexID     FlexString `json:"complex_id"`
	ComplexName   FlexString `json:"complex_name"`
	HouseID       FlexString `json:"house_id"`
	HouseName     FlexString `json:"house_name"`
	FlatNumber    FlexString `json:"flat_number"`
	SectionNumber FlexString `json:"section_number"`

	// Explicit boolean columns; the flag table resolves them ahead of any
	// amenity keyword match.
	HasInternet         Flex `json:"has_internet"`
	HasFurniture        Flex `json:"has_furniture"`
	HasRoomFurniture    Flex `json:"has_room_furniture"`
	HasKitchenFurniture Flex `json:"has_kitchen_furniture"`
	HasTv               Flex `json:"has_tv"`
	HasWasher           Flex `json:"has_washer"`
	HasConditioner      Flex `json:"has_conditioner"`
	HasBathtub          Flex `json:"has_bathtub"`
	HasShower           Flex `json:"has_shower"`
	HasDishwasher       Flex `json:"has_dishwasher"`
	HasFridge           Flex `json:"has_fridge"`
	PetsAllowed         Flex `json:"pets_allowed"`
	ChildrenAllowed     Flex `json:"children_allowed"`

	// Agent is attached by the caller after an agent lookup; nil is valid.
	Agent *AgentRecord `json:"-"`
}

// IsPublished reports whether the listing is eligible for the feed. The
// status column holds either a string or a boolean depending on the source
// generation.
func (r *ListingRecord) IsPublished() bool {
	switch v := r.Status.Raw().(type) {
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "published")
	case bool:
		return v
	}
	return false
}

// AgentRecord is one agent row, associated to listings via agent_id.
type AgentRecord struct {
	ID        FlexString `json:"id"`
	Name      FlexString `json:"name"`
	FirstName FlexString `json:"first_name"`
	LastName  FlexString `json:"last_name"`
	Surname   FlexString `json:"surname"`
	Phone     Flex       `json:"phone"`
	Email     FlexString `json:"email"`
	AvatarURL FlexString `json:"avatar_url"`
}

// DisplayName returns the best available human-readable agent name.
func (a *AgentRecord) DisplayName() string {
	if s := a.Name.String(); s != "" {
		return s
	}
	first := a.FirstName.String()
	last := a.LastName.String()
	if last == "" {
		last = a.Surname.String()
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}
