package feed

import (
	"fmt"
	"strconv"

	"cian-feed/models"
)

// Fixed marketplace constants for long-term apartment rent.
const (
	feedVersion = "2"

	categoryFlatRent = "flatRent"
	typeApartment    = "apartment"
	statusPublished  = "published"
	promotionNone    = "noPromotion"

	currencyRUB    = "RUB"
	paymentMonthly = "month"
	clientFee      = "false"
	landlordFee    = "true"
	bargainStatus  = "approved"
)

// Builder assembles the feed document from listing rows. It holds only
// the read-only vocabulary, so one Builder serves concurrent batches.
type Builder struct {
	vocab *Vocabulary
}

// NewBuilder creates a Builder over the given vocabulary.
func NewBuilder(vocab *Vocabulary) *Builder {
	return &Builder{vocab: vocab}
}

// Build assembles the document. Objects appear in batch order; an empty
// batch yields the minimal document with just the version marker.
func (b *Builder) Build(listings []*models.ListingRecord) *models.Feed {
	doc := &models.Feed{Version: feedVersion}
	for i, r := range listings {
		doc.Objects = append(doc.Objects, b.buildObject(i+1, r))
	}
	return doc
}

func (b *Builder) buildObject(idx int, r *models.ListingRecord) models.Object {
	total, living, kitchen := ExtractAreas(r)
	separateWcs, combinedWcs := ExtractBathrooms(r)
	price, deposit, prepay := ExtractPricing(r)
	amenities, lowered := b.vocab.ParseAmenities(r.ApartmentAmenities.String())

	obj := models.Object{
		ExternalID:       r.ExternalID.Or(fmt.Sprintf("apt_%d", idx)),
		Status:           r.Status.StringOr(statusPublished),
		Category:         categoryFlatRent,
		RoomType:         ExtractRoomType(r),
		Type:             typeApartment,
		Address:          models.Address{AddressLine: r.Address.String()},
		Description:      r.Description.String(),
		FlatRoomsCount:   ExtractRooms(r),
		FloorNumber:      strconv.Itoa(r.Floor.Or(1)),
		FloorsTotal:      strconv.Itoa(r.TotalFloors.Or(1)),
		TotalArea:        total,
		LivingSpace:      living,
		KitchenSpace:     kitchen,
		SeparateWcsCount: deref(separateWcs),
		CombinedWcsCount: deref(combinedWcs),
		LoggiasCount:     deref(ExtractLoggias(r)),
		BalconiesCount:   deref(ExtractBalconies(r)),
		BedsCount:        deref(ExtractBeds(r)),
		WindowsViewType:  ExtractWindowsView(r),
		BargainTerms: models.BargainTerms{
			Price:         price,
			Currency:      currencyRUB,
			PaymentPeriod: paymentMonthly,
			Deposit:       deposit,
			Prepay:        prepay,
			ClientFee:     clientFee,
			LandlordFee:   landlordFee,
			BargainStatus: bargainStatus,
		},
		Photos:        buildPhotos(r),
		PromotionType: r.PromotionType.Or(promotionNone),
		IsApartments:  CoerceBool(r.IsApartments.Raw()),
		Contacts:      buildContacts(r),
		SubAgent:      buildSubAgent(r),
		Building:      buildBuilding(r),
		JK:            buildJK(r),
		Flags:         b.vocab.ResolveFlags(r, lowered),
	}

	if bet := r.AuctionBet.String(); bet != "" {
		obj.Auction = &models.Auction{Bet: bet}
	}
	if len(amenities) > 0 {
		obj.FlatAmenities = &models.FlatAmenities{Amenity: amenities}
	}
	return obj
}

// buildPhotos assembles the ordered de-duplicated photo list. The main
// photo, when present, comes first and is the only one flagged default.
func buildPhotos(r *models.ListingRecord) models.Photos {
	var urls []string
	seen := make(map[string]struct{})

	add := func(u string) {
		if u == "" {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	main := r.MainPhotoURL.String()
	add(main)
	for _, u := range r.PhotosJSON.URLs() {
		add(u)
	}

	var photos models.Photos
	for i, u := range urls {
		photos.Photo = append(photos.Photo, models.Photo{
			FullURL:   u,
			IsDefault: i == 0 && main != "",
		})
	}
	return photos
}

// buildContacts emits a contact block only when at least one phone
// resolves from the agent or the listing columns.
func buildContacts(r *models.ListingRecord) *models.Contacts {
	var agentPhone any
	if r.Agent != nil {
		agentPhone = r.Agent.Phone.Raw()
	}
	phones := CollectPhones(agentPhone, r.Phone.Raw(), r.Phones.Raw())
	if len(phones) == 0 {
		return nil
	}

	contact := models.Contact{Name: r.ContactName.String()}
	if contact.Name == "" && r.Agent != nil {
		contact.Name = r.Agent.DisplayName()
	}
	for _, p := range phones {
		cc, number := SplitPhoneParts(p)
		contact.Phones.Phone = append(contact.Phones.Phone, models.PhoneSchema{
			CountryCode: cc,
			Number:      number,
		})
	}
	contact.Email = r.Email.String()
	if contact.Email == "" && r.Agent != nil {
		contact.Email = r.Agent.Email.String()
	}
	return &models.Contacts{Contact: contact}
}

// buildSubAgent emits a sub-agent block only when the listing names one
// explicitly. The agent's email back-fills a missing sub-agent email.
func buildSubAgent(r *models.ListingRecord) *models.SubAgent {
	first := r.SubAgentFirstName.String()
	last := r.SubAgentLastName.String()
	if first == "" && last == "" {
		return nil
	}
	sub := &models.SubAgent{
		Email:     r.SubAgentEmail.String(),
		Phone:     r.SubAgentPhone.String(),
		FirstName: first,
		LastName:  last,
		AvatarURL: r.SubAgentAvatarURL.String(),
	}
	if sub.Email == "" && r.Agent != nil {
		sub.Email = r.Agent.Email.String()
	}
	return sub
}

func buildBuilding(r *models.ListingRecord) models.Building {
	b := models.Building{
		Name:      r.BuildingName.String(),
		BuildYear: ExtractBuildYear(r),
	}
	if r.TotalFloors.Valid {
		b.FloorsNumber = strconv.Itoa(r.TotalFloors.Value)
	}
	return b
}

// buildJK assembles the complex/house/flat nesting; every level appears
// only when it or a descendant carries data.
func buildJK(r *models.ListingRecord) *models.JKSchema {
	var flat *models.JKFlat
	if r.FlatNumber.String() != "" || r.SectionNumber.String() != "" {
		flat = &models.JKFlat{
			FlatNumber:    r.FlatNumber.String(),
			SectionNumber: r.SectionNumber.String(),
		}
	}

	var house *models.JKHouse
	if r.HouseID.String() != "" || r.HouseName.String() != "" || flat != nil {
		house = &models.JKHouse{
			ID:   r.HouseID.String(),
			Name: r.HouseName.String(),
			Flat: flat,
		}
	}

	if r.ComplexID.String() == "" && r.ComplexName.String() == "" && house == nil {
		return nil
	}
	return &models.JKSchema{
		ID:    r.ComplexID.String(),
		Name:  r.ComplexName.String(),
		House: house,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
