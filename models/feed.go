package models

import "encoding/xml"

// Feed is the document root. An empty batch serializes to just the version
// marker, which is the minimal document the marketplace accepts.
type Feed struct {
	XMLName xml.Name `xml:"Feed"`
	Version string   `xml:"Feed_Version"`
	Objects []Object `xml:"Object"`
}

// Object is one listing element. Field order here is the schema contract:
// the marketplace validator rejects reordered children, so never rearrange.
type Object struct {
	ExternalID       string         `xml:"ExternalId"`
	Auction          *Auction       `xml:"Auction,omitempty"`
	Status           string         `xml:"Status"`
	Category         string         `xml:"Category"`
	RoomType         string         `xml:"RoomType,omitempty"`
	Type             string         `xml:"Type"`
	Address          Address        `xml:"Address"`
	Description      string         `xml:"Description"`
	FlatRoomsCount   string         `xml:"FlatRoomsCount"`
	BedsCount        string         `xml:"BedsCount,omitempty"`
	FloorNumber      string         `xml:"FloorNumber"`
	FloorsTotal      string         `xml:"FloorsTotal"`
	TotalArea        string         `xml:"TotalArea"`
	LivingSpace      string         `xml:"LivingSpace"`
	KitchenSpace     string         `xml:"KitchenSpace"`
	SeparateWcsCount string         `xml:"SeparateWcsCount,omitempty"`
	CombinedWcsCount string         `xml:"CombinedWcsCount,omitempty"`
	LoggiasCount     string         `xml:"LoggiasCount,omitempty"`
	BalconiesCount   string         `xml:"BalconiesCount,omitempty"`
	WindowsViewType  string         `xml:"WindowsViewType,omitempty"`
	BargainTerms     BargainTerms   `xml:"BargainTerms"`
	Photos           Photos         `xml:"Photos"`
	PromotionType    string         `xml:"PromotionType"`
	IsApartments     *bool          `xml:"IsApartments,omitempty"`
	Contacts         *Contacts      `xml:"Contacts,omitempty"`
	SubAgent         *SubAgent      `xml:"SubAgent,omitempty"`
	Building         Building       `xml:"Building"`
	JK               *JKSchema      `xml:"JKSchema,omitempty"`
	FlatAmenities    *FlatAmenities `xml:"FlatAmenities,omitempty"`
	Flags            []BoolFlag
}

// Auction carries the promotion bid; emitted only when a bid is set.
type Auction struct {
	Bet string `xml:"Bet"`
}

type Address struct {
	AddressLine string `xml:"AddressLine"`
}

// BargainTerms holds pricing. Currency, payment period, fee flags and the
// bargain status are fixed by the marketplace contract.
type BargainTerms struct {
	Price         string `xml:"Price"`
	Currency      string `xml:"Currency"`
	PaymentPeriod string `xml:"PaymentPeriod"`
	Deposit       string `xml:"Deposit"`
	Prepay        string `xml:"Prepay"`
	ClientFee     string `xml:"ClientFee"`
	LandlordFee   string `xml:"LandlordFee"`
	BargainStatus string `xml:"BargainStatus"`
}

type Photos struct {
	Photo []Photo `xml:"Photo"`
}

type Photo struct {
	FullURL   string `xml:"FullUrl"`
	IsDefault bool   `xml:"IsDefault"`
}

type Contacts struct {
	Contact Contact `xml:"Contact"`
}

type Contact struct {
	Name   string `xml:"Name,omitempty"`
	Phones Phones `xml:"Phones"`
	Email  string `xml:"Email,omitempty"`
}

type Phones struct {
	Phone []PhoneSchema `xml:"PhoneSchema"`
}

type PhoneSchema struct {
	CountryCode string `xml:"CountryCode"`
	Number      string `xml:"Number"`
}

type SubAgent struct {
	Email     string `xml:"Email,omitempty"`
	Phone     string `xml:"Phone,omitempty"`
	FirstName string `xml:"FirstName,omitempty"`
	LastName  string `xml:"LastName,omitempty"`
	AvatarURL string `xml:"AvatarUrl,omitempty"`
}

type Building struct {
	Name         string `xml:"Name,omitempty"`
	FloorsNumber string `xml:"FloorsNumber,omitempty"`
	BuildYear    string `xml:"BuildYear,omitempty"`
}

type JKSchema struct {
	ID    string   `xml:"Id,omitempty"`
	Name  string   `xml:"Name,omitempty"`
	House *JKHouse `xml:"House,omitempty"`
}

type JKHouse struct {
	ID   string  `xml:"Id,omitempty"`
	Name string  `xml:"Name,omitempty"`
	Flat *JKFlat `xml:"Flat,omitempty"`
}

type JKFlat struct {
	FlatNumber    string `xml:"FlatNumber,omitempty"`
	SectionNumber string `xml:"SectionNumber,omitempty"`
}

type FlatAmenities struct {
	Amenity []string `xml:"Amenity"`
}

// BoolFlag is one resolved tri-state feature flag. Unresolved flags are
// never appended, so "unknown" means the element is simply absent.
type BoolFlag struct {
	XMLName xml.Name
	Value   bool `xml:",chardata"`
}
