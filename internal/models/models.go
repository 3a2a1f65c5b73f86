package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
)

// GeoHashPrecision is the length of the geohash stored on enriched offers (~150m cells).
const GeoHashPrecision = 7

// OfferType is the listing category. The zero value means "any category".
type OfferType int

const (
	OfferTypeUnset OfferType = iota
	Flat
	Room
	House
)

func (t OfferType) String() string {
	switch t {
	case Flat:
		return "flat"
	case Room:
		return "room"
	case House:
		return "house"
	}
	return ""
}

// ParseOfferType accepts flat, room or house (case-insensitive). An empty string is OfferTypeUnset.
func ParseOfferType(s string) (OfferType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return OfferTypeUnset, nil
	case "flat":
		return Flat, nil
	case "room":
		return Room, nil
	case "house":
		return House, nil
	}
	return OfferTypeUnset, fmt.Errorf("unknown offer type %q (want flat, room or house)", s)
}

// RoomType is the room-size category, only meaningful for Room offers.
type RoomType int

const (
	RoomTypeUnset RoomType = iota
	One
	Two
	ThreeOrMore
)

func (t RoomType) String() string {
	switch t {
	case One:
		return "one"
	case Two:
		return "two"
	case ThreeOrMore:
		return "three"
	}
	return ""
}

// ParseRoomType accepts one, two or three (case-insensitive). An empty string is RoomTypeUnset.
func ParseRoomType(s string) (RoomType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RoomTypeUnset, nil
	case "one", "1":
		return One, nil
	case "two", "2":
		return Two, nil
	case "three", "3":
		return ThreeOrMore, nil
	}
	return RoomTypeUnset, fmt.Errorf("unknown room type %q (want one, two or three)", s)
}

// FilterSpec holds the search parameters of a single scrape.
// Nil pointers and empty strings mean "not set".
type FilterSpec struct {
	OfferType OfferType
	RoomType  RoomType
	Query     string
	Place     string
	MinPrice  *int
	MaxPrice  *int
	Radius    *int
}

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("lat=%v, lng=%v", c.Lat, c.Lng)
}

// Offer holds the data extracted for a single listing.
type Offer struct {
	Title         string       `json:"title"`
	Link          string       `json:"link"`
	Place         string       `json:"place"`
	OfferType     OfferType    `json:"offer_type"`
	RoomType      RoomType     `json:"room_type"`
	Price         float64      `json:"price"`
	PublishedDate *time.Time   `json:"published_date,omitempty"`
	PhotoURL      string       `json:"photo_url"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	GeoHash       string       `json:"geohash,omitempty"`
}

// ApplyCoordinates attaches a geocode result to the offer.
// Applying the same coordinates again leaves the offer unchanged.
func (o *Offer) ApplyCoordinates(c Coordinates) {
	o.Coordinates = &Coordinates{Lat: c.Lat, Lng: c.Lng}
	o.GeoHash = geohash.EncodeWithPrecision(c.Lat, c.Lng, GeoHashPrecision)
}

// Batch is the enriched result of one scrape.
type Batch struct {
	ID          uuid.UUID  `json:"id"`
	Spec        FilterSpec `json:"-"`
	Target      string     `json:"target"`
	Offers      []Offer    `json:"offers"`
	CompletedAt time.Time  `json:"completed_at"`
}
