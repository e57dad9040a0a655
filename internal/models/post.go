package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListingType says whether a post is for sale or for rent.
type ListingType string

const (
	ListingSale ListingType = "SALE"
	ListingRent ListingType = "RENT"
)

// PropertyKind tags which details variant a post carries.
type PropertyKind string

const (
	PropertyApartment PropertyKind = "APARTMENT"
	PropertyHouse     PropertyKind = "HOUSE"
	PropertyLandPlot  PropertyKind = "LAND_PLOT"
)

var ErrDetailsMismatch = errors.New("property details do not match property type")

// Valid reports whether k is a known property kind.
func (k PropertyKind) Valid() bool {
	switch k {
	case PropertyApartment, PropertyHouse, PropertyLandPlot:
		return true
	}
	return false
}

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	return t == ListingSale || t == ListingRent
}

// Post is the stored record for a property listing.
type Post struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID     string         `gorm:"type:uuid;not null;index" json:"ownerId"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	ListingType ListingType    `gorm:"type:text;not null;index" json:"listingType"`
	Property    PropertyKind   `gorm:"type:text;not null;index" json:"property"`
	City        string         `gorm:"index" json:"city"`
	Address     string         `json:"address"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	Details     datatypes.JSON `json:"details"`
	Rooms       int            `gorm:"index" json:"rooms"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// BeforeCreate assigns the post id.
func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	assignID(&p.ID)
	return
}

// ApartmentDetails are the attributes specific to an APARTMENT post.
type ApartmentDetails struct {
	Rooms       int     `json:"rooms" binding:"gte=0"`
	Floor       int     `json:"floor"`
	TotalFloors int     `json:"totalFloors"`
	Area        float64 `json:"area" binding:"gt=0"`
}

// HouseDetails are the attributes specific to a HOUSE post.
type HouseDetails struct {
	Rooms    int     `json:"rooms" binding:"gte=0"`
	Floors   int     `json:"floors"`
	Area     float64 `json:"area" binding:"gt=0"`
	LandArea float64 `json:"landArea"`
}

// LandPlotDetails are the attributes specific to a LAND_PLOT post.
type LandPlotDetails struct {
	Area    float64 `json:"area" binding:"gt=0"`
	Purpose string  `json:"purpose"`
}

// PropertyDetails is implemented by exactly the three variants above.
type PropertyDetails interface {
	Kind() PropertyKind
	RoomCount() int
}

func (ApartmentDetails) Kind() PropertyKind { return PropertyApartment }
func (HouseDetails) Kind() PropertyKind     { return PropertyHouse }
func (LandPlotDetails) Kind() PropertyKind  { return PropertyLandPlot }

func (d ApartmentDetails) RoomCount() int { return d.Rooms }
func (d HouseDetails) RoomCount() int     { return d.Rooms }
func (LandPlotDetails) RoomCount() int    { return 0 }

// DecodeDetails parses raw into the variant selected by kind.
// Unknown fields are rejected so an apartment payload can't be stored on a land plot.
func DecodeDetails(kind PropertyKind, raw []byte) (PropertyDetails, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var target PropertyDetails
	switch kind {
	case PropertyApartment:
		var d ApartmentDetails
		if err := strictUnmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDetailsMismatch, err)
		}
		target = d
	case PropertyHouse:
		var d HouseDetails
		if err := strictUnmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDetailsMismatch, err)
		}
		target = d
	case PropertyLandPlot:
		var d LandPlotDetails
		if err := strictUnmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDetailsMismatch, err)
		}
		target = d
	default:
		return nil, fmt.Errorf("unknown property type %q", kind)
	}
	return target, nil
}

// SetDetails stores d on the post and keeps Property and Rooms in sync with it.
func (p *Post) SetDetails(d PropertyDetails) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	p.Property = d.Kind()
	p.Rooms = d.RoomCount()
	p.Details = datatypes.JSON(raw)
	return nil
}

// TypedDetails decodes the stored details column.
func (p *Post) TypedDetails() (PropertyDetails, error) {
	return DecodeDetails(p.Property, p.Details)
}

func strictUnmarshal(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// MapPin is the lightweight projection used by the map browse view.
type MapPin struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Price       float64      `json:"price"`
	ListingType ListingType  `json:"listingType"`
	Property    PropertyKind `json:"property"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
}

// Favorite links a user to a saved post.
type Favorite struct {
	UserID    string    `gorm:"primaryKey;type:uuid" json:"userId"`
	PostID    string    `gorm:"primaryKey;type:uuid" json:"postId"`
	Post      Post      `gorm:"foreignKey:PostID" json:"post"`
	CreatedAt time.Time `json:"createdAt"`
}
