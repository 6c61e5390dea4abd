package models

import (
	"fmt"
	"time"
)

type RoomType string

const (
	RoomTypePG     RoomType = "PG"
	RoomTypeSingle RoomType = "Single Room"
	RoomType1BHK   RoomType = "1BHK"
	RoomType2BHK   RoomType = "2BHK"
	RoomType3BHK   RoomType = "3BHK"
	RoomTypeFlat   RoomType = "Flat"
)

var RoomTypes = []RoomType{
	RoomTypePG, RoomTypeSingle, RoomType1BHK, RoomType2BHK, RoomType3BHK, RoomTypeFlat,
}

func (r RoomType) Valid() bool {
	for _, t := range RoomTypes {
		if r == t {
			return true
		}
	}
	return false
}

type District string

const (
	DistrictNoida        District = "Noida"
	DistrictGreaterNoida District = "Greater Noida"
	DistrictDelhi        District = "Delhi"
	DistrictGurugram     District = "Gurugram"
	DistrictGhaziabad    District = "Ghaziabad"
	DistrictFaridabad    District = "Faridabad"
)

var Districts = []District{
	DistrictNoida, DistrictGreaterNoida, DistrictDelhi,
	DistrictGurugram, DistrictGhaziabad, DistrictFaridabad,
}

func (d District) Valid() bool {
	for _, x := range Districts {
		if d == x {
			return true
		}
	}
	return false
}

const StatusActive = "active"

// Listing is a rentable-room record. The store owns the persisted copy;
// everything in-process is a read-only mirror of it.
type Listing struct {
	ID          string    `bson:"-" json:"id"`
	Title       string    `bson:"title" json:"title"`
	District    District  `bson:"district,omitempty" json:"district,omitempty"`
	Location    string    `bson:"location" json:"location"`
	Price       int64     `bson:"price" json:"price"`
	Phone       string    `bson:"phone" json:"phone"`
	Description string    `bson:"description" json:"description"`
	RoomType    RoomType  `bson:"roomType" json:"roomType"`
	ImageURL    string    `bson:"imageURL" json:"imageURL"`
	VideoURL    *string   `bson:"videoURL" json:"videoURL"`
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	OwnerEmail  string    `bson:"ownerEmail" json:"ownerEmail"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	Status      string    `bson:"status" json:"status"`
}

// Normalize validates a listing read back from the store and coerces the
// fields that have documented fallbacks. Documents that fail here are
// dropped at the read edge rather than handed to the UI.
func (l *Listing) Normalize(placeholderURL string) error {
	if l.Price <= 0 {
		return fmt.Errorf("listing %s: price %d is not positive", l.ID, l.Price)
	}
	if !l.RoomType.Valid() {
		return fmt.Errorf("listing %s: unknown room type %q", l.ID, l.RoomType)
	}
	if l.District != "" && !l.District.Valid() {
		return fmt.Errorf("listing %s: unknown district %q", l.ID, l.District)
	}
	if l.ImageURL == "" {
		l.ImageURL = placeholderURL
	}
	if l.Status == "" {
		l.Status = StatusActive
	}
	if l.Title == "" {
		l.Title = DeriveTitle(l.RoomType, l.District)
	}
	return nil
}

// DeriveTitle builds the display title used when the form leaves it blank.
func DeriveTitle(rt RoomType, d District) string {
	if d == "" {
		return string(rt)
	}
	return fmt.Sprintf("%s in %s", rt, d)
}
