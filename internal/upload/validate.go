package upload

import (
	"strings"

	"github.com/yashraj-ghemud/royal-state/internal/apperr"
	"github.com/yashraj-ghemud/royal-state/internal/models"
)

// Form carries the admin posting form. Title is optional; a blank one is
// derived from the room type and district.
type Form struct {
	Title       string
	Location    string
	Description string
	Phone       string
	Price       int64
	RoomType    models.RoomType
	District    models.District
}

// validate runs entirely locally. Each rejection carries its own
// user-facing reason; nothing has touched the network yet.
func validate(f *Form) error {
	if strings.TrimSpace(f.Location) == "" {
		return apperr.NewValidationError("location", "Please enter the location")
	}
	if strings.TrimSpace(f.Description) == "" {
		return apperr.NewValidationError("description", "Please describe the room")
	}
	if f.Price <= 0 {
		return apperr.NewValidationError("price", "Please enter a valid monthly rent")
	}
	if !isTenDigits(f.Phone) {
		return apperr.NewValidationError("phone", "Phone number must be exactly 10 digits")
	}
	if f.District == "" {
		return apperr.NewValidationError("district", "Please select a region")
	}
	if !f.District.Valid() {
		return apperr.NewValidationError("district", "Please select a valid region")
	}
	if !f.RoomType.Valid() {
		return apperr.NewValidationError("roomType", "Please choose a room type")
	}
	return nil
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
