package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placeholder = "/room-placeholder.jpg"

func validListing() Listing {
	return Listing{
		ID:       "abc",
		Title:    "Spacious 1BHK near Metro",
		RoomType: RoomType1BHK,
		District: DistrictNoida,
		Location: "Sector 62, Noida",
		Price:    8000,
		Phone:    "9876543210",
		ImageURL: "https://cdn.example/room.jpg",
		Status:   StatusActive,
	}
}

func TestNormalize_AcceptsValidDocument(t *testing.T) {
	t.Parallel()

	l := validListing()
	require.NoError(t, l.Normalize(placeholder))
	assert.Equal(t, "https://cdn.example/room.jpg", l.ImageURL)
}

func TestNormalize_RejectsMalformedDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Listing)
	}{
		{"missing price", func(l *Listing) { l.Price = 0 }},
		{"negative price", func(l *Listing) { l.Price = -100 }},
		{"unknown room type", func(l *Listing) { l.RoomType = "Penthouse" }},
		{"unknown district", func(l *Listing) { l.District = "Atlantis" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := validListing()
			tc.mutate(&l)
			assert.Error(t, l.Normalize(placeholder))
		})
	}
}

func TestNormalize_CoercesDefaults(t *testing.T) {
	t.Parallel()

	l := validListing()
	l.ImageURL = ""
	l.Status = ""
	l.Title = ""

	require.NoError(t, l.Normalize(placeholder))
	assert.Equal(t, placeholder, l.ImageURL, "imageURL is never empty")
	assert.Equal(t, StatusActive, l.Status)
	assert.Equal(t, "1BHK in Noida", l.Title)
}

func TestNormalize_DistrictIsOptional(t *testing.T) {
	t.Parallel()

	l := validListing()
	l.District = ""
	l.Title = ""
	require.NoError(t, l.Normalize(placeholder))
	assert.Equal(t, "1BHK", l.Title)
}

func TestDeriveTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PG in Delhi", DeriveTitle(RoomTypePG, DistrictDelhi))
	assert.Equal(t, "Flat", DeriveTitle(RoomTypeFlat, ""))
}
