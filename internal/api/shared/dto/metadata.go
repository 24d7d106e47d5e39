package dto

import (
	"encoding/json"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// MetadataResponse represents a normalized metadata document
type MetadataResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Image       *string             `json:"image"`
	BgColor     *string             `json:"bg_color"`
	TextColor   *string             `json:"text_color"`
	QrColor     *string             `json:"qr_color"`
	Logo        *string             `json:"logo"`
	Visibility  *string             `json:"visibility"`
	Category    *string             `json:"category"`
	City        *string             `json:"city"`
	ParseStatus schema.ParseStatus  `json:"parse_status"`
	ContentHash *string             `json:"content_hash"`
	Location    *LocationResponse   `json:"location"`
	Attributes  []AttributeResponse `json:"attributes"`
	Raw         json.RawMessage     `json:"raw,omitempty"`
}

// LocationResponse represents the location block of a metadata document
type LocationResponse struct {
	Address    *string  `json:"address"`
	Address2   *string  `json:"address2"`
	City       *string  `json:"city"`
	Region     *string  `json:"region"`
	PostalCode *string  `json:"postal_code"`
	Country    *string  `json:"country"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	CityID     *string  `json:"city_id"`
	CountryID  *string  `json:"country_id"`
}

// AttributeResponse represents one trait of a metadata document
type AttributeResponse struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// MapMetadataToDTO maps a metadata row with its location and attributes to its response
func MapMetadataToDTO(m *schema.TokenMetadata, location *schema.Location, attributes []schema.Attribute) *MetadataResponse {
	resp := &MetadataResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Image:       m.Image,
		BgColor:     m.BgColor,
		TextColor:   m.TextColor,
		QrColor:     m.QrColor,
		Logo:        m.Logo,
		Visibility:  m.Visibility,
		Category:    m.Category,
		City:        m.City,
		ParseStatus: m.ParseStatus,
		ContentHash: m.ContentHash,
		Attributes:  make([]AttributeResponse, 0, len(attributes)),
	}

	if len(m.Raw) > 0 {
		resp.Raw = json.RawMessage(m.Raw)
	}

	if location != nil {
		resp.Location = &LocationResponse{
			Address:    location.Address,
			Address2:   location.Address2,
			City:       location.City,
			Region:     location.Region,
			PostalCode: location.PostalCode,
			Country:    location.Country,
			Lat:        location.Lat,
			Lng:        location.Lng,
			CityID:     location.CityID,
			CountryID:  location.CountryID,
		}
	}

	for _, a := range attributes {
		resp.Attributes = append(resp.Attributes, AttributeResponse{
			TraitType: a.TraitType,
			Value:     a.Value,
		})
	}

	return resp
}
