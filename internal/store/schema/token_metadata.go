package schema

import (
	"gorm.io/datatypes"
)

// ParseStatus records how the last delivery of a metadata document was parsed
type ParseStatus string

const (
	// ParseStatusPending indicates the document was requested but not delivered yet
	ParseStatusPending ParseStatus = "pending"
	// ParseStatusParsed indicates the document was a JSON object
	ParseStatusParsed ParseStatus = "parsed"
	// ParseStatusEmpty indicates the delivered content was empty
	ParseStatusEmpty ParseStatus = "empty"
	// ParseStatusInvalid indicates the delivered content was not valid JSON
	ParseStatusInvalid ParseStatus = "invalid"
	// ParseStatusNotObject indicates the delivered content was JSON but not an object
	ParseStatusNotObject ParseStatus = "not_object"
)

// TokenMetadata represents the token_metadata table - the normalized off-chain
// document describing a coupon, keyed by its content identifier
type TokenMetadata struct {
	// ID is the content identifier (CID) of the document
	ID          string  `gorm:"column:id;primaryKey;type:text"`
	Name        string  `gorm:"column:name;type:text;not null"`
	Description *string `gorm:"column:description;type:text"`
	Image       *string `gorm:"column:image;type:text"`
	BgColor     *string `gorm:"column:bg_color;type:text"`
	TextColor   *string `gorm:"column:text_color;type:text"`
	QrColor     *string `gorm:"column:qr_color;type:text"`
	Logo        *string `gorm:"column:logo;type:text"`
	Visibility  *string `gorm:"column:visibility;type:text"`
	Category    *string `gorm:"column:category;type:text;index:idx_token_metadata_category"`
	// LocationID references the location block, when the document has one
	LocationID *string `gorm:"column:location_id;type:text"`
	// City is the denormalized city name of the location
	City *string `gorm:"column:city;type:text;index:idx_token_metadata_city"`
	// Attributes lists attribute ids in document order
	Attributes []string `gorm:"column:attributes;type:jsonb;serializer:json"`
	// ParseStatus tells how the last delivery was handled
	ParseStatus ParseStatus `gorm:"column:parse_status;type:text;not null"`
	// ContentHash is the sha256 of the canonical (RFC 8785) JSON form of the document
	ContentHash *string `gorm:"column:content_hash;type:text"`
	// Raw is the delivered document when it parsed as JSON
	Raw datatypes.JSON `gorm:"column:raw;type:jsonb"`
}

// TableName specifies the table name for the TokenMetadata model
func (TokenMetadata) TableName() string {
	return "token_metadata"
}
