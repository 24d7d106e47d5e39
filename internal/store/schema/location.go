package schema

// Location represents the locations table - the address block of a metadata document
type Location struct {
	// ID is {metadataID}-location
	ID         string   `gorm:"column:id;primaryKey;type:text"`
	MetadataID string   `gorm:"column:metadata_id;type:text;not null;index:idx_locations_metadata_id"`
	Address    *string  `gorm:"column:address;type:text"`
	Address2   *string  `gorm:"column:address2;type:text"`
	City       *string  `gorm:"column:city;type:text"`
	Region     *string  `gorm:"column:region;type:text"`
	PostalCode *string  `gorm:"column:postal_code;type:text"`
	Country    *string  `gorm:"column:country;type:text"`
	Lat        *float64 `gorm:"column:lat"`
	Lng        *float64 `gorm:"column:lng"`
	CityID     *string  `gorm:"column:city_id;type:text;index:idx_locations_city_id"`
	CountryID  *string  `gorm:"column:country_id;type:text;index:idx_locations_country_id"`
}

// TableName specifies the table name for the Location model
func (Location) TableName() string {
	return "locations"
}
