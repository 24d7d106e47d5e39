package schema

// City represents the cities table - shared reference rows keyed by normalized name and country
type City struct {
	ID        string  `gorm:"column:id;primaryKey;type:text"`
	Name      string  `gorm:"column:name;type:text;not null"`
	Region    *string `gorm:"column:region;type:text"`
	CountryID *string `gorm:"column:country_id;type:text;index:idx_cities_country_id"`
	// TotalCoupons counts metadata documents whose location references the city
	TotalCoupons uint64 `gorm:"column:total_coupons;not null"`
}

// TableName specifies the table name for the City model
func (City) TableName() string {
	return "cities"
}
