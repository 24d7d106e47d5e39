package schema

// Country represents the countries table - shared reference rows keyed by normalized name
type Country struct {
	ID   string  `gorm:"column:id;primaryKey;type:text"`
	Name string  `gorm:"column:name;type:text;not null"`
	Code *string `gorm:"column:code;type:text"`
	// TotalCoupons counts metadata documents whose location references the country
	TotalCoupons uint64 `gorm:"column:total_coupons;not null"`
}

// TableName specifies the table name for the Country model
func (Country) TableName() string {
	return "countries"
}
