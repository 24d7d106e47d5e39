package schema

// Attribute represents the attributes table - one trait of a metadata document
type Attribute struct {
	// ID is {metadataID}-attribute-{index}
	ID         string `gorm:"column:id;primaryKey;type:text"`
	MetadataID string `gorm:"column:metadata_id;type:text;not null;index:idx_attributes_metadata_id"`
	// Position is the index of the entry in the document's attributes array
	Position  int    `gorm:"column:position;not null"`
	TraitType string `gorm:"column:trait_type;type:text;not null"`
	Value     string `gorm:"column:value;type:text;not null"`
}

// TableName specifies the table name for the Attribute model
func (Attribute) TableName() string {
	return "attributes"
}
