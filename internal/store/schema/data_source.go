package schema

// DataSourceTemplate names a dynamic data source kind
type DataSourceTemplate string

const (
	// DataSourceLazyMint watches the logs of a deployed coupon contract; Param is the address
	DataSourceLazyMint DataSourceTemplate = "lazy_mint"
	// DataSourceTokenMetadata fetches a metadata document; Param is the CID
	DataSourceTokenMetadata DataSourceTemplate = "token_metadata"
)

// DataSource represents the data_sources table - dynamic sources registered while indexing
type DataSource struct {
	Template       DataSourceTemplate `gorm:"column:template;primaryKey;type:text"`
	Param          string             `gorm:"column:param;primaryKey;type:text"`
	CreatedAtBlock uint64             `gorm:"column:created_at_block;not null;index:idx_data_sources_created_at_block"`
}

// TableName specifies the table name for the DataSource model
func (DataSource) TableName() string {
	return "data_sources"
}
