package schema

// ClaimerScope names the aggregate a unique-claimer membership belongs to
type ClaimerScope string

const (
	ClaimerScopeProject   ClaimerScope = "project"
	ClaimerScopeAffiliate ClaimerScope = "affiliate"
)

// UniqueClaimer represents the unique_claimers table - the membership index behind
// the ordered unique-claimer lists of projects and affiliates
type UniqueClaimer struct {
	Scope   ClaimerScope `gorm:"column:scope;primaryKey;type:text"`
	ScopeID string       `gorm:"column:scope_id;primaryKey;type:text"`
	UserID  string       `gorm:"column:user_id;primaryKey;type:text"`
	// Position is the index of the claimer in the owning list
	Position int `gorm:"column:position;not null"`
}

// TableName specifies the table name for the UniqueClaimer model
func (UniqueClaimer) TableName() string {
	return "unique_claimers"
}
