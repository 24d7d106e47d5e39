package schema

import "time"

// User represents the users table - one row per address seen in any event
type User struct {
	// Address is the lower-case hex address (primary key)
	Address string `gorm:"column:address;primaryKey;type:text"`
	// CreatedAtBlock is the block of the first event referencing the address
	CreatedAtBlock uint64 `gorm:"column:created_at_block;not null"`
	// CreatedAt is the timestamp of that block
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
