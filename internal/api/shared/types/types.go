package types

// Expansion enumeration for expansions
type Expansion string

const (
	ExpansionCoupons    Expansion = "coupons"
	ExpansionAffiliates Expansion = "affiliates"
	ExpansionMetadata   Expansion = "metadata"
)

// Valid checks if an expansion is valid
func (e Expansion) Valid() bool {
	return e == ExpansionCoupons ||
		e == ExpansionAffiliates ||
		e == ExpansionMetadata
}
