package store

import (
	"context"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

// EntityStore is the document access used by the reconciliation engine.
// Getters return nil, nil when the record does not exist. Save methods upsert
// the full record; Create methods insert write-once records.
type EntityStore interface {
	// Transaction runs fn against a store bound to a single database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetUser(ctx context.Context, address string) (*schema.User, error)
	SaveUser(ctx context.Context, user *schema.User) error

	GetProject(ctx context.Context, id string) (*schema.Project, error)
	SaveProject(ctx context.Context, project *schema.Project) error

	GetCoupon(ctx context.Context, address string) (*schema.Coupon, error)
	SaveCoupon(ctx context.Context, coupon *schema.Coupon) error

	GetAffiliate(ctx context.Context, id string) (*schema.Affiliate, error)
	SaveAffiliate(ctx context.Context, affiliate *schema.Affiliate) error

	GetTokenMetadata(ctx context.Context, id string) (*schema.TokenMetadata, error)
	SaveTokenMetadata(ctx context.Context, metadata *schema.TokenMetadata) error

	GetLocation(ctx context.Context, id string) (*schema.Location, error)
	SaveLocation(ctx context.Context, location *schema.Location) error

	SaveAttribute(ctx context.Context, attribute *schema.Attribute) error

	GetCity(ctx context.Context, id string) (*schema.City, error)
	SaveCity(ctx context.Context, city *schema.City) error

	GetCountry(ctx context.Context, id string) (*schema.Country, error)
	SaveCountry(ctx context.Context, country *schema.Country) error

	GetCouponRedeemed(ctx context.Context, id string) (*schema.CouponRedeemed, error)
	CreateCouponRedeemed(ctx context.Context, record *schema.CouponRedeemed) error

	GetTokenClaimed(ctx context.Context, id string) (*schema.TokenClaimed, error)
	CreateTokenClaimed(ctx context.Context, record *schema.TokenClaimed) error

	// HasUniqueClaimer reports whether user is already a member of the scope's claimer set
	HasUniqueClaimer(ctx context.Context, scope schema.ClaimerScope, scopeID string, user string) (bool, error)
	// AddUniqueClaimer records a membership; existing memberships are left untouched
	AddUniqueClaimer(ctx context.Context, claimer *schema.UniqueClaimer) error

	// SaveDataSource registers a dynamic data source; existing registrations are left untouched
	SaveDataSource(ctx context.Context, source *schema.DataSource) error
	// GetDataSources lists the data sources of a template in registration order
	GetDataSources(ctx context.Context, template schema.DataSourceTemplate) ([]schema.DataSource, error)
}

// QueryStore is the read side used by the API
type QueryStore interface {
	// GetCouponsByProject lists the coupons of a project ordered by deployment block
	GetCouponsByProject(ctx context.Context, projectID string, limit int, offset uint64) ([]schema.Coupon, uint64, error)
	// GetAffiliatesByCoupon lists the affiliates of a coupon ordered by creation block
	GetAffiliatesByCoupon(ctx context.Context, couponID string, limit int, offset uint64) ([]schema.Affiliate, uint64, error)
	// GetCouponRedemptions lists the redemptions of a coupon in chain order
	GetCouponRedemptions(ctx context.Context, couponID string, limit int, offset uint64) ([]schema.CouponRedeemed, uint64, error)
	// GetTokenClaims lists the claims of a coupon in chain order
	GetTokenClaims(ctx context.Context, couponID string, limit int, offset uint64) ([]schema.TokenClaimed, uint64, error)
	// GetAttributes returns the attributes with the given ids, in the order of ids
	GetAttributes(ctx context.Context, ids []string) ([]schema.Attribute, error)
	// GetPendingMetadata lists registered metadata documents that have not been delivered yet
	GetPendingMetadata(ctx context.Context) ([]string, error)
}

// Store defines the interface for database operations
type Store interface {
	EntityStore
	QueryStore
	CursorStore
}
