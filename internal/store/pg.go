package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
	CursorStore
}

// NewPGStore creates a new store on top of a gorm connection.
// Production runs on PostgreSQL; any gorm dialect with upsert support works.
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db, CursorStore: NewCursorStore(db)}
}

// Migrate creates or updates the tables of every model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(schema.Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// database/sql silently lowers idle to open, keep them consistent for logging
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Transaction runs fn inside a database transaction
func (s *pgStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPGStore(tx))
	})
}

// first loads the record matching column = value, returning nil when absent
func first[T any](ctx context.Context, db *gorm.DB, column string, value interface{}) (*T, error) {
	var record T
	err := db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// upsert inserts the record or overwrites every non-key column of the existing row
func upsert(ctx context.Context, db *gorm.DB, record interface{}) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
}

// insertIgnore inserts the record unless a row with the same key exists
func insertIgnore(ctx context.Context, db *gorm.DB, record interface{}) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error
}

// GetUser retrieves a user by address
func (s *pgStore) GetUser(ctx context.Context, address string) (*schema.User, error) {
	user, err := first[schema.User](ctx, s.db, "address", address)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SaveUser upserts a user
func (s *pgStore) SaveUser(ctx context.Context, user *schema.User) error {
	if err := upsert(ctx, s.db, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetProject retrieves a project by id
func (s *pgStore) GetProject(ctx context.Context, id string) (*schema.Project, error) {
	project, err := first[schema.Project](ctx, s.db, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// SaveProject upserts a project
func (s *pgStore) SaveProject(ctx context.Context, project *schema.Project) error {
	if err := upsert(ctx, s.db, project); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// GetCoupon retrieves a coupon by contract address
func (s *pgStore) GetCoupon(ctx context.Context, address string) (*schema.Coupon, error) {
	coupon, err := first[schema.Coupon](ctx, s.db, "address", address)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return coupon, nil
}

// SaveCoupon upserts a coupon
func (s *pgStore) SaveCoupon(ctx context.Context, coupon *schema.Coupon) error {
	if err := upsert(ctx, s.db, coupon); err != nil {
		return fmt.Errorf("failed to save coupon: %w", err)
	}
	return nil
}

// GetAffiliate retrieves an affiliate by id
func (s *pgStore) GetAffiliate(ctx context.Context, id string) (*schema.Affiliate, error) {
	affiliate, err := first[schema.Affiliate](ctx, s.db, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get affiliate: %w", err)
	}
	return affiliate, nil
}

// SaveAffiliate upserts an affiliate
func (s *pgStore) SaveAffiliate(ctx context.Context, affiliate *schema.Affiliate) error {
	if err := upsert(ctx, s.db, affiliate); err != nil {
		return fmt.Errorf("failed to save affiliate: %w", err)
	}
	return nil
}

// GetTokenMetadata retrieves a metadata document by content identifier
func (s *pgStore) GetTokenMetadata(ctx context.Context, id string) (*schema.TokenMetadata, error) {
	metadata, err := first[schema.TokenMetadata](ctx, s.db, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get token metadata: %w", err)
	}
	return metadata, nil
}

// SaveTokenMetadata upserts a metadata document
func (s *pgStore) SaveTokenMetadata(ctx context.Context, metadata *schema.TokenMetadata) error {
	if err := upsert(ctx, s.db, metadata); err != nil {
		return fmt.Errorf("failed to save token metadata: %w", err)
	}
	return nil
}

// GetLocation retrieves a location by id
func (s *pgStore) GetLocation(ctx context.Context, id string) (*schema.Location, error) {
	location, err := first[schema.Location](ctx, s.db, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return location, nil
}

// SaveLocation upserts a location
func (s *pgStore) SaveLocation(ctx context.Context, location *schema.Location) error {
	if err := upsert(ctx, s.db, location); err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

// SaveAttribute upserts an attribute
func (s *pgStore) SaveAttribute(ctx context.Context, attribute *schema.Attribute) error {
	if err := upsert(ctx, s.db, attribute); err != nil {
		return fmt.Errorf("failed to save attribute: %w", err)
	}
	return nil
}

// GetCity retrieves a city by id
func (s *pgStore) GetCity(ctx context.Context, id string) (*schema.City, error) {
	city, err := first[schema.City](ctx, s.db, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return city, nil
}

// SaveCity upserts a city
func (s *pgStore) SaveCity(ctx context.Context, city *schema.City) error {
	if err := upsert(ctx, s.db, city); err != nil {
		return fmt.Errorf("failed to save city: %w", err)
	}
	return nil
}

// GetCountry retrieves a country by id
func (s *pgStore) GetCountry(ctx context.Context, id string) (*schema.Country, error) {
	country, err := first[schema.Country](ctx, s.db, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	return country, nil
}

// SaveCountry upserts a country
func (s *pgStore) SaveCountry(ctx context.Context, country *schema.Country) error {
	if err := upsert(ctx, s.db, country); err != nil {
		return fmt.Errorf("failed to save country: %w", err)
	}
	return nil
}

// GetCouponRedeemed retrieves a redemption record by id
func (s *pgStore) GetCouponRedeemed(ctx context.Context, id string) (*schema.CouponRedeemed, error) {
	record, err := first[schema.CouponRedeemed](ctx, s.db, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon redemption: %w", err)
	}
	return record, nil
}

// CreateCouponRedeemed inserts a redemption record
func (s *pgStore) CreateCouponRedeemed(ctx context.Context, record *schema.CouponRedeemed) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create coupon redemption: %w", err)
	}
	return nil
}

// GetTokenClaimed retrieves a claim record by id
func (s *pgStore) GetTokenClaimed(ctx context.Context, id string) (*schema.TokenClaimed, error) {
	record, err := first[schema.TokenClaimed](ctx, s.db, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get token claim: %w", err)
	}
	return record, nil
}

// CreateTokenClaimed inserts a claim record
func (s *pgStore) CreateTokenClaimed(ctx context.Context, record *schema.TokenClaimed) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create token claim: %w", err)
	}
	return nil
}

// HasUniqueClaimer reports whether user belongs to the claimer set of the scope
func (s *pgStore) HasUniqueClaimer(ctx context.Context, scope schema.ClaimerScope, scopeID string, user string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.UniqueClaimer{}).
		Where("scope = ? AND scope_id = ? AND user_id = ?", scope, scopeID, user).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check unique claimer: %w", err)
	}
	return count > 0, nil
}

// AddUniqueClaimer records a claimer set membership
func (s *pgStore) AddUniqueClaimer(ctx context.Context, claimer *schema.UniqueClaimer) error {
	if err := insertIgnore(ctx, s.db, claimer); err != nil {
		return fmt.Errorf("failed to add unique claimer: %w", err)
	}
	return nil
}

// SaveDataSource registers a dynamic data source
func (s *pgStore) SaveDataSource(ctx context.Context, source *schema.DataSource) error {
	if err := insertIgnore(ctx, s.db, source); err != nil {
		return fmt.Errorf("failed to save data source: %w", err)
	}
	return nil
}

// GetDataSources lists the data sources registered for a template
func (s *pgStore) GetDataSources(ctx context.Context, template schema.DataSourceTemplate) ([]schema.DataSource, error) {
	var sources []schema.DataSource
	err := s.db.WithContext(ctx).
		Where("template = ?", template).
		Order("created_at_block ASC").Order("param ASC").
		Find(&sources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get data sources: %w", err)
	}
	return sources, nil
}

// paginate counts the rows matched by query and loads one page of them
func paginate[T any](query *gorm.DB, order string, limit int, offset uint64, dest *[]T) (uint64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}

	if err := query.Session(&gorm.Session{}).Order(order).Limit(limit).Offset(int(offset)).Find(dest).Error; err != nil { //nolint:gosec,G115
		return 0, err
	}

	return uint64(total), nil //nolint:gosec,G115
}

// GetCouponsByProject lists the coupons of a project
func (s *pgStore) GetCouponsByProject(ctx context.Context, projectID string, limit int, offset uint64) ([]schema.Coupon, uint64, error) {
	var coupons []schema.Coupon
	query := s.db.WithContext(ctx).Model(&schema.Coupon{}).Where("project_id = ?", projectID)
	total, err := paginate(query, "created_at_block ASC, address ASC", limit, offset, &coupons)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get coupons: %w", err)
	}
	return coupons, total, nil
}

// GetAffiliatesByCoupon lists the affiliates of a coupon
func (s *pgStore) GetAffiliatesByCoupon(ctx context.Context, couponID string, limit int, offset uint64) ([]schema.Affiliate, uint64, error) {
	var affiliates []schema.Affiliate
	query := s.db.WithContext(ctx).Model(&schema.Affiliate{}).Where("coupon_id = ?", couponID)
	total, err := paginate(query, "created_at_block ASC, id ASC", limit, offset, &affiliates)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get affiliates: %w", err)
	}
	return affiliates, total, nil
}

// GetCouponRedemptions lists the redemptions of a coupon
func (s *pgStore) GetCouponRedemptions(ctx context.Context, couponID string, limit int, offset uint64) ([]schema.CouponRedeemed, uint64, error) {
	var records []schema.CouponRedeemed
	query := s.db.WithContext(ctx).Model(&schema.CouponRedeemed{}).Where("coupon_id = ?", couponID)
	total, err := paginate(query, "block_number ASC, log_index ASC", limit, offset, &records)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get coupon redemptions: %w", err)
	}
	return records, total, nil
}

// GetTokenClaims lists the claims of a coupon
func (s *pgStore) GetTokenClaims(ctx context.Context, couponID string, limit int, offset uint64) ([]schema.TokenClaimed, uint64, error) {
	var records []schema.TokenClaimed
	query := s.db.WithContext(ctx).Model(&schema.TokenClaimed{}).Where("coupon_id = ?", couponID)
	total, err := paginate(query, "block_number ASC, log_index ASC", limit, offset, &records)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get token claims: %w", err)
	}
	return records, total, nil
}

// GetAttributes returns attributes by id, preserving the order of ids
func (s *pgStore) GetAttributes(ctx context.Context, ids []string) ([]schema.Attribute, error) {
	if len(ids) == 0 {
		return []schema.Attribute{}, nil
	}

	var attributes []schema.Attribute
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&attributes).Error; err != nil {
		return nil, fmt.Errorf("failed to get attributes: %w", err)
	}

	byID := make(map[string]schema.Attribute, len(attributes))
	for _, a := range attributes {
		byID[a.ID] = a
	}

	ordered := make([]schema.Attribute, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

// GetPendingMetadata lists metadata documents registered for fetching that
// have no delivered content yet
func (s *pgStore) GetPendingMetadata(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&schema.DataSource{}).
		Joins("LEFT JOIN token_metadata ON token_metadata.id = data_sources.param").
		Where("data_sources.template = ?", schema.DataSourceTokenMetadata).
		Where("(token_metadata.id IS NULL OR token_metadata.parse_status = ?)", schema.ParseStatusPending).
		Order("data_sources.created_at_block ASC").
		Pluck("data_sources.param", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending metadata: %w", err)
	}
	return ids, nil
}
