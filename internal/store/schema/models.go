package schema

// Models lists every model managed by the indexer, in migration order
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&Coupon{},
		&Affiliate{},
		&TokenMetadata{},
		&Location{},
		&Attribute{},
		&City{},
		&Country{},
		&CouponRedeemed{},
		&TokenClaimed{},
		&UniqueClaimer{},
		&DataSource{},
		&BlockCursor{},
		&WatchedContract{},
	}
}
