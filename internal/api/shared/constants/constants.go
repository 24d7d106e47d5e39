package constants

const (
	MAX_PAGE_SIZE            = 100
	DEFAULT_OFFSET           = uint64(0)
	DEFAULT_COUPONS_LIMIT    = 20
	DEFAULT_AFFILIATES_LIMIT = 20
	DEFAULT_ACTIVITY_LIMIT   = 50
)
