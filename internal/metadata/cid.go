package metadata

import (
	"strings"

	"github.com/pushcola/coupon-indexer/internal/domain"
)

// ExtractCID returns the content identifier referenced by a coupon URI.
// Both ipfs://<cid>/... and http gateway URLs with an /ipfs/<cid> path are
// recognized; the first path segment after the scheme is the identifier.
func ExtractCID(uri string) (string, bool) {
	uri = strings.TrimSpace(uri)

	var rest string
	switch {
	case strings.HasPrefix(uri, domain.IPFS_SCHEME_PREFIX):
		rest = strings.TrimPrefix(uri, domain.IPFS_SCHEME_PREFIX)
		// ipfs://ipfs/<cid> shows up in older deployments
		rest = strings.TrimPrefix(rest, "ipfs/")
	case strings.HasPrefix(uri, "http") && strings.Contains(uri, domain.IPFS_PATH_SEGMENT):
		parts := strings.SplitN(uri, domain.IPFS_PATH_SEGMENT, 2)
		rest = parts[1]
	default:
		return "", false
	}

	cid, _, _ := strings.Cut(rest, "/")
	cid, _, _ = strings.Cut(cid, "?")
	cid, _, _ = strings.Cut(cid, "#")
	if cid == "" {
		return "", false
	}
	return cid, true
}

// GatewayURL returns the URL of cid on gateway
func GatewayURL(gateway, cid string) string {
	return strings.TrimRight(gateway, "/") + domain.IPFS_PATH_SEGMENT + cid
}
