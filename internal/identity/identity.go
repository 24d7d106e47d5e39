// Package identity derives the stable identifiers of indexed entities.
//
// Every function is pure. The hash, separators and normalization rules form
// scheme Version; changing any of them changes every derived id and requires
// a full re-index.
package identity

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Version is the identifier scheme version
const Version = 1

const (
	affiliateSeparator = "-"
	citySeparator      = "|"
)

// Normalize trims surrounding whitespace and lower-cases s
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Address returns the canonical lower-case hex form of an address.
// Inputs that are not hex addresses are only normalized.
func Address(addr string) string {
	trimmed := strings.TrimSpace(addr)
	if common.IsHexAddress(trimmed) {
		return strings.ToLower(common.HexToAddress(trimmed).Hex())
	}
	return Normalize(trimmed)
}

// UserID returns the id of the user owning addr
func UserID(addr string) string {
	return Address(addr)
}

// CouponID returns the id of the coupon deployed at addr
func CouponID(addr string) string {
	return Address(addr)
}

// ProjectID returns the 32-byte big-endian hex encoding of an on-chain project id
func ProjectID(id *big.Int) string {
	if id == nil {
		return common.Hash{}.Hex()
	}
	return common.BigToHash(id).Hex()
}

// AffiliateID returns the id of the affiliate relationship between an
// affiliate address and a coupon
func AffiliateID(affiliate, coupon string) string {
	return hashParts(affiliateSeparator, Address(affiliate), Address(coupon))
}

// CountryID returns the id of a country by name
func CountryID(name string) string {
	return hashParts("", Normalize(name))
}

// CityID returns the id of a city by name within a country.
// Same-named cities in different countries get different ids.
func CityID(name, country string) string {
	return hashParts(citySeparator, Normalize(name), Normalize(country))
}

// EventID returns the id of a write-once activity record: the transaction
// hash bytes followed by the little-endian int32 log index
func EventID(txHash string, logIndex uint) string {
	hash := common.HexToHash(txHash)
	buf := make([]byte, common.HashLength+4)
	copy(buf, hash.Bytes())
	binary.LittleEndian.PutUint32(buf[common.HashLength:], uint32(int32(logIndex))) //nolint:gosec,G115
	return hexutil.Encode(buf)
}

// LocationID returns the id of the location block of a metadata document
func LocationID(documentID string) string {
	return documentID + "-location"
}

// AttributeID returns the id of the index-th attribute of a metadata document
func AttributeID(documentID string, index int) string {
	return fmt.Sprintf("%s-attribute-%d", documentID, index)
}

func hashParts(sep string, parts ...string) string {
	return crypto.Keccak256Hash([]byte(strings.Join(parts, sep))).Hex()
}
