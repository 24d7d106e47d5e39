package ethereum

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// factoryABIJSON lists the events of the coupon factory. The second
// LazyMintDeployed is the layout emitted by factories that predate projects.
const factoryABIJSON = `[
	{"type":"event","name":"ProjectCreated","anonymous":false,"inputs":[
		{"name":"projectId","type":"uint256","indexed":true},
		{"name":"owner","type":"address","indexed":true},
		{"name":"name","type":"string","indexed":false}]},
	{"type":"event","name":"ProjectUpdated","anonymous":false,"inputs":[
		{"name":"projectId","type":"uint256","indexed":true},
		{"name":"name","type":"string","indexed":false}]},
	{"type":"event","name":"LazyMintDeployed","anonymous":false,"inputs":[
		{"name":"creator","type":"address","indexed":true},
		{"name":"lazyMintAddress","type":"address","indexed":true},
		{"name":"uri","type":"string","indexed":false},
		{"name":"maxSupply","type":"uint256","indexed":false},
		{"name":"claimStart","type":"uint256","indexed":false},
		{"name":"claimEnd","type":"uint256","indexed":false},
		{"name":"redeemExpiration","type":"uint256","indexed":false},
		{"name":"lockedBudget","type":"uint256","indexed":false},
		{"name":"currencyAddress","type":"address","indexed":false},
		{"name":"tokenId","type":"uint256","indexed":false},
		{"name":"fee","type":"uint256","indexed":false},
		{"name":"projectId","type":"uint256","indexed":true}]},
	{"type":"event","name":"LazyMintDeployed","anonymous":false,"inputs":[
		{"name":"creator","type":"address","indexed":false},
		{"name":"lazyMintAddress","type":"address","indexed":false},
		{"name":"uri","type":"string","indexed":false},
		{"name":"maxSupply","type":"uint256","indexed":false},
		{"name":"claimExpiration","type":"uint256","indexed":false},
		{"name":"redeemExpiration","type":"uint256","indexed":false},
		{"name":"lockedBudget","type":"uint256","indexed":false},
		{"name":"currencyAddress","type":"address","indexed":false},
		{"name":"tokenId","type":"uint256","indexed":false},
		{"name":"fee","type":"uint256","indexed":false}]}
]`

// couponABIJSON lists the events of a deployed coupon (lazy mint) contract.
// The second CouponRedeemed is the layout of contracts that do not report a fee.
const couponABIJSON = `[
	{"type":"event","name":"AffiliateRegistered","anonymous":false,"inputs":[
		{"name":"affiliate","type":"address","indexed":true},
		{"name":"contractAddress","type":"address","indexed":true}]},
	{"type":"event","name":"CouponRedeemed","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"affiliateAddress","type":"address","indexed":true},
		{"name":"FEE","type":"uint256","indexed":false},
		{"name":"contractAddress","type":"address","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false},
		{"name":"currency","type":"address","indexed":false}]},
	{"type":"event","name":"CouponRedeemed","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"affiliateAddress","type":"address","indexed":true},
		{"name":"contractAddress","type":"address","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false},
		{"name":"currency","type":"address","indexed":false}]},
	{"type":"event","name":"TokenClaimed","anonymous":false,"inputs":[
		{"name":"claimer","type":"address","indexed":true},
		{"name":"receiver","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"quantity","type":"uint256","indexed":false},
		{"name":"affiliateAddress","type":"address","indexed":false},
		{"name":"contractAddress","type":"address","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false},
		{"name":"_tokenURI","type":"string","indexed":false}]},
	{"type":"event","name":"OwnerUpdated","anonymous":false,"inputs":[
		{"name":"prevOwner","type":"address","indexed":true},
		{"name":"newOwner","type":"address","indexed":true}]},
	{"type":"event","name":"ContractURIUpdated","anonymous":false,"inputs":[
		{"name":"prevURI","type":"string","indexed":false},
		{"name":"newURI","type":"string","indexed":false}]},
	{"type":"event","name":"TransferSingle","anonymous":false,"inputs":[
		{"name":"_operator","type":"address","indexed":true},
		{"name":"_from","type":"address","indexed":true},
		{"name":"_to","type":"address","indexed":true},
		{"name":"_id","type":"uint256","indexed":false},
		{"name":"_value","type":"uint256","indexed":false}]},
	{"type":"event","name":"TransferBatch","anonymous":false,"inputs":[
		{"name":"_operator","type":"address","indexed":true},
		{"name":"_from","type":"address","indexed":true},
		{"name":"_to","type":"address","indexed":true},
		{"name":"_ids","type":"uint256[]","indexed":false},
		{"name":"_values","type":"uint256[]","indexed":false}]},
	{"type":"event","name":"URI","anonymous":false,"inputs":[
		{"name":"_value","type":"string","indexed":false},
		{"name":"_id","type":"uint256","indexed":true}]}
]`

var (
	factoryABI = mustParseABI(factoryABIJSON)
	couponABI  = mustParseABI(couponABIJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return parsed
}

// FactoryTopics returns the topic0 values of every factory event
func FactoryTopics() []common.Hash {
	return eventIDs(factoryABI)
}

// CouponTopics returns the topic0 values of every coupon contract event
func CouponTopics() []common.Hash {
	return eventIDs(couponABI)
}

func eventIDs(contract abi.ABI) []common.Hash {
	ids := make([]common.Hash, 0, len(contract.Events))
	for _, ev := range contract.Events {
		ids = append(ids, ev.ID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i].Bytes(), ids[j].Bytes()) < 0
	})
	return ids
}

// FactoryABI returns the parsed factory event ABI
func FactoryABI() abi.ABI {
	return factoryABI
}

// CouponABI returns the parsed coupon contract event ABI
func CouponABI() abi.ABI {
	return couponABI
}
