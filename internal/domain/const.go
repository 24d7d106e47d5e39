package domain

import (
	"math/big"
	"strings"
)

const (
	// Gateway constants
	DEFAULT_IPFS_GATEWAY = "https://ipfs.io"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// IPFS_SCHEME_PREFIX is the URI scheme used by coupon metadata documents
	IPFS_SCHEME_PREFIX = "ipfs://"

	// IPFS_PATH_SEGMENT marks a gateway URL that embeds a content identifier
	IPFS_PATH_SEGMENT = "/ipfs/"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainBaseMainnet     Chain = "eip155:8453"
	ChainBaseSepolia     Chain = "eip155:84532"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet ||
		chain == ChainEthereumSepolia ||
		chain == ChainBaseMainnet ||
		chain == ChainBaseSepolia
}

// EVMChainID returns the numeric EIP-155 id of an eip155 chain
func (c Chain) EVMChainID() (*big.Int, bool) {
	ref, ok := strings.CutPrefix(string(c), "eip155:")
	if !ok {
		return nil, false
	}
	id, ok := new(big.Int).SetString(ref, 10)
	if !ok || id.Sign() <= 0 {
		return nil, false
	}
	return id, true
}
