package domain

import (
	"math/big"
	"strings"
	"time"
)

// EventKind identifies the kind of an indexed event
type EventKind string

const (
	EventKindProjectCreated      EventKind = "project_created"
	EventKindProjectUpdated      EventKind = "project_updated"
	EventKindLazyMintDeployed    EventKind = "lazy_mint_deployed"
	EventKindAffiliateRegistered EventKind = "affiliate_registered"
	EventKindCouponRedeemed      EventKind = "coupon_redeemed"
	EventKindTokenClaimed        EventKind = "token_claimed"
	EventKindOwnerUpdated        EventKind = "owner_updated"
	EventKindContractURIUpdated  EventKind = "contract_uri_updated"
	EventKindTransferSingle      EventKind = "transfer_single"
	EventKindTransferBatch       EventKind = "transfer_batch"
	EventKindTokenURIUpdated     EventKind = "token_uri_updated"
	EventKindMetadataFetched     EventKind = "metadata_fetched"
)

// Envelope carries the chain coordinates shared by every event.
// Events are applied in (BlockNumber, LogIndex) order.
type Envelope struct {
	BlockNumber    uint64    `json:"block_number"`
	BlockTimestamp time.Time `json:"block_timestamp"`
	TxHash         string    `json:"tx_hash"`
	LogIndex       uint      `json:"log_index"`
	Address        string    `json:"address"`
}

// Before reports whether e precedes other in application order
func (e Envelope) Before(other Envelope) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber < other.BlockNumber
	}
	return e.LogIndex < other.LogIndex
}

// Payload is implemented by every event body
type Payload interface {
	Kind() EventKind
}

// Event is a single input to the reconciliation engine
type Event struct {
	Envelope
	Payload Payload
}

// Kind returns the kind of the event payload, or an empty kind when unset
func (e Event) Kind() EventKind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// ProjectCreated is emitted by the factory when a project is opened
type ProjectCreated struct {
	ProjectID *big.Int `json:"project_id"`
	Owner     string   `json:"owner"`
	Name      string   `json:"name"`
}

func (ProjectCreated) Kind() EventKind { return EventKindProjectCreated }

// ProjectUpdated is emitted by the factory when a project is renamed
type ProjectUpdated struct {
	ProjectID *big.Int `json:"project_id"`
	Name      string   `json:"name"`
}

func (ProjectUpdated) Kind() EventKind { return EventKindProjectUpdated }

// LazyMintDeployed is emitted by the factory when a coupon contract is deployed.
// ProjectID is nil for deployments made by factories that predate projects.
type LazyMintDeployed struct {
	Creator          string   `json:"creator"`
	LazyMintAddress  string   `json:"lazy_mint_address"`
	URI              string   `json:"uri"`
	MaxSupply        *big.Int `json:"max_supply"`
	ClaimStart       *big.Int `json:"claim_start"`
	ClaimEnd         *big.Int `json:"claim_end"`
	RedeemExpiration *big.Int `json:"redeem_expiration"`
	LockedBudget     *big.Int `json:"locked_budget"`
	CurrencyAddress  string   `json:"currency_address"`
	TokenID          *big.Int `json:"token_id"`
	Fee              *big.Int `json:"fee"`
	ProjectID        *big.Int `json:"project_id,omitempty"`
}

func (LazyMintDeployed) Kind() EventKind { return EventKindLazyMintDeployed }

// AffiliateRegistered is emitted by a coupon contract when an affiliate joins
type AffiliateRegistered struct {
	Affiliate       string `json:"affiliate"`
	ContractAddress string `json:"contract_address"`
}

func (AffiliateRegistered) Kind() EventKind { return EventKindAffiliateRegistered }

// CouponRedeemed is emitted by a coupon contract on redemption.
// Fee is nil for contracts that do not report it; the coupon's fee applies then.
type CouponRedeemed struct {
	Owner            string   `json:"owner"`
	TokenID          *big.Int `json:"token_id"`
	AffiliateAddress string   `json:"affiliate_address"`
	Fee              *big.Int `json:"fee,omitempty"`
	ContractAddress  string   `json:"contract_address"`
	Timestamp        *big.Int `json:"timestamp"`
	Currency         string   `json:"currency"`
}

func (CouponRedeemed) Kind() EventKind { return EventKindCouponRedeemed }

// TokenClaimed is emitted by a coupon contract when tokens are claimed
type TokenClaimed struct {
	Claimer          string   `json:"claimer"`
	Receiver         string   `json:"receiver"`
	TokenID          *big.Int `json:"token_id"`
	Quantity         *big.Int `json:"quantity"`
	AffiliateAddress string   `json:"affiliate_address"`
	ContractAddress  string   `json:"contract_address"`
	Timestamp        *big.Int `json:"timestamp"`
}

func (TokenClaimed) Kind() EventKind { return EventKindTokenClaimed }

// OwnerUpdated is emitted by a coupon contract when its owner changes
type OwnerUpdated struct {
	PrevOwner string `json:"prev_owner"`
	NewOwner  string `json:"new_owner"`
}

func (OwnerUpdated) Kind() EventKind { return EventKindOwnerUpdated }

// ContractURIUpdated is emitted by a coupon contract when its metadata URI changes
type ContractURIUpdated struct {
	PrevURI string `json:"prev_uri"`
	NewURI  string `json:"new_uri"`
}

func (ContractURIUpdated) Kind() EventKind { return EventKindContractURIUpdated }

// TransferSingle is the ERC1155 single transfer emitted by a coupon contract
type TransferSingle struct {
	Operator string   `json:"operator"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	ID       *big.Int `json:"id"`
	Value    *big.Int `json:"value"`
}

func (TransferSingle) Kind() EventKind { return EventKindTransferSingle }

// TransferBatch is the ERC1155 batch transfer emitted by a coupon contract
type TransferBatch struct {
	Operator string     `json:"operator"`
	From     string     `json:"from"`
	To       string     `json:"to"`
	IDs      []*big.Int `json:"ids"`
	Values   []*big.Int `json:"values"`
}

func (TransferBatch) Kind() EventKind { return EventKindTransferBatch }

// TokenURIUpdated is the ERC1155 URI event: the metadata URI of one token changed
type TokenURIUpdated struct {
	ID  *big.Int `json:"id"`
	URI string   `json:"uri"`
}

func (TokenURIUpdated) Kind() EventKind { return EventKindTokenURIUpdated }

// MetadataFetched redelivers the content of a metadata document
type MetadataFetched struct {
	DocumentID string `json:"document_id"`
	Content    []byte `json:"content"`
}

func (MetadataFetched) Kind() EventKind { return EventKindMetadataFetched }

// IsZeroAddress reports whether address is empty or the zero address
func IsZeroAddress(address string) bool {
	return address == "" || strings.EqualFold(address, ETHEREUM_ZERO_ADDRESS)
}

// StripNUL removes NUL characters, which PostgreSQL text and jsonb values cannot hold
func StripNUL(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}
