package ethereum

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/identity"
)

type logArgs map[string]interface{}

type payloadDecoder func(ev *abi.Event, args logArgs) (domain.Payload, error)

type logDecoder struct {
	event  abi.Event
	decode payloadDecoder
}

var decoders = buildDecoders()

func buildDecoders() map[common.Hash]logDecoder {
	byName := map[string]payloadDecoder{
		"ProjectCreated":      decodeProjectCreated,
		"ProjectUpdated":      decodeProjectUpdated,
		"LazyMintDeployed":    decodeLazyMintDeployed,
		"AffiliateRegistered": decodeAffiliateRegistered,
		"CouponRedeemed":      decodeCouponRedeemed,
		"TokenClaimed":        decodeTokenClaimed,
		"OwnerUpdated":        decodeOwnerUpdated,
		"ContractURIUpdated":  decodeContractURIUpdated,
		"TransferSingle":      decodeTransferSingle,
		"TransferBatch":       decodeTransferBatch,
		"URI":                 decodeTokenURI,
	}

	out := make(map[common.Hash]logDecoder)
	for _, contract := range []abi.ABI{factoryABI, couponABI} {
		for _, ev := range contract.Events {
			decode, ok := byName[ev.RawName]
			if !ok {
				panic(fmt.Sprintf("no decoder for event %s", ev.RawName))
			}
			out[ev.ID] = logDecoder{event: ev, decode: decode}
		}
	}
	return out
}

// DecodeLog converts a contract log into a domain event.
// Logs whose topic0 is not a known event signature return domain.ErrUnsupportedLog.
func DecodeLog(vLog types.Log, blockTimestamp time.Time) (domain.Event, error) {
	if len(vLog.Topics) == 0 {
		return domain.Event{}, fmt.Errorf("%w: anonymous log", domain.ErrUnsupportedLog)
	}

	entry, ok := decoders[vLog.Topics[0]]
	if !ok {
		return domain.Event{}, fmt.Errorf("%w: topic %s", domain.ErrUnsupportedLog, vLog.Topics[0].Hex())
	}

	args := logArgs{}
	if err := entry.event.Inputs.UnpackIntoMap(args, vLog.Data); err != nil {
		return domain.Event{}, fmt.Errorf("%w: failed to unpack %s data: %v", domain.ErrInvalidEvent, entry.event.RawName, err)
	}

	var indexed abi.Arguments
	for _, input := range entry.event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, vLog.Topics[1:]); err != nil {
		return domain.Event{}, fmt.Errorf("%w: failed to parse %s topics: %v", domain.ErrInvalidEvent, entry.event.RawName, err)
	}

	payload, err := entry.decode(&entry.event, args)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidEvent, entry.event.RawName, err)
	}

	return domain.Event{
		Envelope: domain.Envelope{
			BlockNumber:    vLog.BlockNumber,
			BlockTimestamp: blockTimestamp.UTC(),
			TxHash:         vLog.TxHash.Hex(),
			LogIndex:       vLog.Index,
			Address:        identity.Address(vLog.Address.Hex()),
		},
		Payload: payload,
	}, nil
}

func decodeProjectCreated(_ *abi.Event, args logArgs) (domain.Payload, error) {
	id, err := args.bigInt("projectId")
	if err != nil {
		return nil, err
	}
	owner, err := args.address("owner")
	if err != nil {
		return nil, err
	}
	name, err := args.str("name")
	if err != nil {
		return nil, err
	}
	return &domain.ProjectCreated{ProjectID: id, Owner: owner, Name: name}, nil
}

func decodeProjectUpdated(_ *abi.Event, args logArgs) (domain.Payload, error) {
	id, err := args.bigInt("projectId")
	if err != nil {
		return nil, err
	}
	name, err := args.str("name")
	if err != nil {
		return nil, err
	}
	return &domain.ProjectUpdated{ProjectID: id, Name: name}, nil
}

func decodeLazyMintDeployed(ev *abi.Event, args logArgs) (domain.Payload, error) {
	p := &domain.LazyMintDeployed{}
	var err error
	if p.Creator, err = args.address("creator"); err != nil {
		return nil, err
	}
	if p.LazyMintAddress, err = args.address("lazyMintAddress"); err != nil {
		return nil, err
	}
	if p.URI, err = args.str("uri"); err != nil {
		return nil, err
	}
	if p.MaxSupply, err = args.bigInt("maxSupply"); err != nil {
		return nil, err
	}
	if p.RedeemExpiration, err = args.bigInt("redeemExpiration"); err != nil {
		return nil, err
	}
	if p.LockedBudget, err = args.bigInt("lockedBudget"); err != nil {
		return nil, err
	}
	if p.CurrencyAddress, err = args.address("currencyAddress"); err != nil {
		return nil, err
	}
	if p.TokenID, err = args.bigInt("tokenId"); err != nil {
		return nil, err
	}
	if p.Fee, err = args.bigInt("fee"); err != nil {
		return nil, err
	}

	if _, legacy := args["claimExpiration"]; legacy {
		// claim window opens at deployment
		p.ClaimStart = new(big.Int)
		if p.ClaimEnd, err = args.bigInt("claimExpiration"); err != nil {
			return nil, err
		}
		return p, nil
	}

	if p.ClaimStart, err = args.bigInt("claimStart"); err != nil {
		return nil, err
	}
	if p.ClaimEnd, err = args.bigInt("claimEnd"); err != nil {
		return nil, err
	}
	if p.ProjectID, err = args.bigInt("projectId"); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeAffiliateRegistered(_ *abi.Event, args logArgs) (domain.Payload, error) {
	affiliate, err := args.address("affiliate")
	if err != nil {
		return nil, err
	}
	contract, err := args.address("contractAddress")
	if err != nil {
		return nil, err
	}
	return &domain.AffiliateRegistered{Affiliate: affiliate, ContractAddress: contract}, nil
}

func decodeCouponRedeemed(_ *abi.Event, args logArgs) (domain.Payload, error) {
	p := &domain.CouponRedeemed{}
	var err error
	if p.Owner, err = args.address("owner"); err != nil {
		return nil, err
	}
	if p.TokenID, err = args.bigInt("tokenId"); err != nil {
		return nil, err
	}
	if p.AffiliateAddress, err = args.address("affiliateAddress"); err != nil {
		return nil, err
	}
	if p.ContractAddress, err = args.address("contractAddress"); err != nil {
		return nil, err
	}
	if p.Timestamp, err = args.bigInt("timestamp"); err != nil {
		return nil, err
	}
	if p.Currency, err = args.address("currency"); err != nil {
		return nil, err
	}
	if _, ok := args["FEE"]; ok {
		if p.Fee, err = args.bigInt("FEE"); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func decodeTokenClaimed(_ *abi.Event, args logArgs) (domain.Payload, error) {
	p := &domain.TokenClaimed{}
	var err error
	if p.Claimer, err = args.address("claimer"); err != nil {
		return nil, err
	}
	if p.Receiver, err = args.address("receiver"); err != nil {
		return nil, err
	}
	if p.TokenID, err = args.bigInt("tokenId"); err != nil {
		return nil, err
	}
	if p.Quantity, err = args.bigInt("quantity"); err != nil {
		return nil, err
	}
	if p.AffiliateAddress, err = args.address("affiliateAddress"); err != nil {
		return nil, err
	}
	if p.ContractAddress, err = args.address("contractAddress"); err != nil {
		return nil, err
	}
	if p.Timestamp, err = args.bigInt("timestamp"); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeOwnerUpdated(_ *abi.Event, args logArgs) (domain.Payload, error) {
	prev, err := args.address("prevOwner")
	if err != nil {
		return nil, err
	}
	next, err := args.address("newOwner")
	if err != nil {
		return nil, err
	}
	return &domain.OwnerUpdated{PrevOwner: prev, NewOwner: next}, nil
}

func decodeContractURIUpdated(_ *abi.Event, args logArgs) (domain.Payload, error) {
	prev, err := args.str("prevURI")
	if err != nil {
		return nil, err
	}
	next, err := args.str("newURI")
	if err != nil {
		return nil, err
	}
	return &domain.ContractURIUpdated{PrevURI: prev, NewURI: next}, nil
}

func decodeTransferSingle(_ *abi.Event, args logArgs) (domain.Payload, error) {
	p := &domain.TransferSingle{}
	var err error
	if p.Operator, err = args.address("_operator"); err != nil {
		return nil, err
	}
	if p.From, err = args.address("_from"); err != nil {
		return nil, err
	}
	if p.To, err = args.address("_to"); err != nil {
		return nil, err
	}
	if p.ID, err = args.bigInt("_id"); err != nil {
		return nil, err
	}
	if p.Value, err = args.bigInt("_value"); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeTransferBatch(_ *abi.Event, args logArgs) (domain.Payload, error) {
	p := &domain.TransferBatch{}
	var err error
	if p.Operator, err = args.address("_operator"); err != nil {
		return nil, err
	}
	if p.From, err = args.address("_from"); err != nil {
		return nil, err
	}
	if p.To, err = args.address("_to"); err != nil {
		return nil, err
	}
	if p.IDs, err = args.bigInts("_ids"); err != nil {
		return nil, err
	}
	if p.Values, err = args.bigInts("_values"); err != nil {
		return nil, err
	}
	if len(p.IDs) != len(p.Values) {
		return nil, fmt.Errorf("%d ids for %d values", len(p.IDs), len(p.Values))
	}
	return p, nil
}

func decodeTokenURI(_ *abi.Event, args logArgs) (domain.Payload, error) {
	p := &domain.TokenURIUpdated{}
	var err error
	if p.URI, err = args.str("_value"); err != nil {
		return nil, err
	}
	if p.ID, err = args.bigInt("_id"); err != nil {
		return nil, err
	}
	return p, nil
}

func (a logArgs) address(name string) (string, error) {
	v, ok := a[name].(common.Address)
	if !ok {
		return "", fmt.Errorf("argument %s is not an address", name)
	}
	return identity.Address(v.Hex()), nil
}

func (a logArgs) bigInt(name string) (*big.Int, error) {
	v, ok := a[name].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("argument %s is not an integer", name)
	}
	return new(big.Int).Set(v), nil
}

func (a logArgs) bigInts(name string) ([]*big.Int, error) {
	v, ok := a[name].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("argument %s is not an integer list", name)
	}
	out := make([]*big.Int, len(v))
	for i, n := range v {
		if n == nil {
			return nil, fmt.Errorf("argument %s[%d] is not an integer", name, i)
		}
		out[i] = new(big.Int).Set(n)
	}
	return out, nil
}

func (a logArgs) str(name string) (string, error) {
	v, ok := a[name].(string)
	if !ok {
		return "", fmt.Errorf("argument %s is not a string", name)
	}
	return domain.StripNUL(v), nil
}
