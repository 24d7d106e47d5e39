// Package ethtest builds contract logs for tests.
package ethtest

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// Event finds an event by its solidity name and input count, so overloaded
// layouts can be told apart
func Event(t testing.TB, contract abi.ABI, rawName string, inputs int) abi.Event {
	t.Helper()
	for _, ev := range contract.Events {
		if ev.RawName == rawName && len(ev.Inputs) == inputs {
			return ev
		}
	}
	t.Fatalf("event %s with %d inputs not found", rawName, inputs)
	return abi.Event{}
}

// Position places a log in the chain
type Position struct {
	Block   uint64
	TxHash  common.Hash
	Index   uint
	Removed bool
}

// BuildLog encodes args, given in declaration order, into topics and data the
// way a node returns them
func BuildLog(t testing.TB, ev abi.Event, emitter common.Address, pos Position, args ...interface{}) types.Log {
	t.Helper()
	require.Len(t, args, len(ev.Inputs))

	topics := []common.Hash{ev.ID}
	var data []interface{}
	for i, input := range ev.Inputs {
		if !input.Indexed {
			data = append(data, args[i])
			continue
		}
		switch v := args[i].(type) {
		case common.Address:
			topics = append(topics, common.BytesToHash(v.Bytes()))
		case *big.Int:
			topics = append(topics, common.BigToHash(v))
		default:
			t.Fatalf("unsupported indexed type %T", v)
		}
	}

	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	require.NoError(t, err)

	return types.Log{
		Address:     emitter,
		Topics:      topics,
		Data:        packed,
		BlockNumber: pos.Block,
		TxHash:      pos.TxHash,
		Index:       pos.Index,
		Removed:     pos.Removed,
	}
}
