package domain

import (
	"encoding/json"
	"fmt"
)

type wireEvent struct {
	Kind     EventKind       `json:"kind"`
	Envelope Envelope        `json:"envelope"`
	Payload  json.RawMessage `json:"payload"`
}

var payloadFactories = map[EventKind]func() Payload{
	EventKindProjectCreated:      func() Payload { return &ProjectCreated{} },
	EventKindProjectUpdated:      func() Payload { return &ProjectUpdated{} },
	EventKindLazyMintDeployed:    func() Payload { return &LazyMintDeployed{} },
	EventKindAffiliateRegistered: func() Payload { return &AffiliateRegistered{} },
	EventKindCouponRedeemed:      func() Payload { return &CouponRedeemed{} },
	EventKindTokenClaimed:        func() Payload { return &TokenClaimed{} },
	EventKindOwnerUpdated:        func() Payload { return &OwnerUpdated{} },
	EventKindContractURIUpdated:  func() Payload { return &ContractURIUpdated{} },
	EventKindTransferSingle:      func() Payload { return &TransferSingle{} },
	EventKindTransferBatch:       func() Payload { return &TransferBatch{} },
	EventKindTokenURIUpdated:     func() Payload { return &TokenURIUpdated{} },
	EventKindMetadataFetched:     func() Payload { return &MetadataFetched{} },
}

// MarshalJSON encodes the event as {"kind", "envelope", "payload"}
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidEvent)
	}

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return json.Marshal(wireEvent{
		Kind:     e.Payload.Kind(),
		Envelope: e.Envelope,
		Payload:  payload,
	})
}

// UnmarshalJSON decodes an event produced by MarshalJSON.
// Payloads are always decoded into pointers.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	factory, ok := payloadFactories[w.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, w.Kind)
	}

	payload := factory()
	if len(w.Payload) == 0 || string(w.Payload) == "null" {
		return fmt.Errorf("%w: missing payload for %s", ErrInvalidEvent, w.Kind)
	}
	if err := json.Unmarshal(w.Payload, payload); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", w.Kind, err)
	}

	e.Envelope = w.Envelope
	e.Payload = payload
	return nil
}

// EncodeEvent serializes an event into its wire form
func EncodeEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses the wire form produced by EncodeEvent
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
