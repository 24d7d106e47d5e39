package adapter

import "github.com/pushcola/coupon-indexer/internal/domain"

// EventCodec converts chain events to and from their broker wire form
//
//go:generate mockgen -source=codec.go -destination=../mocks/codec.go -package=mocks -mock_names=EventCodec=MockEventCodec
type EventCodec interface {
	Encode(event domain.Event) ([]byte, error)
	Decode(data []byte) (domain.Event, error)
}

type wireCodec struct{}

// NewEventCodec returns the codec for the {"kind", "envelope", "payload"} wire form
func NewEventCodec() EventCodec {
	return wireCodec{}
}

func (wireCodec) Encode(event domain.Event) ([]byte, error) {
	return domain.EncodeEvent(event)
}

func (wireCodec) Decode(data []byte) (domain.Event, error) {
	return domain.DecodeEvent(data)
}
