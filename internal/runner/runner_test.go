package runner_test

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushcola/coupon-indexer/internal/adapter"
	"github.com/pushcola/coupon-indexer/internal/domain"
	"github.com/pushcola/coupon-indexer/internal/logger"
	mockspkg "github.com/pushcola/coupon-indexer/internal/mocks"
	jsprovider "github.com/pushcola/coupon-indexer/internal/providers/jetstream"
	"github.com/pushcola/coupon-indexer/internal/runner"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testRunnerMocks contains all the mocks needed for testing the runner
type testRunnerMocks struct {
	ctrl       *gomock.Controller
	natsJS     *mockspkg.MockNatsJetStream
	natsConn   *mockspkg.MockNatsConn
	jetStream  *mockspkg.MockJetStream
	consumer   *mockspkg.MockNatsConsumer
	consumeCtx *mockspkg.MockConsumeContext
	dispatcher *mockspkg.MockDispatcher
	metadata   *mockspkg.MockMetadataSource
	pending    *mockspkg.MockPendingMetadata
	results    chan domain.MetadataFetched
}

func setupTestRunner(t *testing.T) *testRunnerMocks {
	ctrl := gomock.NewController(t)

	return &testRunnerMocks{
		ctrl:       ctrl,
		natsJS:     mockspkg.NewMockNatsJetStream(ctrl),
		natsConn:   mockspkg.NewMockNatsConn(ctrl),
		jetStream:  mockspkg.NewMockJetStream(ctrl),
		consumer:   mockspkg.NewMockNatsConsumer(ctrl),
		consumeCtx: mockspkg.NewMockConsumeContext(ctrl),
		dispatcher: mockspkg.NewMockDispatcher(ctrl),
		metadata:   mockspkg.NewMockMetadataSource(ctrl),
		pending:    mockspkg.NewMockPendingMetadata(ctrl),
		results:    make(chan domain.MetadataFetched),
	}
}

func testConfig() runner.Config {
	return runner.Config{
		JetStream: jsprovider.Config{
			URL:            "nats://localhost:4222",
			StreamName:     "COUPON_EVENTS",
			SubjectPrefix:  "coupons.events",
			MaxReconnects:  10,
			ReconnectWait:  time.Second,
			ConnectionName: "test-indexer",
		},
		ConsumerName:   "indexer",
		AckWaitTimeout: 30 * time.Second,
		MaxDeliver:     5,
	}
}

func newTestRunner(t *testing.T, mocks *testRunnerMocks) runner.Runner {
	mocks.natsJS.EXPECT().
		Connect("nats://localhost:4222", gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)

	r, err := runner.NewRunner(testConfig(), mocks.natsJS, mocks.dispatcher, mocks.metadata, mocks.pending, adapter.NewEventCodec())
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

// expectConsume wires a consumer and returns a channel yielding its message handler
func expectConsume(mocks *testRunnerMocks) <-chan adapter.MessageHandler {
	handlers := make(chan adapter.MessageHandler, 1)

	mocks.pending.EXPECT().GetPendingMetadata(gomock.Any()).Return(nil, nil)
	mocks.jetStream.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), "COUPON_EVENTS", gomock.Any()).
		Return(mocks.consumer, nil)
	mocks.consumer.EXPECT().
		Info(gomock.Any()).
		Return(&jetstream.ConsumerInfo{Name: "indexer"}, nil)
	mocks.consumer.EXPECT().
		Consume(gomock.Any()).
		DoAndReturn(func(handler adapter.MessageHandler, opts ...jetstream.PullConsumeOpt) (adapter.ConsumeContext, error) {
			handlers <- handler
			return mocks.consumeCtx, nil
		})
	mocks.consumeCtx.EXPECT().Stop().AnyTimes()
	mocks.metadata.EXPECT().Results().Return((<-chan domain.MetadataFetched)(mocks.results))

	return handlers
}

func runAsync(ctx context.Context, r runner.Runner) <-chan error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- r.Run(ctx)
	}()
	return errChan
}

func waitHandler(t *testing.T, handlers <-chan adapter.MessageHandler) adapter.MessageHandler {
	select {
	case h := <-handlers:
		return h
	case <-time.After(5 * time.Second):
		t.Fatal("consumer was not started")
		return nil
	}
}

func waitErr(t *testing.T, errChan <-chan error) error {
	select {
	case err := <-errChan:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
		return nil
	}
}

var redeemEvent = domain.Event{
	Envelope: domain.Envelope{
		BlockNumber:    120,
		BlockTimestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TxHash:         "0xabc",
		LogIndex:       3,
		Address:        "0x00000000000000000000000000000000000000c1",
	},
	Payload: &domain.CouponRedeemed{
		Owner:            "0x00000000000000000000000000000000000000a1",
		TokenID:          big.NewInt(1),
		AffiliateAddress: domain.ETHEREUM_ZERO_ADDRESS,
		ContractAddress:  "0x00000000000000000000000000000000000000c1",
		Timestamp:        big.NewInt(1704067200),
		Currency:         domain.ETHEREUM_ZERO_ADDRESS,
	},
}

func encoded(t *testing.T, event domain.Event) []byte {
	data, err := domain.EncodeEvent(event)
	require.NoError(t, err)
	return data
}

func TestRunner_NewRunner_ConnectError(t *testing.T) {
	mocks := setupTestRunner(t)

	mocks.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, assert.AnError)

	r, err := runner.NewRunner(testConfig(), mocks.natsJS, mocks.dispatcher, mocks.metadata, mocks.pending, adapter.NewEventCodec())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, r)
}

func TestRunner_Run_ConsumerConfig(t *testing.T) {
	mocks := setupTestRunner(t)
	r := newTestRunner(t, mocks)

	mocks.pending.EXPECT().GetPendingMetadata(gomock.Any()).Return(nil, nil)
	mocks.jetStream.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), "COUPON_EVENTS", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, cfg jetstream.ConsumerConfig) (adapter.Consumer, error) {
			assert.Equal(t, "indexer", cfg.Durable)
			assert.Equal(t, jetstream.AckExplicitPolicy, cfg.AckPolicy)
			assert.Equal(t, jetstream.DeliverAllPolicy, cfg.DeliverPolicy)
			assert.Equal(t, 1, cfg.MaxAckPending)
			assert.Equal(t, 5, cfg.MaxDeliver)
			assert.Equal(t, 30*time.Second, cfg.AckWait)
			assert.Equal(t, "coupons.events.>", cfg.FilterSubject)
			return nil, assert.AnError
		})

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to create/update consumer")
}

func TestRunner_Run_SetupErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *testRunnerMocks)
		wantMsg string
	}{
		{
			name: "pending metadata",
			setup: func(m *testRunnerMocks) {
				m.pending.EXPECT().GetPendingMetadata(gomock.Any()).Return(nil, assert.AnError)
			},
			wantMsg: "failed to list pending metadata",
		},
		{
			name: "consumer info",
			setup: func(m *testRunnerMocks) {
				m.pending.EXPECT().GetPendingMetadata(gomock.Any()).Return(nil, nil)
				m.jetStream.EXPECT().
					CreateOrUpdateConsumer(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(m.consumer, nil)
				m.consumer.EXPECT().Info(gomock.Any()).Return(nil, assert.AnError)
			},
			wantMsg: "failed to get consumer info",
		},
		{
			name: "consume",
			setup: func(m *testRunnerMocks) {
				m.pending.EXPECT().GetPendingMetadata(gomock.Any()).Return(nil, nil)
				m.jetStream.EXPECT().
					CreateOrUpdateConsumer(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(m.consumer, nil)
				m.consumer.EXPECT().Info(gomock.Any()).Return(&jetstream.ConsumerInfo{Name: "indexer"}, nil)
				m.consumer.EXPECT().Consume(gomock.Any()).Return(nil, assert.AnError)
			},
			wantMsg: "failed to create subscription",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := setupTestRunner(t)
			r := newTestRunner(t, mocks)
			tt.setup(mocks)

			err := r.Run(context.Background())
			assert.ErrorIs(t, err, assert.AnError)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRunner_Run_RequestsPendingMetadata(t *testing.T) {
	mocks := setupTestRunner(t)
	r := newTestRunner(t, mocks)

	mocks.pending.EXPECT().GetPendingMetadata(gomock.Any()).Return([]string{"QmA", "QmB"}, nil)
	gomock.InOrder(
		mocks.metadata.EXPECT().RequestMetadata(gomock.Any(), "QmA").Return(assert.AnError),
		mocks.metadata.EXPECT().RequestMetadata(gomock.Any(), "QmB").Return(nil),
	)
	mocks.jetStream.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError)

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	mocks := setupTestRunner(t)
	r := newTestRunner(t, mocks)
	handlers := expectConsume(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := runAsync(ctx, r)
	waitHandler(t, handlers)
	cancel()

	assert.Equal(t, context.Canceled, waitErr(t, errChan))
}

func TestRunner_HandleMessage(t *testing.T) {
	tests := []struct {
		name   string
		data   func(t *testing.T) []byte
		expect func(m *testRunnerMocks, msg *mockspkg.MockJetStreamMessage, done chan struct{})
	}{
		{
			name: "applied event is acked",
			data: func(t *testing.T) []byte { return encoded(t, redeemEvent) },
			expect: func(m *testRunnerMocks, msg *mockspkg.MockJetStreamMessage, done chan struct{}) {
				m.dispatcher.EXPECT().
					Dispatch(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, event domain.Event) (domain.Outcome, error) {
						assert.Equal(t, domain.EventKindCouponRedeemed, event.Kind())
						assert.Equal(t, uint64(120), event.BlockNumber)
						assert.Equal(t, uint(3), event.LogIndex)
						return domain.OutcomeApplied, nil
					})
				msg.EXPECT().Ack().DoAndReturn(func() error { close(done); return nil })
			},
		},
		{
			name: "rejected event is acked",
			data: func(t *testing.T) []byte { return encoded(t, redeemEvent) },
			expect: func(m *testRunnerMocks, msg *mockspkg.MockJetStreamMessage, done chan struct{}) {
				m.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(domain.OutcomeRejected, nil)
				msg.EXPECT().Ack().DoAndReturn(func() error { close(done); return assert.AnError })
			},
		},
		{
			name: "store failure is nacked",
			data: func(t *testing.T) []byte { return encoded(t, redeemEvent) },
			expect: func(m *testRunnerMocks, msg *mockspkg.MockJetStreamMessage, done chan struct{}) {
				m.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(domain.OutcomeNoOp, assert.AnError)
				msg.EXPECT().Nak().DoAndReturn(func() error { close(done); return nil })
			},
		},
		{
			name: "undecodable message is terminated",
			data: func(t *testing.T) []byte { return []byte(`{"kind":"unknown"}`) },
			expect: func(m *testRunnerMocks, msg *mockspkg.MockJetStreamMessage, done chan struct{}) {
				msg.EXPECT().Term().DoAndReturn(func() error { close(done); return nil })
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := setupTestRunner(t)
			r := newTestRunner(t, mocks)
			handlers := expectConsume(mocks)

			done := make(chan struct{})
			msg := mockspkg.NewMockJetStreamMessage(mocks.ctrl)
			msg.EXPECT().Data().Return(tt.data(t)).AnyTimes()
			msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil).AnyTimes()
			tt.expect(mocks, msg, done)

			ctx, cancel := context.WithCancel(context.Background())
			errChan := runAsync(ctx, r)
			handler := waitHandler(t, handlers)
			handler(msg)

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("message was not settled")
			}
			cancel()
			assert.Equal(t, context.Canceled, waitErr(t, errChan))
		})
	}
}

func TestRunner_Run_AppliesFetchedMetadata(t *testing.T) {
	mocks := setupTestRunner(t)
	r := newTestRunner(t, mocks)
	handlers := expectConsume(mocks)

	applied := make(chan domain.Event, 1)
	mocks.dispatcher.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event domain.Event) (domain.Outcome, error) {
			applied <- event
			return domain.OutcomeApplied, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	errChan := runAsync(ctx, r)
	waitHandler(t, handlers)

	mocks.results <- domain.MetadataFetched{DocumentID: "QmA", Content: []byte(`{"name":"x"}`)}

	select {
	case event := <-applied:
		assert.Equal(t, domain.EventKindMetadataFetched, event.Kind())
		fetched, ok := event.Payload.(*domain.MetadataFetched)
		require.True(t, ok)
		assert.Equal(t, "QmA", fetched.DocumentID)
	case <-time.After(5 * time.Second):
		t.Fatal("metadata was not applied")
	}

	cancel()
	assert.Equal(t, context.Canceled, waitErr(t, errChan))
}

func TestRunner_Run_MetadataStoreFailureStops(t *testing.T) {
	mocks := setupTestRunner(t)
	r := newTestRunner(t, mocks)
	handlers := expectConsume(mocks)

	mocks.dispatcher.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		Return(domain.OutcomeNoOp, assert.AnError)

	errChan := runAsync(context.Background(), r)
	waitHandler(t, handlers)
	mocks.results <- domain.MetadataFetched{DocumentID: "QmA", Content: []byte(`{}`)}

	err := waitErr(t, errChan)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "QmA")
}

func TestRunner_Run_ClosedResultsKeepsConsuming(t *testing.T) {
	mocks := setupTestRunner(t)
	r := newTestRunner(t, mocks)
	handlers := expectConsume(mocks)
	close(mocks.results)

	done := make(chan struct{})
	msg := mockspkg.NewMockJetStreamMessage(mocks.ctrl)
	msg.EXPECT().Data().Return(encoded(t, redeemEvent)).AnyTimes()
	msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 2}, nil).AnyTimes()
	mocks.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(domain.OutcomeApplied, nil)
	msg.EXPECT().Ack().DoAndReturn(func() error { close(done); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	errChan := runAsync(ctx, r)
	handler := waitHandler(t, handlers)
	handler(msg)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("message was not settled")
	}
	cancel()
	assert.Equal(t, context.Canceled, waitErr(t, errChan))
}

func TestRunner_Close(t *testing.T) {
	mocks := setupTestRunner(t)
	r := newTestRunner(t, mocks)

	mocks.natsConn.EXPECT().Close()
	r.Close()
}
