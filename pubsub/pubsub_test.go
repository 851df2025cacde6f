//go:build unit

package pubsub_test

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	brokerram "github.com/dambileh/civitas-bus/broker/ram"
	"github.com/dambileh/civitas-bus/config"
	"github.com/dambileh/civitas-bus/logger"
	"github.com/dambileh/civitas-bus/message"
	"github.com/dambileh/civitas-bus/pubsub"
	storeram "github.com/dambileh/civitas-bus/store/drivers/ram"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)

	os.Exit(m.Run())
}

// mesh is the shared infrastructure of one test: the broker and the KV store
// every participating process connects to.
type mesh struct {
	kv  *storeram.Store
	mq  *brokerram.MQ
	ctx context.Context
}

func newMesh(t *testing.T) *mesh {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg, err := config.New()
	require.NoError(t, err)

	kv := storeram.New(cfg)
	require.NoError(t, kv.Init(ctx))

	mq := brokerram.New(cfg)
	require.NoError(t, mq.Init(ctx))

	return &mesh{kv: kv, mq: mq, ctx: ctx}
}

// newBus joins one process to the mesh under the given identity.
func (m *mesh) newBus(t *testing.T, processID string) *pubsub.PubSub {
	t.Helper()

	cfg, err := config.New()
	require.NoError(t, err)
	cfg.Set("BUS_PROCESS_ID", processID)

	log, err := logger.New(logger.Configuration{Level: logger.ERROR_LEVEL, Writer: io.Discard})
	require.NoError(t, err)

	return pubsub.New(log, m.mq, m.kv, cfg)
}

func TestPublishInvalidMessageHasNoSideEffects(t *testing.T) {
	mesh := newMesh(t)
	bus := mesh.newBus(t, "pid-pub")

	received := make(chan *message.Message, 1)

	sub, err := bus.Subscribe(mesh.ctx, "UserEvent", pubsub.SubscribeOptions{
		SubscriberType: "user",
		SubscriberID:   "pid-pub",
	}, func(_ context.Context, msg *message.Message) {
		received <- msg
	})
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, sub.Unsubscribe()) })

	invalid := message.New("UserEvent", message.TypeCRUD, "", "user", map[string]any{"id": "1"})

	err = bus.Publish(mesh.ctx, "UserEvent", invalid)
	require.ErrorIs(t, err, message.ErrMissingAction)

	// Nothing was broadcast and no claim was seeded
	select {
	case msg := <-received:
		t.Fatalf("unexpected delivery: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	pending, err := mesh.kv.ListRange(mesh.ctx, "UserEvent.user")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPublishWithoutSubscribersDropsSilently(t *testing.T) {
	mesh := newMesh(t)
	bus := mesh.newBus(t, "pid-pub")

	msg := message.New("UserEvent", message.TypeCRUD, message.ActionCreate, "user", map[string]any{"id": "1"})

	require.NoError(t, bus.Publish(mesh.ctx, "UserEvent", msg))

	pending, err := mesh.kv.ListRange(mesh.ctx, "UserEvent.user")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPublishFansOutOncePerSubscriberType(t *testing.T) {
	mesh := newMesh(t)
	bus := mesh.newBus(t, "pid-pub")

	gateway := make(chan *message.Message, 1)
	user := make(chan *message.Message, 1)

	for _, consumer := range []struct {
		subscriberType string
		inbox          chan *message.Message
	}{
		{"gateway", gateway},
		{"user", user},
	} {
		sub, err := bus.Subscribe(mesh.ctx, "UserEvent", pubsub.SubscribeOptions{
			SubscriberType: consumer.subscriberType,
			SubscriberID:   "pid-" + consumer.subscriberType,
		}, func(_ context.Context, msg *message.Message) {
			consumer.inbox <- msg
		})
		require.NoError(t, err)

		t.Cleanup(func() { require.NoError(t, sub.Unsubscribe()) })
	}

	msg := message.New("UserEvent", message.TypeCRUD, message.ActionCreate, "user", map[string]any{"msisdn": "27839"})

	require.NoError(t, bus.Publish(mesh.ctx, "UserEvent", msg))

	// Each type gets its own copy, addressed to it, sharing one message ID
	for subscriberType, inbox := range map[string]chan *message.Message{"gateway": gateway, "user": user} {
		select {
		case got := <-inbox:
			assert.Equal(t, subscriberType, got.Recipient)
			assert.Equal(t, msg.Header.MessageID, got.Header.MessageID)
			assert.False(t, got.Header.SentAt.IsZero())
		case <-time.After(time.Second):
			t.Fatalf("no delivery for type %s", subscriberType)
		}
	}
}

func TestExactlyOneInstancePerTypeConsumes(t *testing.T) {
	mesh := newMesh(t)
	first := mesh.newBus(t, "pid-1")
	second := mesh.newBus(t, "pid-2")

	var handled atomic.Int64

	for i, bus := range []*pubsub.PubSub{first, second} {
		sub, err := bus.Subscribe(mesh.ctx, "ChatEvent", pubsub.SubscribeOptions{
			SubscriberType: "chat",
			SubscriberID:   bus.ProcessID(),
		}, func(context.Context, *message.Message) {
			handled.Add(1)
		})
		require.NoError(t, err, "subscriber %d", i)

		t.Cleanup(func() { require.NoError(t, sub.Unsubscribe()) })
	}

	msg := message.New("ChatEvent", message.TypeCustom, "send", "chat", map[string]any{"text": "hi"})

	require.NoError(t, first.Publish(mesh.ctx, "ChatEvent", msg))

	require.Eventually(t, func() bool {
		return handled.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	// Give the losing instance time to race and lose
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), handled.Load())
}

func TestSubscribeRequiresIdentity(t *testing.T) {
	mesh := newMesh(t)
	bus := mesh.newBus(t, "pid-1")

	handler := func(context.Context, *message.Message) {}

	_, err := bus.Subscribe(mesh.ctx, "UserEvent", pubsub.SubscribeOptions{SubscriberID: "pid-1"}, handler)
	require.ErrorIs(t, err, pubsub.ErrSubscriberTypeRequired)

	_, err = bus.Subscribe(mesh.ctx, "UserEvent", pubsub.SubscribeOptions{SubscriberType: "user"}, handler)
	require.ErrorIs(t, err, pubsub.ErrSubscriberIDRequired)
}

func TestPublishAndWaitForResponse(t *testing.T) {
	mesh := newMesh(t)
	requester := mesh.newBus(t, "pid-gateway")
	responder := mesh.newBus(t, "pid-user")

	sub, err := responder.Subscribe(mesh.ctx, "UserEvent", pubsub.SubscribeOptions{
		SubscriberType: "user",
		SubscriberID:   responder.ProcessID(),
	}, func(ctx context.Context, msg *message.Message) {
		reply := msg.Reply("UserEventCompleted", map[string]any{"name": "ada"})
		assert.NoError(t, responder.Publish(ctx, "UserEventCompleted", reply))
	})
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, sub.Unsubscribe()) })

	ctx, cancel := context.WithTimeout(mesh.ctx, 2*time.Second)
	defer cancel()

	request := message.New("UserEvent", message.TypeCRUD, message.ActionGetSingle, "user", map[string]any{"id": "42"})

	resp, err := requester.PublishAndWaitForResponse(ctx, "UserEvent", "UserEventCompleted", pubsub.SubscribeOptions{
		SubscriberType: "gateway",
	}, request)
	require.NoError(t, err)

	assert.Equal(t, request.Header.MessageID, resp.Header.MessageID)
	assert.Equal(t, "UserEventCompleted", resp.Channel)
	assert.Equal(t, "gateway", resp.Recipient)
	assert.Equal(t, "ada", resp.Payload["name"])
}

func TestPublishAndWaitIgnoresUncorrelatedResponses(t *testing.T) {
	mesh := newMesh(t)
	requester := mesh.newBus(t, "pid-gateway")
	responder := mesh.newBus(t, "pid-user")

	sub, err := responder.Subscribe(mesh.ctx, "UserEvent", pubsub.SubscribeOptions{
		SubscriberType: "user",
		SubscriberID:   responder.ProcessID(),
	}, func(ctx context.Context, msg *message.Message) {
		// A response to some other exchange lands on the channel first
		decoy := message.New("UserEventCompleted", message.TypeCRUD, message.ActionGetSingle, "gateway", map[string]any{"name": "decoy"})
		assert.NoError(t, responder.Publish(ctx, "UserEventCompleted", decoy))

		reply := msg.Reply("UserEventCompleted", map[string]any{"name": "ada"})
		assert.NoError(t, responder.Publish(ctx, "UserEventCompleted", reply))
	})
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, sub.Unsubscribe()) })

	ctx, cancel := context.WithTimeout(mesh.ctx, 2*time.Second)
	defer cancel()

	request := message.New("UserEvent", message.TypeCRUD, message.ActionGetSingle, "user", map[string]any{"id": "42"})

	resp, err := requester.PublishAndWaitForResponse(ctx, "UserEvent", "UserEventCompleted", pubsub.SubscribeOptions{
		SubscriberType: "gateway",
	}, request)
	require.NoError(t, err)

	assert.Equal(t, request.Header.MessageID, resp.Header.MessageID)
	assert.Equal(t, "ada", resp.Payload["name"])
}

func TestPublishAndWaitTimesOut(t *testing.T) {
	mesh := newMesh(t)
	requester := mesh.newBus(t, "pid-gateway")

	ctx, cancel := context.WithTimeout(mesh.ctx, 50*time.Millisecond)
	defer cancel()

	request := message.New("UserEvent", message.TypeCRUD, message.ActionGetSingle, "user", map[string]any{"id": "42"})

	_, err := requester.PublishAndWaitForResponse(ctx, "UserEvent", "UserEventCompleted", pubsub.SubscribeOptions{
		SubscriberType: "gateway",
	}, request)
	require.ErrorIs(t, err, pubsub.ErrResponseTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPublishAndWaitRequiresSubscriberType(t *testing.T) {
	mesh := newMesh(t)
	bus := mesh.newBus(t, "pid-1")

	request := message.New("UserEvent", message.TypeCRUD, message.ActionGetSingle, "user", map[string]any{"id": "42"})

	_, err := bus.PublishAndWaitForResponse(mesh.ctx, "UserEvent", "UserEventCompleted", pubsub.SubscribeOptions{}, request)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pubsub.ErrSubscriberTypeRequired))
}

func TestCloseDeregistersProcessEverywhere(t *testing.T) {
	mesh := newMesh(t)
	bus := mesh.newBus(t, "pid-1")
	other := mesh.newBus(t, "pid-2")

	handler := func(context.Context, *message.Message) {}

	for _, channel := range []string{"UserEvent", "ChatEvent"} {
		sub, err := bus.Subscribe(mesh.ctx, channel, pubsub.SubscribeOptions{
			SubscriberType: "user",
			SubscriberID:   bus.ProcessID(),
		}, handler)
		require.NoError(t, err)

		t.Cleanup(func() { require.NoError(t, sub.Unsubscribe()) })
	}

	otherSub, err := other.Subscribe(mesh.ctx, "UserEvent", pubsub.SubscribeOptions{
		SubscriberType: "user",
		SubscriberID:   other.ProcessID(),
	}, handler)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, otherSub.Unsubscribe()) })

	require.NoError(t, bus.Close(mesh.ctx))

	// The other process keeps its registration
	subscribers, err := bus.SubscribersForType(mesh.ctx, "UserEvent", "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"pid-2"}, subscribers)

	// The closed process left every channel, emptied types disappear
	types, err := bus.SubscriberTypes(mesh.ctx, "ChatEvent")
	require.NoError(t, err)
	assert.Empty(t, types)
}
