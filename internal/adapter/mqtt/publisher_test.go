package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/openwater-etl/internal/domain"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done bool
	err  error
}

func (t *fakeToken) Wait() bool                     { return t.done }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.done {
		close(ch)
	}
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	connected    bool
	connectToken *fakeToken
	publishErr   error
	published    []published
	disconnects  int
}

func (c *fakeClient) Connect() mqtt.Token {
	if c.connectToken.done && c.connectToken.err == nil {
		c.connected = true
	}
	return c.connectToken
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload any) mqtt.Token {
	if c.publishErr != nil {
		return &fakeToken{done: true, err: c.publishErr}
	}
	c.published = append(c.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{done: true}
}

func (c *fakeClient) Disconnect(uint) {
	c.disconnects++
	c.connected = false
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPublisher_Connect(t *testing.T) {
	fc := &fakeClient{connectToken: &fakeToken{done: true}}
	p := newPublisher(fc, "openwater/notifications", discard())

	require.NoError(t, p.Connect(context.Background()))
	assert.True(t, fc.IsConnected())
}

func TestPublisher_ConnectError(t *testing.T) {
	fc := &fakeClient{connectToken: &fakeToken{done: true, err: errors.New("not authorized")}}
	p := newPublisher(fc, "openwater/notifications", discard())

	err := p.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")
}

func TestPublisher_ConnectHonorsContext(t *testing.T) {
	fc := &fakeClient{connectToken: &fakeToken{done: false}}
	p := newPublisher(fc, "openwater/notifications", discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Connect(ctx), context.Canceled)
}

func TestPublisher_ConnectAfterClose(t *testing.T) {
	fc := &fakeClient{connectToken: &fakeToken{done: true}}
	p := newPublisher(fc, "openwater/notifications", discard())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Connect(context.Background()), errStopped)
	assert.Equal(t, 2, fc.disconnects)
}

func TestPublisher_LoadBatch(t *testing.T) {
	fc := &fakeClient{connected: true}
	p := newPublisher(fc, "openwater/notifications", discard())

	batch := []domain.Notification{
		{Recipient: "sam@example.com", Unit: domain.Fahrenheit, Readings: 2},
		{Recipient: "riley@example.org", Unit: domain.Celsius, Readings: 1},
	}
	require.NoError(t, p.LoadBatch(context.Background(), batch))

	require.Len(t, fc.published, 2)
	assert.Equal(t, "openwater/notifications", fc.published[0].topic)
	assert.Equal(t, byte(1), fc.published[0].qos)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(fc.published[1].payload, &got))
	assert.Equal(t, "riley@example.org", got.Recipient)
	assert.Equal(t, domain.Celsius, got.Unit)
}

func TestPublisher_LoadBatchErrors(t *testing.T) {
	batch := []domain.Notification{{Recipient: "sam@example.com"}}

	t.Run("not connected", func(t *testing.T) {
		p := newPublisher(&fakeClient{}, "t", discard())
		assert.Error(t, p.LoadBatch(context.Background(), batch))
	})

	t.Run("publish error", func(t *testing.T) {
		p := newPublisher(&fakeClient{connected: true, publishErr: errors.New("broker gone")}, "t", discard())
		err := p.LoadBatch(context.Background(), batch)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sam@example.com")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		p := newPublisher(&fakeClient{}, "t", discard())
		assert.NoError(t, p.LoadBatch(context.Background(), nil))
	})
}
