package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-intake/internal/chat"
)

func TestEventHub_PublishAndCancel(t *testing.T) {
	hub := NewEventHub()
	first, cancelFirst := hub.Subscribe("s-1")
	second, cancelSecond := hub.Subscribe("s-1")
	other, cancelOther := hub.Subscribe("s-2")
	defer cancelOther()
	assert.Equal(t, 2, hub.Subscribers("s-1"))

	state := chat.Reduce(chat.InitialState(), chat.SetSessionID{SessionID: "s-1"})
	hub.Publish("s-1", state)

	got := <-first
	require.NotNil(t, got.SessionID)
	assert.Equal(t, "s-1", *got.SessionID)
	assert.Len(t, second, 1)
	assert.Len(t, other, 0)

	cancelFirst()
	cancelFirst()
	_, open := <-first
	assert.False(t, open)
	assert.Equal(t, 1, hub.Subscribers("s-1"))

	cancelSecond()
	assert.Equal(t, 0, hub.Subscribers("s-1"))
}

func TestEventHub_SlowSubscriberDropsSnapshots(t *testing.T) {
	hub := NewEventHub()
	ch, cancel := hub.Subscribe("s-1")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish("s-1", chat.InitialState())
	}
	assert.Len(t, ch, subscriberBuffer)
}
