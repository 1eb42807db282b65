package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribePublishSync(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var got []Event
	unsub := bus.Subscribe(PermissionRequested, func(e Event) {
		got = append(got, e)
	})
	defer unsub()

	bus.PublishSync(Event{Type: PermissionRequested, Data: PermissionRequestedData{ID: "1", Tool: "CodexBash"}})
	bus.PublishSync(Event{Type: PermissionResolved, Data: PermissionResolvedData{ID: "1", Status: "approved"}})

	assert.Len(t, got, 1)
	data, ok := got[0].Data.(PermissionRequestedData)
	assert.True(t, ok)
	assert.Equal(t, "CodexBash", data.Tool)
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var count int
	unsub := bus.SubscribeAll(func(e Event) { count++ })

	bus.PublishSync(Event{Type: PermissionTimeout})
	bus.PublishSync(Event{Type: SessionRestarted})
	unsub()
	bus.PublishSync(Event{Type: AgentStatus})

	assert.Equal(t, 2, count)
}

func TestBus_ClosedBusDropsEvents(t *testing.T) {
	bus := NewBus()

	var count int
	bus.Subscribe(PermissionResolved, func(e Event) { count++ })

	assert.NoError(t, bus.Close())
	bus.PublishSync(Event{Type: PermissionResolved})
	assert.Zero(t, count)

	// Subscribing after close is a no-op unsubscribe.
	unsub := bus.Subscribe(PermissionResolved, func(e Event) {})
	unsub()
}
