package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DispatchRoutesByName(t *testing.T) {
	bus := NewBus()

	var titles, descriptions []Event
	bus.Subscribe(EventTitleData, func(ev Event) { titles = append(titles, ev) })
	bus.Subscribe(EventDescriptionData, func(ev Event) { descriptions = append(descriptions, ev) })

	v := "value"
	bus.Dispatch(NewResult(EventTitleData, "vid-1", &v))
	bus.Dispatch(NewResult(EventTitleData, "vid-2", &v))
	bus.Dispatch(NewResult(EventDescriptionData, "vid-1", &v))

	assert.Len(t, titles, 2)
	assert.Len(t, descriptions, 1)
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	bus := NewBus()

	var got int
	cancel := bus.Subscribe(EventTitleData, func(Event) { got++ })

	v := "value"
	bus.Dispatch(NewResult(EventTitleData, "vid-1", &v))
	cancel()
	bus.Dispatch(NewResult(EventTitleData, "vid-2", &v))

	assert.Equal(t, 1, got)
}

func TestBus_AwaitMatchesSubject(t *testing.T) {
	bus := NewBus()

	go func() {
		v := "wrong"
		bus.Dispatch(NewResult(EventTitleData, "other", &v))
		time.Sleep(10 * time.Millisecond)
		v2 := "right"
		bus.Dispatch(NewResult(EventTitleData, "vid-1", &v2))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := bus.Await(ctx, EventTitleData, func(ev Event) bool {
		return ev.SubjectID() == "vid-1"
	})
	require.NoError(t, err)
	require.NotNil(t, ev.Value())
	assert.Equal(t, "right", *ev.Value())
}

func TestBus_AwaitContextDone(t *testing.T) {
	bus := NewBus()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := bus.Await(ctx, EventTitleData, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
