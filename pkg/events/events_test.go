package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.OnAttributeUpdated(func(ctx context.Context, ev AttributeUpdated) error {
		order = append(order, "first")
		return nil
	})
	bus.OnAttributeUpdated(func(ctx context.Context, ev AttributeUpdated) error {
		order = append(order, "second")
		return nil
	})

	err := bus.PublishAttributeUpdated(context.Background(), AttributeUpdated{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBusDeliversPayload(t *testing.T) {
	bus := NewBus()

	var got AttributeUpdated
	bus.OnAttributeUpdated(func(ctx context.Context, ev AttributeUpdated) error {
		got = ev
		return nil
	})

	ev := AttributeUpdated{
		ID:         42,
		OldSlug:    "pa_color",
		FormFields: map[string]string{"use_in_filter": "1"},
	}
	require.NoError(t, bus.PublishAttributeUpdated(context.Background(), ev))

	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "pa_color", got.OldSlug)
	assert.Equal(t, "1", got.FormFields["use_in_filter"])
}

func TestBusHandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewBus()
	wantErr := errors.New("handler failed")

	var secondRan bool
	bus.OnAttributeDeleted(func(ctx context.Context, ev AttributeDeleted) error {
		return wantErr
	})
	bus.OnAttributeDeleted(func(ctx context.Context, ev AttributeDeleted) error {
		secondRan = true
		return nil
	})

	err := bus.PublishAttributeDeleted(context.Background(), AttributeDeleted{ID: 7})
	assert.ErrorIs(t, err, wantErr)
	assert.True(t, secondRan)
}

func TestBusReturnsFirstError(t *testing.T) {
	bus := NewBus()
	err1 := errors.New("first")
	err2 := errors.New("second")

	bus.OnAttributeCreated(func(ctx context.Context, ev AttributeCreated) error {
		return err1
	})
	bus.OnAttributeCreated(func(ctx context.Context, ev AttributeCreated) error {
		return err2
	})

	err := bus.PublishAttributeCreated(context.Background(), AttributeCreated{ID: 1})
	assert.ErrorIs(t, err, err1)
}

func TestBusPublishWithoutHandlers(t *testing.T) {
	bus := NewBus()

	require.NoError(t, bus.PublishAttributeCreated(context.Background(), AttributeCreated{ID: 1}))
	require.NoError(t, bus.PublishAttributeUpdated(context.Background(), AttributeUpdated{ID: 1}))
	require.NoError(t, bus.PublishAttributeDeleted(context.Background(), AttributeDeleted{ID: 1}))
	require.NoError(t, bus.PublishRenderField(context.Background(), RenderField{ID: 1}))
}

func TestRenderFieldCollectsOutput(t *testing.T) {
	bus := NewBus()

	bus.OnRenderField(func(ctx context.Context, ev RenderField) error {
		*ev.Output = append(*ev.Output, "<input>")
		return nil
	})
	bus.OnRenderField(func(ctx context.Context, ev RenderField) error {
		*ev.Output = append(*ev.Output, "<label>")
		return nil
	})

	var out []string
	require.NoError(t, bus.PublishRenderField(context.Background(), RenderField{ID: 3, Output: &out}))
	assert.Equal(t, []string{"<input>", "<label>"}, out)
}
