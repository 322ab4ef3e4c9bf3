package notifications_test

import (
	"testing"

	"github.com/cznethub/go-catalog-client/notifications"
	"github.com/stretchr/testify/require"
)

func TestRegistryDeliversToSubscribers(t *testing.T) {
	registry := notifications.NewRegistry()

	var received []notifications.Notification
	unsubscribe := registry.Subscribe(func(n notifications.Notification) {
		received = append(received, n)
	})
	defer unsubscribe()

	registry.Toast("You have logged in!", notifications.KindSuccess)

	require.Len(t, received, 1)
	require.Equal(t, "You have logged in!", received[0].Message)
	require.Equal(t, notifications.KindSuccess, received[0].Kind)
	require.NotEmpty(t, received[0].ID)
}

func TestRegistryUnsubscribeStopsDelivery(t *testing.T) {
	registry := notifications.NewRegistry()

	count := 0
	unsubscribe := registry.Subscribe(func(notifications.Notification) { count++ })

	registry.Toast("first", notifications.KindInfo)
	unsubscribe()
	unsubscribe() // repeated unsubscribe is a no-op
	registry.Toast("second", notifications.KindInfo)

	require.Equal(t, 1, count)
}

func TestRegistryMultipleSubscribers(t *testing.T) {
	registry := notifications.NewRegistry()

	a, b := 0, 0
	defer registry.Subscribe(func(notifications.Notification) { a++ })()
	defer registry.Subscribe(func(notifications.Notification) { b++ })()

	registry.Toast("Failed to Log In", notifications.KindError)

	require.Equal(t, 1, a)
	require.Equal(t, 1, b)
}
