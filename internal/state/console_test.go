package state

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shiftly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_DetailRegistry(t *testing.T) {
	c, err := NewConsole(testDeps(&fakeGateway{}), ConsoleOptions{})
	require.NoError(t, err)

	d1, err := c.Detail(testPhone, "Dana")
	require.NoError(t, err)
	d2, err := c.Detail(" "+testPhone+" ", "")
	require.NoError(t, err)
	assert.Same(t, d1, d2)

	found, ok := c.LookupDetail(testPhone)
	assert.True(t, ok)
	assert.Same(t, d1, found)

	assert.True(t, c.CloseDetail(testPhone))
	assert.False(t, c.CloseDetail(testPhone))
	_, ok = c.LookupDetail(testPhone)
	assert.False(t, ok)

	_, err = c.Detail("", "")
	assert.Error(t, err)
}

func TestConsole_StartAndShutdown(t *testing.T) {
	api := &fakeGateway{
		escalations: func() (*models.EscalationResponse, error) { return escalationFixture(), nil },
		conversation: func(string) (*models.Conversation, error) {
			return conversationFixture(models.StatusActive, 1), nil
		},
		healthy: true,
	}
	c, err := NewConsole(testDeps(api), ConsoleOptions{})
	require.NoError(t, err)

	c.Start(context.Background())
	assert.Equal(t, 1, api.count("config"))
	assert.Equal(t, 1, api.count("health"))
	assert.Equal(t, 1, api.count("escalations"))
	assert.True(t, c.Escalations.Snapshot().AutoRefresh)
	assert.True(t, c.AlertsEnabled())

	d, err := c.Detail(testPhone, "")
	require.NoError(t, err)
	require.NoError(t, d.Open(context.Background()))
	assert.True(t, d.Polling())

	c.Shutdown()
	assert.False(t, c.Escalations.Snapshot().AutoRefresh)
	assert.False(t, d.Polling())
	_, ok := c.LookupDetail(testPhone)
	assert.False(t, ok)
}

func TestConsole_DetailRegistryEvictsIdleControllers(t *testing.T) {
	api := &fakeGateway{conversation: func(string) (*models.Conversation, error) {
		return conversationFixture(models.StatusActive, 1), nil
	}}
	c, err := NewConsole(testDeps(api), ConsoleOptions{})
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	watched, err := c.Detail(testPhone, "")
	require.NoError(t, err)
	require.NoError(t, watched.Open(context.Background()))
	require.True(t, watched.Polling())

	for i := 0; i < MaxIdleDetails; i++ {
		_, err := c.Detail(fmt.Sprintf("+1555900%04d", i), "")
		require.NoError(t, err)
	}
	_, ok := c.LookupDetail("+15559000000")
	require.True(t, ok, "below the bound nothing is evicted")

	latest, err := c.Detail("+15559999999", "")
	require.NoError(t, err)

	_, ok = c.LookupDetail("+15559000000")
	assert.False(t, ok, "idle controllers are dropped")
	found, ok := c.LookupDetail(testPhone)
	require.True(t, ok, "watched controllers survive")
	assert.Same(t, watched, found)
	found, ok = c.LookupDetail("+15559999999")
	require.True(t, ok)
	assert.Same(t, latest, found)

	c.mu.Lock()
	assert.Len(t, c.details, 2)
	c.mu.Unlock()
}

func TestConsole_StartInBackgroundDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	api := &fakeGateway{
		config: func() (*models.DealershipConfig, error) {
			<-release
			return &models.DealershipConfig{}, nil
		},
		escalations: func() (*models.EscalationResponse, error) { return escalationFixture(), nil },
	}
	c, err := NewConsole(testDeps(api), ConsoleOptions{})
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	done := c.StartInBackground(context.Background())
	select {
	case <-done:
		t.Fatal("initial load finished before the backend answered")
	case <-time.After(20 * time.Millisecond):
	}
	assert.False(t, c.Escalations.Snapshot().AutoRefresh)

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("initial load never finished")
	}
	assert.True(t, c.Escalations.Snapshot().AutoRefresh)
	assert.Equal(t, 1, api.count("escalations"))
}
