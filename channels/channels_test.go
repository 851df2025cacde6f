//go:build unit

package channels_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dambileh/civitas-bus/channels"
)

func TestLookup(t *testing.T) {
	entry, ok := channels.Lookup(channels.User)
	require.True(t, ok)

	assert.Equal(t, "UserEvent", entry.External.Event)
	assert.Equal(t, "UserEventCompleted", entry.External.CompletedEvent)
	assert.Equal(t, "userCreateEvent", entry.Internal["create"])
	assert.Equal(t, "userCreateCompletedEvent", entry.Internal["createDone"])

	_, ok = channels.Lookup("Billing")
	assert.False(t, ok)
}

func TestDomains(t *testing.T) {
	domains := channels.Domains()

	assert.Len(t, domains, 6)
	assert.Contains(t, domains, channels.Registration)
	assert.Contains(t, domains, channels.MessageHub)
}

func TestExternalChannels(t *testing.T) {
	names := channels.ExternalChannels()

	// Two external channels per domain, all unique
	assert.Len(t, names, 12)

	seen := map[string]bool{}
	for _, name := range names {
		assert.False(t, seen[name], "duplicate channel %q", name)
		seen[name] = true
	}

	assert.True(t, seen["UserEvent"])
	assert.True(t, seen["MessageHubEventCompleted"])
}
