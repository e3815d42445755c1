package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetRemove(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.Get("theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("theme", "dark"))
	v, ok, err := m.Get("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	require.NoError(t, m.Set("theme", "light"))
	v, _, _ = m.Get("theme")
	assert.Equal(t, "light", v)

	require.NoError(t, m.Remove("theme"))
	_, ok, _ = m.Get("theme")
	assert.False(t, ok)

	// Removing twice is fine.
	require.NoError(t, m.Remove("theme"))
}

func TestMemoryKeys(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("chat_sessions_Science", "[]"))
	require.NoError(t, m.Set("chat_sessions_English", "[]"))
	require.NoError(t, m.Set("theme", "dark"))

	keys, err := m.Keys("chat_sessions_")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_sessions_English", "chat_sessions_Science"}, keys)
}
