package client

import (
	"testing"

	"gridsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_Bijection(t *testing.T) {
	m := NewMapper()
	s1, s2 := domain.PackEntityID(1, 1), domain.PackEntityID(2, 1)

	require.NoError(t, m.Insert(s1, 10))
	require.NoError(t, m.Insert(s2, 20))

	assert.ErrorIs(t, m.Insert(s1, 30), ErrAlreadyMapped)
	assert.ErrorIs(t, m.Insert(domain.PackEntityID(3, 1), 10), ErrAlreadyMapped)
	assert.Equal(t, 2, m.Len())

	for _, pair := range []struct {
		server domain.EntityID
		local  LocalID
	}{{s1, 10}, {s2, 20}} {
		l, ok := m.LocalOf(pair.server)
		require.True(t, ok)
		assert.Equal(t, pair.local, l)
		s, ok := m.ServerOf(l)
		require.True(t, ok)
		assert.Equal(t, pair.server, s)
	}

	local, ok := m.RemoveServer(s1)
	require.True(t, ok)
	assert.Equal(t, LocalID(10), local)
	_, ok = m.LocalOf(s1)
	assert.False(t, ok)
	_, ok = m.ServerOf(10)
	assert.False(t, ok)

	server, ok := m.RemoveLocal(20)
	require.True(t, ok)
	assert.Equal(t, s2, server)
	_, ok = m.LocalOf(s2)
	assert.False(t, ok)
	assert.Zero(t, m.Len())

	_, ok = m.RemoveLocal(20)
	assert.False(t, ok)
}
