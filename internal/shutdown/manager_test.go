package shutdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownCancelsAndRunsHooksOnce(t *testing.T) {
	m := NewManager(context.Background(), nil)

	var order []int
	m.OnShutdown(func() { order = append(order, 1) })
	m.OnShutdown(func() { order = append(order, 2) })

	assert.NoError(t, m.Context().Err())
	m.Shutdown()
	m.Shutdown()

	assert.ErrorIs(t, m.Context().Err(), context.Canceled)
	assert.Equal(t, []int{2, 1}, order)
}

func TestParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	m := NewManager(parent, nil)
	stop := m.Listen()
	defer stop()

	cancel()
	<-m.Context().Done()
	assert.ErrorIs(t, m.Context().Err(), context.Canceled)
}
