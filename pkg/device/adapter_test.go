package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeThreshold(t *testing.T) {
	a := NewAdapter(0, 0)

	compact, changed := a.Resize(80) // 640px
	assert.True(t, compact)
	assert.True(t, changed)

	compact, changed = a.Resize(95) // 760px
	assert.True(t, compact)
	assert.False(t, changed)

	compact, changed = a.Resize(96) // 768px
	assert.False(t, compact)
	assert.True(t, changed)
	assert.False(t, a.Compact())
}

func TestIsCompactWidth(t *testing.T) {
	a := NewAdapter(768, 8)
	assert.True(t, a.IsCompactWidth(767))
	assert.False(t, a.IsCompactWidth(768))
}

func TestSubscribeNotifiedOnlyOnCrossing(t *testing.T) {
	a := NewAdapter(100, 1)
	sub := a.Subscribe()

	a.Resize(200)
	assert.Equal(t, false, <-sub)

	a.Resize(150)
	select {
	case v := <-sub:
		t.Fatalf("unexpected notification %v", v)
	default:
	}

	a.Resize(50)
	assert.Equal(t, true, <-sub)

	a.Unsubscribe(sub)
	_, ok := <-sub
	assert.False(t, ok)
}

func TestCloseDeregisters(t *testing.T) {
	a := NewAdapter(100, 1)
	sub := a.Subscribe()
	a.Resize(200)
	<-sub

	a.Close()
	a.Close()
	_, ok := <-sub
	assert.False(t, ok)

	compact, changed := a.Resize(10)
	assert.False(t, compact)
	assert.False(t, changed)

	late := a.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
