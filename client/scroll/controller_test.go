package scroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeViewport is a list of fixed height whose scroll position tests move by hand
type fakeViewport struct {
	top, height, client float64
	jumps, animated     int
}

func (v *fakeViewport) ScrollTop() float64    { return v.top }
func (v *fakeViewport) ScrollHeight() float64 { return v.height }
func (v *fakeViewport) ClientHeight() float64 { return v.client }

func (v *fakeViewport) ScrollToBottom(animated bool) {
	v.top = v.height - v.client
	if animated {
		v.animated++
	} else {
		v.jumps++
	}
}

func newViewport() *fakeViewport {
	return &fakeViewport{height: 2000, client: 500}
}

func TestController_MountJumpsToBottom(t *testing.T) {
	vp := newViewport()
	c := NewController(vp)

	c.OnMount()
	assert.Equal(t, Stuck, c.State())
	assert.Equal(t, 1, vp.jumps)
	assert.Equal(t, 1500.0, vp.top)

	// the jump's own scroll event must not be read as a gesture
	c.OnScroll()
	assert.Equal(t, Stuck, c.State())
}

func TestController_WheelUpFrees(t *testing.T) {
	vp := newViewport()
	c := NewController(vp)
	c.OnMount()
	c.OnScroll()

	c.OnWheel(-120)
	vp.top = 1380
	c.OnScroll()
	assert.Equal(t, Free, c.State())

	vp.height += 100
	c.OnAppend(false)
	assert.Equal(t, 0, vp.animated)
	assert.Equal(t, 1380.0, vp.top)
}

func TestController_WheelDownIsIgnored(t *testing.T) {
	vp := newViewport()
	c := NewController(vp)
	c.OnMount()
	c.OnScroll()

	c.OnWheel(120)
	assert.Equal(t, Stuck, c.State())
}

func TestController_ReturningToBottomSticks(t *testing.T) {
	vp := newViewport()
	c := NewController(vp)
	c.OnMount()
	c.OnScroll()

	c.OnPointerDown()
	vp.top = 900
	c.OnPointerMove()
	assert.Equal(t, Free, c.State())

	vp.top = 1499 // within epsilon
	c.OnScroll()
	c.OnPointerUp()
	assert.Equal(t, Stuck, c.State())

	vp.height += 80
	c.OnAppend(false)
	assert.Equal(t, 1, vp.animated)
	assert.Equal(t, vp.height-vp.client, vp.top)
}

func TestController_PointerMoveWithoutPressIsNoGesture(t *testing.T) {
	vp := newViewport()
	c := NewController(vp)
	c.OnMount()

	vp.top = 900
	c.OnPointerMove()
	assert.Equal(t, Stuck, c.State())
}

func TestController_TouchDragTowardsOlderFrees(t *testing.T) {
	vp := newViewport()
	c := NewController(vp)
	c.OnMount()
	c.OnScroll()

	c.OnTouchStart(300)
	vp.top = 1400
	c.OnTouchMove(260) // towards newer
	assert.Equal(t, Stuck, c.State())

	c.OnTouchMove(340)
	assert.Equal(t, Free, c.State())
	c.OnTouchEnd()
}

func TestController_OwnMessageAlwaysScrolls(t *testing.T) {
	vp := newViewport()
	c := NewController(vp)
	c.OnMount()
	c.OnScroll()

	c.OnWheel(-120)
	vp.top = 200
	c.OnScroll()
	assert.Equal(t, Free, c.State())

	vp.height += 60
	c.OnAppend(true)
	assert.Equal(t, 1, vp.animated)
	assert.Equal(t, vp.height-vp.client, vp.top)
	assert.Equal(t, Stuck, c.State())
}

func TestController_HistoryLoadResets(t *testing.T) {
	vp := newViewport()
	c := NewController(vp)
	c.OnMount()
	c.OnScroll()

	c.OnWheel(-50)
	vp.top = 10
	c.OnScroll()
	assert.Equal(t, Free, c.State())

	vp.height = 5000
	c.OnHistoryLoaded()
	assert.Equal(t, Stuck, c.State())
	assert.Equal(t, 2, vp.jumps)
	assert.Equal(t, 4500.0, vp.top)
}
