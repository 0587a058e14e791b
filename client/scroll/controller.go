// Package scroll decides whether a message list follows new entries to the bottom.
package scroll

import "sync"

type State int

const (
	// Stuck follows every append to the newest entry
	Stuck State = iota
	// Free preserves the viewport while the user reads older entries
	Free
)

func (s State) String() string {
	if s == Stuck {
		return "stuck"
	}
	return "free"
}

// DefaultEpsilon is how close to the bottom edge, in pixels, still counts as the bottom
const DefaultEpsilon = 2.0

// Viewport is the scrollable message list
type Viewport interface {
	ScrollTop() float64
	ScrollHeight() float64
	ClientHeight() float64
	ScrollToBottom(animated bool)
}

type Controller struct {
	vp      Viewport
	epsilon float64

	mu           sync.Mutex
	state        State
	programmatic bool // a scroll we started is in flight
	wheelUp      bool
	pointerDown  bool
	touchY       float64
	touching     bool
}

func NewController(vp Viewport) *Controller {
	return &Controller{vp: vp, epsilon: DefaultEpsilon, state: Stuck}
}

// SetEpsilon overrides DefaultEpsilon
func (c *Controller) SetEpsilon(eps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epsilon = eps
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnMount forces Stuck and jumps to the bottom without animation
func (c *Controller) OnMount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Stuck
	c.scrollLocked(false)
}

// OnHistoryLoaded behaves like OnMount after a full history load
func (c *Controller) OnHistoryLoaded() {
	c.OnMount()
}

// OnAppend is called after an entry was added to the list. The user's own
// outgoing messages always scroll; everything else only while Stuck.
func (c *Controller) OnAppend(own bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if own {
		c.state = Stuck
	}
	if c.state == Stuck {
		c.scrollLocked(true)
	}
}

// OnWheel handles a wheel gesture; negative deltaY scrolls towards older entries
func (c *Controller) OnWheel(deltaY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deltaY >= 0 {
		return
	}
	c.wheelUp = true
	if !c.atBottomLocked() {
		c.state = Free
	}
}

func (c *Controller) OnPointerDown() {
	c.mu.Lock()
	c.pointerDown = true
	c.mu.Unlock()
}

// OnPointerMove only counts as a gesture while the pointer is held down
func (c *Controller) OnPointerMove() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pointerDown && !c.atBottomLocked() {
		c.state = Free
	}
}

func (c *Controller) OnPointerUp() {
	c.mu.Lock()
	c.pointerDown = false
	c.mu.Unlock()
}

func (c *Controller) OnTouchStart(y float64) {
	c.mu.Lock()
	c.touching, c.touchY = true, y
	c.mu.Unlock()
}

// OnTouchMove frees the list when the finger drags content down, revealing older entries
func (c *Controller) OnTouchMove(y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.touching {
		return
	}
	towardsOlder := y > c.touchY
	c.touchY = y
	if towardsOlder && !c.atBottomLocked() {
		c.state = Free
	}
}

func (c *Controller) OnTouchEnd() {
	c.mu.Lock()
	c.touching = false
	c.mu.Unlock()
}

// OnScroll is fed every scroll event of the viewport
func (c *Controller) OnScroll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	atBottom := c.atBottomLocked()
	if c.programmatic {
		c.programmatic = false
		if atBottom {
			return
		}
	}

	gesture := c.wheelUp || c.pointerDown || c.touching
	c.wheelUp = false
	switch {
	case atBottom:
		c.state = Stuck
	case gesture:
		c.state = Free
	}
}

func (c *Controller) atBottomLocked() bool {
	return c.vp.ScrollHeight()-c.vp.ScrollTop()-c.vp.ClientHeight() <= c.epsilon
}

func (c *Controller) scrollLocked(animated bool) {
	c.programmatic = true
	c.vp.ScrollToBottom(animated)
}
