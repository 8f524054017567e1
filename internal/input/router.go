package input

import (
	"time"
)

// Edge is a lane transition. Engage fires only on the first source to
// claim a lane, disengage only when the last source lets go.
type Edge struct {
	Lane   int
	Engage bool
	Time   time.Duration
}

type Sink func(Edge)

// Router maps raw keyboard and pointer events to lane edges. It does no
// judgment, it only deduplicates sources, everything else belongs to the
// judge.
type Router struct {
	sink      Sink
	laneCount int
	enabled   bool

	keys     []rune
	keysDown map[rune]int // key -> lane currently held

	trackX    float64
	laneWidth float64
	pointers  map[int]int // pointer id -> owned lane

	claims   []int // per-lane source count
	lastTime time.Duration
}

func NewRouter(laneCount int, sink Sink) *Router {
	return &Router{
		sink:      sink,
		laneCount: laneCount,
		keysDown:  map[rune]int{},
		pointers:  map[int]int{},
		claims:    make([]int, laneCount),
	}
}

// BindKeys assigns one key per lane, extra keys are ignored.
func (r *Router) BindKeys(keys []rune) {
	r.keys = keys
}

// SetTrack sets the horizontal geometry pointer positions resolve against.
func (r *Router) SetTrack(startX, laneWidth float64) {
	r.trackX = startX
	r.laneWidth = laneWidth
}

// SetEnabled gates the router, input outside active play is dropped.
// Disabling force-releases every held source so no lane stays engaged
// across a pause.
func (r *Router) SetEnabled(enabled bool) {
	if r.enabled == enabled {
		return
	}
	r.enabled = enabled
	if enabled {
		return
	}
	for k, lane := range r.keysDown {
		delete(r.keysDown, k)
		r.release(lane)
	}
	for id, lane := range r.pointers {
		delete(r.pointers, id)
		r.release(lane)
	}
}

func (r *Router) Engaged(lane int) bool {
	if lane < 0 || lane >= r.laneCount {
		return false
	}
	return r.claims[lane] > 0
}

func (r *Router) keyLane(key rune) int {
	for i, c := range r.keys {
		if i >= r.laneCount {
			break
		}
		if c == key {
			return i
		}
	}
	return -1
}

func (r *Router) laneAt(x float64) int {
	if r.laneWidth <= 0 {
		return -1
	}
	lane := int((x - r.trackX) / r.laneWidth)
	if x < r.trackX || lane < 0 || lane >= r.laneCount {
		return -1
	}
	return lane
}

func (r *Router) acquire(lane int, t time.Duration) {
	r.claims[lane]++
	if r.claims[lane] == 1 {
		r.sink(Edge{Lane: lane, Engage: true, Time: t})
	}
}

func (r *Router) release(lane int) {
	if r.claims[lane] == 0 {
		return
	}
	r.claims[lane]--
	if r.claims[lane] == 0 {
		r.sink(Edge{Lane: lane, Engage: false, Time: r.lastTime})
	}
}

// KeyDown handles a pressed->held transition. Repeats while held are
// no-ops, an unbound key is not an error.
func (r *Router) KeyDown(key rune, t time.Duration) {
	if !r.enabled {
		return
	}
	r.lastTime = t
	if _, down := r.keysDown[key]; down {
		return
	}
	lane := r.keyLane(key)
	if lane < 0 {
		return
	}
	r.keysDown[key] = lane
	r.acquire(lane, t)
}

func (r *Router) KeyUp(key rune, t time.Duration) {
	if !r.enabled {
		return
	}
	r.lastTime = t
	lane, down := r.keysDown[key]
	if !down {
		return
	}
	delete(r.keysDown, key)
	r.release(lane)
}

// PointerDown claims the lane under x for the pointer id. Positions
// outside the track are ignored.
func (r *Router) PointerDown(id int, x float64, t time.Duration) {
	if !r.enabled {
		return
	}
	r.lastTime = t
	if _, held := r.pointers[id]; held {
		return
	}
	lane := r.laneAt(x)
	if lane < 0 {
		return
	}
	r.pointers[id] = lane
	r.acquire(lane, t)
}

// PointerMove re-resolves the owned lane, disengaging the old one only
// if no other source still claims it.
func (r *Router) PointerMove(id int, x float64, t time.Duration) {
	if !r.enabled {
		return
	}
	r.lastTime = t
	old, held := r.pointers[id]
	lane := r.laneAt(x)
	if held && lane == old {
		return
	}
	if held {
		delete(r.pointers, id)
		r.release(old)
	}
	if lane < 0 {
		return
	}
	r.pointers[id] = lane
	r.acquire(lane, t)
}

func (r *Router) PointerUp(id int, t time.Duration) {
	if !r.enabled {
		return
	}
	r.lastTime = t
	lane, held := r.pointers[id]
	if !held {
		return
	}
	delete(r.pointers, id)
	r.release(lane)
}
