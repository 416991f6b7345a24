package meals

import "sync"

// Hub fans out a user's current meal list to live subscribers. Each
// subscriber holds at most one pending list; a newer list replaces an
// unread one.
type Hub struct {
	mu         sync.Mutex
	nextID     int
	subs       map[string]map[int]chan []Meal
	refreshing map[string]*sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:       make(map[string]map[int]chan []Meal),
		refreshing: make(map[string]*sync.Mutex),
	}
}

// Subscribe registers for a user's meal list updates. The cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(userID string) (<-chan []Meal, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan []Meal, 1)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan []Meal)
	}
	h.subs[userID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers meals to every subscriber of userID without blocking.
func (h *Hub) Publish(userID string, meals []Meal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[userID] {
		snapshot := append([]Meal(nil), meals...)
		select {
		case ch <- snapshot:
		default:
			// Drop the stale list the subscriber has not read yet.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// Subscribers returns the number of live subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// Refresh reloads a user's list with load and publishes it. Refreshes of
// one user run one at a time, so an older list never replaces a newer one.
// Nothing is loaded while the user has no subscribers.
func (h *Hub) Refresh(userID string, load func() ([]Meal, error)) error {
	if h.Subscribers(userID) == 0 {
		return nil
	}
	lock := h.refreshLock(userID)
	lock.Lock()
	defer lock.Unlock()

	meals, err := load()
	if err != nil {
		return err
	}
	h.Publish(userID, meals)
	return nil
}

func (h *Hub) refreshLock(userID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	lock, ok := h.refreshing[userID]
	if !ok {
		lock = &sync.Mutex{}
		h.refreshing[userID] = lock
	}
	return lock
}
