package signaling

import "sync"

// Registry owns the room-membership map: roomID -> set of live connections.
// It is the only shared mutable state in the relay and is constructed once per
// process and injected; there is no package-level instance.
//
// Membership exists only while at least one connection has joined a room.
// Empty rooms are removed immediately; nothing else expires them.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]map[*Client]struct{}
	joined map[*Client]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  map[string]map[*Client]struct{}{},
		joined: map[*Client]map[string]struct{}{},
	}
}

// Join adds c to the room and reports the member count afterwards. Re-joining
// is a membership no-op: the count never grows from a duplicate join.
func (r *Registry) Join(roomID string, c *Client) (members int, rejoined bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = map[*Client]struct{}{}
		r.rooms[roomID] = room
	}
	if _, ok := room[c]; ok {
		return len(room), true
	}
	room[c] = struct{}{}

	set, ok := r.joined[c]
	if !ok {
		set = map[string]struct{}{}
		r.joined[c] = set
	}
	set[roomID] = struct{}{}
	return len(room), false
}

// Leave removes c from the room, deleting the room once it is empty.
func (r *Registry) Leave(roomID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(roomID, c)
}

func (r *Registry) leaveLocked(roomID string, c *Client) {
	if room, ok := r.rooms[roomID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if set, ok := r.joined[c]; ok {
		delete(set, roomID)
		if len(set) == 0 {
			delete(r.joined, c)
		}
	}
}

// Others returns the current members of the room excluding c. A nil slice
// means the room is empty or unknown.
func (r *Registry) Others(roomID string, c *Client) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Client, 0, len(room))
	for member := range room {
		if member != c {
			out = append(out, member)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Rooms returns the rooms c has joined.
func (r *Registry) Rooms(c *Client) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.joined[c]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for roomID := range set {
		out = append(out, roomID)
	}
	return out
}

// Members reports the current member count of a room.
func (r *Registry) Members(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[roomID])
}

// DropAll removes c from every room it joined and returns those room ids.
func (r *Registry) DropAll(c *Client) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.joined[c]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for roomID := range set {
		out = append(out, roomID)
	}
	for _, roomID := range out {
		r.leaveLocked(roomID, c)
	}
	return out
}
