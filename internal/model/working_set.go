package model

// WorkingSet is the keyed set of active members for one run. Keys are fixed
// at construction; afterwards only LastLogin values change, and only upwards.
// Iteration follows directory order.
//
// A WorkingSet is not safe for concurrent use. Each pipeline stage owns it
// exclusively while it runs.
type WorkingSet struct {
	members map[string]*Member
	order   []string
}

// NewWorkingSet builds a working set from members in directory order. The
// first occurrence of a duplicated ID wins.
func NewWorkingSet(members []Member) *WorkingSet {
	ws := &WorkingSet{
		members: make(map[string]*Member, len(members)),
		order:   make([]string, 0, len(members)),
	}
	for _, m := range members {
		if _, exists := ws.members[m.ID]; exists {
			continue
		}
		member := m
		ws.members[m.ID] = &member
		ws.order = append(ws.order, m.ID)
	}
	return ws
}

func (ws *WorkingSet) Len() int {
	return len(ws.order)
}

func (ws *WorkingSet) Contains(userID string) bool {
	_, ok := ws.members[userID]
	return ok
}

// Get returns a copy of the member with the given ID.
func (ws *WorkingSet) Get(userID string) (Member, bool) {
	m, ok := ws.members[userID]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Members returns copies of all members in directory order.
func (ws *WorkingSet) Members() []Member {
	out := make([]Member, 0, len(ws.order))
	for _, userID := range ws.order {
		out = append(out, *ws.members[userID])
	}
	return out
}

// ObserveLogin raises the member's LastLogin to at if at is newer. Unknown
// IDs are ignored. It reports whether the stored value changed.
func (ws *WorkingSet) ObserveLogin(userID string, at int64) bool {
	m, ok := ws.members[userID]
	if !ok || at <= m.LastLogin {
		return false
	}
	m.LastLogin = at
	return true
}

// WithLogins counts members whose LastLogin is no longer the sentinel.
func (ws *WorkingSet) WithLogins() int {
	n := 0
	for _, m := range ws.members {
		if m.HasLogin() {
			n++
		}
	}
	return n
}
