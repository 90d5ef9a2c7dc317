package world

// BlockList is a set of cell indices with O(1) add and remove.
// Changes requested while the list is being iterated go through BufferAdd and
// BufferRemove and are applied in request order by Commit.
type BlockList struct {
	items   []int32
	pos     map[int32]int32 // cell index -> position in items
	pending []int32         // +(idx+1) add, -(idx+1) remove
}

func (l *BlockList) init() {
	if l.pos == nil {
		l.pos = make(map[int32]int32)
	}
}

// Len returns the number of members
func (l *BlockList) Len() int { return len(l.items) }

// At returns the i-th member in iteration order
func (l *BlockList) At(i int) int { return int(l.items[i]) }

// Contains reports whether idx is a member
func (l *BlockList) Contains(idx int) bool {
	_, ok := l.pos[int32(idx)]
	return ok
}

// Add inserts idx immediately. Duplicate adds are ignored.
func (l *BlockList) Add(idx int) {
	l.init()
	key := int32(idx)
	if _, ok := l.pos[key]; ok {
		return
	}
	l.pos[key] = int32(len(l.items))
	l.items = append(l.items, key)
}

// Remove deletes idx immediately by swapping the last member into its place
func (l *BlockList) Remove(idx int) {
	key := int32(idx)
	p, ok := l.pos[key]
	if !ok {
		return
	}
	last := len(l.items) - 1
	moved := l.items[last]
	l.items[p] = moved
	l.pos[moved] = p
	l.items = l.items[:last]
	delete(l.pos, key)
}

// BufferAdd queues an add for the next Commit
func (l *BlockList) BufferAdd(idx int) {
	l.pending = append(l.pending, int32(idx)+1)
}

// BufferRemove queues a remove for the next Commit
func (l *BlockList) BufferRemove(idx int) {
	l.pending = append(l.pending, -(int32(idx) + 1))
}

// Pending returns the number of queued changes
func (l *BlockList) Pending() int { return len(l.pending) }

// Commit applies queued changes in the order they were requested.
// It must not be called while the list is being iterated.
func (l *BlockList) Commit() {
	for _, ref := range l.pending {
		if ref > 0 {
			l.Add(int(ref - 1))
		} else {
			l.Remove(int(-ref - 1))
		}
	}
	l.pending = l.pending[:0]
}

// Clear drops all members and queued changes
func (l *BlockList) Clear() {
	l.items = l.items[:0]
	l.pending = l.pending[:0]
	clear(l.pos)
}

// Rebuild replaces the contents with every index in [0, n) accepted by keep
func (l *BlockList) Rebuild(n int, keep func(idx int) bool) {
	l.Clear()
	for i := 0; i < n; i++ {
		if keep(i) {
			l.Add(i)
		}
	}
}
