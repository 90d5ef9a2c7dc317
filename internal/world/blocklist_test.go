package world

import (
	"math/rand"
	"sort"
	"testing"
)

func members(l *BlockList) []int {
	out := make([]int, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		out = append(out, l.At(i))
	}
	sort.Ints(out)
	return out
}

func TestBlockListAddRemove(t *testing.T) {
	var l BlockList
	l.Add(3)
	l.Add(5)
	l.Add(3)
	l.Add(9)
	l.Remove(3)
	l.Remove(42)

	got := members(&l)
	want := []int{5, 9}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("members: got %v, want %v", got, want)
	}
	if !l.Contains(9) || l.Contains(3) {
		t.Fatalf("contains mismatch")
	}
}

func TestBlockListBufferedMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		var buffered, direct BlockList
		for i := 0; i < 200; i++ {
			idx := rng.Intn(32)
			if rng.Intn(2) == 0 {
				buffered.BufferAdd(idx)
				direct.Add(idx)
			} else {
				buffered.BufferRemove(idx)
				direct.Remove(idx)
			}
		}
		if buffered.Len() != 0 {
			t.Fatalf("buffered changes applied before commit")
		}
		buffered.Commit()

		got, want := members(&buffered), members(&direct)
		if len(got) != len(want) {
			t.Fatalf("round %d: got %v, want %v", round, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("round %d: got %v, want %v", round, got, want)
			}
		}
		if buffered.Pending() != 0 {
			t.Fatalf("pending not drained")
		}
	}
}

func TestBlockListRemoveThenReAdd(t *testing.T) {
	var l BlockList
	l.Add(1)
	l.BufferRemove(1)
	l.BufferAdd(1)
	l.Commit()
	if !l.Contains(1) || l.Len() != 1 {
		t.Fatalf("remove then add must keep the member")
	}
	l.BufferAdd(2)
	l.BufferRemove(2)
	l.Commit()
	if l.Contains(2) {
		t.Fatalf("add then remove must drop the member")
	}
}

func TestBlockListRebuild(t *testing.T) {
	var l BlockList
	l.Add(100)
	l.BufferAdd(7)
	l.Rebuild(10, func(i int) bool { return i%2 == 0 })
	got := members(&l)
	if len(got) != 5 || got[0] != 0 || got[4] != 8 {
		t.Fatalf("rebuild: got %v", got)
	}
	if l.Pending() != 0 {
		t.Fatalf("rebuild must drop queued changes")
	}
}
