package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"blockworld/internal/item"
	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Slot tags of the special-state stream
const (
	tagEmpty  byte = 0
	tagSingle byte = 1
	tagStack  byte = 2
)

// noSlots marks a special block without an inventory
const noSlots = -1

// EncodeSpecial serializes block sub-state: per block its cell index, health,
// power and, for inventories, a tagged slot stream.
func EncodeSpecial(states []world.SpecialState) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int32(len(states)))
	for _, st := range states {
		binary.Write(&buf, binary.BigEndian, int32(st.Index))
		binary.Write(&buf, binary.BigEndian, st.Health)
		buf.WriteByte(st.Power)
		if st.Slots == nil {
			binary.Write(&buf, binary.BigEndian, int32(noSlots))
			continue
		}
		binary.Write(&buf, binary.BigEndian, int32(len(st.Slots)))
		for _, s := range st.Slots {
			writeSlot(&buf, s)
		}
	}
	return buf.Bytes()
}

func writeSlot(buf *bytes.Buffer, s *item.ItemStack) {
	switch {
	case s == nil || s.Count <= 0:
		buf.WriteByte(tagEmpty)
	case !s.IsStackable():
		buf.WriteByte(tagSingle)
		buf.WriteByte(byte(s.Type))
		binary.Write(buf, binary.BigEndian, s.Health)
	default:
		buf.WriteByte(tagStack)
		buf.WriteByte(byte(s.Type))
		binary.Write(buf, binary.BigEndian, int32(s.Count))
	}
}

// DecodeSpecial is the inverse of EncodeSpecial
func DecodeSpecial(data []byte) ([]world.SpecialState, error) {
	r := bytes.NewReader(data)
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("special state header: %w", err)
	}
	if n < 0 || int(n) > world.ChunkVolume {
		return nil, fmt.Errorf("special state count %d: %w", n, ErrCorruptChunk)
	}
	states := make([]world.SpecialState, 0, n)
	for i := int32(0); i < n; i++ {
		var st world.SpecialState
		var idx, slots int32
		if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
			return nil, fmt.Errorf("special state %d: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &st.Health); err != nil {
			return nil, fmt.Errorf("special state %d: %w", i, err)
		}
		p, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("special state %d: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &slots); err != nil {
			return nil, fmt.Errorf("special state %d: %w", i, err)
		}
		st.Index, st.Power = int(idx), p
		if slots > 256 {
			return nil, fmt.Errorf("special state %d has %d slots: %w", i, slots, ErrCorruptChunk)
		}
		if slots >= 0 {
			st.Slots = make([]*item.ItemStack, slots)
			for j := range st.Slots {
				if st.Slots[j], err = readSlot(r); err != nil {
					return nil, fmt.Errorf("special state %d slot %d: %w", i, j, err)
				}
			}
		}
		states = append(states, st)
	}
	return states, nil
}

func readSlot(r *bytes.Reader) (*item.ItemStack, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagEmpty:
		return nil, nil
	case tagSingle, tagStack:
	default:
		return nil, fmt.Errorf("slot tag %d: %w", tag, ErrCorruptChunk)
	}
	t, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag == tagSingle {
		var health float32
		if err := binary.Read(r, binary.BigEndian, &health); err != nil {
			return nil, err
		}
		s := item.NewSingle(registry.ID(t), health)
		return &s, nil
	}
	var count int32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	s := item.NewItemStack(registry.ID(t), int(count))
	return &s, nil
}

// EncodeLevel writes the world-level save file: two spawn points, the three
// climate sample lists and the tree log.
func EncodeLevel(l world.Level) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLevel(&buf, l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteLevel streams the world-level save file to w
func WriteLevel(w io.Writer, l world.Level) error {
	write := func(v any) error { return binary.Write(w, binary.BigEndian, v) }
	for _, p := range l.Spawn {
		if err := write([3]float32(p)); err != nil {
			return fmt.Errorf("write spawn: %w", err)
		}
	}
	for _, list := range [][]world.SamplePoint{l.Heights, l.Humidity, l.Temperature} {
		if err := write(int32(len(list))); err != nil {
			return fmt.Errorf("write samples: %w", err)
		}
		if err := write(list); err != nil {
			return fmt.Errorf("write samples: %w", err)
		}
	}
	if err := write(int32(len(l.Trees))); err != nil {
		return fmt.Errorf("write trees: %w", err)
	}
	if err := write(l.Trees); err != nil {
		return fmt.Errorf("write trees: %w", err)
	}
	return nil
}

// DecodeLevel parses a world-level save file
func DecodeLevel(data []byte) (world.Level, error) {
	return ReadLevel(bytes.NewReader(data))
}

// maxListLen bounds decoded list lengths against corrupt headers
const maxListLen = 1 << 22

// ReadLevel reads a world-level save file from r
func ReadLevel(r io.Reader) (world.Level, error) {
	var l world.Level
	read := func(v any) error { return binary.Read(r, binary.BigEndian, v) }
	for i := range l.Spawn {
		var p [3]float32
		if err := read(&p); err != nil {
			return l, fmt.Errorf("read spawn: %w", err)
		}
		if invalid(p) {
			return l, errors.New("read spawn: non-finite position")
		}
		l.Spawn[i] = mgl32.Vec3(p)
	}
	lists := []*[]world.SamplePoint{&l.Heights, &l.Humidity, &l.Temperature}
	for _, list := range lists {
		n, err := readLen(read)
		if err != nil {
			return l, fmt.Errorf("read samples: %w", err)
		}
		*list = make([]world.SamplePoint, n)
		if err := read(*list); err != nil {
			return l, fmt.Errorf("read samples: %w", err)
		}
	}
	n, err := readLen(read)
	if err != nil {
		return l, fmt.Errorf("read trees: %w", err)
	}
	l.Trees = make([]world.TreeRecord, n)
	if err := read(l.Trees); err != nil {
		return l, fmt.Errorf("read trees: %w", err)
	}
	return l, nil
}

func readLen(read func(any) error) (int, error) {
	var n int32
	if err := read(&n); err != nil {
		return 0, err
	}
	if n < 0 || n > maxListLen {
		return 0, fmt.Errorf("list length %d out of range", n)
	}
	return int(n), nil
}

func invalid(p [3]float32) bool {
	for _, v := range p {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return true
		}
	}
	return false
}
