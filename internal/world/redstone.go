package world

import "github.com/go-gl/mathgl/mgl32"

// MaxPower is the strongest signal level and the maximum travel distance
const MaxPower = 15

// lampLuminosity is the block light of a powered lamp
const lampLuminosity = 15

// SignalConductor is implemented by blocks taking part in signal propagation
type SignalConductor interface {
	Power() uint8
	Connections() FaceMask
	// Feed offers power arriving through side from
	Feed(b *Block, from Side, power uint8)
	// Unfeed withdraws power previously offered through side from
	Unfeed(b *Block, from Side, power uint8)
	Connect(b *Block, s Side)
	Disconnect(b *Block, s Side)
}

type powerSetter interface {
	setPower(p uint8)
}

// signalRole decides how a conductor treats incoming and outgoing power
type signalRole uint8

const (
	roleRelay  signalRole = iota // adopts and passes power on
	roleSource                   // constant power, rejects feed
	roleSink                     // adopts but does not pass on
)

// conductor carries the shared signal state of wires, torches and lamps
type conductor struct {
	role  signalRole
	power uint8
	conns FaceMask
}

func (c *conductor) Power() uint8 {
	if c.role == roleSource {
		return MaxPower
	}
	return c.power
}

func (c *conductor) setPower(p uint8) {
	if c.role != roleSource {
		c.power = min(p, MaxPower)
	}
}

func (c *conductor) Connections() FaceMask { return c.conns }

func (c *conductor) emits() bool { return c.role != roleSink }

func (c *conductor) Feed(b *Block, from Side, power uint8) {
	feedSignal(b, from, power)
}

func (c *conductor) Unfeed(b *Block, from Side, power uint8) {
	unfeedSignal(b, from, power)
}

func (c *conductor) Connect(_ *Block, s Side) { c.conns |= s.Bit() }

func (c *conductor) Disconnect(_ *Block, s Side) { c.conns &^= s.Bit() }

// conductorOf returns the signal state of a block, nil if it carries none
func conductorOf(b *Block) *conductor {
	if b == nil {
		return nil
	}
	switch v := b.behavior.(type) {
	case *wireBehavior:
		return &v.conductor
	case *torchBehavior:
		return &v.conductor
	case *lampBehavior:
		return &v.conductor
	}
	return nil
}

// adopt sets a new power level, dirtying the mesh and switching lamp light
func adopt(b *Block, sc *conductor, p uint8) {
	old := sc.power
	sc.power = p
	b.chunk.MarkDirty()
	if sc.role != roleSink {
		return
	}
	switch {
	case old == 0 && p > 0:
		spreadLight(b.chunk, b.index, lampLuminosity)
	case old > 0 && p == 0:
		unspreadLight(b.chunk, b.index, lampLuminosity)
	}
}

type signalHop struct {
	b     *Block
	from  Side
	power uint8
}

// feedSignal offers power to b and fans out breadth first. A block adopts the
// level when it is unpowered or the level is higher than its own, then offers
// power-1 to every connected neighbour except the sender.
func feedSignal(b *Block, from Side, power uint8) {
	queue := []signalHop{{b, from, min(power, MaxPower)}}
	for head := 0; head < len(queue); head++ {
		h := queue[head]
		sc := conductorOf(h.b)
		if sc == nil || h.power == 0 || sc.role == roleSource {
			continue
		}
		if sc.power != 0 && h.power <= sc.power {
			continue
		}
		adopt(h.b, sc, h.power)
		if sc.role != roleRelay || h.power <= 1 {
			continue
		}
		for _, s := range Sides {
			if s == h.from || !sc.conns.Has(s) {
				continue
			}
			if n, ok := h.b.Neighbor(s); ok && n != nil {
				queue = append(queue, signalHop{n, s.Opposite(), h.power - 1})
			}
		}
	}
}

// unfeedSignal withdraws power in two phases. First every block whose level
// matches the withdrawn level exactly is switched off and the withdrawal
// travels on; blocks holding more power are fed by another source and are
// collected. Then the collected blocks re-emit, restoring whatever the first
// phase cleared that they still reach.
func unfeedSignal(b *Block, from Side, power uint8) {
	var frontier []*Block
	queue := []signalHop{{b, from, min(power, MaxPower)}}
	for head := 0; head < len(queue); head++ {
		h := queue[head]
		sc := conductorOf(h.b)
		if sc == nil || h.power == 0 {
			continue
		}
		if sc.role == roleSource || sc.power != h.power {
			if sc.Power() > 0 {
				frontier = append(frontier, h.b)
			}
			continue
		}
		adopt(h.b, sc, 0)
		if sc.role != roleRelay {
			continue
		}
		for _, s := range Sides {
			if s == h.from || !sc.conns.Has(s) {
				continue
			}
			if n, ok := h.b.Neighbor(s); ok && n != nil {
				queue = append(queue, signalHop{n, s.Opposite(), h.power - 1})
			}
		}
	}
	for _, f := range frontier {
		emitSignal(f)
	}
}

// emitSignal offers a block's power-1 to all connected neighbours
func emitSignal(b *Block) {
	sc := conductorOf(b)
	if sc == nil || !sc.emits() || sc.Power() <= 1 {
		return
	}
	for _, s := range Sides {
		if !sc.conns.Has(s) {
			continue
		}
		if n, ok := b.Neighbor(s); ok && n != nil {
			feedSignal(n, s.Opposite(), sc.Power()-1)
		}
	}
}

// signalNeighborChanged connects to or disconnects from the cell on side s
// and exchanges power over a new connection.
func signalNeighborChanged(b *Block, s Side) {
	sc := conductorOf(b)
	n, ok := b.Neighbor(s)
	if sc == nil || !ok {
		return
	}
	nsc := conductorOf(n)
	if nsc == nil {
		sc.conns &^= s.Bit()
		return
	}
	if sc.conns.Has(s) && nsc.conns.Has(s.Opposite()) {
		return
	}
	sc.conns |= s.Bit()
	nsc.conns |= s.Opposite().Bit()

	pa, pn := sc.Power(), nsc.Power()
	switch {
	case sc.emits() && pa > 1 && pa-1 > pn:
		feedSignal(n, s.Opposite(), pa-1)
	case nsc.emits() && pn > 1 && pn-1 > pa:
		feedSignal(b, s, pn-1)
	}
}

// signalSmashed disconnects a conductor and withdraws the power it offered
func signalSmashed(b *Block) {
	sc := conductorOf(b)
	if sc == nil {
		return
	}
	p := sc.Power()
	conns := sc.conns
	sc.conns = 0
	var fed []signalHop
	for _, s := range Sides {
		if !conns.Has(s) {
			continue
		}
		n, ok := b.Neighbor(s)
		if !ok || n == nil {
			continue
		}
		if nsc := conductorOf(n); nsc != nil {
			nsc.conns &^= s.Opposite().Bit()
			fed = append(fed, signalHop{n, s.Opposite(), p - 1})
		}
	}
	if !sc.emits() || p <= 1 {
		return
	}
	for _, h := range fed {
		unfeedSignal(h.b, h.from, h.power)
	}
}

// connectAll runs the neighbour check on every side
func connectAll(b *Block) {
	for _, s := range Sides {
		signalNeighborChanged(b, s)
	}
}

// wireBehavior is flat dust on top of a solid block
type wireBehavior struct {
	conductor
}

func (w *wireBehavior) Update(*Block, float32) {}

func (w *wireBehavior) Visibility(b *Block) { b.setFaces(SideTop.Bit()) }

func (w *wireBehavior) NeighborChanged(b *Block, s Side) {
	if s == SideBottom {
		breakIfUnsupported(b)
	}
	signalNeighborChanged(b, s)
}

func (w *wireBehavior) Placed(b *Block) {
	breakIfUnsupported(b)
	connectAll(b)
}

func (w *wireBehavior) Smashed(b *Block) { signalSmashed(b) }

func (w *wireBehavior) VertexCount(*Block) int { return 4 }

func (w *wireBehavior) EmitGeometry(b *Block, g GeometryWriter) {
	g.Face(b, SideTop, unitMin, mgl32.Vec3{1, 1.0 / 16, 1})
}

// torchBehavior is an unconditional signal source
type torchBehavior struct {
	conductor
}

func (t *torchBehavior) Update(*Block, float32) {}

func (t *torchBehavior) Visibility(b *Block) { b.setFaces(AllFaces) }

func (t *torchBehavior) NeighborChanged(b *Block, s Side) {
	if s == SideBottom {
		breakIfUnsupported(b)
	}
	signalNeighborChanged(b, s)
}

func (t *torchBehavior) Placed(b *Block) {
	breakIfUnsupported(b)
	connectAll(b)
}

func (t *torchBehavior) Smashed(b *Block) {
	signalSmashed(b)
}

func (t *torchBehavior) VertexCount(*Block) int { return torchVertices }

func (t *torchBehavior) EmitGeometry(b *Block, g GeometryWriter) { emitTorch(b, g) }

// lampBehavior is a cube that lights up while powered
type lampBehavior struct {
	conductor
}

func (l *lampBehavior) Luminosity(*Block) uint8 {
	if l.power > 0 {
		return lampLuminosity
	}
	return 0
}

func (l *lampBehavior) Update(*Block, float32) {}

func (l *lampBehavior) Visibility(b *Block) { sharedCube.Visibility(b) }

func (l *lampBehavior) NeighborChanged(b *Block, s Side) {
	sharedCube.Visibility(b)
	signalNeighborChanged(b, s)
}

func (l *lampBehavior) Placed(b *Block) {
	connectAll(b)
}

func (l *lampBehavior) Smashed(b *Block) {
	signalSmashed(b)
}

func (l *lampBehavior) VertexCount(b *Block) int { return sharedCube.VertexCount(b) }

func (l *lampBehavior) EmitGeometry(b *Block, g GeometryWriter) { sharedCube.EmitGeometry(b, g) }
