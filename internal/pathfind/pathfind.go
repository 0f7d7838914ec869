package pathfind

import (
	"container/heap"

	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/world"
)

// MaxIterations caps A* node expansions per search.
const MaxIterations = 7000

const (
	weightStraight = 10.0
	weightDiagonal = 25.0
)

// Params tune what counts as a goal position relative to the target.
type Params struct {
	// MinTargetDist and MaxTargetDist bound the acceptable Chebyshev
	// distance from the goal tile to the target.
	MinTargetDist int32
	MaxTargetDist int32

	// ClearSight requires an unobstructed line from the goal to the target.
	ClearSight bool

	// KeepDistance biases the search toward tiles at exactly MaxTargetDist,
	// for kiting archers that want the far edge of their range.
	KeepDistance bool

	// MaxSearchDist bounds how far from the start the search may wander,
	// 0 for no bound.
	MaxSearchDist int32

	// Allowed, when set, further restricts which tiles may be entered
	// (spawn leash, flee-away constraints).
	Allowed func(model.Position) bool
}

// Finder runs A* searches over the tile map.
type Finder struct {
	m *world.Map
}

// NewFinder creates a Finder over m.
func NewFinder(m *world.Map) *Finder {
	return &Finder{m: m}
}

// FindPath searches for a walkable route from start to a tile satisfying
// params relative to target. selfID is the searching creature, so its own
// tile does not block. Returns the step sequence from start, or ok=false
// when no acceptable tile is reachable within the iteration budget.
func (f *Finder) FindPath(start, target model.Position, selfID uint32, p Params) ([]model.Direction, bool) {
	if p.MaxTargetDist <= 0 {
		p.MaxTargetDist = 1
	}
	if f.isGoal(start, target, p) {
		return nil, true
	}

	open := &nodeHeap{}
	heap.Init(open)
	startNode := &pathNode{pos: start}
	startNode.hCost = heuristic(start, target)
	startNode.fCost = startNode.hCost
	heap.Push(open, startNode)

	closed := make(map[model.Position]struct{}, 256)

	for range MaxIterations {
		if open.Len() == 0 {
			return nil, false
		}
		current := heap.Pop(open).(*pathNode)

		if _, seen := closed[current.pos]; seen {
			continue
		}
		closed[current.pos] = struct{}{}

		if f.isGoal(current.pos, target, p) {
			return rebuild(current), true
		}

		f.expand(current, start, target, selfID, p, open, closed)
	}
	return nil, false
}

func (f *Finder) isGoal(pos, target model.Position, p Params) bool {
	dist := pos.ChebyshevDistance(target)
	if dist < p.MinTargetDist || dist > p.MaxTargetDist {
		return false
	}
	if p.ClearSight && !f.m.SightClear(pos, target) {
		return false
	}
	return true
}

func (f *Finder) expand(
	current *pathNode,
	start, target model.Position,
	selfID uint32,
	p Params,
	open *nodeHeap,
	closed map[model.Position]struct{},
) {
	type step struct {
		dir      model.Direction
		diagonal bool
	}
	steps := []step{
		{model.DirectionNorth, false},
		{model.DirectionEast, false},
		{model.DirectionSouth, false},
		{model.DirectionWest, false},
		{model.DirectionNorthEast, true},
		{model.DirectionSouthEast, true},
		{model.DirectionSouthWest, true},
		{model.DirectionNorthWest, true},
	}

	for _, s := range steps {
		next := model.NextPosition(s.dir, current.pos)
		if _, seen := closed[next]; seen {
			continue
		}
		if p.MaxSearchDist > 0 && start.ChebyshevDistance(next) > p.MaxSearchDist {
			continue
		}
		if !f.m.IsWalkable(next, selfID) {
			continue
		}
		if p.Allowed != nil && !p.Allowed(next) {
			continue
		}

		weight := weightStraight
		if s.diagonal {
			weight = weightDiagonal
		}
		if p.KeepDistance && next.ChebyshevDistance(target) < p.MaxTargetDist {
			// Crowding the target costs extra when the walker wants range.
			weight += weightStraight
		}

		node := &pathNode{
			pos:    next,
			dir:    s.dir,
			parent: current,
			gCost:  current.gCost + weight,
			hCost:  heuristic(next, target),
		}
		node.fCost = node.gCost + node.hCost
		heap.Push(open, node)
	}
}

// heuristic is the Chebyshev distance scaled to the straight-step weight,
// admissible for the 8-direction grid.
func heuristic(pos, target model.Position) float64 {
	return float64(pos.ChebyshevDistance(target)) * weightStraight
}

func rebuild(goal *pathNode) []model.Direction {
	var path []model.Direction
	for n := goal; n.parent != nil; n = n.parent {
		path = append(path, n.dir)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pathNode struct {
	pos    model.Position
	dir    model.Direction
	parent *pathNode
	gCost  float64
	hCost  float64
	fCost  float64
	index  int
}

// nodeHeap is the A* open list, a min-heap by fCost.
type nodeHeap []*pathNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].fCost < h[j].fCost }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)        { n := x.(*pathNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}
