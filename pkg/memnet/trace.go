package memnet

import (
	"context"
	"time"

	"github.com/riversys/hydroline/pkg/geom"
	"github.com/riversys/hydroline/pkg/hydro"
)

// TraceUpstream returns the edge set reachable by walking against assigned
// flow from the point. The edge the point lies on is included whole. A
// point off the network yields an empty set.
func (n *Network) TraceUpstream(ctx context.Context, p geom.Point) (hydro.EdgeSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	result := make(hydro.EdgeSet)
	start, ok := n.locate(p)
	if !ok {
		n.recordTrace("upstream", started, 0)
		return result, nil
	}

	result[start.ID] = start
	frontier := []hydro.NodeID{start.UpstreamNode()}
	visited := map[hydro.NodeID]bool{start.UpstreamNode(): true}

	for len(frontier) > 0 {
		node := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		for _, id := range n.inflow[node] {
			e := n.edge(id)
			if result.Contains(e.ID) {
				continue
			}
			result[e.ID] = e
			up := e.UpstreamNode()
			if !visited[up] {
				visited[up] = true
				frontier = append(frontier, up)
			}
		}
	}

	n.recordTrace("upstream", started, len(result))
	return result, nil
}

// TracePath returns the edge set connecting the two points.
//
// TraceFindPath walks the network as an undirected graph and collects every
// edge lying on any simple path between the points, so braided channels
// joining the same pair are all included; callers disambiguate against an
// upstream trace. TraceDownstream follows assigned flow from the first
// point and ignores the second.
func (n *Network) TracePath(ctx context.Context, from, to geom.Point, mode hydro.TraceMode) (hydro.EdgeSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	result := make(hydro.EdgeSet)

	fromEdge, okFrom := n.locate(from)
	if !okFrom {
		n.recordTrace("path", started, 0)
		return result, nil
	}

	if mode == hydro.TraceDownstream {
		n.traceDownstream(fromEdge, result)
		n.recordTrace("path", started, len(result))
		return result, nil
	}

	toEdge, okTo := n.locate(to)
	if !okTo {
		n.recordTrace("path", started, 0)
		return result, nil
	}

	if fromEdge.ID == toEdge.ID {
		result[fromEdge.ID] = fromEdge
		n.recordTrace("path", started, 1)
		return result, nil
	}

	goal := map[hydro.NodeID]bool{toEdge.FromNode: true, toEdge.ToNode: true}
	walk := pathWalk{
		net:    n,
		avoid:  fromEdge.ID,
		goal:   goal,
		result: result,
	}
	for _, startNode := range []hydro.NodeID{fromEdge.FromNode, fromEdge.ToNode} {
		walk.visit(startNode, map[hydro.NodeID]bool{startNode: true}, nil)
	}

	if walk.found {
		result[fromEdge.ID] = fromEdge
		result[toEdge.ID] = toEdge
	}

	n.recordTrace("path", started, len(result))
	return result, nil
}

// traceDownstream collects edges reachable following flow from the edge.
func (n *Network) traceDownstream(start hydro.Edge, result hydro.EdgeSet) {
	result[start.ID] = start
	frontier := []hydro.NodeID{start.DownstreamNode()}
	visited := map[hydro.NodeID]bool{start.DownstreamNode(): true}

	for len(frontier) > 0 {
		node := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		for _, id := range n.outflow[node] {
			e := n.edge(id)
			if result.Contains(e.ID) {
				continue
			}
			result[e.ID] = e
			down := e.DownstreamNode()
			if !visited[down] {
				visited[down] = true
				frontier = append(frontier, down)
			}
		}
	}
}

// pathWalk enumerates simple undirected node paths by depth-first search
// with backtracking, accumulating every edge that appears on a path
// reaching the target edge. River networks are close to trees, so the
// enumeration stays small in practice.
type pathWalk struct {
	net    *Network
	avoid  hydro.EdgeID // the start edge; never traversed
	goal   map[hydro.NodeID]bool
	result hydro.EdgeSet
	found  bool
}

func (w *pathWalk) visit(node hydro.NodeID, visited map[hydro.NodeID]bool, path []hydro.EdgeID) {
	if w.goal[node] {
		w.found = true
		for _, id := range path {
			w.result[id] = w.net.edge(id)
		}
		// A goal node can still lead to further goal paths through other
		// branches, but any continuation revisits the target edge's other
		// endpoint, so stopping here keeps paths simple.
		return
	}

	for _, id := range w.net.incident[node] {
		if id == w.avoid {
			continue
		}
		e := w.net.edge(id)
		next := otherNode(e, node)
		if visited[next] {
			continue
		}

		visited[next] = true
		w.visit(next, visited, append(path, id))
		delete(visited, next)
	}
}

func (n *Network) recordTrace(operation string, started time.Time, edges int) {
	if n.metrics != nil {
		n.metrics.RecordTrace(operation, time.Since(started), edges)
	}
}
