package board

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(p *Position, depth int) uint64 {
	n, _ := perft(p, depth, nil)
	return n
}

// perft is Perft that gives up, reporting false, once done is closed.
// done is polled at nodes three or more plies above the leaves.
func perft(p *Position, depth int, done <-chan struct{}) (uint64, bool) {
	if depth == 0 {
		return 1, true
	}
	if depth >= 3 {
		select {
		case <-done:
			return 0, false
		default:
		}
	}

	var ml MoveList
	p.Generate(All, &ml)

	var nodes uint64
	for _, m := range ml.Slice() {
		undo, legal := p.MakeMove(m)
		if legal {
			if depth == 1 {
				nodes++
			} else {
				n, ok := perft(p, depth-1, done)
				if !ok {
					p.UnmakeMove(undo)
					return nodes, false
				}
				nodes += n
			}
		}
		p.UnmakeMove(undo)
	}
	return nodes, true
}

// DivideResult is the subtree size below one root move.
type DivideResult struct {
	Move  Move
	Nodes uint64
}

// Divide runs Perft below every legal root move, one goroutine per move,
// and returns the per-move counts in generation order. Cancelling ctx
// stops the walk inside the subtrees. The position is not modified.
func Divide(ctx context.Context, p *Position, depth int) ([]DivideResult, error) {
	moves := p.LegalMoves()
	results := make([]DivideResult, len(moves))
	if depth < 1 {
		return results[:0], nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range moves {
		child := p.Copy()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			undo, _ := child.MakeMove(m)
			n, ok := perft(child, depth-1, ctx.Done())
			child.UnmakeMove(undo)
			if !ok {
				return ctx.Err()
			}
			results[i] = DivideResult{Move: m, Nodes: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Total sums the node counts of a Divide result.
func Total(results []DivideResult) uint64 {
	var n uint64
	for _, r := range results {
		n += r.Nodes
	}
	return n
}
