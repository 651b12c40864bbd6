// Package uci implements the Universal Chess Interface front end.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/sonic/internal/bench"
	"github.com/hailam/sonic/internal/board"
	"github.com/hailam/sonic/internal/book"
	"github.com/hailam/sonic/internal/engine"
	"github.com/hailam/sonic/internal/storage"
)

// Engine identification.
const (
	Name   = "Sonic"
	Author = "Ting-Hsuan Huang"
)

var errQuit = errors.New("quit")

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.Position

	book  *book.Book
	store *storage.Storage
	opts  *storage.Options

	in  io.Reader
	out *syncWriter

	// Search state
	search *errgroup.Group
	cancel context.CancelFunc
}

// syncWriter serializes writes from the command loop and the search
// goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// New creates a protocol handler reading commands from in and writing
// responses to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		opts:     storage.DefaultOptions(),
		in:       in,
		out:      &syncWriter{w: out},
	}
}

// SetStorage persists option changes to s from now on.
func (u *UCI) SetStorage(s *storage.Storage, opts *storage.Options) {
	u.store = s
	if opts != nil {
		u.opts = opts
	}
}

// OpenBook opens the book at path and hands it to the engine. An empty
// path closes the current book.
func (u *UCI) OpenBook(path string) error {
	if u.book != nil {
		u.book.Close()
		u.book = nil
		u.engine.SetBook(nil)
	}
	u.opts.Book = path
	if path == "" {
		return nil
	}
	b, err := book.Open(path)
	if err != nil {
		return err
	}
	u.book = b
	u.engine.SetBook(b)
	return nil
}

// Run reads commands until quit or end of input. A running search is
// stopped and waited for before Run returns.
func (u *UCI) Run(ctx context.Context) error {
	defer u.closeBook()

	scanner := bufio.NewScanner(u.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := u.handle(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			log.Warn().Err(err).Str("command", line).Msg("command failed")
			u.printf("info string %v\n", err)
		}
	}
	u.stopSearch()
	return scanner.Err()
}

func (u *UCI) closeBook() {
	if u.book != nil {
		u.book.Close()
	}
}

func (u *UCI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(s string) {
	fmt.Fprintln(u.out, s)
}

// handle dispatches one command line.
func (u *UCI) handle(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.waitSearch()
		u.engine.Clear()
		u.position = board.NewPosition()
	case "position":
		u.waitSearch()
		return u.handlePosition(args)
	case "go":
		u.waitSearch()
		return u.handleGo(ctx, args)
	case "stop":
		u.stopSearch()
	case "quit":
		u.stopSearch()
		return errQuit
	case "setoption":
		return u.handleSetOption(args)
	// Debug commands
	case "d":
		u.println(u.position.String())
	case "bench":
		u.waitSearch()
		return u.handleBench(ctx, args)
	case "perft":
		u.waitSearch()
		return u.handlePerft(ctx, args)
	default:
		u.printf("Unknown Command: %s\n", line)
	}
	return nil
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name %s\n", Name)
	u.printf("id author %s\n", Author)
	u.println("option name Book type string default <none>")
	u.printf("option name Hash type spin default %d min %d max %d\n",
		engine.DefaultHashMB, engine.MinHashMB, engine.MaxHashMB)
	u.println("option name Clear Hash type button")
	for _, s := range engine.ParamSpecs {
		u.printf("option name %s type spin default %d min %d max %d\n", s.Name, s.Default, s.Min, s.Max)
	}
	u.println("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos [moves e2e4 e7e5 ...]
//   - position fen <fen> [moves e2e4 ...]
//
// The current position is kept if any part fails to parse.
func (u *UCI) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing startpos or fen")
	}

	var fen string
	rest := args[1:]
	switch args[0] {
	case "startpos":
		fen = board.StartFEN
	case "fen":
		end := len(rest)
		for i, a := range rest {
			if a == "moves" {
				end = i
				break
			}
		}
		fen = strings.Join(rest[:end], " ")
		rest = rest[end:]
	default:
		return fmt.Errorf("position: unknown argument %q", args[0])
	}

	var moves []string
	if len(rest) > 0 {
		if rest[0] != "moves" {
			return fmt.Errorf("position: unexpected %q", rest[0])
		}
		moves = rest[1:]
	}

	pos, err := board.ParsePosition(fen, moves...)
	if err != nil {
		return fmt.Errorf("position: %w", err)
	}
	u.position = pos
	return nil
}

// parseLimits converts "go" arguments to search limits. Times are in
// milliseconds.
func parseLimits(args []string) (engine.Limits, error) {
	var limits engine.Limits

	next := func(i int) (int, error) {
		if i+1 >= len(args) {
			return 0, fmt.Errorf("go: %s needs a value", args[i])
		}
		n, err := strconv.Atoi(args[i+1])
		if err != nil {
			return 0, fmt.Errorf("go: %s: %w", args[i], err)
		}
		return max(n, 0), nil
	}
	ms := func(n int) time.Duration {
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		if args[i] == "infinite" {
			limits.Infinite = true
			continue
		}
		n, err := next(i)
		if err != nil {
			return limits, err
		}
		switch args[i] {
		case "wtime":
			limits.Time[board.White] = ms(n)
		case "btime":
			limits.Time[board.Black] = ms(n)
		case "winc":
			limits.Inc[board.White] = ms(n)
		case "binc":
			limits.Inc[board.Black] = ms(n)
		case "movestogo":
			limits.MovesToGo = n
		case "movetime":
			limits.MoveTime = ms(n)
		case "depth":
			limits.Depth = n
		case "nodes":
			limits.Nodes = uint64(n)
		default:
			return limits, fmt.Errorf("go: unknown argument %q", args[i])
		}
		i++
	}
	return limits, nil
}

// handleGo starts a search in the background. The result is printed as
// "bestmove" when the search ends on its own or is stopped.
func (u *UCI) handleGo(ctx context.Context, args []string) error {
	limits, err := parseLimits(args)
	if err != nil {
		return err
	}

	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.println(bench.FormatInfo(info))
	}

	pos := u.position.Copy()
	u.startWorker(ctx, func(ctx context.Context) error {
		start := time.Now()
		res := u.engine.Search(ctx, pos, limits)
		if res.FromBook {
			u.println("info book move")
		}
		if res.BestMove == board.NoMove {
			log.Info().Bool("checkmate", pos.IsCheckmate()).Bool("stalemate", pos.IsStalemate()).
				Msg("no legal move at the root")
		}
		if ev := log.Debug(); ev.Enabled() {
			ev.Str("bestmove", res.BestMove.String()).
				Strs("pv", board.MovesToSAN(pos, res.PV)).
				Int("depth", res.Depth).
				Uint64("nodes", res.Nodes).
				Dur("elapsed", time.Since(start)).
				Msg("search finished")
		}
		u.printf("bestmove %s\n", res.BestMove)
		return nil
	})
	return nil
}

// startWorker runs job on the search worker. stop cancels its context and
// waitSearch joins it; an error it returns is reported like a command error.
func (u *UCI) startWorker(ctx context.Context, job func(ctx context.Context) error) {
	ctx, cancel := context.WithCancel(ctx)
	g := new(errgroup.Group)
	g.Go(func() error {
		defer cancel()
		if err := job(ctx); err != nil {
			log.Warn().Err(err).Msg("background command failed")
			u.printf("info string %v\n", err)
		}
		return nil
	})
	u.search, u.cancel = g, cancel
}

// stopSearch interrupts the running search and waits for its bestmove.
func (u *UCI) stopSearch() {
	if u.cancel != nil {
		u.cancel()
	}
	u.waitSearch()
}

// waitSearch blocks until the running search, if any, has printed its
// result.
func (u *UCI) waitSearch() {
	if u.search == nil {
		return
	}
	u.search.Wait()
	u.search, u.cancel = nil, nil
}

// handleSetOption processes "setoption name <name> [value <value>]".
func (u *UCI) handleSetOption(args []string) error {
	var name, value []string
	target := &name
	for _, a := range args {
		switch a {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, a)
		}
	}
	key := strings.Join(name, " ")
	val := strings.Join(value, " ")

	switch strings.ToLower(key) {
	case "book":
		if val == "<none>" {
			val = ""
		}
		u.waitSearch()
		if err := u.OpenBook(val); err != nil {
			return err
		}
	case "hash":
		mb, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("setoption Hash: %w", err)
		}
		u.waitSearch()
		u.engine.ResizeHash(mb)
		u.opts.Hash = mb
	case "clear hash", "clearhash":
		u.waitSearch()
		u.engine.Clear()
		return nil
	default:
		spec, ok := engine.LookupParam(key)
		if !ok {
			u.println("Unknown option.")
			return nil
		}
		v, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("setoption %s: %w", spec.Name, err)
		}
		u.waitSearch()
		p := u.engine.Params()
		v, _ = p.Set(spec.Name, v)
		u.engine.SetParams(p)
		u.opts.Params[spec.Name] = v
	}
	return u.saveOptions()
}

func (u *UCI) saveOptions() error {
	if u.store == nil {
		return nil
	}
	if err := u.store.SaveOptions(u.opts); err != nil {
		return fmt.Errorf("saving options: %w", err)
	}
	return nil
}

// handleBench runs the search benchmark, optionally at the given depth, on
// the search worker.
func (u *UCI) handleBench(ctx context.Context, args []string) error {
	depth := bench.DefaultDepth
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bench: %w", err)
		}
		depth = d
	}
	u.startWorker(ctx, func(ctx context.Context) error {
		_, err := bench.Run(ctx, u.out, u.engine, depth)
		return err
	})
	return nil
}

// handlePerft runs the perft suite, or divides the current position when
// given a depth, on the search worker so that stop interrupts it.
func (u *UCI) handlePerft(ctx context.Context, args []string) error {
	if len(args) == 0 {
		u.startWorker(ctx, func(ctx context.Context) error {
			return bench.RunPerft(ctx, u.out, bench.PerftSuite)
		})
		return nil
	}

	depth, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("perft: %w", err)
	}
	pos := u.position.Copy()
	u.startWorker(ctx, func(ctx context.Context) error {
		start := time.Now()
		results, err := board.Divide(ctx, pos, depth)
		if err != nil {
			return fmt.Errorf("perft: %w", err)
		}
		for _, r := range results {
			u.printf("%s: %d\n", r.Move, r.Nodes)
		}
		elapsed := time.Since(start)
		nodes := board.Total(results)
		u.printf("\nNodes: %d\n", nodes)
		u.printf("Time: %v\n", elapsed)
		u.printf("NPS: %d\n", nodes*1000/uint64(elapsed.Milliseconds()+1))
		return nil
	})
	return nil
}
