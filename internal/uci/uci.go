// Package uci implements the text protocol front end on top of the engine
// facade. Commands arrive on stdin, engine output leaves on stdout; all
// diagnostics go through the logger on stderr.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hynli/riverfish/internal/board"
	"github.com/hynli/riverfish/internal/engine"
	"github.com/hynli/riverfish/internal/search"
)

const (
	engineName   = "Riverfish"
	engineAuthor = "the Riverfish developers"
)

// UCI is the protocol handler. It owns the input/output streams and drives
// the engine facade; search progress comes back through the facade's handlers
// and is printed from the dispatcher goroutine.
type UCI struct {
	engine *engine.Engine
	in     io.Reader
	out    io.Writer
	log    zerolog.Logger

	quit bool
}

// New creates a protocol handler bound to the given streams.
func New(eng *engine.Engine, in io.Reader, out io.Writer, log zerolog.Logger) *UCI {
	u := &UCI{engine: eng, in: in, out: out, log: log}

	eng.OnFullUpdate(func(up search.FullUpdate) {
		u.sendInfo(up)
	})
	eng.OnBestMove(func(ev search.BestMoveEvent) {
		u.sendBestMove(ev)
	})

	return u
}

// Run reads commands until EOF or quit.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		u.Handle(line)
		if u.quit {
			return
		}
	}

	// EOF: make sure a running search does not outlive the session.
	u.engine.Stop()
	u.engine.WaitForSearchFinished()
}

// Handle processes a single protocol line.
func (u *UCI) Handle(line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		fmt.Fprintln(u.out, "readyok")
	case "ucinewgame":
		u.handleNewGame()
	case "setoption":
		u.handleSetOption(args)
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(args)
	case "stop":
		u.engine.Stop()
	case "ponderhit":
		u.engine.PonderHit()
	case "quit":
		u.handleQuit()
	// Debug commands
	case "d":
		fmt.Fprintln(u.out, u.engine.Visualize())
	case "fen":
		fmt.Fprintln(u.out, u.engine.Fen())
	case "perft":
		u.handlePerft(args)
	default:
		u.log.Debug().Str("command", cmd).Msg("unknown command")
	}
}

func (u *UCI) handleUCI() {
	fmt.Fprintf(u.out, "id name %s\n", engineName)
	fmt.Fprintf(u.out, "id author %s\n", engineAuthor)
	fmt.Fprintln(u.out)
	for _, o := range u.engine.Options().List() {
		fmt.Fprintln(u.out, o.ProtocolString())
	}
	fmt.Fprintln(u.out, "uciok")
}

func (u *UCI) handleNewGame() {
	u.engine.Stop()
	u.engine.WaitForSearchFinished()
	if err := u.engine.ClearHash(); err != nil {
		u.log.Warn().Err(err).Msg("clear hash failed")
	}
	if err := u.engine.SetPosition(board.StartFEN); err != nil {
		u.log.Warn().Err(err).Msg("reset position failed")
	}
}

func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>; both parts may contain
	// spaces.
	var name, value strings.Builder
	target := (*strings.Builder)(nil)

	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target == nil {
				continue
			}
			if target.Len() > 0 {
				target.WriteByte(' ')
			}
			target.WriteString(arg)
		}
	}

	if err := u.engine.Options().Set(name.String(), value.String()); err != nil {
		fmt.Fprintf(u.out, "info string %v\n", err)
	}
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves h2e2 h9g7
//   - position fen <fen>
//   - position fen <fen> moves h2e2
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesIdx := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesIdx = i
			break
		}
	}

	var fen string
	switch args[0] {
	case "startpos":
		fen = board.StartFEN
	case "fen":
		fen = strings.Join(args[1:movesIdx], " ")
	default:
		return
	}

	var moves []string
	if movesIdx+1 < len(args) {
		moves = args[movesIdx+1:]
	}

	if err := u.engine.SetPosition(fen, moves...); err != nil {
		fmt.Fprintf(u.out, "info string %v\n", err)
	}
}

// handleGo parses the limits and starts the search. The reply arrives
// asynchronously as info lines and a final bestmove line.
func (u *UCI) handleGo(args []string) {
	limits, perftDepth := parseGoArgs(args)

	if perftDepth > 0 {
		limits = search.Limits{PerftDepth: perftDepth}
	}

	if err := u.engine.Go(limits); err != nil {
		fmt.Fprintf(u.out, "info string %v\n", err)
	}
}

// parseGoArgs parses "go" arguments into search limits. A "perft" argument
// switches the whole invocation to perft mode.
func parseGoArgs(args []string) (search.Limits, int) {
	var limits search.Limits
	perftDepth := 0

	nextInt := func(i int) (int, bool) {
		if i+1 < len(args) {
			v, err := strconv.Atoi(args[i+1])
			return v, err == nil
		}
		return 0, false
	}
	nextMs := func(i int) (time.Duration, bool) {
		v, ok := nextInt(i)
		return time.Duration(v) * time.Millisecond, ok
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if v, ok := nextInt(i); ok {
				limits.Depth = v
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				if n, err := strconv.ParseUint(args[i+1], 10, 64); err == nil {
					limits.Nodes = n
				}
				i++
			}
		case "movetime":
			if v, ok := nextMs(i); ok {
				limits.MoveTime = v
				i++
			}
		case "infinite":
			limits.Infinite = true
		case "ponder":
			limits.Ponder = true
		case "mate":
			if v, ok := nextInt(i); ok {
				limits.Mate = v
				i++
			}
		case "perft":
			if v, ok := nextInt(i); ok {
				perftDepth = v
				i++
			}
		case "wtime":
			if v, ok := nextMs(i); ok {
				limits.Time[board.Red] = v
				i++
			}
		case "btime":
			if v, ok := nextMs(i); ok {
				limits.Time[board.Black] = v
				i++
			}
		case "winc":
			if v, ok := nextMs(i); ok {
				limits.Inc[board.Red] = v
				i++
			}
		case "binc":
			if v, ok := nextMs(i); ok {
				limits.Inc[board.Black] = v
				i++
			}
		case "movestogo":
			if v, ok := nextInt(i); ok {
				limits.MovesToGo = v
				i++
			}
		case "searchmoves":
			for i+1 < len(args) {
				m, err := board.ParseMove(args[i+1])
				if err != nil {
					break
				}
				limits.SearchMoves = append(limits.SearchMoves, m)
				i++
			}
		}
	}

	return limits, perftDepth
}

// sendInfo formats one full update as an info line.
func (u *UCI) sendInfo(up search.FullUpdate) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d seldepth %d multipv %d", up.Depth, up.SelDepth, up.MultiPV)

	sb.WriteString(" score ")
	sb.WriteString(formatScore(up.Score))
	if up.LowerBound {
		sb.WriteString(" lowerbound")
	}
	if up.UpperBound {
		sb.WriteString(" upperbound")
	}

	fmt.Fprintf(&sb, " nodes %d time %d", up.Nodes, up.Elapsed.Milliseconds())
	if up.Elapsed > 0 {
		fmt.Fprintf(&sb, " nps %d", uint64(float64(up.Nodes)/up.Elapsed.Seconds()))
	}
	if up.HashFull > 0 {
		fmt.Fprintf(&sb, " hashfull %d", up.HashFull)
	}

	if len(up.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range up.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}

	fmt.Fprintln(u.out, sb.String())
}

// formatScore renders a score as "cp <n>" or "mate <n>".
func formatScore(score int) string {
	if score > search.MateScore-search.MaxPly {
		return fmt.Sprintf("mate %d", (search.MateScore-score+1)/2)
	}
	if score < -search.MateScore+search.MaxPly {
		return fmt.Sprintf("mate %d", -(search.MateScore+score+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

func (u *UCI) sendBestMove(ev search.BestMoveEvent) {
	if ev.PonderMove != board.NoMove {
		fmt.Fprintf(u.out, "bestmove %s ponder %s\n", ev.BestMove, ev.PonderMove)
		return
	}
	fmt.Fprintf(u.out, "bestmove %s\n", ev.BestMove)
}

func (u *UCI) handleQuit() {
	u.engine.Close()
	u.quit = true
}

// handlePerft runs a synchronous perft from the current position, with a
// per-move breakdown.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			depth = v
		}
	}

	start := time.Now()
	divide, err := u.engine.PerftDivide(depth)
	if err != nil {
		fmt.Fprintf(u.out, "info string %v\n", err)
		return
	}
	elapsed := time.Since(start)

	var total uint64
	for move, nodes := range divide {
		fmt.Fprintf(u.out, "%s: %d\n", move, nodes)
		total += nodes
	}
	fmt.Fprintf(u.out, "\nNodes searched: %d\n", total)
	fmt.Fprintf(u.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(u.out, "NPS: %.0f\n", float64(total)/elapsed.Seconds())
	}
}
