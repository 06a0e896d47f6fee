package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hynli/riverfish/internal/engine"
	"github.com/hynli/riverfish/internal/logx"
	"github.com/hynli/riverfish/internal/search"
	"github.com/hynli/riverfish/internal/storage"
	"github.com/hynli/riverfish/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	dataDir    = flag.String("data", "", "data directory (default: platform data dir)")
	noPersist  = flag.Bool("no-persist", false, "do not load or save preferences and the hash snapshot")
	logLevel   = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log := logx.NewLoggerWithLevel(*logLevel)

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	eng := engine.New()
	defer eng.Close()

	if !*noPersist {
		if save, err := setupPersistence(eng, log); err != nil {
			log.Warn().Err(err).Msg("persistence disabled")
		} else {
			defer save()
		}
	}

	protocol := uci.New(eng, os.Stdin, os.Stdout, log)
	protocol.Run()
}

// setupPersistence applies saved preferences and the hash snapshot to the
// engine and returns the function that writes them back at exit.
func setupPersistence(eng *engine.Engine, log zerolog.Logger) (func(), error) {
	dir := *dataDir
	if dir == "" {
		dir = os.Getenv("RIVERFISH_DATA_DIR")
	}
	if dir == "" {
		var err error
		dir, err = storage.DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}

	store, err := storage.Open(dir)
	if err != nil {
		return nil, err
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		store.Close()
		return nil, err
	}
	applyPreferences(eng, prefs, log)

	snapPath := storage.SnapshotPath(dir)
	if err := storage.LoadSnapshot(snapPath, eng.Kernel().TT()); err != nil {
		log.Warn().Err(err).Msg("hash snapshot not restored")
	}

	tracker := newSearchTracker(eng, store, log)
	eng.OnIteration(tracker.observe)

	save := func() {
		tracker.flush()
		prefs := preferencesFromOptions(eng)
		if err := store.SavePreferences(prefs); err != nil {
			log.Warn().Err(err).Msg("save preferences failed")
		}
		if err := storage.SaveSnapshot(snapPath, eng.Kernel().TT()); err != nil {
			log.Warn().Err(err).Msg("save hash snapshot failed")
		}
		store.Close()
	}
	return save, nil
}

// searchTracker folds completed searches into the persistent statistics. A
// depth-1 iteration marks the start of a new search, at which point the
// previous one is recorded.
type searchTracker struct {
	eng   *engine.Engine
	store *storage.Storage
	log   zerolog.Logger

	mu      sync.Mutex
	pending bool
	depth   int
	nodes   uint64
	elapsed time.Duration
}

func newSearchTracker(eng *engine.Engine, store *storage.Storage, log zerolog.Logger) *searchTracker {
	return &searchTracker{eng: eng, store: store, log: log}
}

func (tr *searchTracker) observe(ev search.IterationEvent) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.pending && ev.Depth <= tr.depth {
		tr.recordLocked()
	}
	tr.pending = true
	tr.depth = ev.Depth
	tr.nodes = ev.Nodes
	tr.elapsed = tr.eng.Kernel().Elapsed()
}

func (tr *searchTracker) flush() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.pending {
		tr.recordLocked()
	}
}

func (tr *searchTracker) recordLocked() {
	if err := tr.store.RecordSearch(tr.nodes, tr.depth, tr.elapsed); err != nil {
		tr.log.Warn().Err(err).Msg("record search stats failed")
	}
	tr.pending = false
}

func applyPreferences(eng *engine.Engine, prefs *storage.Preferences, log zerolog.Logger) {
	opts := eng.Options()
	set := func(name, value string) {
		if err := opts.Set(name, value); err != nil {
			log.Warn().Err(err).Str("option", name).Msg("saved preference rejected")
		}
	}
	set("Hash", fmt.Sprint(prefs.HashMB))
	set("Threads", fmt.Sprint(prefs.Threads))
	set("MultiPV", fmt.Sprint(prefs.MultiPV))
	set("Ponder", fmt.Sprint(prefs.Ponder))
	set("Move Overhead", fmt.Sprint(prefs.MoveOverheadMs))
}

func preferencesFromOptions(eng *engine.Engine) *storage.Preferences {
	opts := eng.Options()
	return &storage.Preferences{
		HashMB:         opts.GetInt("Hash"),
		Threads:        opts.GetInt("Threads"),
		MultiPV:        opts.GetInt("MultiPV"),
		Ponder:         opts.GetBool("Ponder"),
		MoveOverheadMs: opts.GetInt("Move Overhead"),
	}
}
