package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
)

// Preferences stores the engine settings carried across runs. They map onto
// the engine option registry by name.
type Preferences struct {
	HashMB         int       `json:"hash_mb"`
	Threads        int       `json:"threads"`
	MultiPV        int       `json:"multi_pv"`
	Ponder         bool      `json:"ponder"`
	MoveOverheadMs int       `json:"move_overhead_ms"`
	LastUsed       time.Time `json:"last_used"`
}

// DefaultPreferences returns the factory settings.
func DefaultPreferences() *Preferences {
	return &Preferences{
		HashMB:         64,
		Threads:        1,
		MultiPV:        1,
		Ponder:         false,
		MoveOverheadMs: 10,
		LastUsed:       time.Now(),
	}
}

// SearchStats accumulates aggregate statistics over completed searches.
type SearchStats struct {
	SearchesRun     int           `json:"searches_run"`
	TotalNodes      uint64        `json:"total_nodes"`
	DeepestDepth    int           `json:"deepest_depth"`
	TotalSearchTime time.Duration `json:"total_search_time"`
}

// NewSearchStats returns empty statistics.
func NewSearchStats() *SearchStats {
	return &SearchStats{}
}

// NodesPerSecond returns the average node rate over all recorded searches.
func (s *SearchStats) NodesPerSecond() float64 {
	if s.TotalSearchTime <= 0 {
		return 0
	}
	return float64(s.TotalNodes) / s.TotalSearchTime.Seconds()
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the store under the given data directory.
func Open(dataDir string) (*Storage, error) {
	dbDir, err := databaseDir(dataDir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Badger's own logging is noise on an engine's stderr

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// OpenDefault opens the store in the platform data directory.
func OpenDefault() (*Storage, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	return Open(dataDir)
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves the engine preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastUsed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the engine preferences, returning defaults if none
// were ever saved.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// SaveStats saves the aggregate search statistics.
func (s *Storage) SaveStats(stats *SearchStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads the aggregate search statistics, returning empty stats if
// none were ever saved.
func (s *Storage) LoadStats() (*SearchStats, error) {
	stats := NewSearchStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordSearch folds one completed search into the statistics.
func (s *Storage) RecordSearch(nodes uint64, depth int, elapsed time.Duration) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.SearchesRun++
	stats.TotalNodes += nodes
	stats.TotalSearchTime += elapsed
	if depth > stats.DeepestDepth {
		stats.DeepestDepth = depth
	}

	return s.SaveStats(stats)
}
