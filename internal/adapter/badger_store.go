package adapter

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v2"

	m "testpulse/internal/model"
)

// resultKeyPrefix namespaces record keys so internal keys (the insertion
// sequence) never show up during record iteration.
var resultKeyPrefix = []byte{0x01}

var sequenceKey = []byte("testpulse/seq")

const sequenceBandwidth = 128

// BadgerStore is a durable ResultStore backed by an embedded badger database.
// Record keys are the big-endian unix-nano timestamp followed by a persisted
// insertion sequence, so a reverse scan yields records newest first.
type BadgerStore struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger
}

// NewBadgerStore opens (creating if needed) the badger database at path.
func NewBadgerStore(path string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store at %s: %w", path, err)
	}

	seq, err := db.GetSequence(sequenceKey, sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to obtain insertion sequence: %w", err)
	}

	logger.Debug("opened result store", "path", path)

	return &BadgerStore{db: db, seq: seq, logger: logger}, nil
}

// Append implements ResultStore.
func (s *BadgerStore) Append(result m.TestCaseResult) error {
	next, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to advance insertion sequence: %w", err)
	}

	key := resultKey(result.Timestamp, next)

	val, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
	if err != nil {
		s.logger.Error("failed to append result", "test", result.TestName, "error", err)
		return fmt.Errorf("failed to append result: %w", err)
	}

	s.logger.Debug("appended result", "test", result.TestName, "suite", result.TestSuite, "status", result.Status)

	return nil
}

// QuerySince implements ResultStore.
func (s *BadgerStore) QuerySince(cutoff time.Time) ([]m.TestCaseResult, error) {
	var results []m.TestCaseResult

	floor := resultKey(cutoff, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the highest possible record key, then walk backwards
		// until the cutoff floor.
		seek := append(append([]byte{}, resultKeyPrefix...), bytes.Repeat([]byte{0xff}, 16)...)
		for it.Seek(seek); it.ValidForPrefix(resultKeyPrefix); it.Next() {
			item := it.Item()
			if bytes.Compare(item.Key(), floor) < 0 {
				break
			}

			var result m.TestCaseResult
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &result)
			})
			if err != nil {
				return fmt.Errorf("failed to decode result at key %x: %w", item.Key(), err)
			}

			results = append(results, result)
		}

		return nil
	})
	if err != nil {
		s.logger.Error("failed to query results", "cutoff", cutoff, "error", err)
		return nil, fmt.Errorf("failed to query results since %s: %w", cutoff, err)
	}

	s.logger.Debug("queried results", "cutoff", cutoff, "count", len(results))

	return results, nil
}

// Close releases the insertion sequence and closes the database.
func (s *BadgerStore) Close() error {
	if err := s.seq.Release(); err != nil {
		_ = s.db.Close()
		return fmt.Errorf("failed to release insertion sequence: %w", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close result store: %w", err)
	}

	return nil
}

func resultKey(ts time.Time, seq uint64) []byte {
	key := make([]byte, 0, len(resultKeyPrefix)+16)
	key = append(key, resultKeyPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(ts.UnixNano()))
	key = binary.BigEndian.AppendUint64(key, seq)

	return key
}
