package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"movie-awards/internal/domain"
)

const awardKeyPrefix = "award/"

// LevelDBStore is a local stand-in for the awards table. Records are stored as
// JSON under a key derived from (movieId, awardBody), so a query matches at
// most one record, as on the real table.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (or creates) a LevelDB database at path.
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	if path == "" {
		return nil, errors.New("repository: leveldb path must not be empty")
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: open leveldb %q: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

func awardKey(movieID int, awardBody string) []byte {
	return []byte(awardKeyPrefix + strconv.Itoa(movieID) + "/" + awardBody)
}

// QueryAwards returns the record stored for (movieID, awardBody). A miss yields
// an empty, non-nil collection.
func (s *LevelDBStore) QueryAwards(ctx context.Context, movieID int, awardBody string) ([]domain.AwardRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repository: QueryAwards: %w", err)
	}
	buf, err := s.db.Get(awardKey(movieID, awardBody), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return []domain.AwardRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: QueryAwards get: %w", err)
	}
	var rec domain.AwardRecord
	if err := json.Unmarshal(buf, &rec); err != nil {
		return nil, fmt.Errorf("repository: QueryAwards unmarshal: %w", err)
	}
	return []domain.AwardRecord{rec}, nil
}

// PutAward writes rec, replacing any record with the same key.
func (s *LevelDBStore) PutAward(rec domain.AwardRecord) error {
	if rec.MovieID == 0 || rec.AwardBody == "" {
		return errors.New("repository: PutAward: movieId and awardBody are required")
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("repository: PutAward marshal: %w", err)
	}
	if err := s.db.Put(awardKey(rec.MovieID, rec.AwardBody), buf, nil); err != nil {
		return fmt.Errorf("repository: PutAward: %w", err)
	}
	return nil
}

// Count returns the number of award records in the store.
func (s *LevelDBStore) Count() (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(awardKeyPrefix)), nil)
	defer iter.Release()
	n := 0
	for iter.Next() {
		n++
	}
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("repository: Count: %w", err)
	}
	return n, nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
