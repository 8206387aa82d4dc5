package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Store provides thread-safe, validator-aware caching of raw datasets,
// partitioned by source ID. A load is answered from memory when the entry is
// present; Reload revalidates against the origin (ETag/Last-Modified) and
// only re-decodes when the bytes actually changed. Successful fetches are
// snapshotted to the cache directory so a later run can start offline.
type Store struct {
	mu       sync.RWMutex
	cacheDir string
	client   *http.Client
	entries  map[string]*entry
}

type entry struct {
	dataset      *Dataset
	etag         string
	lastModified string
	fetchedAt    time.Time
}

// NewStore creates a Store writing snapshots under cacheDir.
func NewStore(cacheDir string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: timeout},
		entries:  make(map[string]*entry),
	}
}

// Load returns the cached dataset for sourceID, fetching it on first use.
func (s *Store) Load(ctx context.Context, sourceID, src string) (*Dataset, error) {
	s.mu.RLock()
	cached, ok := s.entries[sourceID]
	s.mu.RUnlock()
	if ok {
		return cached.dataset, nil
	}
	return s.Reload(ctx, sourceID, src)
}

// Reload revalidates sourceID against its origin and replaces the cached
// dataset when the origin reports new content. On fetch failure it falls
// back first to the in-memory entry, then to the on-disk snapshot.
func (s *Store) Reload(ctx context.Context, sourceID, src string) (*Dataset, error) {
	s.mu.RLock()
	prev := s.entries[sourceID]
	s.mu.RUnlock()

	etag, lastModified := "", ""
	if prev != nil {
		etag, lastModified = prev.etag, prev.lastModified
	}

	result, err := fetch(ctx, s.client, src, etag, lastModified)
	if err != nil {
		if prev != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Fetch failed, serving cached dataset")
			return prev.dataset, nil
		}
		if snap, snapErr := s.loadSnapshot(sourceID); snapErr == nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Fetch failed, serving snapshot")
			return snap, nil
		}
		return nil, err
	}

	if result.NotModified && prev != nil {
		log.Debug().Str("source", sourceID).Msg("Source not modified, keeping cached dataset")
		return prev.dataset, nil
	}

	dataset, err := DecodeCSV(bytes.NewReader(result.Body), sourceID)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", sourceID, err)
	}

	s.mu.Lock()
	s.entries[sourceID] = &entry{
		dataset:      dataset,
		etag:         result.ETag,
		lastModified: result.LastModified,
		fetchedAt:    time.Now(),
	}
	s.mu.Unlock()

	if err := s.saveSnapshot(sourceID, result.Body); err != nil {
		log.Warn().Err(err).Str("source", sourceID).Msg("Failed to write snapshot")
	}

	log.Info().Str("source", sourceID).Int("rows", dataset.Len()).Msg("Dataset loaded")
	return dataset, nil
}

// LoadBoth fetches the two datasets concurrently.
func (s *Store) LoadBoth(ctx context.Context, shiftsSrc, servicesSrc string) (*Dataset, *Dataset, error) {
	var shifts, services *Dataset

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds, err := s.Load(ctx, "shifts", shiftsSrc)
		shifts = ds
		return err
	})
	g.Go(func() error {
		ds, err := s.Load(ctx, "services", servicesSrc)
		services = ds
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return shifts, services, nil
}

// FetchedAt returns when the cached entry for sourceID was last refreshed.
func (s *Store) FetchedAt(sourceID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[sourceID]; ok {
		return e.fetchedAt
	}
	return time.Time{}
}

func (s *Store) snapshotPath(sourceID string) string {
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s.csv", sourceID))
}

func (s *Store) loadSnapshot(sourceID string) (*Dataset, error) {
	data, err := os.ReadFile(s.snapshotPath(sourceID))
	if err != nil {
		return nil, err
	}
	return DecodeCSV(bytes.NewReader(data), sourceID)
}

func (s *Store) saveSnapshot(sourceID string, body []byte) error {
	if s.cacheDir == "" {
		return nil
	}
	path := s.snapshotPath(sourceID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, body, 0644); err != nil {
		return err
	}
	// Atomic rename
	return os.Rename(tmpPath, path)
}
