package services

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/TokDenis/folio/types"
	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileViewStore keeps one JSON encoded types.Stats per page in dir.
type FileViewStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileViewStore(dir string) (*FileViewStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return &FileViewStore{dir: dir}, nil
}

func (s *FileViewStore) path(page string) string {
	return filepath.Join(s.dir, url.PathEscape(page))
}

func (s *FileViewStore) Increment(_ context.Context, page string, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(page), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return err
	}

	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	stats := types.Stats{Page: page}

	if len(b) != 0 {
		err = json.Unmarshal(b, &stats)
		if err != nil {
			return err
		}
	}

	stats.Views += n

	b, err = json.Marshal(&stats)
	if err != nil {
		return err
	}

	err = f.Truncate(0)
	if err != nil {
		return err
	}

	_, err = f.WriteAt(b, 0)
	return err
}

func (s *FileViewStore) Get(_ context.Context, page string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.read(s.path(page))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return stats.Views, nil
}

func (s *FileViewStore) read(path string) (*types.Stats, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var stats types.Stats

	err = json.Unmarshal(b, &stats)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *FileViewStore) All(_ context.Context, prefix string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirents, err := godirwalk.ReadDirents(s.dir, nil)
	if err != nil {
		return nil, err
	}

	res := make(map[string]int64)
	for _, de := range dirents {
		if !de.IsRegular() {
			continue
		}
		page, err := url.PathUnescape(de.Name())
		if err != nil || !strings.HasPrefix(page, prefix) {
			continue
		}

		stats, err := s.read(filepath.Join(s.dir, de.Name()))
		if err != nil {
			return nil, err
		}
		res[stats.Page] = stats.Views
	}

	return res, nil
}

func (s *FileViewStore) Close() error {
	return nil
}

// Stats buffers page views in memory and flushes them to a ViewStore.
type Stats struct {
	store     ViewStore
	viewsChan chan string
	interval  time.Duration

	pending  map[string]int64
	// handed to the store, not yet written
	inflight map[string]int64
	pendingM sync.Mutex

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func NewStats(store ViewStore, flushInterval time.Duration) *Stats {
	s := Stats{
		store:     store,
		viewsChan: make(chan string, 1000),
		interval:  flushInterval,
		pending:   make(map[string]int64),
		inflight:  make(map[string]int64),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go s.viewsCollector()

	return &s
}

// CountView records one view of page without waiting for storage.
// Views counted after Close are dropped.
func (s *Stats) CountView(page string) {
	select {
	case <-s.done:
		log.Debug().Str("page", page).Msg("stats closed, view dropped")
		return
	default:
	}

	select {
	case s.viewsChan <- page:
	case <-s.done:
		log.Debug().Str("page", page).Msg("stats closed, view dropped")
	}
}

// Track records one view of page and returns its count including that view.
func (s *Stats) Track(ctx context.Context, page string) (int64, error) {
	s.addPending(page, 1)
	return s.Views(ctx, page)
}

func (s *Stats) addPending(page string, n int64) {
	s.pendingM.Lock()
	s.pending[page] += n
	s.pendingM.Unlock()
	viewsCounted.Add(float64(n))
}

func (s *Stats) viewsCollector() {
	defer close(s.stopped)

	tic := time.NewTicker(s.interval)
	defer tic.Stop()

	for {
		select {
		case page := <-s.viewsChan:
			s.addPending(page, 1)
		case <-tic.C:
			if err := s.Flush(context.Background()); err != nil {
				log.Error().Err(err).Msg("flush views")
			}
		case <-s.done:
			for {
				select {
				case page := <-s.viewsChan:
					s.addPending(page, 1)
				default:
					return
				}
			}
		}
	}
}

// Flush writes pending counts to the store. Counts that fail to write stay pending.
func (s *Stats) Flush(ctx context.Context) error {
	s.pendingM.Lock()
	batch := s.pending
	s.pending = make(map[string]int64)
	for page, count := range batch {
		s.inflight[page] += count
	}
	s.pendingM.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var errs []error
	for page, count := range batch {
		err := s.store.Increment(ctx, page, count)

		s.pendingM.Lock()
		s.inflight[page] -= count
		if s.inflight[page] == 0 {
			delete(s.inflight, page)
		}
		if err != nil {
			errs = append(errs, err)
			s.pending[page] += count
		}
		s.pendingM.Unlock()
	}

	if len(errs) != 0 {
		flushes.WithLabelValues("error").Inc()
		return errors.Join(errs...)
	}

	flushes.WithLabelValues("ok").Inc()
	return nil
}

// Views returns the stored count of page plus views not yet flushed.
func (s *Stats) Views(ctx context.Context, page string) (int64, error) {
	stored, err := s.store.Get(ctx, page)
	if err != nil {
		return 0, err
	}

	s.pendingM.Lock()
	defer s.pendingM.Unlock()

	return stored + s.pending[page] + s.inflight[page], nil
}

// AllViews returns the views of every post, or of every archived post, keyed by slug.
func (s *Stats) AllViews(ctx context.Context, archived bool) (types.ViewsMap, error) {
	prefix := "/"
	if archived {
		prefix = types.ArchivePrefix
	}

	pages, err := s.store.All(ctx, prefix)
	if err != nil {
		return nil, err
	}

	s.pendingM.Lock()
	for _, unflushed := range []map[string]int64{s.pending, s.inflight} {
		for page, count := range unflushed {
			if strings.HasPrefix(page, prefix) {
				pages[page] += count
			}
		}
	}
	s.pendingM.Unlock()

	return ViewsBySlug(pages, archived), nil
}

// ViewsBySlug turns page counts into a ViewsMap for one collection.
func ViewsBySlug(pages map[string]int64, archived bool) types.ViewsMap {
	res := make(types.ViewsMap)
	for page, views := range pages {
		isArchive := strings.HasPrefix(page, types.ArchivePrefix)
		if isArchive != archived {
			continue
		}

		slug := strings.TrimPrefix(page, "/")
		if archived {
			slug = strings.TrimPrefix(page, types.ArchivePrefix)
		}
		if slug == "" {
			continue
		}
		res[slug] += views
	}
	return res
}

// Close stops the collector and flushes what is left.
func (s *Stats) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })

	select {
	case <-s.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}

	return s.Flush(ctx)
}
