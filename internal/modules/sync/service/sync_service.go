package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mirrorin "studyhub/internal/modules/mirror/port/in"
	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/modules/sync/domain"
	syncout "studyhub/internal/modules/sync/port/out"
	"studyhub/internal/platform/clock"
	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/events"
	"studyhub/internal/platform/logging"
)

const defaultPushTimeout = 30 * time.Second

type SyncService struct {
	local  syncout.LocalStore
	remote mirrorin.Client
	outbox syncout.Outbox
	bus    *events.Bus
	clock  clock.Clock
	logger *slog.Logger

	pushTimeout time.Duration
	pushes      sync.WaitGroup

	// queue feeds a single worker so mirror calls leave in commit order.
	queueMu  sync.Mutex
	queue    []domain.Op
	draining bool

	// outboxMu serializes the push worker against Flush and the pull guard.
	outboxMu sync.Mutex

	mu       sync.Mutex
	lastPull time.Time
}

// NewSyncService wires the pull and push paths. outbox may be nil, in which
// case failed pushes are dropped after logging.
func NewSyncService(local syncout.LocalStore, remote mirrorin.Client, outbox syncout.Outbox, bus *events.Bus, clk clock.Clock, logger *slog.Logger) *SyncService {
	return &SyncService{
		local:       local,
		remote:      remote,
		outbox:      outbox,
		bus:         bus,
		clock:       clk,
		logger:      logging.OrDiscard(logger),
		pushTimeout: defaultPushTimeout,
	}
}

func (s *SyncService) OutboxEnabled() bool {
	return s.outbox != nil
}

func (s *SyncService) LastPull() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPull
}

// PullAll copies every remote collection over the local one. Collections
// run independently; one failing leaves the others untouched. Local records
// missing remotely are never deleted.
//
// Records with an op still waiting in the outbox keep their local version:
// the remote copy is older than the write that produced the op.
func (s *SyncService) PullAll(ctx context.Context) domain.PullReport {
	held := s.heldKeys(ctx)
	results := make([]domain.CollectionResult, len(recorddto.AllCollections))
	var wg sync.WaitGroup
	for i, c := range recorddto.AllCollections {
		wg.Add(1)
		go func(i int, c recorddto.Collection) {
			defer wg.Done()
			results[i] = s.pullCollection(ctx, c, held)
		}(i, c)
	}
	wg.Wait()

	report := domain.PullReport{At: s.clock.Now(), Results: results}
	s.mu.Lock()
	s.lastPull = report.At
	s.mu.Unlock()

	s.logger.Info("pull finished", "pulled", report.Pulled(), "failed", len(report.Failed()))
	if s.bus != nil {
		s.bus.SyncCompleted.Publish(events.SyncCompleted{At: report.At, Pulled: report.Pulled(), Failed: report.Failed()})
	}
	return report
}

func (s *SyncService) pullCollection(ctx context.Context, c recorddto.Collection, held map[domain.Key]bool) domain.CollectionResult {
	result := domain.CollectionResult{Collection: string(c)}
	items, err := s.remote.ListAll(ctx, string(c))
	if err != nil {
		s.logger.Warn("pull skipped collection", "collection", c, "err", err)
		result.Err = err
		return result
	}
	for _, item := range items {
		if len(held) > 0 && held[domain.Key{Collection: string(c), ID: domain.BodyID(item)}] {
			s.logger.Debug("pull kept local record with queued op", "collection", c, "id", domain.BodyID(item))
			result.Held++
			continue
		}
		if err := s.local.Apply(ctx, c, item); err != nil {
			if errors.Is(err, apperrors.ErrStorageUnavailable) {
				result.Err = err
				return result
			}
			s.logger.Warn("pull skipped record", "collection", c, "err", err)
			result.Skipped++
			continue
		}
		result.Pulled++
	}
	return result
}

// RecordPut mirrors a committed local write in the background.
func (s *SyncService) RecordPut(c recorddto.Collection, id string, body []byte) {
	op := domain.Op{Kind: domain.OpPut, Collection: string(c), ID: id, Body: append([]byte(nil), body...)}
	s.push(op)
}

func (s *SyncService) RecordDeleted(c recorddto.Collection, id string) {
	s.push(domain.Op{Kind: domain.OpDelete, Collection: string(c), ID: id})
}

func (s *SyncService) push(op domain.Op) {
	op.At = clock.Millis(s.clock.Now())
	s.pushes.Add(1)
	s.queueMu.Lock()
	s.queue = append(s.queue, op)
	start := !s.draining
	s.draining = true
	s.queueMu.Unlock()
	if start {
		go s.runPushes()
	}
}

func (s *SyncService) runPushes() {
	for {
		s.queueMu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.queueMu.Unlock()
			return
		}
		op := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		s.deliver(op)
		s.pushes.Done()
	}
}

// deliver sends op directly only when nothing older is queued; otherwise it
// first replays the outbox and, if that stops early, queues op behind it.
func (s *SyncService) deliver(op domain.Op) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()
	if s.outbox == nil {
		s.sendBestEffort(ctx, op)
		return
	}

	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()
	_, remaining, err := s.flushLocked(ctx)
	if err == nil && remaining == 0 {
		err = s.send(ctx, op)
		if err == nil || !queueable(err) {
			return
		}
	}
	if qerr := s.outbox.Append(ctx, op); qerr != nil {
		s.logger.Warn("outbox append failed", "collection", op.Collection, "id", op.ID, "err", qerr)
		return
	}
	s.logger.Info("queued mirror op", "collection", op.Collection, "id", op.ID, "err", err)
}

func queueable(err error) bool {
	return errors.Is(err, apperrors.ErrRemoteUnavailable) || errors.Is(err, apperrors.ErrAuthorizationRejected)
}

func (s *SyncService) sendBestEffort(ctx context.Context, op domain.Op) {
	switch op.Kind {
	case domain.OpPut:
		s.remote.Upsert(ctx, op.Collection, op.ID, op.Body)
	case domain.OpDelete:
		s.remote.Remove(ctx, op.Collection, op.ID)
	}
}

func (s *SyncService) send(ctx context.Context, op domain.Op) error {
	switch op.Kind {
	case domain.OpPut:
		return s.remote.TryUpsert(ctx, op.Collection, op.ID, op.Body)
	case domain.OpDelete:
		return s.remote.TryRemove(ctx, op.Collection, op.ID)
	default:
		return fmt.Errorf("%w: unknown outbox op %q", apperrors.ErrInvalidInput, op.Kind)
	}
}

// Flush replays queued ops oldest first and stops at the first failure so
// later ops never overtake earlier ones.
func (s *SyncService) Flush(ctx context.Context) (int, error) {
	if s.outbox == nil {
		return 0, nil
	}
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()
	sent, _, err := s.flushLocked(ctx)
	return sent, err
}

func (s *SyncService) flushLocked(ctx context.Context) (sent, remaining int, err error) {
	ops, err := s.outbox.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	var sendErr error
	for _, op := range ops {
		if err := s.send(ctx, op); err != nil {
			if queueable(err) || errors.Is(err, apperrors.ErrNotSignedIn) {
				sendErr = err
				break
			}
			s.logger.Warn("dropping outbox op", "collection", op.Collection, "id", op.ID, "err", err)
		}
		sent++
	}
	if sent > 0 {
		if err := s.outbox.Drop(ctx, sent); err != nil {
			return 0, len(ops), err
		}
	}
	return sent, len(ops) - sent, sendErr
}

// heldKeys lists records whose newest write is still queued.
func (s *SyncService) heldKeys(ctx context.Context) map[domain.Key]bool {
	if s.outbox == nil {
		return nil
	}
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()
	ops, err := s.outbox.List(ctx)
	if err != nil {
		s.logger.Warn("outbox unreadable before pull", "err", err)
		return nil
	}
	held := make(map[domain.Key]bool, len(ops))
	for _, op := range ops {
		held[domain.Key{Collection: op.Collection, ID: op.ID}] = true
	}
	return held
}

func (s *SyncService) Pending(ctx context.Context) (int, error) {
	if s.outbox == nil {
		return 0, nil
	}
	ops, err := s.outbox.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(ops), nil
}

// Drain waits for background pushes started so far.
func (s *SyncService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pushes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
