package calls

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPendingIndex keeps unanswered call ids in a Redis sorted set scored by
// their ring deadline. It implements PendingIndex; all operations are
// best-effort by contract (logged, never surfaced), because the index only
// feeds the missed-call sweep.
type RedisPendingIndex struct {
	rdb *redis.Client
	key string
	log *slog.Logger
}

const defaultPendingKey = "calls:pending"

func NewRedisPendingIndex(rdb *redis.Client, log *slog.Logger) *RedisPendingIndex {
	return &RedisPendingIndex{rdb: rdb, key: defaultPendingKey, log: log}
}

func (p *RedisPendingIndex) Add(ctx context.Context, callID string, deadline time.Time) {
	if err := p.rdb.ZAdd(ctx, p.key, redis.Z{
		Score:  float64(deadline.Unix()),
		Member: callID,
	}).Err(); err != nil {
		p.log.Warn("pending index add failed", "call_id", callID, "err", err)
	}
}

func (p *RedisPendingIndex) Remove(ctx context.Context, callID string) {
	if err := p.rdb.ZRem(ctx, p.key, callID).Err(); err != nil {
		p.log.Warn("pending index remove failed", "call_id", callID, "err", err)
	}
}

// claimDueScript atomically pops due entries so that multiple API processes
// sweeping concurrently never claim the same call twice.
var claimDueScript = redis.NewScript(`
-- KEYS[1] = pending zset
-- ARGV[1] = now (unix seconds)
-- ARGV[2] = max entries to claim
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
if #due > 0 then
  redis.call('ZREM', KEYS[1], unpack(due))
end
return due
`)

// ClaimDue removes and returns up to limit call ids whose ring deadline has
// passed.
func (p *RedisPendingIndex) ClaimDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	res, err := claimDueScript.Run(ctx, p.rdb, []string{p.key}, now.Unix(), limit).StringSlice()
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Sweeper periodically drives calls that nobody answered into the missed
// terminal state. It is the only server-side timer in the call subsystem;
// rooms in the signaling relay are never expired this way.
type Sweeper struct {
	index    *RedisPendingIndex
	service  *Service
	interval time.Duration
	log      *slog.Logger

	// batchSize bounds work per tick.
	batchSize int
}

func NewSweeper(index *RedisPendingIndex, service *Service, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{
		index:     index,
		service:   service,
		interval:  interval,
		log:       log,
		batchSize: 100,
	}
}

// Run blocks until ctx is cancelled. Call it from its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("missed-call sweeper running", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("missed-call sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ids, err := s.index.ClaimDue(ctx, time.Now(), s.batchSize)
	if err != nil {
		s.log.Warn("pending index scan failed", "err", err)
		return
	}
	for _, id := range ids {
		if err := s.service.MarkMissed(ctx, id); err != nil {
			s.log.Error("mark missed failed", "call_id", id, "err", err)
			continue
		}
		s.log.Info("unanswered call marked missed", "call_id", id)
	}
}
