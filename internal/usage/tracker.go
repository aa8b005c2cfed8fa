// Package usage keeps the per-user copy history and derives statistics from it.
package usage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/digkill/PromptLibrary/internal/models"
)

const (
	namespace = "prompt-usage-history"
	retention = 90 * 24 * time.Hour
	topN      = 10
)

// Store persists one serialized history blob per key. Load returns nil data
// when nothing was stored yet.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type PromptCount struct {
	PromptID string `json:"promptId"`
	Count    int    `json:"count"`
}

type Stats struct {
	TotalCopies     int           `json:"totalCopies"`
	TodayCopies     int           `json:"todayCopies"`
	ThisMonthCopies int           `json:"thisMonthCopies"`
	MostUsedPrompts []PromptCount `json:"mostUsedPrompts"`
	RecentPrompts   []string      `json:"recentPrompts"`
}

type Tracker struct {
	store Store
	log   *slog.Logger
	loc   *time.Location
	now   func() time.Time
	locks ownerLocks
}

func NewTracker(store Store, log *slog.Logger, loc *time.Location) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{store: store, log: log, loc: loc, now: time.Now, locks: ownerLocks{held: make(map[string]*ownerLock)}}
}

// Key is the storage key of an owner's history.
func Key(owner string) string {
	return namespace + ":" + owner
}

// RecordUse merges a copy event into today's bucket for the prompt and
// persists the pruned log. Failures are logged and swallowed. Writes for one
// owner are serialized within the process.
func (t *Tracker) RecordUse(ctx context.Context, owner, promptID string) {
	if promptID == "" {
		return
	}
	unlock := t.locks.lock(owner)
	defer unlock()

	now := t.now()
	items := t.load(ctx, owner)
	items = Record(items, promptID, now, t.loc)
	items = Prune(items, now)

	data, err := json.Marshal(items)
	if err != nil {
		t.log.Error("encode usage history", "owner", owner, "err", err)
		return
	}
	if err := t.store.Save(ctx, Key(owner), data); err != nil {
		t.log.Error("save usage history", "owner", owner, "err", err)
	}
}

// History returns the surviving records of an owner.
func (t *Tracker) History(ctx context.Context, owner string) []models.UsageHistoryItem {
	return Prune(t.load(ctx, owner), t.now())
}

func (t *Tracker) Stats(ctx context.Context, owner string) Stats {
	return ComputeStats(t.load(ctx, owner), t.now(), t.loc)
}

// Counts sums copy counts per prompt over the retained history.
func (t *Tracker) Counts(ctx context.Context, owner string) map[string]int {
	counts := make(map[string]int)
	for _, item := range t.History(ctx, owner) {
		counts[item.PromptID] += item.Count
	}
	return counts
}

func (t *Tracker) load(ctx context.Context, owner string) []models.UsageHistoryItem {
	data, err := t.store.Load(ctx, Key(owner))
	if err != nil {
		t.log.Error("load usage history", "owner", owner, "err", err)
		return nil
	}
	items, err := Decode(data)
	if err != nil {
		t.log.Warn("discarding malformed usage history", "owner", owner, "err", err)
		return nil
	}
	return items
}

// Decode parses a stored blob. Empty input is an empty log.
func Decode(data []byte) ([]models.UsageHistoryItem, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var items []models.UsageHistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode usage history: %w", err)
	}
	return items, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func startOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// Record applies one copy event. A record for the same prompt inside the
// current local day is bumped in place; otherwise a new record is appended.
func Record(items []models.UsageHistoryItem, promptID string, now time.Time, loc *time.Location) []models.UsageHistoryItem {
	dayStart := startOfDay(now, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	from, to := dayStart.UnixMilli(), dayEnd.UnixMilli()

	out := slices.Clone(items)
	for i := range out {
		if out[i].PromptID == promptID && out[i].Timestamp >= from && out[i].Timestamp < to {
			out[i].Count++
			out[i].Timestamp = now.UnixMilli()
			return out
		}
	}
	return append(out, models.UsageHistoryItem{
		PromptID:  promptID,
		Timestamp: now.UnixMilli(),
		Count:     1,
	})
}

// Prune drops records older than the retention window.
func Prune(items []models.UsageHistoryItem, now time.Time) []models.UsageHistoryItem {
	cutoff := now.Add(-retention).UnixMilli()
	out := make([]models.UsageHistoryItem, 0, len(items))
	for _, item := range items {
		if item.Timestamp < cutoff {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ComputeStats aggregates the retained history. Windows are sums of counts.
func ComputeStats(items []models.UsageHistoryItem, now time.Time, loc *time.Location) Stats {
	items = Prune(items, now)
	today := startOfDay(now, loc).UnixMilli()
	month := startOfMonth(now, loc).UnixMilli()

	stats := Stats{
		MostUsedPrompts: []PromptCount{},
		RecentPrompts:   []string{},
	}
	totals := make(map[string]int)
	var order []string
	for _, item := range items {
		stats.TotalCopies += item.Count
		if item.Timestamp >= today {
			stats.TodayCopies += item.Count
		}
		if item.Timestamp >= month {
			stats.ThisMonthCopies += item.Count
		}
		if _, ok := totals[item.PromptID]; !ok {
			order = append(order, item.PromptID)
		}
		totals[item.PromptID] += item.Count
	}

	for _, id := range order {
		stats.MostUsedPrompts = append(stats.MostUsedPrompts, PromptCount{PromptID: id, Count: totals[id]})
	}
	slices.SortStableFunc(stats.MostUsedPrompts, func(a, b PromptCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(stats.MostUsedPrompts) > topN {
		stats.MostUsedPrompts = stats.MostUsedPrompts[:topN]
	}

	recent := slices.Clone(items)
	slices.SortStableFunc(recent, func(a, b models.UsageHistoryItem) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	seen := make(map[string]bool)
	for _, item := range recent {
		if seen[item.PromptID] {
			continue
		}
		seen[item.PromptID] = true
		stats.RecentPrompts = append(stats.RecentPrompts, item.PromptID)
		if len(stats.RecentPrompts) == topN {
			break
		}
	}
	return stats
}

// ownerLocks hands out one mutex per owner and drops it once nobody waits.
type ownerLocks struct {
	mu   sync.Mutex
	held map[string]*ownerLock
}

type ownerLock struct {
	sync.Mutex
	refs int
}

func (l *ownerLocks) lock(owner string) func() {
	l.mu.Lock()
	ol, ok := l.held[owner]
	if !ok {
		ol = &ownerLock{}
		l.held[owner] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.Lock()
	return func() {
		ol.Unlock()
		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.held, owner)
		}
		l.mu.Unlock()
	}
}
