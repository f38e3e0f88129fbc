package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"sync"
	"time"
)

// Publisher ships a digest batch, typically to a Kafka topic.
type Publisher interface {
	PublishDigest(ctx context.Context, topic string, entries []DigestEntry) error
}

type DigestConfig struct {
	Interval  time.Duration // flush period
	MaxUnique int           // flush early once this many distinct events are pending
	Topic     string
	Publisher Publisher
}

// DigestEntry is one distinct warn/error event and how often it fired.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// ErrorDigest deduplicates repeated warn/error events and periodically publishes
// them with occurrence counts.
type ErrorDigest struct {
	cfg     DigestConfig
	mu      sync.Mutex
	pending map[uint64]*DigestEntry
	now     func() time.Time
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	flushWG sync.WaitGroup
}

func NewErrorDigest(cfg *DigestConfig) *ErrorDigest {
	c := *cfg
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.MaxUnique <= 0 {
		c.MaxUnique = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &ErrorDigest{
		cfg:     c,
		pending: make(map[uint64]*DigestEntry),
		now:     time.Now,
		cancel:  cancel,
	}
	d.wg.Add(1)
	go d.loop(ctx)
	return d
}

func (d *ErrorDigest) Add(level, message string, fields map[string]interface{}, caller string) {
	now := d.now()
	key := digestKey(level, message, fields, caller)

	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.pending[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		d.pending[key] = &DigestEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	if len(d.pending) >= d.cfg.MaxUnique {
		d.flushLocked()
	}
}

// Pending reports how many distinct events await the next flush.
func (d *ErrorDigest) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func digestKey(level, message string, fields map[string]interface{}, caller string) uint64 {
	h := fnv.New64a()
	// encoding/json sorts map keys, so equal field sets hash equally
	b, _ := json.Marshal(fields)
	fmt.Fprintf(h, "%s|%s|%s|", level, message, caller)
	h.Write(b)
	return h.Sum64()
}

func (d *ErrorDigest) loop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.mu.Lock()
			d.flushLocked()
			d.mu.Unlock()
		case <-ctx.Done():
			d.mu.Lock()
			d.flushLocked()
			d.mu.Unlock()
			return
		}
	}
}

func (d *ErrorDigest) flushLocked() {
	if len(d.pending) == 0 || d.cfg.Publisher == nil {
		return
	}
	entries := make([]DigestEntry, 0, len(d.pending))
	for _, e := range d.pending {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FirstSeen.Before(entries[j].FirstSeen) })
	d.pending = make(map[uint64]*DigestEntry)

	d.flushWG.Add(1)
	go func() {
		defer d.flushWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.cfg.Publisher.PublishDigest(ctx, d.cfg.Topic, entries); err != nil {
			fmt.Fprintf(os.Stderr, "log digest publish failed: %v\n", err)
		}
	}()
}

// Close flushes what is pending and waits for in-flight publishes.
func (d *ErrorDigest) Close() {
	d.cancel()
	d.wg.Wait()
	d.flushWG.Wait()
}
