// Package cache mirrors the published monitor state into redis for out-of-process readers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"linkmon/internal/metrics"
	"linkmon/internal/models"
	"linkmon/internal/monitor"
)

// KeyPrefix namespaces every key written by the mirror
const KeyPrefix = "linkmon"

// UpdatesChannel receives the ids of redrawn links after each mirror write
const UpdatesChannel = KeyPrefix + ":updates"

type update struct {
	ev   monitor.RenderEvent
	snap monitor.Snapshot
}

// Mirror writes link views and statistics to redis with a TTL
type Mirror struct {
	client  *redis.Client
	ttl     time.Duration
	updates chan update
}

// NewMirror connects to redis and returns a mirror
func NewMirror(addr string, ttl time.Duration) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     10,
		MinIdleConns: 1,
		MaxRetries:   3,
		DialTimeout:  2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newMirror(client, ttl), nil
}

func newMirror(client *redis.Client, ttl time.Duration) *Mirror {
	return &Mirror{
		client:  client,
		ttl:     ttl,
		updates: make(chan update, 16),
	}
}

// Hook is a monitor render hook. It never blocks the monitor; when the writer falls
// behind the update is dropped and the next periodic refresh carries the full state again.
func (m *Mirror) Hook(ev monitor.RenderEvent, snap monitor.Snapshot) {
	select {
	case m.updates <- update{ev: ev, snap: snap}:
	default:
		metrics.RedisOperations.WithLabelValues("publish", "dropped").Inc()
		log.Println("[cache] Mirror is behind, dropping update")
	}
}

// Run writes queued updates until ctx is cancelled
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-m.updates:
			if err := m.Publish(ctx, u.ev, u.snap); err != nil {
				log.Printf("[cache] Failed to mirror snapshot: %v", err)
			}
		}
	}
}

type entry struct {
	key   string
	value []byte
}

// entries returns the keys a render event rewrites
func entries(ev monitor.RenderEvent, snap monitor.Snapshot) ([]entry, error) {
	redraw := make(map[models.LinkID]bool, len(ev.Links))
	for _, id := range ev.Links {
		redraw[id] = true
	}

	var out []entry
	add := func(key string, v interface{}) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		out = append(out, entry{key: key, value: data})
		return nil
	}

	for _, v := range snap.Links {
		if !ev.Full && !redraw[v.Link] {
			continue
		}
		if err := add(LinkKey(v.Link), v); err != nil {
			return nil, err
		}
	}
	if err := add(KeyPrefix+":connected", snap.Connected); err != nil {
		return nil, err
	}
	if err := add(KeyPrefix+":stability:"+snap.StatsRange, snap.Stability); err != nil {
		return nil, err
	}
	if err := add(KeyPrefix+":averages", snap.Averages); err != nil {
		return nil, err
	}
	return out, nil
}

// LinkKey returns the key holding the view of a link
func LinkKey(id models.LinkID) string {
	return fmt.Sprintf("%s:link:%s", KeyPrefix, id)
}

// Publish writes the entries of one render event in a single pipeline and announces them
func (m *Mirror) Publish(ctx context.Context, ev monitor.RenderEvent, snap monitor.Snapshot) error {
	list, err := entries(ev, snap)
	if err != nil {
		return err
	}
	announce, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal render event: %w", err)
	}

	pipe := m.client.Pipeline()
	for _, e := range list {
		pipe.Set(ctx, e.key, e.value, m.ttl)
	}
	pipe.Publish(ctx, UpdatesChannel, announce)

	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RedisOperations.WithLabelValues("publish", "error").Inc()
		return err
	}
	metrics.RedisOperations.WithLabelValues("publish", "success").Inc()
	return nil
}

// Close closes the redis connection
func (m *Mirror) Close() error {
	return m.client.Close()
}
