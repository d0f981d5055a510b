// Package cache memoizes report payloads until the next data mutation.
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Cache maps a filter key to a marshalled report.
//
// Get returns the generation it observed. Put stores the payload only if no
// ClearAll happened since that generation, so a report computed from data that
// was mutated mid-query never lands in the cache.
type Cache interface {
	Get(ctx context.Context, key string) (payload []byte, gen uint64, ok bool)
	Put(ctx context.Context, key string, gen uint64, payload []byte)
	ClearAll(ctx context.Context)
}

// Key joins the parts into a stable key; values of list parts are sorted.
func Key(parts ...Part) string {
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		values := append([]string(nil), p.Values...)
		sort.Strings(values)
		sb.WriteString(strings.Join(values, ","))
	}
	return sb.String()
}

type Part struct {
	Name   string
	Values []string
}

func P(name string, values ...string) Part {
	return Part{Name: name, Values: values}
}

type Memory struct {
	mx      sync.RWMutex
	gen     uint64
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, uint64, bool) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	payload, ok := m.entries[key]
	return payload, m.gen, ok
}

func (m *Memory) Put(_ context.Context, key string, gen uint64, payload []byte) {
	m.mx.Lock()
	defer m.mx.Unlock()

	if gen != m.gen {
		return
	}
	m.entries[key] = payload
}

func (m *Memory) ClearAll(_ context.Context) {
	m.mx.Lock()
	defer m.mx.Unlock()

	m.gen++
	m.entries = make(map[string][]byte)
}

func (m *Memory) Len() int {
	m.mx.RLock()
	defer m.mx.RUnlock()

	return len(m.entries)
}
