package proxy

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// Ring hands out proxy endpoints round-robin.
// The cursor is owned by the Ring and guarded by its mutex, so concurrent
// searches sharing one Ring each receive the next endpoint in turn.
//
// A nil *Ring behaves like an empty one.
type Ring struct {
	// mu guards endpoints and cursor.
	mu sync.Mutex

	// endpoints holds the proxies in load order. Duplicates are kept.
	endpoints []Endpoint

	// cursor is the index of the endpoint returned by the next call to Next.
	// It is always in [0, len(endpoints)) when endpoints is non-empty.
	cursor int
}

// NewRing creates a Ring holding the given endpoints.
// Zero-value endpoints are skipped.
func NewRing(endpoints ...Endpoint) *Ring {
	r := &Ring{}
	r.Add(endpoints...)
	return r
}

// LoadFile reads a proxy list from path.
//
// When the file cannot be read, LoadFile returns an empty, usable Ring
// together with a *SourceError. Callers log the error and carry on with
// a direct connection.
func LoadFile(path string) (*Ring, error) {
	r := &Ring{}

	f, err := os.Open(path) //nolint:gosec // User-provided proxy list path is intentional
	if err != nil {
		return r, &SourceError{Path: path, Err: err}
	}
	defer f.Close()

	if _, err := r.LoadReader(f); err != nil {
		return &Ring{}, &SourceError{Path: path, Err: err}
	}
	return r, nil
}

// Load appends the endpoints found in lines and returns how many were added.
// See NormalizeEndpoint for the line format.
func (r *Ring) Load(lines []string) int {
	added := make([]Endpoint, 0, len(lines))
	for _, line := range lines {
		if ep, ok := NormalizeEndpoint(line); ok {
			added = append(added, ep)
		}
	}
	r.Add(added...)
	return len(added)
}

// LoadReader reads newline-delimited proxy lines from rd and appends them.
// Nothing is appended if reading fails part way.
func (r *Ring) LoadReader(rd io.Reader) (int, error) {
	var lines []string
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return r.Load(lines), nil
}

// Add appends endpoints to the end of the ring.
func (r *Ring) Add(endpoints ...Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ep := range endpoints {
		if ep.IsZero() {
			continue
		}
		r.endpoints = append(r.endpoints, ep)
	}
}

// Next returns the endpoint at the cursor and advances the cursor,
// wrapping around at the end. It returns false when the ring is empty,
// which means the caller should connect directly.
func (r *Ring) Next() (Endpoint, bool) {
	if r == nil {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.endpoints) == 0 {
		return "", false
	}
	ep := r.endpoints[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.endpoints)
	return ep, true
}

// Len returns the number of endpoints.
func (r *Ring) Len() int {
	if r == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.endpoints)
}

// Endpoints returns a copy of the endpoints in load order.
func (r *Ring) Endpoints() []Endpoint {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}
