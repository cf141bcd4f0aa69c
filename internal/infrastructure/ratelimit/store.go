package ratelimit

import (
	"sync"
)

// BucketStore maps usernames to their buckets for the life of the process
type BucketStore interface {
	// Get returns the bucket for username, if one exists
	Get(username string) (*Bucket, bool)
	// InsertIfAbsent stores the bucket built by create unless username already
	// has one, and returns whichever bucket is stored. create runs at most once
	// per username.
	InsertIfAbsent(username string, create func() *Bucket) *Bucket
}

// MemoryBucketStore is an in-process BucketStore. Lookups of existing buckets
// do not take the insert lock.
type MemoryBucketStore struct {
	buckets sync.Map
	mu      sync.Mutex
}

func NewMemoryBucketStore() *MemoryBucketStore {
	return &MemoryBucketStore{}
}

func (s *MemoryBucketStore) Get(username string) (*Bucket, bool) {
	v, ok := s.buckets.Load(username)
	if !ok {
		return nil, false
	}
	return v.(*Bucket), true
}

func (s *MemoryBucketStore) InsertIfAbsent(username string, create func() *Bucket) *Bucket {
	if b, ok := s.Get(username); ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.Get(username); ok {
		return b
	}
	b := create()
	s.buckets.Store(username, b)
	return b
}

// Len returns the number of principals holding a bucket
func (s *MemoryBucketStore) Len() int {
	n := 0
	s.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
