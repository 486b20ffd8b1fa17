package resolve

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
)

// CacheKey is the deterministic fingerprint of a resolve request, built by
// KeyBuilder. Two Resolvers constructed with equal ordered inputs produce
// byte-identical Digests; permuting requests or repository paths changes
// the digest (the KeyBuilder never sorts its inputs).
type CacheKey struct {
	Digest [sha256.Size]byte

	// Fields retained in human-readable form for logging/introspection only;
	// they do not participate directly in Digest equality checks, the
	// Digest bytes do.
	Requests         []string
	RepoIDs          []string
	Building         bool
	PruneFailedGraph bool
	StartDepth       int
	MaxDepth         int

	Timestamped bool
	Timestamp   int64
}

// fingerprint6 and fingerprint7 are the gob-encoded tuples hashed to form a
// Digest. Splitting into two distinct struct types (rather than zeroing an
// unused Timestamp field) ensures the timestamped and non-timestamped
// variants of the same logical request never collide: gob includes type
// identity in its wire encoding.
type fingerprint6 struct {
	Requests         []string
	RepoIDs          []string
	Building         bool
	PruneFailedGraph bool
	StartDepth       int
	MaxDepth         int
}

type fingerprint7 struct {
	fingerprint6
	Timestamp int64
}

// BuildKey constructs the non-timestamped fingerprint for a resolve request.
// requests and repoIDs are hashed in the order given; callers must not sort
// them, since order is part of the resolver's user-facing contract.
func BuildKey(requests []PackageRequest, repoIDs []string, building, pruneFailedGraph bool, startDepth, maxDepth int) CacheKey {
	reqStrs := make([]string, len(requests))
	for i, r := range requests {
		reqStrs[i] = r.String()
	}
	ids := append([]string(nil), repoIDs...)

	f6 := fingerprint6{
		Requests:         reqStrs,
		RepoIDs:          ids,
		Building:         building,
		PruneFailedGraph: pruneFailedGraph,
		StartDepth:       startDepth,
		MaxDepth:         maxDepth,
	}

	return CacheKey{
		Digest:           hashGob(f6),
		Requests:         reqStrs,
		RepoIDs:          ids,
		Building:         building,
		PruneFailedGraph: pruneFailedGraph,
		StartDepth:       startDepth,
		MaxDepth:         maxDepth,
	}
}

// WithTimestamp returns the timestamped variant of key, adding a timestamp
// field to the fingerprint. ts must be strictly positive.
func (k CacheKey) WithTimestamp(ts int64) CacheKey {
	f7 := fingerprint7{
		fingerprint6: fingerprint6{
			Requests:         k.Requests,
			RepoIDs:          k.RepoIDs,
			Building:         k.Building,
			PruneFailedGraph: k.PruneFailedGraph,
			StartDepth:       k.StartDepth,
			MaxDepth:         k.MaxDepth,
		},
		Timestamp: ts,
	}

	k.Digest = hashGob(f7)
	k.Timestamped = true
	k.Timestamp = ts
	return k
}

func hashGob(v interface{}) [sha256.Size]byte {
	var buf bytes.Buffer
	// gob.Encoder errors only on unsupported types, which fingerprint6/7
	// never contain; a panic here would indicate a programming error.
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		panic("resolve: failed to encode cache key fingerprint: " + err.Error())
	}
	h := sha256.Sum256(buf.Bytes())
	return h
}
