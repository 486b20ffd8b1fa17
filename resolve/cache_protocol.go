package resolve

import (
	"encoding/hex"
	"log"
)

// CacheProtocol is the two-tier (non-timestamped / timestamped) memoization
// and invalidation logic. It is the component that decides whether a live
// solve can be skipped in favor of a previously cached SolverDict, and
// whether a freshly solved SolverDict is worth writing back.
type CacheProtocol struct {
	Cache CacheGateway
	Repo  RepoGateway
	// ResolveCaching mirrors the global resolve_caching configuration
	// option; Lookup/Store bypass entirely when it is false.
	ResolveCaching bool
	Logger         *log.Logger
}

func (p *CacheProtocol) logf(format string, args ...interface{}) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}

// keyString turns a digest into the hex string key the CacheGateway
// operates on. The timestamped variant never collides with the
// non-timestamped entry for the same logical fingerprint because its digest
// is computed over a different fingerprint (see CacheKey.WithTimestamp).
func keyString(k CacheKey) string {
	s := hex.EncodeToString(k.Digest[:])
	return s
}

// packagesChanged is true iff some resolved variant's current state handle
// disagrees with the one recorded at cache-insertion time.
func packagesChanged(repo RepoGateway, e CachedEntry) bool {
	for _, h := range e.SolverDict.VariantHandles {
		current, err := repo.VariantStateHandle(h.Resource)
		if err != nil {
			// A gateway fault is treated the same as "changed": we can't
			// prove the cached entry is still valid, so don't trust it.
			return true
		}
		cached, ok := e.VariantStates[h.Name]
		if !ok || !current.Equal(cached) {
			return true
		}
	}
	return false
}

// releasesSince is true iff the repository's current last-release-time for
// some name in release_times disagrees with the cached value.
func releasesSince(repo RepoGateway, packagePaths []string, e CachedEntry) bool {
	for name, cached := range e.ReleaseTimes {
		current, err := repo.LastReleaseTime(name, packagePaths)
		if err != nil {
			return true
		}
		if current != cached {
			return true
		}
	}
	return false
}

// timestampEarlier is true iff the caller's timestamp horizon T is earlier
// than some recorded release in the cached entry, meaning the cached solve
// saw releases the caller's window should not have seen.
func timestampEarlier(t int64, e CachedEntry) bool {
	for _, cached := range e.ReleaseTimes {
		if t < cached {
			return true
		}
	}
	return false
}

// Lookup applies the two-tier lookup-and-invalidate algorithm. callerCaching
// is the per-resolver caching flag; packagePaths are the resolver's
// configured search paths, needed to re-query release times.
func (p *CacheProtocol) Lookup(key CacheKey, timestamp int64, packagePaths []string, callerCaching bool) (CachedEntry, bool) {
	if !p.ResolveCaching || !callerCaching || p.Cache == nil || !p.Cache.Enabled() {
		return CachedEntry{}, false
	}

	nonTSKeyStr := keyString(key)

	e0, ok0, err := p.Cache.Get(ResolveNamespace, nonTSKeyStr)
	if err != nil {
		p.logf("resolve: cache get failed for %s: %v", nonTSKeyStr, err)
		ok0 = false
	}

	if timestamp == 0 {
		if !ok0 {
			return CachedEntry{}, false
		}
		if packagesChanged(p.Repo, e0) || releasesSince(p.Repo, packagePaths, e0) {
			p.deleteQuiet(nonTSKeyStr)
			return CachedEntry{}, false
		}
		return e0, true
	}

	// Resolver has a timestamp horizon T.
	if ok0 {
		switch {
		case packagesChanged(p.Repo, e0):
			p.deleteQuiet(nonTSKeyStr)
		case releasesSince(p.Repo, packagePaths, e0):
			p.deleteQuiet(nonTSKeyStr)
		case !timestampEarlier(timestamp, e0):
			// The non-timestamped entry is current and was built from a
			// releases-set no newer than the caller's window: reusable.
			return e0, true
		}
		// else: fall through to the timestamped lookup.
	}

	tsKey := key.WithTimestamp(timestamp)
	tsKeyStr := keyString(tsKey)

	e1, ok1, err := p.Cache.Get(ResolveNamespace, tsKeyStr)
	if err != nil {
		p.logf("resolve: cache get failed for %s: %v", tsKeyStr, err)
		ok1 = false
	}
	if !ok1 {
		return CachedEntry{}, false
	}
	if packagesChanged(p.Repo, e1) {
		p.deleteQuiet(tsKeyStr)
		return CachedEntry{}, false
	}
	return e1, true
}

func (p *CacheProtocol) deleteQuiet(keyStr string) {
	if err := p.Cache.Delete(ResolveNamespace, keyStr); err != nil {
		p.logf("resolve: cache delete failed for %s: %v", keyStr, err)
	}
}

// Store writes a freshly solved SolverDict back to the cache: only solved
// results are ever cached, and only when every resolved variant's name has
// a known (nonzero) last release time.
func (p *CacheProtocol) Store(key CacheKey, timestamp int64, packagePaths []string, dict SolverDict, callerCaching bool) {
	if !p.ResolveCaching || !callerCaching || p.Cache == nil || !p.Cache.Enabled() {
		return
	}
	if dict.Status != StatusSolved {
		return
	}

	releaseTimes := make(map[string]int64, len(dict.VariantHandles))
	variantStates := make(map[string]StateHandle, len(dict.VariantHandles))

	releasesSinceSolve := false
	for _, h := range dict.VariantHandles {
		t, err := p.Repo.LastReleaseTime(h.Name, packagePaths)
		if err != nil {
			p.logf("resolve: skipping cache write, failed to read release time for %s: %v", h.Name, err)
			return
		}
		if t == 0 {
			// The repository cannot provide a release time: the entry
			// would not be invalidatable, so don't write it at all.
			p.logf("resolve: skipping cache write, unknown release time for %s", h.Name)
			return
		}
		releaseTimes[h.Name] = t

		sh, err := p.Repo.VariantStateHandle(h.Resource)
		if err != nil {
			p.logf("resolve: skipping cache write, failed to read state handle for %s: %v", h.Name, err)
			return
		}
		variantStates[h.Name] = sh

		if timestamp > 0 && timestamp < t {
			releasesSinceSolve = true
		}
	}

	entry := CachedEntry{
		SolverDict:    dict,
		ReleaseTimes:  releaseTimes,
		VariantStates: variantStates,
	}

	var keyStr string
	if releasesSinceSolve {
		keyStr = keyString(key.WithTimestamp(timestamp))
	} else {
		keyStr = keyString(key)
	}

	if err := p.Cache.Set(ResolveNamespace, keyStr, entry); err != nil {
		p.logf("resolve: cache set failed for %s: %v", keyStr, err)
	}
}
