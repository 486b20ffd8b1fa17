package resolve

// ResolveNamespace is the single typed namespace the core uses in the
// shared cache service.
const ResolveNamespace = "resolve"

// CacheGateway is typed key/value access to the external shared cache,
// scoped to a namespace. Implementations must round-trip CachedEntry values
// (including opaque variant handles and graph data) without semantic loss.
type CacheGateway interface {
	// Enabled reports whether the backing cache service is currently
	// reachable/usable. A false result degrades every CacheProtocol
	// operation to a live solve, never a hard error.
	Enabled() bool

	Get(namespace, key string) (CachedEntry, bool, error)
	Set(namespace, key string, entry CachedEntry) error
	// Delete is idempotent: deleting an already-absent key is a no-op.
	Delete(namespace, key string) error
}

// RepoGateway abstracts the package repository layer: the last known
// release time for a package name, the current state handle for a specific
// variant's on-disk resource, and a stable identity string for a configured
// search path.
type RepoGateway interface {
	// RepoID returns the stable identity string for a configured repository
	// search path, e.g. "filesystem@/abs/path". It is derived from
	// repository type plus location, never from content.
	RepoID(path string) (string, error)

	// LastReleaseTime returns the timestamp (seconds since epoch) of name's
	// most recent known release across packagePaths. Zero means unknown,
	// which disables cache writes for any result containing name but never
	// affects a live solve.
	LastReleaseTime(name string, packagePaths []string) (int64, error)

	// VariantStateHandle returns a value that changes iff the on-disk
	// definition behind resource has changed.
	VariantStateHandle(resource string) (StateHandle, error)

	// Materialize re-materializes a concrete Variant from an opaque handle
	// produced earlier by a SolverContract.
	Materialize(handle VariantHandle) (Variant, error)
}
