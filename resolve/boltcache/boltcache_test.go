package boltcache

import (
	"path/filepath"
	"testing"

	"github.com/envresolve/envresolve/resolve"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	g, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestSetGetRoundTrip(t *testing.T) {
	g := openTestGateway(t)

	entry := resolve.CachedEntry{
		SolverDict: resolve.SolverDict{
			Status: resolve.StatusSolved,
			VariantHandles: []resolve.VariantHandle{
				{Name: "foo", Resource: "/x", Extra: resolve.StringValue("1.0.0")},
			},
		},
		ReleaseTimes:  map[string]int64{"foo": 100},
		VariantStates: map[string]resolve.StateHandle{"foo": resolve.IntValue(1)},
	}

	if err := g.Set("resolve", "key1", entry); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := g.Get("resolve", "key1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected a hit")
	}
	if got.SolverDict.Status != resolve.StatusSolved {
		t.Fatalf("unexpected status: %v", got.SolverDict.Status)
	}
	if got.ReleaseTimes["foo"] != 100 {
		t.Fatalf("unexpected release times: %+v", got.ReleaseTimes)
	}
	if len(got.SolverDict.VariantHandles) != 1 || got.SolverDict.VariantHandles[0].Name != "foo" {
		t.Fatalf("unexpected variant handles: %+v", got.SolverDict.VariantHandles)
	}
}

func TestGetMissOnAbsentKey(t *testing.T) {
	g := openTestGateway(t)

	_, ok, err := g.Get("resolve", "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected a miss")
	}
}

func TestDeleteThenMiss(t *testing.T) {
	g := openTestGateway(t)

	if err := g.Set("resolve", "key1", resolve.CachedEntry{SolverDict: resolve.SolverDict{Status: resolve.StatusSolved}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := g.Delete("resolve", "key1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, ok, err := g.Get("resolve", "key1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected a miss after delete")
	}
}

func TestDeleteIsIdempotentOnAbsentNamespace(t *testing.T) {
	g := openTestGateway(t)

	if err := g.Delete("never-written", "key1"); err != nil {
		t.Fatalf("expected no error deleting from an absent namespace, got %v", err)
	}
}

func TestEnabledReportsUsability(t *testing.T) {
	g := openTestGateway(t)
	if !g.Enabled() {
		t.Fatalf("expected an opened gateway to be enabled")
	}

	var nilGateway *Gateway
	if nilGateway.Enabled() {
		t.Fatalf("expected a nil gateway to report disabled")
	}
}

func TestShardedKeySpreadsAcrossNestedPaths(t *testing.T) {
	k := shardedKey("resolve", "abcdef0123")
	got := string(k)
	want := "resolve/ab/cd/abcdef0123"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestShardedKeyHandlesShortKeys(t *testing.T) {
	k := shardedKey("resolve", "a")
	got := string(k)
	want := "resolve/a/a"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
