package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Map hooks
	m := NoopMapHooks{}
	m.OnGenerateStart(ctx, "quantum computing")
	m.OnGenerateComplete(ctx, "quantum computing", 12, time.Second, nil)
	m.OnExploreStart(ctx, "quantum computing", "qubits")
	m.OnExploreComplete(ctx, "quantum computing", "qubits", time.Second, nil)
	m.OnExplainStart(ctx, "quantum computing", "qubits")
	m.OnExplainComplete(ctx, "quantum computing", "qubits", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "generate")
	c.OnCacheMiss(ctx, "explain")
	c.OnCacheSet(ctx, "generate", 1024)

	// Cloud hooks
	h := NoopCloudHooks{}
	h.OnRequest(ctx, "GET", "/v1/maps")
	h.OnResponse(ctx, "GET", "/v1/maps", 200, time.Second)
	h.OnError(ctx, "GET", "/v1/maps", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Map().(NoopMapHooks); !ok {
		t.Error("Map() should return NoopMapHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Cloud().(NoopCloudHooks); !ok {
		t.Error("Cloud() should return NoopCloudHooks by default")
	}

	// Set custom hooks
	customMap := &testMapHooks{}
	SetMapHooks(customMap)
	if Map() != customMap {
		t.Error("SetMapHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customCloud := &testCloudHooks{}
	SetCloudHooks(customCloud)
	if Cloud() != customCloud {
		t.Error("SetCloudHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Map().(NoopMapHooks); !ok {
		t.Error("Reset() should restore NoopMapHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testMapHooks{}
	SetMapHooks(custom)

	// Setting nil should be ignored
	SetMapHooks(nil)

	if Map() != custom {
		t.Error("SetMapHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testMapHooks struct{ NoopMapHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testCloudHooks struct{ NoopCloudHooks }
