package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Compose hooks
	p := NoopComposeHooks{}
	p.OnUnitStart(ctx, "org.example.pkg")
	p.OnUnitComplete(ctx, "org.example.pkg", 3, 1, time.Second, nil)
	p.OnMediaExportStart(ctx, "org/example/app/abc", "screenshots")
	p.OnMediaExportComplete(ctx, "org/example/app/abc", "screenshots", time.Second, nil)
	p.OnCatalogWriteStart(ctx, "xml", 12)
	p.OnCatalogWriteComplete(ctx, "xml", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "media")
	c.OnCacheMiss(ctx, "media")
	c.OnCacheSet(ctx, "specimen", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "media.example.org", "/shot.png")
	h.OnResponse(ctx, "GET", "media.example.org", "/shot.png", 200, time.Second)
	h.OnError(ctx, "GET", "media.example.org", "/shot.png", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Compose().(NoopComposeHooks); !ok {
		t.Error("Compose() should return NoopComposeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customCompose := &testComposeHooks{}
	SetComposeHooks(customCompose)
	if Compose() != customCompose {
		t.Error("SetComposeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Compose().(NoopComposeHooks); !ok {
		t.Error("Reset() should restore NoopComposeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testComposeHooks{}
	SetComposeHooks(custom)

	// Setting nil should be ignored
	SetComposeHooks(nil)

	if Compose() != custom {
		t.Error("SetComposeHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testComposeHooks struct{ NoopComposeHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
