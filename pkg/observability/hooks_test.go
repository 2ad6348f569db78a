package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pass hooks
	p := NoopPassHooks{}
	p.OnStageStart(ctx, "resolve", 12)
	p.OnStageComplete(ctx, "resolve", 12, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnHit(ctx, "/project/diagrams/arch.puml")
	c.OnWait(ctx, "/project/diagrams/base.puml")
	c.OnResolve(ctx, "/project/diagrams/arch.puml", 1024)

	// Render hooks
	r := NoopRenderHooks{}
	r.OnRequest(ctx, "GET", "www.plantuml.com", "/plantuml/svg/abc")
	r.OnResponse(ctx, "GET", "www.plantuml.com", "/plantuml/svg/abc", 200, time.Second)
	r.OnError(ctx, "GET", "www.plantuml.com", "/plantuml/svg/abc", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pass().(NoopPassHooks); !ok {
		t.Error("Pass() should return NoopPassHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}

	// Set custom hooks
	customPass := &testPassHooks{}
	SetPassHooks(customPass)
	if Pass() != customPass {
		t.Error("SetPassHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pass().(NoopPassHooks); !ok {
		t.Error("Reset() should restore NoopPassHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPassHooks{}
	SetPassHooks(custom)

	// Setting nil should be ignored
	SetPassHooks(nil)

	if Pass() != custom {
		t.Error("SetPassHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPassHooks struct{ NoopPassHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testRenderHooks struct{ NoopRenderHooks }
