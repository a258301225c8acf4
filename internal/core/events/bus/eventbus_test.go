package bus

import (
	"errors"
	"testing"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	var got []any
	_, err := b.Subscribe("rigidbody.added", func(e Event) error {
		got = append(got, e.Data())
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err = b.Publish(NewEvent("rigidbody.added", "physics", 1)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err = b.Publish(NewEvent("rigidbody.removed", "physics", 2)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestWildcardAndOrder(t *testing.T) {
	b := New()
	var order []string
	_, _ = b.Subscribe(Wildcard, func(e Event) error { order = append(order, "any:"+e.Type()); return nil })
	_, _ = b.Subscribe("a", func(e Event) error { order = append(order, "a"); return nil })

	_ = b.Publish(NewEvent("a", "test", nil))
	_ = b.Publish(NewEvent("b", "test", nil))

	want := []string{"any:a", "a", "any:b"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestHandlerErrorsJoined(t *testing.T) {
	b := New()
	e1, e2 := errors.New("first"), errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "test", nil))
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("expected both errors, got %v", err)
	}
	if m := b.GetMetrics(); m.Errors != 1 || m.Published != 1 || m.DeliveredHandlers != 2 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, _ := b.Subscribe("x", func(Event) error { calls++; return nil })

	_ = b.Publish(NewEvent("x", "test", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	_ = b.Publish(NewEvent("x", "test", nil))

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if sub.IsActive() {
		t.Fatal("subscription still active")
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestBatch(t *testing.T) {
	b := New()
	fail := errors.New("fail")
	_, _ = b.Subscribe("bad", func(Event) error { return fail })

	err := b.PublishBatch(NewEvent("ok", "t", nil), NewEvent("bad", "t", nil))
	if !errors.Is(err, fail) {
		t.Fatalf("expected fail, got %v", err)
	}
}
