package httpmiddleware

import (
	"testing"
	"time"
)

func TestTokenBucket_Exhausts(t *testing.T) {
	l := NewSimpleTokenBucket(3, 3)

	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d denied under capacity", i+1)
		}
	}
	if l.allow("1.2.3.4") {
		t.Fatal("request over capacity allowed")
	}
	// Other clients have their own bucket.
	if !l.allow("5.6.7.8") {
		t.Fatal("fresh client denied")
	}
}

func TestTokenBucket_SweepDropsIdle(t *testing.T) {
	l := NewSimpleTokenBucket(1, 1)
	l.allow("stale")
	l.state["stale"].last = time.Now().Add(-bucketIdleMax - time.Minute)

	l.sweep(time.Now())
	if _, ok := l.state["stale"]; ok {
		t.Fatal("idle bucket survived sweep")
	}
}
