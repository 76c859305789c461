package httpmiddleware

import "testing"

func TestTokenBucketExhausts(t *testing.T) {
	l := NewTokenBucket(3, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow(nil, "1.2.3.4") {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow(nil, "1.2.3.4") {
		t.Error("request over capacity should be rejected")
	}
}

func TestTokenBucketKeysAreIndependent(t *testing.T) {
	l := NewTokenBucket(1, 1)
	if !l.Allow(nil, "1.2.3.4") {
		t.Fatal("first key should pass")
	}
	if l.Allow(nil, "1.2.3.4") {
		t.Error("first key should now be limited")
	}
	if !l.Allow(nil, "5.6.7.8") {
		t.Error("second key should still pass")
	}
}

func TestTokenBucketDefaultsCapacity(t *testing.T) {
	l := NewTokenBucket(0, 5)
	if l.capacity != 5 {
		t.Errorf("capacity = %d, want 5", l.capacity)
	}
}
