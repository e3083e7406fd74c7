package memory

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New()
	defer c.Stop()

	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("Get() = %v, %v", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() hit on missing key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New()
	defer c.Stop()

	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Get() returned expired entry")
	}
}

func TestCache_Delete(t *testing.T) {
	c := New()
	defer c.Stop()

	c.Set("k", "v", time.Minute)
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Error("Get() hit after Delete()")
	}
}
