package cache_test

import (
	"testing"
	"time"

	"github.com/ricmelo/menuhub/internal/cache"
)

func TestSetGetDelete(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("menu:v1:user=a", "payload")

	v, ok := c.Get("menu:v1:user=a")

	if !ok || v.(string) != "payload" {
		t.Fatalf("got (%v,%v), want (payload,true)", v, ok)
	}

	c.Delete("menu:v1:user=a")

	if _, ok := c.Get("menu:v1:user=a"); ok {
		t.Fatal("deleted key still readable")
	}
}

func TestEntriesExpire(t *testing.T) {
	c := cache.New(10 * time.Millisecond)

	c.Set("k", 1)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry still readable")
	}
}

func TestClear(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Fatal("cleared entry still readable")
	}
}
