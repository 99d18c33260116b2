package rdb

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryLocker(t *testing.T) {
	t.Run("Given a held lock When acquiring again Then it is refused until released", func(t *testing.T) {
		locker := NewMemoryLocker()
		ctx := context.Background()

		release, ok, err := locker.Acquire(ctx, "charge:TXN-1", time.Minute)
		if err != nil || !ok {
			t.Fatalf("first Acquire() = %v, %v", ok, err)
		}
		if _, ok, _ := locker.Acquire(ctx, "charge:TXN-1", time.Minute); ok {
			t.Fatal("second Acquire() should be refused")
		}
		if _, ok, _ := locker.Acquire(ctx, "charge:TXN-2", time.Minute); !ok {
			t.Fatal("a different key should be free")
		}

		release()
		if _, ok, _ := locker.Acquire(ctx, "charge:TXN-1", time.Minute); !ok {
			t.Fatal("Acquire() after release should succeed")
		}
	})

	t.Run("Given an expired lock When acquiring Then it is taken over and the stale release is ignored", func(t *testing.T) {
		locker := NewMemoryLocker()
		now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		locker.now = func() time.Time { return now }

		staleRelease, _, _ := locker.Acquire(context.Background(), "k", time.Second)
		now = now.Add(2 * time.Second)
		_, ok, _ := locker.Acquire(context.Background(), "k", time.Minute)
		if !ok {
			t.Fatal("expired lock should be taken over")
		}
		staleRelease()
		if _, ok, _ := locker.Acquire(context.Background(), "k", time.Minute); ok {
			t.Fatal("stale release must not free the new holder's lock")
		}
	})

	t.Run("Given many goroutines When racing for one key Then exactly one wins", func(t *testing.T) {
		locker := NewMemoryLocker()
		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := locker.Acquire(context.Background(), "race", time.Minute); ok {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		wg.Wait()
		if wins != 1 {
			t.Errorf("wins = %d, want 1", wins)
		}
	})
}

func TestMemoryBroadcaster(t *testing.T) {
	t.Run("Given two subscribers When publishing Then both receive and unsubscribed ones do not", func(t *testing.T) {
		b := NewMemoryBroadcaster()
		ctx := context.Background()
		first, stopFirst := b.Subscribe(ctx, "payment:TXN-1")
		second, stopSecond := b.Subscribe(ctx, "payment:TXN-1")
		other, stopOther := b.Subscribe(ctx, "payment:TXN-2")
		defer stopFirst()
		defer stopOther()

		if err := b.Publish(ctx, "payment:TXN-1", []byte(`{"status":"paid"}`)); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		for i, ch := range []<-chan []byte{first, second} {
			select {
			case msg := <-ch:
				if string(msg) != `{"status":"paid"}` {
					t.Errorf("subscriber %d got %s", i, msg)
				}
			case <-time.After(time.Second):
				t.Fatalf("subscriber %d received nothing", i)
			}
		}
		select {
		case msg := <-other:
			t.Errorf("other channel received %s", msg)
		default:
		}

		stopSecond()
		stopSecond()
		if _, open := <-second; open {
			t.Error("stopped subscription should be closed")
		}
		if err := b.Publish(ctx, "payment:TXN-1", []byte("again")); err != nil {
			t.Fatalf("Publish() after unsubscribe error = %v", err)
		}
	})
}
