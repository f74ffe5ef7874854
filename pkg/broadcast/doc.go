// Package broadcast fans out state changes to any number of in-process
// observers.
//
// The store, the derivation engine and the export actions each own a
// MemoryBroadcaster and publish every visible change through it; the
// presentation shell subscribes to whichever of them it renders.
//
// Delivery is latest-wins: each subscriber has a bounded buffer, and when the
// buffer is full the oldest queued message is discarded to make room for the
// new one. Broadcast never blocks and a slow observer never misses the most
// recent message.
//
// # Usage
//
//	b := broadcast.NewMemoryBroadcaster[State](4)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx) // cleaned up when ctx is cancelled
//	go func() {
//		for msg := range sub.Receive(ctx) {
//			render(msg.Data)
//		}
//	}()
//
//	_ = b.Broadcast(ctx, broadcast.Message[State]{Data: st})
package broadcast
