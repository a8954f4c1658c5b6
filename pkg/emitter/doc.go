// Package emitter provides interfaces for the scoped topic event emitter.
//
// This package defines the core abstractions of scopebus:
//   - Listener: a callback with a stable identity, used for removal
//   - Emitter: subscribe, unsubscribe, list and emit over topic patterns
//   - Stats: counters for monitoring an emitter instance
//
// Every operation takes a pattern of the form "<path>[:<scope>]":
//   - the path is a dotted topic such as "orders.created"
//   - "*" in a path matches any single segment, in both directions: a
//     subscription on "orders.*" receives "orders.created", and an emission on
//     "orders.*" reaches "orders.created" as well as "orders.*"
//   - the optional scope is a list of integers or ranges ("1-10,20,30-*");
//     an emission reaches a subscription only if every emitted range fits
//     inside one accepted range. A missing scope means "*".
//
// Subscriptions carry an invocation budget: unlimited (On), one (Once) or any
// positive count (Subscribe). A subscription is removed the moment its budget
// is spent.
//
// Example usage:
//
//	// em is an Emitter, such as the in-memory implementation
//	defer em.Close()
//
//	audit := emitter.NewListener(func(args ...any) {
//		log.Printf("order event: %v", args)
//	})
//	if err := em.On("orders.*:1-100", audit); err != nil {
//		return err
//	}
//
//	// Deferred delivery, returns before audit runs
//	if err := em.Emit("orders.created:42", orderID); err != nil {
//		return err
//	}
//
//	// Immediate delivery, audit has run when EmitNow returns
//	if err := em.EmitNow("orders.shipped:42", orderID); err != nil {
//		return err
//	}
//
// Delivery is in-process only.
package emitter
