// Package gc implements the per-actor reference-counting bookkeeping that
// underlies the garbage collector: token and refob identity, the mutable GC
// state each actor carries, the wire-level GC message protocol, and the
// local termination check. It intentionally knows nothing about how actors
// are scheduled or how messages are actually delivered; it assumes only a
// reliable, per-sender-per-recipient FIFO transport, which the actor runtime
// in internal/actor provides.
package gc

// Addr is an opaque, comparable identifier for an actor. The GC core never
// interprets an address beyond equality; resolving an Addr to something
// that can actually receive a message is the runtime's job.
type Addr string
