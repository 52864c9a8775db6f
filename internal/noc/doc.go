// File: internal/noc/doc.go
// Package noc is the simulated stand-in for the hardware NoC driver that
// spec.md §6 places out of scope ("the raw NoC driver... external"). It
// provides the operations the core consumes as Go methods on Fabric, keyed
// by (node, tag): set-match/signal/wait on sync registers, blocking and
// non-blocking write plus blocking read on mailboxes, and allow/arm-read/
// write/wait on portals, with a CompletionEngine for asynchronous portal
// completion and ParsePath for the "/noc/<kind>/<node>:<tag>" pathname
// form. Connectors are not opened by pathname and there is no pwrite.
// Everything runs in-process over goroutines, channels, and (on Linux) a
// real eventfd.
//
// Grounded on the teacher's internal/transport factory + platform split
// (github.com/momentics/hioload-ws/internal/transport/transport.go) and its
// Linux epoll reactor (reactor/epoll_reactor.go): a factory selects the best
// backend per platform behind one thread-safe facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package noc
