// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency support for the spawner: a worker-goroutine executor, with a
// mutex/cond-guarded eapache/queue backlog, that the spawner uses to bring
// up declared servers concurrently.
package concurrency
