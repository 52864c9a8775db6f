// File: cmd/spawner/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bring-up entry point: starts the declared servers (name service, SHM) on
// this process's half of the simulated platform, barrier-syncs with its
// spawner0/spawner1 counterpart, then blocks until a shutdown signal.

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipc/barrier"
	"github.com/mfkiwl/multikernel/spawner"
)

func main() {
	role := flag.String("role", "spawner0", "bring-up role: spawner0 or spawner1")
	nclusters := flag.Int("nclusters", 1, "number of compute clusters to declare a name-service/SHM pair for")
	flag.Parse()

	var r spawner.Role
	switch *role {
	case "spawner0":
		r = spawner.Spawner0
	case "spawner1":
		r = spawner.Spawner1
	default:
		log.Fatalf("unknown --role %q, want spawner0 or spawner1", *role)
	}

	if *nclusters <= 0 {
		log.Fatalf("--nclusters must be positive, got %d", *nclusters)
	}

	fabric := noc.Default
	decls := declareServers(*nclusters)
	cfg := spawner.NewConfig(decls)

	pool := barrier.NewPool()
	b, err := pool.CreateIOPair()
	if err != nil {
		log.Printf("failed to allocate bring-up barrier: %v", err)
		os.Exit(1)
	}

	sp := spawner.New(fabric, cfg, r, ackNodeFor(r))

	log.Printf("spawner starting: role=%s nclusters=%d servers=%d", *role, *nclusters, len(decls))
	if err := sp.Run(pool, b); err != nil {
		log.Printf("bring-up failed: %v", err)
		os.Exit(1)
	}
	log.Println("bring-up complete, servers running")

	signalCh := make(chan os.Signal, 2)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	log.Println("shutdown signal received, tearing down servers...")
	sp.Teardown()
	log.Println("spawner shutdown complete.")
}

// declareServers builds one name-service server and one SHM server per
// compute cluster, placed on consecutive simulated nodes.
func declareServers(nclusters int) []spawner.ServerDecl {
	decls := make([]spawner.ServerDecl, 0, nclusters*2)
	node := 0
	for i := 0; i < nclusters; i++ {
		decls = append(decls,
			spawner.ServerDecl{Name: "nameservice", Kind: spawner.KindNameService, Node: node},
			spawner.ServerDecl{Name: "shm", Kind: spawner.KindSHM, Node: node + 1},
		)
		node += 2
	}
	return decls
}

// ackNodeFor assigns each role a distinct acknowledgement mailbox so
// spawner0 and spawner1's server fan-outs never collide.
func ackNodeFor(r spawner.Role) int {
	if r == spawner.Spawner0 {
		return 126
	}
	return 125
}
