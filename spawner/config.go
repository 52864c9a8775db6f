// File: spawner/config.go
// Author: momentics <momentics@gmail.com>
//
// ServerDecl is the typed configuration record spawner.Run consumes,
// carried inside the teacher's generic control.ConfigStore so the spawner
// picks up config.SetConfig/OnReload the same way the rest of the ambient
// stack does, rather than inventing a second config mechanism.

package spawner

import "github.com/mfkiwl/multikernel/control"

// Kind names which server implementation a ServerDecl stands up.
type Kind string

const (
	KindNameService Kind = "nameservice"
	KindSHM         Kind = "shm"
)

// ServerDecl declares one server the spawner brings up: which
// implementation, and which simulated node it listens on.
type ServerDecl struct {
	Name string
	Kind Kind
	Node int
}

// Config wraps the declared servers plus the shared ConfigStore/metrics the
// running servers and the spawner itself report into.
type Config struct {
	Decls   []ServerDecl
	Store   *control.ConfigStore
	Metrics *control.MetricsRegistry
}

// NewConfig builds a Config from decls, seeding the store with each
// server's declared node so OnReload-registered hooks observe the same
// topology the spawner uses.
func NewConfig(decls []ServerDecl) *Config {
	store := control.NewConfigStore()
	snapshot := make(map[string]any, len(decls))
	for _, d := range decls {
		snapshot[d.Name] = d.Node
	}
	store.SetConfig(snapshot)
	return &Config{Decls: decls, Store: store, Metrics: control.NewMetricsRegistry()}
}
