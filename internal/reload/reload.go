// Package reload holds the two small pieces of shared state the
// Supervisor and query frontend coordinate through: a reload flag that
// tells the background workers to exit their sleep early, and the
// currently published reload password the frontend checks incoming
// requests against. Per spec.md §5, both are small enough to each get
// their own lock rather than share one.
package reload

import "sync"

// Flag is a cooperative reload signal. Workers poll IsSet once per second
// between rounds; Set is called by the query frontend's reload handler.
type Flag struct {
	mu  sync.Mutex
	set bool
}

// Set marks the flag, to be observed by workers at their next poll tick.
func (f *Flag) Set() {
	f.mu.Lock()
	f.set = true
	f.mu.Unlock()
}

// Clear resets the flag. Called by the Supervisor at the start of each
// reload cycle, before spawning the next round of workers.
func (f *Flag) Clear() {
	f.mu.Lock()
	f.set = false
	f.mu.Unlock()
}

// IsSet reports whether the flag is currently set.
func (f *Flag) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

// PasswordGate guards the currently published reload password. The
// Supervisor republishes it once per reload cycle (it may change between
// cycles if the configuration file changed); the query frontend's reload
// handler checks an incoming secret against it.
type PasswordGate struct {
	mu       sync.Mutex
	password string
}

// Publish sets the password that Check will now compare against.
func (g *PasswordGate) Publish(password string) {
	g.mu.Lock()
	g.password = password
	g.mu.Unlock()
}

// Check reports whether the supplied secret matches the published
// password. An empty published password matches nothing — it never
// silently disables the gate.
func (g *PasswordGate) Check(secret string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.password != "" && secret == g.password
}
