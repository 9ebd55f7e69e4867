// Package persist writes and loads the Pool's on-disk snapshot at
// {dataDir}/proxies.json, best-effort in both directions per spec.md §4.4
// and §6: persistence failures are logged and never abort a caller, and an
// absent or corrupt file yields an empty Pool rather than a startup error.
package persist

import (
	"log"
	"os"
	"path/filepath"

	"github.com/greywire/proxypool/internal/pool"
)

const snapshotFileName = "proxies.json"

// SnapshotPath returns the canonical snapshot file path under dataDir.
func SnapshotPath(dataDir string) string {
	return filepath.Join(dataDir, snapshotFileName)
}

// Load reads the Pool snapshot from {dataDir}/proxies.json. A missing or
// corrupt file is not an error: it yields a fresh, empty Pool, matching the
// "absent file yields empty pool" guarantee in spec.md §6.
func Load(dataDir string) *pool.Pool {
	data, err := os.ReadFile(SnapshotPath(dataDir))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("persist: read snapshot: %v (starting with empty pool)", err)
		}
		return pool.New()
	}
	return pool.LoadSnapshot(data)
}

// Save writes the Pool's current snapshot to {dataDir}/proxies.json.
// Deliberately a direct write, not a temp-file-then-rename: no fsync, no
// temp file, no versioning — a crash mid-write can leave a truncated file,
// which Load already treats as corrupt and tolerates as an empty pool on
// the next start. Errors are logged, not returned: a failed persist must
// never abort the Validator/Scraper round that triggered it
// (PersistenceFailure in the error taxonomy).
func Save(dataDir string, p *pool.Pool) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Printf("persist: create data dir %s: %v", dataDir, err)
		return
	}

	data, err := p.SnapshotForPersist()
	if err != nil {
		log.Printf("persist: marshal snapshot: %v", err)
		return
	}

	if err := os.WriteFile(SnapshotPath(dataDir), data, 0o644); err != nil {
		log.Printf("persist: write snapshot: %v", err)
	}
}
