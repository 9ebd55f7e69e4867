// Package geoip is a strictly optional, read-only annotation layer: a
// best-effort country code for a Candidate's IP. A nil *Service is a no-op
// everywhere it's consulted; nothing in the pool/validator/scraper core
// depends on it.
package geoip

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/maypok86/otter"
	"github.com/oschwald/maxminddb-golang"
	"github.com/robfig/cron/v3"

	"github.com/greywire/proxypool/internal/netutil"
)

// GeoReader abstracts the GeoIP database reader (e.g., maxminddb reader).
type GeoReader interface {
	Lookup(ip netip.Addr) string
	Close() error
}

// OpenFunc opens a GeoIP database file and returns a GeoReader.
type OpenFunc func(path string) (GeoReader, error)

type noOpReader struct{}

func (noOpReader) Lookup(_ netip.Addr) string { return "" }
func (noOpReader) Close() error               { return nil }

// NoOpOpen is a placeholder OpenFunc for tests. Always returns a reader
// that returns empty string.
func NoOpOpen(_ string) (GeoReader, error) { return noOpReader{}, nil }

type mmdbReader struct {
	reader *maxminddb.Reader
}

type mmdbCountryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

func (m *mmdbReader) Lookup(ip netip.Addr) string {
	if m == nil || m.reader == nil || !ip.IsValid() {
		return ""
	}
	ip = ip.Unmap()
	var record mmdbCountryRecord
	if err := m.reader.Lookup(net.IP(ip.AsSlice()), &record); err != nil {
		return ""
	}
	if record.Country.ISOCode != "" {
		return strings.ToLower(record.Country.ISOCode)
	}
	if record.RegisteredCountry.ISOCode != "" {
		return strings.ToLower(record.RegisteredCountry.ISOCode)
	}
	return ""
}

func (m *mmdbReader) Close() error {
	if m == nil || m.reader == nil {
		return nil
	}
	return m.reader.Close()
}

// MMDBOpen opens a MaxMind-compatible mmdb database.
func MMDBOpen(path string) (GeoReader, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return &mmdbReader{reader: reader}, nil
}

// ServiceConfig configures the GeoIP service.
type ServiceConfig struct {
	CacheDir       string // directory where country.mmdb is stored
	DBFilename     string // default "country.mmdb"
	UpdateSchedule string // cron expression, default "0 7 * * *"
	LookupCacheCap int    // bounded otter cache capacity, default 4096

	OpenDB     OpenFunc
	Downloader netutil.Downloader
}

// ReleaseAPIURL is the GitHub API endpoint for the latest MetaCubeX rules release.
const ReleaseAPIURL = "https://api.github.com/repos/MetaCubeX/meta-rules-dat/releases/latest"

// Service provides GeoIP lookup with hot-reloading via RWMutex, fronted by a
// bounded otter cache so repeated lookups of the same Candidate IP across
// query API requests don't re-walk the mmdb tree each time.
type Service struct {
	mu     sync.RWMutex
	reader GeoReader // nil until first load

	lookupCache    otter.Cache[string, string]
	hasLookupCache bool // false for zero-value/hand-built Services in tests

	cacheDir    string
	dbFilename  string
	openDB      OpenFunc
	downloader  netutil.Downloader
	cron        *cron.Cron
	cronEntryID cron.EntryID
	updateMu    sync.Mutex // serializes UpdateNow calls
	lifeCtx     context.Context
	lifeCancel  context.CancelFunc
}

func (s *Service) isStopped() bool {
	if s.lifeCtx == nil {
		return false
	}
	select {
	case <-s.lifeCtx.Done():
		return true
	default:
		return false
	}
}

// NewService creates a new GeoIP service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.DBFilename == "" {
		cfg.DBFilename = "country.mmdb"
	}
	if cfg.UpdateSchedule == "" {
		cfg.UpdateSchedule = "0 7 * * *"
	}
	if cfg.LookupCacheCap <= 0 {
		cfg.LookupCacheCap = 4096
	}

	lookupCache, err := otter.MustBuilder[string, string](cfg.LookupCacheCap).
		Cost(func(_ string, _ string) uint32 { return 1 }).
		Build()
	if err != nil {
		panic("geoip: failed to create lookup cache: " + err.Error())
	}

	c := cron.New()
	lifeCtx, lifeCancel := context.WithCancel(context.Background())
	s := &Service{
		cacheDir:       cfg.CacheDir,
		dbFilename:     cfg.DBFilename,
		openDB:         cfg.OpenDB,
		downloader:     cfg.Downloader,
		lookupCache:    lookupCache,
		hasLookupCache: true,
		cron:           c,
		lifeCtx:        lifeCtx,
		lifeCancel:     lifeCancel,
	}

	entryID, err := c.AddFunc(cfg.UpdateSchedule, func() {
		if err := s.UpdateNow(); err != nil {
			log.Printf("[geoip] scheduled update failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("[geoip] invalid cron expression %q: %v", cfg.UpdateSchedule, err)
	} else {
		s.cronEntryID = entryID
	}

	return s
}

// Start loads the initial database (if present), checks for staleness
// against the cron schedule, and starts the cron scheduler.
func (s *Service) Start() error {
	dbPath := filepath.Join(s.cacheDir, s.dbFilename)
	info, err := os.Stat(dbPath)
	if err == nil {
		if err := s.reloadReader(dbPath); err != nil {
			log.Printf("[geoip] failed to load initial db: %v", err)
		}
		if s.isStale(info.ModTime()) {
			log.Println("[geoip] database is stale, triggering background update")
			go func() {
				if err := s.UpdateNow(); err != nil {
					log.Printf("[geoip] startup update failed: %v", err)
				}
			}()
		}
	} else if os.IsNotExist(err) {
		log.Println("[geoip] no local database found, triggering background download")
		go func() {
			if err := s.UpdateNow(); err != nil {
				log.Printf("[geoip] initial download failed: %v", err)
			}
		}()
	} else {
		return fmt.Errorf("geoip: stat db %s: %w", dbPath, err)
	}
	s.cron.Start()
	return nil
}

// isStale returns true if the file's mtime is older than the expected
// cron schedule interval, tolerating 2x jitter. Falls back to 32 days if
// the schedule cannot be determined.
func (s *Service) isStale(modTime time.Time) bool {
	entry := s.cron.Entry(s.cronEntryID)
	if entry.ID == 0 || entry.Schedule == nil {
		return time.Since(modTime) > 32*24*time.Hour
	}

	now := time.Now()
	next := entry.Schedule.Next(now)
	nextNext := entry.Schedule.Next(next)
	interval := nextNext.Sub(next)
	if interval <= 0 {
		interval = 32 * 24 * time.Hour
	}
	return time.Since(modTime) > 2*interval
}

// Stop stops the cron scheduler and closes the reader.
func (s *Service) Stop() {
	if s.lifeCancel != nil {
		s.lifeCancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	s.mu.Lock()
	r := s.reader
	s.reader = nil
	s.mu.Unlock()
	if r != nil {
		r.Close()
	}
}

// Lookup returns the country code for the given IP address, consulting the
// bounded lookup cache before falling through to the mmdb reader.
func (s *Service) Lookup(ip netip.Addr) string {
	if s == nil || !ip.IsValid() {
		return ""
	}
	key := ip.String()
	if s.hasLookupCache {
		if cc, ok := s.lookupCache.Get(key); ok {
			return cc
		}
	}

	s.mu.RLock()
	reader := s.reader
	s.mu.RUnlock()
	if reader == nil {
		return ""
	}

	cc := reader.Lookup(ip)
	if s.hasLookupCache {
		s.lookupCache.Set(key, cc)
	}
	return cc
}

type releaseAsset struct {
	Name               string  `json:"name"`
	Digest             *string `json:"digest"` // "sha256:<hex>", GitHub release API form
	BrowserDownloadURL string  `json:"browser_download_url"`
}

type releaseInfo struct {
	TagName string         `json:"tag_name"`
	Assets  []releaseAsset `json:"assets"`
}

// UpdateNow downloads the latest GeoIP database from GitHub, verifies the
// release asset's SHA256 digest, atomically replaces the local file, and
// hot-reloads the reader. A missing or malformed digest aborts the update
// rather than replacing the file unverified.
func (s *Service) UpdateNow() error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	if s.isStopped() {
		return context.Canceled
	}
	if s.downloader == nil {
		return fmt.Errorf("geoip: no downloader configured")
	}

	parent := context.Background()
	if s.lifeCtx != nil {
		parent = s.lifeCtx
	}
	ctx := parent
	if err := ctx.Err(); err != nil {
		return err
	}

	releaseBody, err := s.downloader.Download(ctx, ReleaseAPIURL)
	if err != nil {
		return fmt.Errorf("geoip: fetch release info: %w", err)
	}

	var release releaseInfo
	if err := json.Unmarshal(releaseBody, &release); err != nil {
		return fmt.Errorf("geoip: parse release info: %w", err)
	}

	var asset *releaseAsset
	for i := range release.Assets {
		if release.Assets[i].Name == s.dbFilename {
			asset = &release.Assets[i]
			break
		}
	}
	if asset == nil {
		return fmt.Errorf("geoip: asset %q not found in release %s", s.dbFilename, release.TagName)
	}

	expectedHash := ""
	if asset.Digest != nil {
		expectedHash = parseSHA256Digest(*asset.Digest)
	}
	if expectedHash == "" {
		return fmt.Errorf("geoip: asset %q in release %s has missing valid sha256 digest; refusing to replace without verification",
			s.dbFilename, release.TagName)
	}

	dbData, err := s.downloader.Download(ctx, asset.BrowserDownloadURL)
	if err != nil {
		return fmt.Errorf("geoip: download db: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.cacheDir, s.dbFilename+".tmp.*")
	if err != nil {
		return fmt.Errorf("geoip: create temp: %w", err)
	}
	tmpPath := tmpFile.Name()
	if _, err := tmpFile.Write(dbData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("geoip: write temp: %w", err)
	}
	tmpFile.Close()
	defer func() {
		os.Remove(tmpPath) // no-op if already renamed
	}()

	if err := VerifySHA256(tmpPath, expectedHash); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	dbPath := filepath.Join(s.cacheDir, s.dbFilename)
	if err := os.Rename(tmpPath, dbPath); err != nil {
		return fmt.Errorf("geoip: atomic replace: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.reloadReader(dbPath)
}

// reloadReader atomically replaces the current reader with a new one and
// invalidates the lookup cache, since stale country assignments from the
// old database would otherwise survive the swap.
func (s *Service) reloadReader(path string) error {
	if s.openDB == nil {
		return fmt.Errorf("geoip: no OpenDB function configured")
	}
	newReader, err := s.openDB(path)
	if err != nil {
		return fmt.Errorf("geoip: open %s: %w", path, err)
	}
	s.mu.Lock()
	old := s.reader
	s.reader = newReader
	s.mu.Unlock()
	if s.hasLookupCache {
		s.lookupCache.Clear()
	}
	if old != nil {
		old.Close()
	}
	return nil
}

// VerifySHA256 checks that the file at path has the expected SHA256 hash.
func VerifySHA256(path, expectedHex string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	got := sha256.Sum256(data)
	gotHex := hex.EncodeToString(got[:])
	if gotHex != expectedHex {
		return fmt.Errorf("geoip: sha256 mismatch: got %s, want %s", gotHex, expectedHex)
	}
	return nil
}

// LastUpdated returns the modification time of the database file.
func (s *Service) LastUpdated() time.Time {
	dbPath := filepath.Join(s.cacheDir, s.dbFilename)
	info, err := os.Stat(dbPath)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// NextScheduledUpdate returns the next cron-scheduled update time.
func (s *Service) NextScheduledUpdate() time.Time {
	if s.cron == nil {
		return time.Time{}
	}
	entry := s.cron.Entry(s.cronEntryID)
	return entry.Next
}

// parseSHA256Digest parses a GitHub release asset digest of the form
// "sha256:<64 lowercase hex chars>", returning "" for any other algorithm or
// malformed value.
func parseSHA256Digest(s string) string {
	const prefix = "sha256:"
	if len(s) <= len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return ""
	}
	hexPart := strings.ToLower(s[len(prefix):])
	if len(hexPart) != 64 {
		return ""
	}
	if _, err := hex.DecodeString(hexPart); err != nil {
		return ""
	}
	return hexPart
}
