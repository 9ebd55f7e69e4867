// Package supervisor owns the lifecycle of the Scraper and Validator
// background tasks and the reload loop described in spec.md §4.5: read
// configuration, publish the reload password, clear the reload flag, spawn
// both tasks, wait for both to observe the flag and return, then repeat.
package supervisor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/greywire/proxypool/internal/config"
	"github.com/greywire/proxypool/internal/persist"
	"github.com/greywire/proxypool/internal/pool"
	"github.com/greywire/proxypool/internal/reload"
	"github.com/greywire/proxypool/internal/scraper"
	"github.com/greywire/proxypool/internal/validator"
)

// pollTick is the one-second reload-flag polling granularity spec.md §4.2/
// §4.3/§5 specifies for both the Validator's and the Scraper's sleep
// windows between rounds.
const pollTick = time.Second

// SourceBuilder turns the Source definitions in a RuntimeConfig into
// concrete scraper.Source values. The core's Source layer is out of
// scope for configuration parsing (spec.md §6), so the Supervisor takes
// this as an injected hook rather than knowing about any concrete Source
// kind itself.
type SourceBuilder func(cfg *config.RuntimeConfig) []scraper.Source

// Supervisor coordinates one Pool across repeated reload cycles.
type Supervisor struct {
	Pool      *pool.Pool
	EnvCfg    *config.EnvConfig
	Flag      *reload.Flag
	Passwords *reload.PasswordGate
	BuildSrcs SourceBuilder

	// RoundSummary, if set, is passed through to each cycle's Validator so
	// the supplemental history store can observe completed rounds.
	RoundSummary func(validator.Summary)

	// lastGoodConfig is kept so a ConfigLoadFailure during reload (as
	// opposed to at startup) can log-and-continue with the previous
	// configuration instead of aborting, per spec.md §7.
	lastGoodConfig *config.RuntimeConfig
}

// New builds a Supervisor. The Pool is expected to already be loaded from
// disk (or fresh) by the caller, per spec.md §4.5 step 0.
func New(p *pool.Pool, envCfg *config.EnvConfig, buildSrcs SourceBuilder) *Supervisor {
	return &Supervisor{
		Pool:      p,
		EnvCfg:    envCfg,
		Flag:      &reload.Flag{},
		Passwords: &reload.PasswordGate{},
		BuildSrcs: buildSrcs,
	}
}

// Run executes the reload loop until ctx is canceled. Each cycle:
// read configuration, publish the password, clear the flag, spawn the
// Scraper and Validator tasks, and wait for both to return before looping.
func (s *Supervisor) Run(ctx context.Context) {
	first := true
	for {
		if ctx.Err() != nil {
			return
		}

		runtimeCfg, err := config.LoadRuntimeConfig(s.EnvCfg.RuntimeConfigPath)
		if err != nil {
			if first {
				log.Fatalf("supervisor: initial config load failed: %v", err)
			}
			log.Printf("supervisor: config reload failed, continuing with previous config: %v", err)
			runtimeCfg = s.lastGoodConfig
		}
		first = false
		s.lastGoodConfig = runtimeCfg

		if config.IsWeakToken(runtimeCfg.Password) {
			log.Printf("supervisor: reload password is weak, consider strengthening it")
		}
		s.Passwords.Publish(runtimeCfg.Password)
		s.Flag.Clear()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.runScraperTask(ctx, runtimeCfg)
		}()
		go func() {
			defer wg.Done()
			s.runValidatorTask(ctx, runtimeCfg)
		}()
		wg.Wait()
	}
}

func (s *Supervisor) runScraperTask(ctx context.Context, cfg *config.RuntimeConfig) {
	var sources []scraper.Source
	if s.BuildSrcs != nil {
		sources = s.BuildSrcs(cfg)
	}
	sc := scraper.New(s.Pool, sources)
	runUntilReload(ctx, s.Flag, cfg.SpiderInterval.Std(), func() {
		sc.Round(ctx)
	})
}

func (s *Supervisor) runValidatorTask(ctx context.Context, cfg *config.RuntimeConfig) {
	v := validator.New(s.Pool, validator.Config{
		MaxWorkers:         cfg.MaxWorkers,
		CheckTimeout:       cfg.CheckTimeout.Std(),
		URLHTTP:            cfg.URLHTTP,
		URLHTTPS:           cfg.URLHTTPS,
		LevelUpStability:   cfg.LevelUpStability,
		LevelDownStability: cfg.LevelDownStability,
		RemoveStability:    cfg.RemoveStability,
		LevelDownFailTimes: uint8(cfg.LevelDownFailTimes),
		RemoveFailTimes:    uint8(cfg.RemoveFailTimes),
		MinChecksLevelUp:   uint32(cfg.MinChecksLevelUp),
		MinChecksRemove:    uint32(cfg.MinChecksRemove),
		MaxChecksRemove:    uint32(cfg.MaxChecksRemove),
	})
	v.RoundSummary = s.RoundSummary

	runUntilReload(ctx, s.Flag, cfg.CheckerInterval.Std(), func() {
		v.Round(ctx)
		persist.Save(s.EnvCfg.DataDir, s.Pool)
	})
}

// runUntilReload runs round, then sleeps interval in one-second ticks,
// polling flag each tick, and repeats. It returns as soon as the flag is
// observed set or ctx is canceled, either before a round starts or during
// the sleep; an in-flight round is never interrupted.
func runUntilReload(ctx context.Context, flag *reload.Flag, interval time.Duration, round func()) {
	for {
		if ctx.Err() != nil || flag.IsSet() {
			return
		}
		round()

		elapsed := time.Duration(0)
		for elapsed < interval {
			if ctx.Err() != nil || flag.IsSet() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollTick):
			}
			elapsed += pollTick
		}
	}
}
