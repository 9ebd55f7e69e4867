package validator

// decision is the outcome of evaluating one rule cascade for a single
// Candidate's post-probe Stats snapshot.
type decision int

const (
	noChange decision = iota
	promote
	demote
	evict
)

// decideStable implements the check_stable cascade: the first matching
// branch wins.
//
//  1. stability < levelDownStability           -> demote
//  2. consecutiveFailures >= levelDownFailTimes -> demote
//  3. else                                      -> noChange
func (cfg Config) decideStable(stability float64, consecutiveFailures uint8) decision {
	if stability < cfg.LevelDownStability {
		return demote
	}
	if consecutiveFailures >= cfg.LevelDownFailTimes {
		return demote
	}
	return noChange
}

// decideUnstable implements the check_unstable cascade: the first matching
// branch wins, promotion beats removal when both would otherwise hold.
//
//  1. checks >= minChecksLevelUp AND stability >= levelUpStability -> promote
//  2. checks >= minChecksRemove AND stability < removeStability    -> evict
//  3. consecutiveFailures >= removeFailTimes                       -> evict
//  4. checks >= maxChecksRemove                                    -> evict
//  5. else                                                         -> noChange
func (cfg Config) decideUnstable(stability float64, checks uint32, consecutiveFailures uint8) decision {
	if checks >= cfg.MinChecksLevelUp && stability >= cfg.LevelUpStability {
		return promote
	}
	if checks >= cfg.MinChecksRemove && stability < cfg.RemoveStability {
		return evict
	}
	if consecutiveFailures >= cfg.RemoveFailTimes {
		return evict
	}
	if checks >= cfg.MaxChecksRemove {
		return evict
	}
	return noChange
}
