package chunk

import (
	"fmt"
)

// Discard records one candidate eliminated by the overlap resolver.
type Discard struct {
	// Kept is the surviving candidate of the conflicting pair.
	Kept *Candidate

	// Dropped is the eliminated candidate.
	Dropped *Candidate

	// Area is the overlap area of the pair in square pixels.
	Area float64
}

// String formats the discard for the validation report.
func (d Discard) String() string {
	return fmt.Sprintf("discarded %s (%d tokens): overlaps %s (%d tokens) with area %.0f px2",
		d.Dropped.Selector, d.Dropped.Tokens, d.Kept.Selector, d.Kept.Tokens, d.Area)
}

// OverlapResolver eliminates pairwise overlaps above the threshold, keeping
// the higher-token candidate of each conflicting pair.
type OverlapResolver struct {
	config Config
}

// NewOverlapResolver creates an overlap resolver with the given configuration.
func NewOverlapResolver(config Config) *OverlapResolver {
	return &OverlapResolver{config: config}
}

// Resolve returns the surviving candidates in their original order together
// with a record of every discard. On a conflict the lower-token candidate is
// discarded; on equal tokens the one later in the current order goes, keeping
// the earliest-discovered content. A single pass can leave transitive
// conflicts behind, so passes repeat until one completes with no discard;
// termination is bounded by the candidate count. Every discard is logged.
func (r *OverlapResolver) Resolve(candidates []*Candidate) ([]*Candidate, []Discard) {
	var discards []Discard
	if len(candidates) < 2 {
		return candidates, discards
	}

	log := r.config.logger()
	alive := make([]bool, len(candidates))
	for i := range alive {
		alive[i] = true
	}

	for {
		removed := false
		for i := 0; i < len(candidates); i++ {
			if !alive[i] {
				continue
			}
			for j := i + 1; j < len(candidates); j++ {
				if !alive[j] {
					continue
				}
				area := candidates[i].Rect.OverlapArea(candidates[j].Rect)
				if area <= r.config.OverlapThresholdPx2 {
					continue
				}

				keep, drop := i, j
				if candidates[j].Tokens > candidates[i].Tokens {
					keep, drop = j, i
				}
				alive[drop] = false
				removed = true
				discards = append(discards, Discard{
					Kept:    candidates[keep],
					Dropped: candidates[drop],
					Area:    area,
				})
				log.Info("discarding overlapping section",
					"dropped", candidates[drop].Selector,
					"dropped_tokens", candidates[drop].Tokens,
					"kept", candidates[keep].Selector,
					"kept_tokens", candidates[keep].Tokens,
					"overlap_px2", area)

				if drop == i {
					break
				}
			}
		}
		if !removed {
			break
		}
	}

	out := make([]*Candidate, 0, len(candidates))
	for i, cand := range candidates {
		if alive[i] {
			out = append(out, cand)
		}
	}
	return out, discards
}
