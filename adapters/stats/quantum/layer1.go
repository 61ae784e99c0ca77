package quantum

import (
	"time"

	"govigil/domain/signal"
)

// Scorer computes the two composite layers. Both are pure functions of the
// pair input; the orchestrator supplies a batch-wide reference time so
// recency never depends on the wall clock.
type Scorer struct {
	l1 signal.Layer1Config
	l2 signal.Layer2Config
}

// NewScorer creates a scorer with the given layer tunings
func NewScorer(l1 signal.Layer1Config, l2 signal.Layer2Config) *Scorer {
	return &Scorer{l1: l1, l2: l2}
}

// Seriousness criterion weights for the layer-1 sub-score. Fixed ordering
// of regulatory outcomes by gravity.
const (
	weightDeath           = 1.0
	weightLifeThreatening = 0.9
	weightCongenital      = 0.8
	weightHospitalization = 0.7
	weightDisability      = 0.6
)

// ScoreLayer1 computes the single-source composite: convex base over four
// normalized sub-scores, plus interaction boosts for axes that jointly
// exceed their thresholds, plus a tunneling bonus for near-miss axes.
// The result is intentionally unbounded above 1.0.
func (s *Scorer) ScoreLayer1(in signal.PairInput, asOf time.Time) signal.Layer1Components {
	c := signal.Layer1Components{
		Rarity:      s.raritySubScore(in.Table),
		Seriousness: s.seriousnessSubScore(in),
		Recency:     s.recencySubScore(in.MostRecentReport, asOf),
		Count:       s.countSubScore(in.Table.A),
	}

	c.Base = s.l1.RarityWeight*c.Rarity +
		s.l1.SeriousnessWeight*c.Seriousness +
		s.l1.RecencyWeight*c.Recency +
		s.l1.CountWeight*c.Count

	c.Boosts = s.interactionBoosts(c)
	c.Tunneling = s.tunnelingBonus(c)

	c.Score = c.Base + c.Tunneling
	for _, b := range c.Boosts {
		c.Score += b.Value
	}
	return c
}

// raritySubScore is 1 - (pair count / drug report total)
func (s *Scorer) raritySubScore(t signal.ContingencyTable) float64 {
	drugTotal := t.A + t.B
	if drugTotal == 0 {
		return 0
	}
	return 1.0 - float64(t.A)/float64(drugTotal)
}

// seriousnessSubScore weights each regulatory seriousness criterion and
// normalizes by the pair's case count, saturating at 1.
func (s *Scorer) seriousnessSubScore(in signal.PairInput) float64 {
	if in.Table.A == 0 {
		return 0
	}
	p := in.Seriousness
	weighted := weightDeath*float64(p.Death) +
		weightLifeThreatening*float64(p.LifeThreatening) +
		weightCongenital*float64(p.CongenitalAnomaly) +
		weightHospitalization*float64(p.Hospitalization) +
		weightDisability*float64(p.Disability)
	score := weighted / float64(in.Table.A)
	if score > 1 {
		score = 1
	}
	return score
}

// recencySubScore buckets the age of the most recent report
func (s *Scorer) recencySubScore(mostRecent, asOf time.Time) float64 {
	if mostRecent.IsZero() {
		return 0
	}
	ageDays := asOf.Sub(mostRecent).Hours() / 24
	switch {
	case ageDays <= 30:
		return 1.0
	case ageDays <= 90:
		return 0.8
	case ageDays <= 180:
		return 0.6
	case ageDays <= 365:
		return 0.4
	case ageDays <= 730:
		return 0.2
	default:
		return 0.1
	}
}

// countSubScore is a capped linear scale on the pair's case count
func (s *Scorer) countSubScore(a int64) float64 {
	score := float64(a) / float64(s.l1.CountCap)
	if score > 1 {
		score = 1
	}
	return score
}

// interactionBoosts adds fixed bonuses when pairs (or the triple) of the
// rarity/seriousness/recency axes each exceed their threshold.
func (s *Scorer) interactionBoosts(c signal.Layer1Components) []signal.InteractionBoost {
	var boosts []signal.InteractionBoost
	pt := s.l1.PairBoostThreshold

	if c.Rarity > pt && c.Seriousness > pt {
		boosts = append(boosts, signal.InteractionBoost{Name: "rare_serious", Value: s.l1.RareSeriousBoost})
	}
	if c.Rarity > pt && c.Recency > pt {
		boosts = append(boosts, signal.InteractionBoost{Name: "rare_recent", Value: s.l1.RareRecentBoost})
	}
	if c.Seriousness > pt && c.Recency > pt {
		boosts = append(boosts, signal.InteractionBoost{Name: "serious_recent", Value: s.l1.SeriousRecentBoost})
	}

	tt := s.l1.TripleBoostThreshold
	if c.Rarity > tt && c.Seriousness > tt && c.Recency > tt {
		boosts = append(boosts, signal.InteractionBoost{Name: "all_three", Value: s.l1.AllThreeBoost})
	}
	return boosts
}

// tunnelingBonus rewards axes sitting in the near-miss band just below the
// boost threshold.
func (s *Scorer) tunnelingBonus(c signal.Layer1Components) float64 {
	var bonus float64
	for _, axis := range []float64{c.Rarity, c.Seriousness, c.Recency} {
		if axis >= s.l1.TunnelBandLow && axis < s.l1.TunnelBandHigh {
			bonus += s.l1.TunnelBonus
		}
	}
	return bonus
}
