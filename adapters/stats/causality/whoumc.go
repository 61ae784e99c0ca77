package causality

import (
	"govigil/domain/signal"
)

// plausibleOnsetWindowDays bounds the biologically plausible interval
// between first dose and event onset for the temporal check.
const plausibleOnsetWindowDays = 90

// Assessor applies both published causality procedures to a case's clinical
// features. Stateless; every call is a pure function of its input.
type Assessor struct{}

// NewAssessor creates a causality assessor
func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess runs both procedures and reports their verdicts side by side.
// The two scales are independent and may disagree; no winner is picked.
func (a *Assessor) Assess(features signal.ClinicalFeatures) *signal.CausalityResult {
	f := features.Normalized()
	score := naranjoScore(f)
	return &signal.CausalityResult{
		UMC:             umcCategory(f),
		NaranjoScore:    score,
		NaranjoCategory: naranjoBucket(score),
	}
}

// umcCategory walks the WHO-UMC decision tree in fixed order: temporal
// plausibility first, then alternative causes, then dechallenge and
// rechallenge outcomes. Exactly one of the six categories results.
func umcCategory(f signal.ClinicalFeatures) signal.UMCCategory {
	if f.TimeToOnsetDays == nil {
		// Without a documented onset interval the temporal relationship
		// cannot be judged at all.
		if f.Dechallenge == signal.DechallengeUnknown && f.Rechallenge == signal.RechallengeNotAttempted {
			return signal.UMCUnassessable
		}
		return signal.UMCConditional
	}

	onset := *f.TimeToOnsetDays
	if onset < 0 || onset > plausibleOnsetWindowDays {
		return signal.UMCUnlikely
	}

	noAlternatives := !f.HasAlternativeCauses()

	switch {
	case f.Rechallenge == signal.RechallengeRecurred &&
		f.Dechallenge == signal.DechallengeImproved &&
		noAlternatives:
		return signal.UMCCertain

	case f.Dechallenge == signal.DechallengeImproved && noAlternatives:
		return signal.UMCProbable

	case f.Rechallenge == signal.RechallengeNotRecurred:
		return signal.UMCUnlikely

	case f.Dechallenge == signal.DechallengeUnchanged && !noAlternatives:
		return signal.UMCUnlikely

	default:
		return signal.UMCPossible
	}
}
