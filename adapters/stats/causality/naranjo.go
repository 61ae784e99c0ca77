package causality

import (
	"govigil/domain/signal"
)

// naranjoScore sums the ten fixed question weights of the Naranjo adverse
// drug reaction probability scale. Supportive evidence adds, contradictory
// evidence subtracts, unknown contributes zero.
func naranjoScore(f signal.ClinicalFeatures) int {
	score := 0

	// 1. Previous conclusive reports on this reaction?
	score += weigh(f.PreviousConclusiveReports, 1, 0)

	// 2. Did the event appear after the suspected drug was administered?
	switch {
	case f.TimeToOnsetDays == nil:
		// unknown: 0
	case *f.TimeToOnsetDays >= 0:
		score += 2
	default:
		score--
	}

	// 3. Did the reaction improve when the drug was discontinued?
	if f.Dechallenge == signal.DechallengeImproved {
		score++
	}

	// 4. Did the reaction reappear when the drug was readministered?
	switch f.Rechallenge {
	case signal.RechallengeRecurred:
		score += 2
	case signal.RechallengeNotRecurred:
		score--
	}

	// 5. Are there alternative causes that could have caused the reaction?
	if f.HasAlternativeCauses() {
		score--
	} else {
		score += 2
	}

	// 6. Did the reaction reappear with placebo?
	score += weigh(f.PlaceboReaction, -1, 1)

	// 7. Was the drug detected in blood at a known toxic concentration?
	score += weigh(f.ToxicDrugLevel, 1, 0)

	// 8. Was the reaction more severe with higher dose, or less with lower?
	score += weigh(f.DoseResponse, 1, 0)

	// 9. Did the patient have a similar reaction to the same or similar
	// drug in a previous exposure?
	score += weigh(f.PriorExposureReaction, 1, 0)

	// 10. Was the adverse event confirmed by any objective evidence?
	score += weigh(f.ObjectiveConfirmation, 1, 0)

	return score
}

// weigh maps a yes/no/unknown answer to its question weights
func weigh(a signal.Answer, yes, no int) int {
	switch a {
	case signal.AnswerYes:
		return yes
	case signal.AnswerNo:
		return no
	default:
		return 0
	}
}

// naranjoBucket maps the integer score onto the published cut points
func naranjoBucket(score int) signal.NaranjoCategory {
	switch {
	case score >= 9:
		return signal.NaranjoDefinite
	case score >= 5:
		return signal.NaranjoProbable
	case score >= 1:
		return signal.NaranjoPossible
	default:
		return signal.NaranjoDoubtful
	}
}
