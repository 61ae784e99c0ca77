package signal

// DechallengeOutcome describes what happened after the drug was withdrawn
type DechallengeOutcome string

const (
	DechallengeImproved  DechallengeOutcome = "improved"
	DechallengeUnchanged DechallengeOutcome = "unchanged"
	DechallengeUnknown   DechallengeOutcome = "unknown"
)

// RechallengeOutcome describes what happened after the drug was restarted
type RechallengeOutcome string

const (
	RechallengeRecurred     RechallengeOutcome = "recurred"
	RechallengeNotRecurred  RechallengeOutcome = "did_not_recur"
	RechallengeNotAttempted RechallengeOutcome = "not_attempted"
)

// Answer is a yes/no/unknown response to a standardized causality question
type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnknown Answer = "unknown"
)

// ClinicalFeatures carries the per-case (or per aggregated pair) clinical
// evidence consumed by the causality assessor. Read-only input supplied by
// the caller; any field may be absent.
type ClinicalFeatures struct {
	// TimeToOnsetDays is days between first dose and event onset; nil when
	// the interval is not documented.
	TimeToOnsetDays *int `json:"time_to_onset_days,omitempty"`

	Dechallenge DechallengeOutcome `json:"dechallenge,omitempty"`
	Rechallenge RechallengeOutcome `json:"rechallenge,omitempty"`

	// AlternativeCauses lists plausible non-drug explanations for the event.
	AlternativeCauses []string `json:"alternative_causes,omitempty"`

	// Standardized question inputs (Naranjo-style evidence items).
	PreviousConclusiveReports Answer `json:"previous_conclusive_reports,omitempty"`
	PlaceboReaction           Answer `json:"placebo_reaction,omitempty"`
	ToxicDrugLevel            Answer `json:"toxic_drug_level,omitempty"`
	DoseResponse              Answer `json:"dose_response,omitempty"`
	PriorExposureReaction     Answer `json:"prior_exposure_reaction,omitempty"`
	ObjectiveConfirmation     Answer `json:"objective_confirmation,omitempty"`
}

// HasAlternativeCauses reports whether any non-drug explanation is recorded
func (f ClinicalFeatures) HasAlternativeCauses() bool {
	return len(f.AlternativeCauses) > 0
}

// answerOrUnknown normalizes the zero value to unknown
func answerOrUnknown(a Answer) Answer {
	if a == "" {
		return AnswerUnknown
	}
	return a
}

// Normalized returns a copy with all empty enum fields set to their
// unknown/not-attempted defaults so assessors never branch on "".
func (f ClinicalFeatures) Normalized() ClinicalFeatures {
	out := f
	if out.Dechallenge == "" {
		out.Dechallenge = DechallengeUnknown
	}
	if out.Rechallenge == "" {
		out.Rechallenge = RechallengeNotAttempted
	}
	out.PreviousConclusiveReports = answerOrUnknown(out.PreviousConclusiveReports)
	out.PlaceboReaction = answerOrUnknown(out.PlaceboReaction)
	out.ToxicDrugLevel = answerOrUnknown(out.ToxicDrugLevel)
	out.DoseResponse = answerOrUnknown(out.DoseResponse)
	out.PriorExposureReaction = answerOrUnknown(out.PriorExposureReaction)
	out.ObjectiveConfirmation = answerOrUnknown(out.ObjectiveConfirmation)
	return out
}
