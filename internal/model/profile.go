package model

// Known profile attribute values. Unknown values are accepted and simply
// map to no adaptation labels.
const (
	ExperienceBeginner     = "Beginner"
	ExperienceIntermediate = "Intermediate"
	ExperienceAdvanced     = "Advanced"

	ExperienceNone     = "None"
	ExperienceSimOnly  = "Simulation Only"
	ExperienceHardware = "Hardware"

	HardwareJetsonKit = "Jetson Kit"
	HardwareCloud     = "Cloud"
	HardwareNone      = "None"
)

// Profile carries the onboarding attributes that drive personalization.
// Only these attributes participate in fingerprinting and label mapping.
type Profile struct {
	ProgrammingExperience string `json:"programming_experience"`
	RoboticsExperience    string `json:"robotics_experience"`
	HardwareAvailability  string `json:"hardware_availability"`
	LanguagePreference    string `json:"language_preference,omitempty"`
}

// Attributes returns the profile as a flat attribute map. Map form is what
// the fingerprint package canonicalizes, so field order in the struct (or in
// the request JSON) never affects the derived cache key.
func (p Profile) Attributes() map[string]string {
	attrs := map[string]string{
		"programming_experience": p.ProgrammingExperience,
		"robotics_experience":    p.RoboticsExperience,
		"hardware_availability":  p.HardwareAvailability,
	}
	if p.LanguagePreference != "" {
		attrs["language_preference"] = p.LanguagePreference
	}
	return attrs
}
