package service

import "github.com/lectern-dev/lectern/internal/model"

// TransformationLabels maps a learner profile to the fixed set of adaptation
// labels. The mapping is deterministic: the same profile always yields the
// same labels in the same order, which keeps prompts and cache bookkeeping
// stable across calls.
func TransformationLabels(profile model.Profile) []string {
	var labels []string
	switch profile.ProgrammingExperience {
	case model.ExperienceBeginner:
		labels = append(labels, "simplify", "add-comments")
	case model.ExperienceAdvanced:
		labels = append(labels, "advanced-depth", "add-optimizations")
	}
	switch profile.RoboticsExperience {
	case model.ExperienceNone:
		labels = append(labels, "add-context", "add-visual-aids")
	case model.ExperienceHardware:
		labels = append(labels, "practical-tips", "debugging-guides")
	}
	switch profile.HardwareAvailability {
	case model.HardwareJetsonKit:
		labels = append(labels, "jetson-specific")
	case model.HardwareCloud:
		labels = append(labels, "cloud-deployment")
	case model.HardwareNone:
		labels = append(labels, "simulator-alternatives")
	}
	return labels
}
