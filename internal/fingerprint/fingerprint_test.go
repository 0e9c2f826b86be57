package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lectern-dev/lectern/internal/model"
)

func TestFromAttributesDeterministic(t *testing.T) {
	a := map[string]string{
		"programming_experience": "Beginner",
		"robotics_experience":    "None",
		"hardware_availability":  "None",
	}
	// Same attributes inserted in a different order.
	b := map[string]string{}
	b["hardware_availability"] = "None"
	b["robotics_experience"] = "None"
	b["programming_experience"] = "Beginner"

	require.Equal(t, FromAttributes(a), FromAttributes(b))
	require.Len(t, FromAttributes(a), 32)
}

func TestFromAttributesDistinguishesValues(t *testing.T) {
	a := map[string]string{"programming_experience": "Beginner"}
	b := map[string]string{"programming_experience": "Advanced"}
	require.NotEqual(t, FromAttributes(a), FromAttributes(b))
}

func TestProfileFingerprintIgnoresFieldOrder(t *testing.T) {
	p1 := model.Profile{
		ProgrammingExperience: "Intermediate",
		RoboticsExperience:    "Simulation",
		HardwareAvailability:  "Cloud",
	}
	p2 := model.Profile{
		HardwareAvailability:  "Cloud",
		RoboticsExperience:    "Simulation",
		ProgrammingExperience: "Intermediate",
	}
	require.Equal(t, FromAttributes(p1.Attributes()), FromAttributes(p2.Attributes()))
}

func TestFromContentIsByteExact(t *testing.T) {
	base := []byte("# Chapter 1\n\nSome text.")
	require.Equal(t, FromContent(base), FromContent([]byte("# Chapter 1\n\nSome text.")))
	// A single trailing whitespace edit must produce a different key.
	require.NotEqual(t, FromContent(base), FromContent([]byte("# Chapter 1\n\nSome text. ")))
	require.Len(t, FromContent(base), 32)
}
