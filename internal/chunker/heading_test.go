package chunker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const headedDoc = `# Getting Started

Some intro text.

## Installing ROS

Install steps here.

### Troubleshooting

Deep subsection.

#### Too Deep

Ignored level.

## Running the Simulator

Final section.
`

func TestHeadingsExtractsTopLevels(t *testing.T) {
	headings := Headings([]byte(headedDoc))
	require.Len(t, headings, 4)
	require.Equal(t, "Getting Started", headings[0].Title)
	require.Equal(t, 1, headings[0].Level)
	require.Equal(t, "Installing ROS", headings[1].Title)
	require.Equal(t, "Troubleshooting", headings[2].Title)
	require.Equal(t, "Running the Simulator", headings[3].Title)
}

func TestHeadingsEmptyInput(t *testing.T) {
	require.Empty(t, Headings(nil))
	require.Empty(t, Headings([]byte("plain text without headings")))
}

func TestNearestHeading(t *testing.T) {
	headings := []Heading{
		{Title: "First", Offset: 0},
		{Title: "Second", Offset: 100},
		{Title: "Third", Offset: 200},
	}
	require.Equal(t, "First", NearestHeading(headings, 0))
	require.Equal(t, "First", NearestHeading(headings, 99))
	require.Equal(t, "Second", NearestHeading(headings, 100))
	require.Equal(t, "Third", NearestHeading(headings, 5000))
	require.Equal(t, "", NearestHeading(nil, 50))
}
