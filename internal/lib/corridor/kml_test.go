package corridor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/geo"
)

func TestWriteKML(t *testing.T) {
	c := &Corridor{
		ID:        "I-80 EB",
		RouteRef:  "I-80",
		Direction: chain.Eastbound,
		Points: []geo.Point{
			{Lat: 41.0, Lon: -109.0},
			{Lat: 41.1, Lon: -108.9},
		},
		LengthMeters: 13900,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, []*Corridor{c}))

	out := buf.String()
	assert.Contains(t, out, "<name>I-80 EB</name>")
	assert.Contains(t, out, "<LineString>")
	assert.Contains(t, out, "-109,41")
	assert.Contains(t, out, "-108.9,41.1")
}

func TestWriteKMLEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, nil))
	assert.Contains(t, buf.String(), "<Document>")
}
