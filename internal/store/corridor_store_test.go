package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/corridor"
	"github.com/openroads/corridor/internal/lib/geo"
)

func sample(id string) *corridor.Corridor {
	return &corridor.Corridor{
		ID:        id,
		RouteRef:  "I-80",
		Direction: chain.Eastbound,
		Points:    []geo.Point{{Lat: 41, Lon: -96}, {Lat: 41, Lon: -95}},
		Gaps:      []corridor.Gap{{AfterIndex: 0, Meters: 3000}},
		RebuiltAt: time.Now().UTC(),
	}
}

func TestStore_PublishReplacesWholesale(t *testing.T) {
	s := NewStore()

	_, err := s.Get("I-80 EB")
	assert.ErrorIs(t, err, ErrNotFound)

	first := sample("I-80 EB")
	s.Publish(first)

	got, err := s.Get("I-80 EB")
	require.NoError(t, err)
	assert.Same(t, first, got)

	second := sample("I-80 EB")
	second.RebuiltAt = first.RebuiltAt.Add(time.Minute)
	s.Publish(second)

	got, err = s.Get("I-80 EB")
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestStore_IDsSorted(t *testing.T) {
	s := NewStore()
	s.Publish(sample("I-80 WB"))
	s.Publish(sample("I-80 EB"))
	s.Publish(sample("I-29 NB"))

	assert.Equal(t, []string{"I-29 NB", "I-80 EB", "I-80 WB"}, s.IDs())
}

func TestStore_GapReport(t *testing.T) {
	s := NewStore()
	s.Publish(sample("I-80 EB"))

	report := s.GapReport()
	require.Contains(t, report, "I-80 EB")
	require.Len(t, report["I-80 EB"], 1)
	assert.Equal(t, 3000.0, report["I-80 EB"][0].Meters)

	// The report is a copy; mutating it must not touch the snapshot.
	report["I-80 EB"][0].Meters = 0
	got, err := s.Get("I-80 EB")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, got.Gaps[0].Meters)
}
