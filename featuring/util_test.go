package featuring

import (
	"fmt"
	"testing"

	"github.com/jsphweid/midilib/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstrainPitchExamples(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(5, ConstrainPitch(5, 0, 12))
	assert.Equal(5, ConstrainPitch(-7, 0, 12))
	assert.Equal(7, ConstrainPitch(19, 0, 12))
	assert.Equal(0, ConstrainPitch(0, 0, 12))
	assert.Equal(11, ConstrainPitch(11, 0, 12))
	assert.Equal(0, ConstrainPitch(12, 0, 12))
	assert.Equal(48, ConstrainPitch(24, 40, 84))
	assert.Equal(82, ConstrainPitch(130, 36, 84))
}

func TestConstrainPitchIdempotentAndInRange(t *testing.T) {
	ranges := [][2]int{{0, 12}, {36, 84}, {-20, -5}, {21, 109}, {40, 53}, {-3, 10}}
	for _, r := range ranges {
		lo, hi := r[0], r[1]
		t.Run(fmt.Sprintf("range [%v, %v)", lo, hi), func(t *testing.T) {
			for p := -60; p <= 160; p++ {
				got := ConstrainPitch(p, lo, hi)
				if got < lo || got >= hi {
					t.Fatalf("ConstrainPitch(%v) = %v outside range", p, got)
				}
				if again := ConstrainPitch(got, lo, hi); again != got {
					t.Fatalf("ConstrainPitch not idempotent for %v: %v then %v", p, got, again)
				}
				if floorMod(got, 12) != floorMod(p, 12) {
					t.Fatalf("pitch class of %v not kept: %v", p, got)
				}
			}
		})
	}
}

func TestFloorHelpers(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(5, floorMod(-7, 12))
	assert.Equal(0, floorMod(-12, 12))
	assert.Equal(-1, floorDiv(-7, 12))
	assert.Equal(-1, floorDiv(-12, 12))
	assert.Equal(3, floorDiv(36, 12))
}

func notesWithStarts(pitches []int, starts []float64) model.Song {
	var song model.Song
	for i, s := range starts {
		song = append(song, model.Note{Pitch: pitches[i], Start: s, End: s + 0.5})
	}
	return song
}

func starts(song model.Song) []float64 {
	var res []float64
	for _, n := range song {
		res = append(res, n.Start)
	}
	return res
}

func TestNormalizeSongMergesChords(t *testing.T) {
	song := notesWithStarts([]int{60, 64, 67}, []float64{1.0, 1.02, 2.0})
	normalized, err := NormalizeSong(song, DefaultChordTime)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]float64{0.0, 0.0, 1.0}, starts(normalized))
	assert.InDelta(0.5, normalized[0].End, 1e-9)
	assert.InDelta(0.52, normalized[1].End, 1e-9)
}

func TestNormalizeSongSortsByStartThenPitch(t *testing.T) {
	song := notesWithStarts([]int{72, 67, 60, 64}, []float64{3.5, 2.01, 3.0, 2.0})
	normalized, err := NormalizeSong(song, DefaultChordTime)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]float64{0, 0, 1, 1.5}, starts(normalized))
	var pitches []int
	for _, n := range normalized {
		pitches = append(pitches, n.Pitch)
	}
	assert.Equal([]int{64, 67, 60, 72}, pitches)
}

func TestNormalizeSongMutatesInPlace(t *testing.T) {
	song := notesWithStarts([]int{60, 62}, []float64{5, 4})
	normalized, err := NormalizeSong(song, DefaultChordTime)
	require.NoError(t, err)
	assert.Same(t, &song[0], &normalized[0])
	assert.Equal(t, 62, song[0].Pitch)
	assert.Equal(t, 0.0, song[0].Start)
}

func TestNormalizeSongChordAnchorDoesNotDrift(t *testing.T) {
	song := notesWithStarts([]int{60, 62, 64}, []float64{0, 0.03, 0.06})
	normalized, err := NormalizeSong(song, DefaultChordTime)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0.06}, starts(normalized))
}

func TestNormalizeEmptySong(t *testing.T) {
	_, err := NormalizeSong(model.Song{}, DefaultChordTime)
	assert.ErrorIs(t, err, ErrEmptySong)
}
