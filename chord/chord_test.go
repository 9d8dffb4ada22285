package chord

import (
	"testing"

	"github.com/jsphweid/midilib/featuring"
	"github.com/stretchr/testify/assert"
)

func TestCreateChordKeySortsWithoutMutating(t *testing.T) {
	pitches := []int{67, 60, 64}
	assert := assert.New(t)
	assert.Equal("60-64-67", CreateChordKey(pitches))
	assert.Equal([]int{67, 60, 64}, pitches)
	assert.Equal("", CreateChordKey(nil))
}

func TestGroupFeaturedSkipsStartNotes(t *testing.T) {
	fsong := featuring.FeaturedSong{
		featuring.NewStartNote(0, 12),
		featuring.NewStartNote(0, 12),
		featuring.NewFeaturedNote(0, 1, 13),
		featuring.NewFeaturedNote(4, 0, 13),
		featuring.NewFeaturedNote(7, 0.5, 13),
	}
	assert.Equal(t, [][]int{{0, 4}, {7}}, GroupFeatured(fsong))
}

func TestCountChords(t *testing.T) {
	fsong := featuring.FeaturedSong{
		featuring.NewFeaturedNote(4, 1, 13),
		featuring.NewFeaturedNote(0, 0, 13),
		featuring.NewFeaturedNote(7, 0.5, 13),
		featuring.NewFeaturedNote(0, 0.5, 13),
		featuring.NewFeaturedNote(4, 0, 13),
	}
	assert.Equal(t, map[string]int{"0-4": 2}, CountChords([]featuring.FeaturedSong{fsong}))
}
