package featuring

import (
	"fmt"
	"sort"

	"github.com/jsphweid/midilib/model"
	"github.com/pkg/errors"
)

const DefaultChordTime = 0.05

var ErrEmptySong = errors.New("song has no notes")

// NormalizeSong sorts the song, shifts it to start at 0 and snaps notes
// starting within chordTime of the current chord onto that chord. The song
// is modified in place and returned.
func NormalizeSong(song model.Song, chordTime float64) (model.Song, error) {
	if len(song) == 0 {
		return song, ErrEmptySong
	}

	sort.SliceStable(song, func(i, j int) bool {
		return song[i].Start < song[j].Start
	})

	firstNoteStart := song[0].Start
	// every song begins after a 1 second delay on the out-of-range note
	lastNoteTime := -1.0
	for i := range song {
		note := &song[i]
		note.Start -= firstNoteStart
		note.End -= firstNoteStart
		if note.Start < lastNoteTime {
			panic(fmt.Sprintf("notes out of order after sort: %v < %v", note.Start, lastNoteTime))
		}

		if note.Start <= lastNoteTime+chordTime {
			note.Start = lastNoteTime
		} else {
			lastNoteTime = note.Start
		}
	}

	sort.SliceStable(song, func(i, j int) bool {
		if song[i].Start != song[j].Start {
			return song[i].Start < song[j].Start
		}
		return song[i].Pitch < song[j].Pitch
	})

	return song, nil
}

// ConstrainPitch moves pitch into [minPitch, maxPitch) by whole octaves,
// keeping its pitch class. The range must span at least an octave.
func ConstrainPitch(pitch, minPitch, maxPitch int) int {
	maxPitch -= 1 // exclusive
	if pitch < minPitch {
		pitch = floorMod(pitch, 12) + 12*floorDiv(minPitch, 12) + 12
		if pitch >= minPitch+12 {
			pitch -= 12
		}
		if pitch < minPitch || pitch >= minPitch+12 {
			panic(fmt.Sprintf("constrained pitch %v outside [%v, %v)", pitch, minPitch, minPitch+12))
		}
		return pitch
	}
	if pitch > maxPitch {
		pitch = floorMod(pitch, 12) + 12*floorDiv(maxPitch, 12) - 12
		if pitch <= maxPitch-12 {
			pitch += 12
		}
		if pitch <= maxPitch-12 || pitch > maxPitch {
			panic(fmt.Sprintf("constrained pitch %v outside (%v, %v]", pitch, maxPitch-12, maxPitch))
		}
		return pitch
	}
	return pitch
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
