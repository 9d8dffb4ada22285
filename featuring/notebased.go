package featuring

import (
	"fmt"

	"github.com/jsphweid/midilib/model"
	"github.com/jsphweid/midilib/util"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrShortSequence = errors.New("not enough featured notes for a full window")
	ErrSentinelPitch = errors.New("pitch index is the out-of-range slot")
)

type FeaturedSong = []FeaturedNote

// PitchLabelSet holds one input window per example and the one-hot pitch of
// the note following it.
type PitchLabelSet struct {
	// each nb_notes_history x nb_features
	Sequences []*mat.Dense
	// len(Sequences) x nb_pitches, nil when empty
	PitchLabels *mat.Dense
}

// WaitLabelSet is PitchLabelSet plus the wait of the following note.
type WaitLabelSet struct {
	Sequences []*mat.Dense
	Pitches   *mat.Dense
	Waits     *mat.VecDense
}

func (s PitchLabelSet) Len() int { return len(s.Sequences) }
func (s WaitLabelSet) Len() int { return len(s.Sequences) }

type NoteBasedFeaturer struct {
	Config FeaturingConfig
}

func NewNoteBasedFeaturer(c FeaturingConfig) (*NoteBasedFeaturer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &NoteBasedFeaturer{Config: c}, nil
}

// FeatureNotes expects a normalized song. The result starts with
// nb_notes_history start-of-song notes.
func (f *NoteBasedFeaturer) FeatureNotes(song model.Song) FeaturedSong {
	c := f.Config
	firstNote := NewStartNote(c.MinPitch, c.MaxPitch)

	featuredNotes := make(FeaturedSong, 0, c.NbNotesHistory+len(song))
	for i := 0; i < c.NbNotesHistory; i++ {
		featuredNotes = append(featuredNotes, firstNote)
	}

	previousTime := -1.0
	for _, note := range song {
		wait := note.Start - previousTime
		featuredNotes = append(featuredNotes, NewClippedNote(note.Pitch, wait, c.MinPitch, c.MaxPitch))
		previousTime = note.Start
	}
	return featuredNotes
}

func (f *NoteBasedFeaturer) countDatapoints(featuredSongs []FeaturedSong) int {
	var n int
	for _, fsong := range featuredSongs {
		if len(fsong) > f.Config.NbNotesHistory {
			n += len(fsong) - f.Config.NbNotesHistory
		}
	}
	return n
}

func (f *NoteBasedFeaturer) window(fsong FeaturedSong, end int) *mat.Dense {
	h := f.Config.NbNotesHistory
	seq := mat.NewDense(h, f.Config.NbFeatures(), nil)
	for row, fnote := range fsong[end-h : end] {
		seq.SetRow(row, fnote.Features)
	}
	return seq
}

func (f *NoteBasedFeaturer) ExtractSequencesForPitchLabel(featuredSongs []FeaturedSong, progress util.ProgressFunc) PitchLabelSet {
	nbDatapoints := f.countDatapoints(featuredSongs)
	var res PitchLabelSet
	if nbDatapoints == 0 {
		return res
	}
	res.Sequences = make([]*mat.Dense, nbDatapoints)
	res.PitchLabels = mat.NewDense(nbDatapoints, f.Config.NbPitches(), nil)

	dataIndex := 0
	for songNum, fsong := range featuredSongs {
		for i := f.Config.NbNotesHistory; i < len(fsong); i++ {
			res.Sequences[dataIndex] = f.window(fsong, i)
			res.PitchLabels.SetRow(dataIndex, fsong[i].PitchLabel)
			dataIndex++
		}
		progress.Report(songNum+1, len(featuredSongs))
	}
	checkFilled(dataIndex, nbDatapoints)
	return res
}

func (f *NoteBasedFeaturer) ExtractSequencesForWaitLabel(featuredSongs []FeaturedSong, progress util.ProgressFunc) WaitLabelSet {
	nbDatapoints := f.countDatapoints(featuredSongs)
	var res WaitLabelSet
	if nbDatapoints == 0 {
		return res
	}
	res.Sequences = make([]*mat.Dense, nbDatapoints)
	res.Pitches = mat.NewDense(nbDatapoints, f.Config.NbPitches(), nil)
	res.Waits = mat.NewVecDense(nbDatapoints, nil)

	dataIndex := 0
	for songNum, fsong := range featuredSongs {
		for i := f.Config.NbNotesHistory; i < len(fsong); i++ {
			res.Sequences[dataIndex] = f.window(fsong, i)
			res.Pitches.SetRow(dataIndex, fsong[i].PitchLabel)
			res.Waits.SetVec(dataIndex, fsong[i].Wait)
			dataIndex++
		}
		progress.Report(songNum+1, len(featuredSongs))
	}
	checkFilled(dataIndex, nbDatapoints)
	return res
}

// ExtractSequenceForPrediction returns the window made of the last
// nb_notes_history notes.
func (f *NoteBasedFeaturer) ExtractSequenceForPrediction(featuredNotes FeaturedSong) (*mat.Dense, error) {
	if len(featuredNotes) < f.Config.NbNotesHistory {
		return nil, errors.Wrapf(ErrShortSequence, "have %v, need %v", len(featuredNotes), f.Config.NbNotesHistory)
	}
	return f.window(featuredNotes, len(featuredNotes)), nil
}

// UnmapPitch turns a pitch index back into an absolute pitch.
func (f *NoteBasedFeaturer) UnmapPitch(index int) (int, error) {
	if index == f.Config.SentinelPitch() {
		return 0, ErrSentinelPitch
	}
	if index < 0 || index > f.Config.SentinelPitch() {
		return 0, errors.Errorf("pitch index %v outside [0, %v)", index, f.Config.SentinelPitch())
	}
	return index + f.Config.MinPitch, nil
}

func checkFilled(filled, expected int) {
	if filled != expected {
		panic(fmt.Sprintf("filled %v of %v datapoints", filled, expected))
	}
}
