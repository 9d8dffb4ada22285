package predict

import (
	"context"

	"github.com/jsphweid/midilib/bucket"
	"github.com/jsphweid/midilib/constants"
	"github.com/jsphweid/midilib/featuring"
	"github.com/jsphweid/midilib/model"
	"github.com/jsphweid/midilib/util"
	"github.com/pkg/errors"
)

const (
	featurerName  = "pitch_dependent_wait_featurer"
	pitchName     = "pitch_model"
	waitModelName = "pitch_dependent_wait_model"
)

// PitchDependentWaitModel picks the next pitch first and then predicts the
// wait before it given that pitch.
type PitchDependentWaitModel struct {
	Featurer   *featuring.NoteBasedFeaturer
	PitchModel PitchModel
	WaitModel  WaitModel
}

// Train fits the baseline pitch and wait models on a featured corpus.
func Train(featurer *featuring.NoteBasedFeaturer, fsongs []featuring.FeaturedSong, progress util.ProgressFunc) (*PitchDependentWaitModel, error) {
	nbPitches := featurer.Config.NbPitches()

	pitchModel := NewMarkovPitchModel(nbPitches)
	if err := pitchModel.Fit(featurer.ExtractSequencesForPitchLabel(fsongs, progress)); err != nil {
		return nil, errors.Wrap(err, "could not fit pitch model")
	}

	waitModel := NewMeanWaitModel(nbPitches)
	if err := waitModel.Fit(featurer.ExtractSequencesForWaitLabel(fsongs, progress)); err != nil {
		return nil, errors.Wrap(err, "could not fit wait model")
	}

	return &PitchDependentWaitModel{
		Featurer:   featurer,
		PitchModel: pitchModel,
		WaitModel:  waitModel,
	}, nil
}

func (m *PitchDependentWaitModel) Dump(ctx context.Context, dir string) error {
	if err := m.Featurer.ToPath(ctx, bucket.Join(dir, featurerName)); err != nil {
		return errors.Wrap(err, "could not save featurer")
	}
	if err := m.PitchModel.Save(ctx, bucket.Join(dir, pitchName)); err != nil {
		return errors.Wrap(err, "could not save pitch model")
	}
	if err := m.WaitModel.Save(ctx, bucket.Join(dir, waitModelName)); err != nil {
		return errors.Wrap(err, "could not save wait model")
	}
	return nil
}

func Load(ctx context.Context, dir string) (*PitchDependentWaitModel, error) {
	featurer, err := featuring.FromPath(ctx, bucket.Join(dir, featurerName))
	if err != nil {
		return nil, err
	}
	pitchModel, err := LoadPitchModel(ctx, bucket.Join(dir, pitchName))
	if err != nil {
		return nil, err
	}
	waitModel, err := LoadWaitModel(ctx, bucket.Join(dir, waitModelName))
	if err != nil {
		return nil, err
	}
	return &PitchDependentWaitModel{
		Featurer:   featurer,
		PitchModel: pitchModel,
		WaitModel:  waitModel,
	}, nil
}

// NextNote predicts the note following notes. notes is normalized in place,
// so the returned note is on the normalized timeline.
func (m *PitchDependentWaitModel) NextNote(notes model.Song) (model.Note, error) {
	notes, err := featuring.NormalizeSong(notes, featuring.DefaultChordTime)
	if err != nil {
		return model.Note{}, err
	}
	fnotes := m.Featurer.FeatureNotes(notes)
	sequence, err := m.Featurer.ExtractSequenceForPrediction(fnotes)
	if err != nil {
		return model.Note{}, err
	}

	dist, err := m.PitchModel.PredictPitch(sequence)
	if err != nil {
		return model.Note{}, errors.Wrap(err, "pitch prediction failed")
	}
	nbPitches := m.Featurer.Config.NbPitches()
	if len(dist) != nbPitches {
		return model.Note{}, errors.Errorf("pitch model returned %v values, want %v", len(dist), nbPitches)
	}
	// the out-of-range slot is never a real next note
	pitchIndex := util.ArgMax(dist[:nbPitches-1])

	wait, err := m.WaitModel.PredictWait(sequence, pitchIndex)
	if err != nil {
		return model.Note{}, errors.Wrap(err, "wait prediction failed")
	}

	pitch, err := m.Featurer.UnmapPitch(pitchIndex)
	if err != nil {
		return model.Note{}, err
	}
	start := notes[len(notes)-1].Start + wait
	return model.Note{
		Pitch:    pitch,
		Start:    start,
		End:      start + constants.PredictedNoteLength,
		Velocity: 127,
	}, nil
}
