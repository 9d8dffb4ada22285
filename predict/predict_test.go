package predict

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jsphweid/midilib/featuring"
	"github.com/jsphweid/midilib/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func arpeggio() model.Song {
	var song model.Song
	for i, p := range []int{0, 4, 7, 0, 4, 7} {
		start := float64(i) * 0.5
		song = append(song, model.Note{Pitch: p, Start: start, End: start + 0.4})
	}
	return song
}

func trainToy(t *testing.T) *PitchDependentWaitModel {
	c, err := featuring.NewFeaturingConfig(0, 12, 1)
	require.NoError(t, err)
	f, err := featuring.NewNoteBasedFeaturer(c)
	require.NoError(t, err)

	fsongs := []featuring.FeaturedSong{f.FeatureNotes(arpeggio())}
	m, err := Train(f, fsongs, nil)
	require.NoError(t, err)
	return m
}

func windowEndingOn(pitch int) *mat.Dense {
	seq := mat.NewDense(1, 14, nil)
	seq.Set(0, pitch, 1)
	return seq
}

func TestMarkovPitchModelSmoothedDistribution(t *testing.T) {
	m := trainToy(t)
	dist, err := m.PitchModel.PredictPitch(windowEndingOn(4))
	require.NoError(t, err)

	assert := assert.New(t)
	require.Len(t, dist, 13)
	assert.InDelta(3.0/15, dist[7], 1e-9)
	assert.InDelta(1.0/15, dist[0], 1e-9)
	var total float64
	for _, p := range dist {
		total += p
	}
	assert.InDelta(1.0, total, 1e-9)

	_, err = m.PitchModel.PredictPitch(mat.NewDense(1, 5, nil))
	assert.Error(err)
}

func TestMeanWaitModel(t *testing.T) {
	m := trainToy(t)
	assert := assert.New(t)

	w, err := m.WaitModel.PredictWait(nil, 0)
	require.NoError(t, err)
	assert.InDelta(0.75, w, 1e-9)

	w, err = m.WaitModel.PredictWait(nil, 7)
	require.NoError(t, err)
	assert.InDelta(0.5, w, 1e-9)

	// unseen pitch falls back to the overall mean
	w, err = m.WaitModel.PredictWait(nil, 2)
	require.NoError(t, err)
	assert.InDelta(3.5/6, w, 1e-9)

	_, err = m.WaitModel.PredictWait(nil, 13)
	assert.Error(err)

	_, err = NewMeanWaitModel(13).PredictWait(nil, 0)
	assert.ErrorIs(err, ErrUntrained)
}

func TestNextNote(t *testing.T) {
	m := trainToy(t)
	note, err := m.NextNote(model.Song{
		{Pitch: 0, Start: 10, End: 10.4},
		{Pitch: 4, Start: 10.5, End: 10.9},
	})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(7, note.Pitch)
	assert.InDelta(1.0, note.Start, 1e-9)
	assert.InDelta(1.5, note.End, 1e-9)
	assert.Equal(uint8(127), note.Velocity)
}

type fixedPitchModel struct {
	dist []float64
}

func (f fixedPitchModel) PredictPitch(seq *mat.Dense) ([]float64, error) { return f.dist, nil }
func (f fixedPitchModel) Save(ctx context.Context, path string) error { return nil }

func TestNextNoteSkipsStartSlot(t *testing.T) {
	m := trainToy(t)
	dist := make([]float64, 13)
	dist[3], dist[5], dist[12] = 0.2, 0.2, 0.6
	m.PitchModel = fixedPitchModel{dist: dist}

	note, err := m.NextNote(model.Song{{Pitch: 0, Start: 0, End: 0.4}})
	require.NoError(t, err)
	// first of the tied real pitches wins
	assert.Equal(t, 3, note.Pitch)
}

func TestNextNoteEmptySong(t *testing.T) {
	m := trainToy(t)
	_, err := m.NextNote(model.Song{})
	assert.ErrorIs(t, err, featuring.ErrEmptySong)
}

func TestDumpAndLoad(t *testing.T) {
	m := trainToy(t)
	dir := filepath.Join(t.TempDir(), "model")
	ctx := context.Background()
	require.NoError(t, m.Dump(ctx, dir))

	for _, name := range []string{featurerName, pitchName, waitModelName} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded, err := Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, m.Featurer.Config, loaded.Featurer.Config)
	assert.Equal(t, m.WaitModel, loaded.WaitModel)

	want, err := m.PitchModel.PredictPitch(windowEndingOn(0))
	require.NoError(t, err)
	got, err := loaded.PitchModel.PredictPitch(windowEndingOn(0))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTrainOnEmptyCorpusFails(t *testing.T) {
	c, err := featuring.NewFeaturingConfig(0, 12, 1)
	require.NoError(t, err)
	f, err := featuring.NewNoteBasedFeaturer(c)
	require.NoError(t, err)
	_, err = Train(f, nil, nil)
	assert.ErrorIs(t, err, ErrUntrained)
}

func TestLoadMissingModel(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir())
	assert.Error(t, err)
}
