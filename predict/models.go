package predict

import (
	"context"
	"encoding/json"

	"github.com/jsphweid/midilib/bucket"
	"github.com/jsphweid/midilib/featuring"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PitchModel gives a distribution over pitch indexes for the note following
// a window.
type PitchModel interface {
	PredictPitch(seq *mat.Dense) ([]float64, error)
	Save(ctx context.Context, path string) error
}

// WaitModel predicts the wait before the next note, given its pitch index.
type WaitModel interface {
	PredictWait(seq *mat.Dense, pitch int) (float64, error)
	Save(ctx context.Context, path string) error
}

const (
	kindMarkovPitch = "markov_pitch"
	kindMeanWait    = "mean_wait"
)

var ErrUntrained = errors.New("model has not been trained")

// lastPitch is the pitch index of the newest note in a window.
func lastPitch(seq *mat.Dense, nbPitches int) (int, error) {
	r, c := seq.Dims()
	if c != nbPitches+1 {
		return 0, errors.Errorf("window has %v features, want %v", c, nbPitches+1)
	}
	return floats.MaxIdx(seq.RawRowView(r - 1)[:nbPitches]), nil
}

// MarkovPitchModel counts transitions from the last pitch of a window to the
// next pitch.
type MarkovPitchModel struct {
	NbPitches   int
	transitions *mat.Dense
}

func NewMarkovPitchModel(nbPitches int) *MarkovPitchModel {
	return &MarkovPitchModel{
		NbPitches:   nbPitches,
		transitions: mat.NewDense(nbPitches, nbPitches, nil),
	}
}

func (m *MarkovPitchModel) Fit(set featuring.PitchLabelSet) error {
	for i, seq := range set.Sequences {
		from, err := lastPitch(seq, m.NbPitches)
		if err != nil {
			return errors.Wrapf(err, "example %v", i)
		}
		to := floats.MaxIdx(set.PitchLabels.RawRowView(i))
		m.transitions.Set(from, to, m.transitions.At(from, to)+1)
	}
	return nil
}

// PredictPitch uses add-one smoothing so unseen transitions keep some mass.
func (m *MarkovPitchModel) PredictPitch(seq *mat.Dense) ([]float64, error) {
	from, err := lastPitch(seq, m.NbPitches)
	if err != nil {
		return nil, err
	}
	dist := make([]float64, m.NbPitches)
	copy(dist, m.transitions.RawRowView(from))
	floats.AddConst(1, dist)
	floats.Scale(1/floats.Sum(dist), dist)
	return dist, nil
}

type markovPitchRecord struct {
	Kind        string      `json:"kind"`
	NbPitches   int         `json:"nb_pitches"`
	Transitions [][]float64 `json:"transitions"`
}

func (m *MarkovPitchModel) Save(ctx context.Context, path string) error {
	rec := markovPitchRecord{Kind: kindMarkovPitch, NbPitches: m.NbPitches}
	for i := 0; i < m.NbPitches; i++ {
		rec.Transitions = append(rec.Transitions, mat.Row(nil, i, m.transitions))
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "could not encode pitch model")
	}
	return bucket.WriteString(ctx, path, string(data))
}

func LoadPitchModel(ctx context.Context, path string) (PitchModel, error) {
	s, err := bucket.ReadString(ctx, path)
	if err != nil {
		return nil, err
	}
	var rec markovPitchRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil, errors.Wrapf(err, "could not decode pitch model %v", path)
	}
	if rec.Kind != kindMarkovPitch {
		return nil, errors.Errorf("unknown pitch model kind %q in %v", rec.Kind, path)
	}
	if rec.NbPitches < 1 || len(rec.Transitions) != rec.NbPitches {
		return nil, errors.Errorf("pitch model %v has %v rows for %v pitches", path, len(rec.Transitions), rec.NbPitches)
	}
	m := NewMarkovPitchModel(rec.NbPitches)
	for i, row := range rec.Transitions {
		if len(row) != rec.NbPitches {
			return nil, errors.Errorf("pitch model %v row %v has %v columns", path, i, len(row))
		}
		m.transitions.SetRow(i, row)
	}
	return m, nil
}

// MeanWaitModel predicts the average wait seen before notes of a pitch, or
// the overall average for pitches never seen.
type MeanWaitModel struct {
	NbPitches  int
	Means      []float64
	Counts     []int
	GlobalMean float64
	trained    bool
}

func NewMeanWaitModel(nbPitches int) *MeanWaitModel {
	return &MeanWaitModel{
		NbPitches: nbPitches,
		Means:     make([]float64, nbPitches),
		Counts:    make([]int, nbPitches),
	}
}

func (m *MeanWaitModel) Fit(set featuring.WaitLabelSet) error {
	if set.Len() == 0 {
		return errors.Wrap(ErrUntrained, "no examples to fit waits on")
	}
	_, c := set.Pitches.Dims()
	if c != m.NbPitches {
		return errors.Errorf("labels have %v pitches, want %v", c, m.NbPitches)
	}

	waits := set.Waits.RawVector().Data
	byPitch := make([][]float64, m.NbPitches)
	for i, wait := range waits[:set.Len()] {
		pitch := floats.MaxIdx(set.Pitches.RawRowView(i))
		byPitch[pitch] = append(byPitch[pitch], wait)
	}
	for pitch, ws := range byPitch {
		m.Counts[pitch] = len(ws)
		if len(ws) > 0 {
			m.Means[pitch] = stat.Mean(ws, nil)
		}
	}
	m.GlobalMean = stat.Mean(waits[:set.Len()], nil)
	m.trained = true
	return nil
}

func (m *MeanWaitModel) PredictWait(seq *mat.Dense, pitch int) (float64, error) {
	if !m.trained {
		return 0, ErrUntrained
	}
	if pitch < 0 || pitch >= m.NbPitches {
		return 0, errors.Errorf("pitch index %v outside [0, %v)", pitch, m.NbPitches)
	}
	if m.Counts[pitch] == 0 {
		return m.GlobalMean, nil
	}
	return m.Means[pitch], nil
}

type meanWaitRecord struct {
	Kind       string    `json:"kind"`
	NbPitches  int       `json:"nb_pitches"`
	Means      []float64 `json:"means"`
	Counts     []int     `json:"counts"`
	GlobalMean float64   `json:"global_mean"`
}

func (m *MeanWaitModel) Save(ctx context.Context, path string) error {
	if !m.trained {
		return ErrUntrained
	}
	data, err := json.Marshal(meanWaitRecord{
		Kind:       kindMeanWait,
		NbPitches:  m.NbPitches,
		Means:      m.Means,
		Counts:     m.Counts,
		GlobalMean: m.GlobalMean,
	})
	if err != nil {
		return errors.Wrap(err, "could not encode wait model")
	}
	return bucket.WriteString(ctx, path, string(data))
}

func LoadWaitModel(ctx context.Context, path string) (WaitModel, error) {
	s, err := bucket.ReadString(ctx, path)
	if err != nil {
		return nil, err
	}
	var rec meanWaitRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil, errors.Wrapf(err, "could not decode wait model %v", path)
	}
	if rec.Kind != kindMeanWait {
		return nil, errors.Errorf("unknown wait model kind %q in %v", rec.Kind, path)
	}
	if len(rec.Means) != rec.NbPitches || len(rec.Counts) != rec.NbPitches {
		return nil, errors.Errorf("wait model %v does not match its %v pitches", path, rec.NbPitches)
	}
	return &MeanWaitModel{
		NbPitches:  rec.NbPitches,
		Means:      rec.Means,
		Counts:     rec.Counts,
		GlobalMean: rec.GlobalMean,
		trained:    true,
	}, nil
}
