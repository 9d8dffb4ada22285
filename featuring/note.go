package featuring

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// FeaturedNote is a clamped, rebased pitch together with its wait since the
// previous onset. Features and PitchLabel are filled in on construction.
type FeaturedNote struct {
	Pitch     int
	Wait      float64
	NbPitches int

	// one-hot pitch followed by the wait
	Features []float64
	// one-hot pitch alone
	PitchLabel []float64
}

func NewFeaturedNote(pitch int, wait float64, nbPitches int) FeaturedNote {
	if pitch < 0 || pitch >= nbPitches {
		panic(fmt.Sprintf("pitch index %v outside [0, %v)", pitch, nbPitches))
	}
	label := make([]float64, nbPitches)
	label[pitch] = 1
	features := make([]float64, nbPitches+1)
	copy(features, label)
	features[nbPitches] = wait

	return FeaturedNote{
		Pitch:      pitch,
		Wait:       wait,
		NbPitches:  nbPitches,
		Features:   features,
		PitchLabel: label,
	}
}

// NewStartNote returns the "start of song" note, which uses the reserved
// out-of-range pitch slot.
func NewStartNote(minPitch, maxPitch int) FeaturedNote {
	return NewFeaturedNote(maxPitch-minPitch, 0, maxPitch-minPitch+1)
}

func NewClippedNote(pitch int, wait float64, minPitch, maxPitch int) FeaturedNote {
	pitch = ConstrainPitch(pitch, minPitch, maxPitch) - minPitch
	if pitch < 0 || pitch >= maxPitch-minPitch {
		panic(fmt.Sprintf("clipped pitch %v outside [0, %v)", pitch, maxPitch-minPitch))
	}
	return NewFeaturedNote(pitch, wait, maxPitch-minPitch+1)
}

func (n FeaturedNote) IsStart() bool {
	return n.Pitch == n.NbPitches-1
}

func (n FeaturedNote) String() string {
	return fmt.Sprintf("FeaturedNote(pitch=%v, wait=%v)", n.Pitch, n.Wait)
}

func (n FeaturedNote) Tuple() [3]float64 {
	return [3]float64{float64(n.Pitch), n.Wait, float64(n.NbPitches)}
}

func FromTuple(tpl [3]float64) (FeaturedNote, error) {
	pitch, nbPitches := int(tpl[0]), int(tpl[2])
	if float64(pitch) != tpl[0] || float64(nbPitches) != tpl[2] {
		return FeaturedNote{}, errors.Errorf("non-integer pitch or nb_pitches in %v", tpl)
	}
	if nbPitches < 1 || pitch < 0 || pitch >= nbPitches {
		return FeaturedNote{}, errors.Errorf("pitch %v outside [0, %v)", pitch, nbPitches)
	}
	return NewFeaturedNote(pitch, tpl[1], nbPitches), nil
}

func (n FeaturedNote) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{n.Pitch, n.Wait, n.NbPitches})
}

func (n *FeaturedNote) UnmarshalJSON(data []byte) error {
	var tpl [3]float64
	if err := json.Unmarshal(data, &tpl); err != nil {
		return errors.Wrap(err, "featured note is not a [pitch, wait, nb_pitches] triple")
	}
	parsed, err := FromTuple(tpl)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
