package featuring

import (
	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("invalid featuring config")

type FeaturingConfig struct {
	MinPitch       int `json:"min_pitch"`
	MaxPitch       int `json:"max_pitch"`
	NbNotesHistory int `json:"nb_notes_history"`
}

func NewFeaturingConfig(minPitch, maxPitch, nbNotesHistory int) (FeaturingConfig, error) {
	c := FeaturingConfig{MinPitch: minPitch, MaxPitch: maxPitch, NbNotesHistory: nbNotesHistory}
	return c, c.Validate()
}

// Validate checks the range can hold a full octave of real pitches, which
// ConstrainPitch relies on.
func (c FeaturingConfig) Validate() error {
	if c.MaxPitch-c.MinPitch < 12 {
		return errors.Wrapf(ErrInvalidConfig, "pitch range [%v, %v] narrower than an octave", c.MinPitch, c.MaxPitch)
	}
	if c.NbNotesHistory < 1 {
		return errors.Wrapf(ErrInvalidConfig, "nb_notes_history must be positive, got %v", c.NbNotesHistory)
	}
	return nil
}

// NbPitches includes the out-of-range pitch slot.
func (c FeaturingConfig) NbPitches() int {
	return c.MaxPitch - c.MinPitch + 1
}

// NbFeatures includes the scalar wait feature.
func (c FeaturingConfig) NbFeatures() int {
	return c.NbPitches() + 1
}

func (c FeaturingConfig) SentinelPitch() int {
	return c.MaxPitch - c.MinPitch
}
