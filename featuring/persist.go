package featuring

import (
	"context"
	"encoding/json"

	"github.com/jsphweid/midilib/bucket"
	"github.com/jsphweid/midilib/constants"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Kind string

const KindNoteBased Kind = "note_based"

var ErrKindMismatch = errors.New("featurer kind does not match")

type featurerRecord struct {
	MidilibVersion  string          `json:"midilib_version"`
	Type            Kind            `json:"type"`
	FeaturingConfig FeaturingConfig `json:"featuring_config"`
}

func (f *NoteBasedFeaturer) Marshal() ([]byte, error) {
	return json.Marshal(featurerRecord{
		MidilibVersion:  constants.Version,
		Type:            KindNoteBased,
		FeaturingConfig: f.Config,
	})
}

// UnmarshalNoteBasedFeaturer warns when the record was written by another
// version of midilib but still loads it.
func UnmarshalNoteBasedFeaturer(data []byte) (*NoteBasedFeaturer, error) {
	var rec featurerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "could not decode featurer record")
	}

	if rec.MidilibVersion != constants.Version {
		log.WithFields(log.Fields{
			"saved":   rec.MidilibVersion,
			"current": constants.Version,
		}).Warn("Code versions do not match")
	}

	if rec.Type != KindNoteBased {
		return nil, errors.Wrapf(ErrKindMismatch, "got %q, want %q", rec.Type, KindNoteBased)
	}

	return NewNoteBasedFeaturer(rec.FeaturingConfig)
}

func (f *NoteBasedFeaturer) ToPath(ctx context.Context, path string) error {
	data, err := f.Marshal()
	if err != nil {
		return errors.Wrap(err, "could not encode featurer")
	}
	return bucket.WriteString(ctx, path, string(data))
}

func FromPath(ctx context.Context, path string) (*NoteBasedFeaturer, error) {
	s, err := bucket.ReadString(ctx, path)
	if err != nil {
		return nil, err
	}
	f, err := UnmarshalNoteBasedFeaturer([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, "could not load featurer from %v", path)
	}
	return f, nil
}
