package featuring

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/midilib/constants"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturerPathRoundTrip(t *testing.T) {
	f := newTestFeaturer(t, 5)
	path := filepath.Join(t.TempDir(), "featurer")
	ctx := context.Background()

	require.NoError(t, f.ToPath(ctx, path))
	loaded, err := FromPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, f.Config, loaded.Config)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"midilib_version": "`+constants.Version+`",
		"type": "note_based",
		"featuring_config": {"min_pitch": 0, "max_pitch": 12, "nb_notes_history": 5}
	}`, string(raw))
}

func TestVersionMismatchWarnsButLoads(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	f, err := UnmarshalNoteBasedFeaturer([]byte(`{
		"midilib_version": "0.0.1",
		"type": "note_based",
		"featuring_config": {"min_pitch": 36, "max_pitch": 84, "nb_notes_history": 8}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 8, f.Config.NbNotesHistory)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "0.0.1", hook.LastEntry().Data["saved"])
}

func TestKindMismatchFails(t *testing.T) {
	_, err := UnmarshalNoteBasedFeaturer([]byte(`{
		"midilib_version": "` + constants.Version + `",
		"type": "chord_based",
		"featuring_config": {"min_pitch": 36, "max_pitch": 84, "nb_notes_history": 8}
	}`))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestFromPathMissingFile(t *testing.T) {
	_, err := FromPath(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
