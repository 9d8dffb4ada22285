package corpus

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jsphweid/midilib/featuring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSongs() []featuring.FeaturedSong {
	return []featuring.FeaturedSong{
		{featuring.NewStartNote(0, 12), featuring.NewFeaturedNote(3, 1.0, 13)},
		{featuring.NewStartNote(0, 12), featuring.NewFeaturedNote(0, 1.5, 13), featuring.NewFeaturedNote(11, 0.25, 13)},
	}
}

func TestEncodeFormat(t *testing.T) {
	s, err := Encode(Metadata{Version: 1, MinPitch: 0, MaxPitch: 12}, testSongs(), nil)
	require.NoError(t, err)

	lines := strings.Split(s, "\n")
	require.Len(t, lines, 4)
	assert := assert.New(t)
	assert.JSONEq(`{"version":1,"min_pitch":0,"max_pitch":12}`, lines[0])
	assert.JSONEq(`[[12,0,13],[3,1,13]]`, lines[1])
	assert.JSONEq(`[[12,0,13],[0,1.5,13],[11,0.25,13]]`, lines[2])
	assert.Equal("", lines[3])
}

func TestDumpAndLoad(t *testing.T) {
	defer func() { now = time.Now }()
	now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	dir := t.TempDir()
	ctx := context.Background()
	meta := Metadata{Version: 2, MinPitch: 0, MaxPitch: 12}

	var reported int
	path, err := Dump(ctx, dir, "bach", meta, testSongs(), func(done, total int) { reported = done })
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bach_v2_2026-03-04_05:06:07.txt"), path)
	assert.Equal(t, 2, reported)

	gotMeta, fsongs, err := Load(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, meta, gotMeta)
	assert.Equal(t, testSongs(), fsongs)
}

func TestDecodeEmptyCorpus(t *testing.T) {
	s, err := Encode(Metadata{Version: 1}, nil, nil)
	require.NoError(t, err)
	_, fsongs, err := Decode(s, nil)
	require.NoError(t, err)
	assert.Empty(t, fsongs)
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode(`{"version":1,"min_pitch":0,"max_pitch":12}`, nil)
	assert.Error(t, err)
	_, _, err = Decode("{\"version\":1}\n[[1,2]]\n", nil)
	assert.Error(t, err)
	_, _, err = Decode("not json\n", nil)
	assert.Error(t, err)
}

func TestDecodeRejectsNotesOutsideHeaderRange(t *testing.T) {
	_, _, err := Decode("{\"version\":1,\"min_pitch\":0,\"max_pitch\":12}\n[[1, 0.5, 5], [2, 0.5, 5]]\n", nil)
	assert.ErrorIs(t, err, ErrPitchMismatch)

	_, fsongs, err := Decode("{\"version\":1,\"min_pitch\":0,\"max_pitch\":12}\n[[1, 0.5, 13], [12, 0, 13]]\n", nil)
	require.NoError(t, err)
	assert.Len(t, fsongs[0], 2)
}

func TestLoadMissing(t *testing.T) {
	_, _, err := Load(context.Background(), filepath.Join(t.TempDir(), "x.txt"), nil)
	assert.Error(t, err)
}
