// Package corpus stores featured songs as line-delimited JSON: a metadata
// line, then one array of [pitch, wait, nb_pitches] triples per song, then a
// trailing newline.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jsphweid/midilib/bucket"
	"github.com/jsphweid/midilib/featuring"
	"github.com/jsphweid/midilib/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const timestampLayout = "2006-01-02_15:04:05"

var ErrPitchMismatch = errors.New("featured note does not match the corpus pitch range")

type Metadata struct {
	Version  int `json:"version"`
	MinPitch int `json:"min_pitch"`
	MaxPitch int `json:"max_pitch"`
}

// NbPitches includes the out-of-range pitch slot, like FeaturingConfig.
func (m Metadata) NbPitches() int {
	return m.MaxPitch - m.MinPitch + 1
}

var now = time.Now

func Filename(name string, version int, at time.Time) string {
	return fmt.Sprintf("%v_v%v_%v.txt", name, version, at.Format(timestampLayout))
}

func Encode(meta Metadata, fsongs []featuring.FeaturedSong, progress util.ProgressFunc) (string, error) {
	var sb strings.Builder
	header, err := json.Marshal(meta)
	if err != nil {
		return "", errors.Wrap(err, "could not encode corpus metadata")
	}
	sb.Write(header)
	sb.WriteByte('\n')

	for i, fsong := range fsongs {
		if fsong == nil {
			fsong = featuring.FeaturedSong{}
		}
		line, err := json.Marshal(fsong)
		if err != nil {
			return "", errors.Wrapf(err, "could not encode song %v", i)
		}
		sb.Write(line)
		sb.WriteByte('\n')
		progress.Report(i+1, len(fsongs))
	}
	return sb.String(), nil
}

func Decode(s string, progress util.ProgressFunc) (Metadata, []featuring.FeaturedSong, error) {
	var meta Metadata
	lines := strings.Split(s, "\n")
	if len(lines) < 2 || lines[len(lines)-1] != "" {
		return meta, nil, errors.New("corpus is missing its trailing newline")
	}
	if err := json.Unmarshal([]byte(lines[0]), &meta); err != nil {
		return meta, nil, errors.Wrap(err, "could not decode corpus metadata")
	}

	songLines := lines[1 : len(lines)-1]
	fsongs := make([]featuring.FeaturedSong, 0, len(songLines))
	for i, line := range songLines {
		var fsong featuring.FeaturedSong
		if err := json.Unmarshal([]byte(line), &fsong); err != nil {
			return meta, nil, errors.Wrapf(err, "could not decode song on line %v", i+2)
		}
		for j, fnote := range fsong {
			if fnote.NbPitches != meta.NbPitches() {
				return meta, nil, errors.Wrapf(ErrPitchMismatch, "line %v note %v has %v pitches, header [%v, %v] needs %v",
					i+2, j, fnote.NbPitches, meta.MinPitch, meta.MaxPitch, meta.NbPitches())
			}
		}
		fsongs = append(fsongs, fsong)
		progress.Report(i+1, len(songLines))
	}
	return meta, fsongs, nil
}

// Dump writes the songs below dir and returns the full path written.
func Dump(ctx context.Context, dir string, name string, meta Metadata, fsongs []featuring.FeaturedSong, progress util.ProgressFunc) (string, error) {
	content, err := Encode(meta, fsongs, progress)
	if err != nil {
		return "", err
	}
	path := bucket.Join(dir, Filename(name, meta.Version, now()))
	if err := bucket.WriteString(ctx, path, content); err != nil {
		return "", err
	}
	return path, nil
}

func Load(ctx context.Context, path string, progress util.ProgressFunc) (Metadata, []featuring.FeaturedSong, error) {
	s, err := bucket.ReadString(ctx, path)
	if err != nil {
		return Metadata{}, nil, err
	}
	meta, fsongs, err := Decode(s, progress)
	if err != nil {
		return meta, nil, errors.Wrapf(err, "could not load corpus %v", path)
	}
	log.WithFields(log.Fields{
		"path":     path,
		"songs":    len(fsongs),
		"metadata": meta,
	}).Info("Downloaded featured songs")
	return meta, fsongs, nil
}
