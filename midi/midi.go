package midi

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/midilib/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarter = 960
	bpm             = 120.0
	ticksPerSecond  = ticksPerQuarter * bpm / 60
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = errors.Errorf("panic parsing midi file %v: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	return ReadMidi(bytes.NewReader(dat))
}

func ReadMidi(r io.Reader) (*smf.SMF, error) {
	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}
	return res, nil
}

type pressKey struct {
	channel uint8
	key     uint8
}

type pressed struct {
	start    int64
	velocity uint8
}

// SongFromSMF pairs note on and note off events of all tracks into notes
// with times in seconds. Notes still held at the end of a track are dropped.
func SongFromSMF(s *smf.SMF) model.Song {
	var song model.Song
	for _, events := range s.Tracks {
		held := make(map[pressKey]pressed)
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				k := pressKey{channel, key}
				if _, ok := held[k]; ok {
					// retriggered without a note off, close the old one
					song = append(song, makeNote(s, key, held[k], absTicks))
				}
				held[k] = pressed{start: absTicks, velocity: velocity}
			case event.Message.GetNoteOn(&channel, &key, &velocity),
				event.Message.GetNoteOff(&channel, &key, &velocity):
				k := pressKey{channel, key}
				if p, ok := held[k]; ok {
					song = append(song, makeNote(s, key, p, absTicks))
					delete(held, k)
				}
			}
		}
	}

	sort.SliceStable(song, func(i, j int) bool {
		return song[i].Start < song[j].Start
	})
	return song
}

func makeNote(s *smf.SMF, key uint8, p pressed, endTicks int64) model.Note {
	return model.Note{
		Pitch:    int(key),
		Start:    microsToSeconds(s.TimeAt(p.start)),
		End:      microsToSeconds(s.TimeAt(endTicks)),
		Velocity: p.velocity,
	}
}

func microsToSeconds(micros int64) float64 {
	return float64(micros) / 1e6
}

func ReadSong(filepath string) (model.Song, error) {
	parsed, err := ReadMidiFile(filepath)
	if err != nil {
		return nil, err
	}
	return SongFromSMF(parsed), nil
}

type timedMessage struct {
	tick uint32
	msg  midi.Message
}

func toPitchByte(pitch int) (uint8, error) {
	if pitch < 0 || pitch > 127 {
		return 0, errors.Errorf("pitch %v is not a midi key", pitch)
	}
	return uint8(pitch), nil
}

func secondsToTicks(t float64) uint32 {
	if t < 0 {
		return 0
	}
	return uint32(t*ticksPerSecond + 0.5)
}

// SMFFromSong lays the notes out on one track at a fixed tempo.
func SMFFromSong(song model.Song) (*smf.SMF, error) {
	var timed []timedMessage
	for _, note := range song {
		key, err := toPitchByte(note.Pitch)
		if err != nil {
			return nil, err
		}
		velocity := note.Velocity
		if velocity == 0 {
			velocity = 100
		}
		if velocity > 127 {
			velocity = 127
		}
		timed = append(timed,
			timedMessage{tick: secondsToTicks(note.Start), msg: midi.NoteOn(0, key, velocity)},
			timedMessage{tick: secondsToTicks(note.End), msg: midi.NoteOff(0, key)},
		)
	}

	// note offs go first on ties so repeated notes are not cut
	sort.SliceStable(timed, func(i, j int) bool {
		if timed[i].tick != timed[j].tick {
			return timed[i].tick < timed[j].tick
		}
		return timed[i].msg.Is(midi.NoteOffMsg) && !timed[j].msg.Is(midi.NoteOffMsg)
	})

	var track smf.Track
	track.Add(0, smf.MetaTempo(bpm))
	var last uint32
	for _, tm := range timed {
		track.Add(tm.tick-last, tm.msg)
		last = tm.tick
	}
	track.Close(0)

	res := smf.New()
	res.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	if err := res.Add(track); err != nil {
		return nil, errors.Wrap(err, "could not add track")
	}
	return res, nil
}

func WriteSong(w io.Writer, song model.Song) error {
	s, err := SMFFromSong(song)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "could not write midi")
	}
	return nil
}

func WriteSongFile(path string, song model.Song) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %v", path)
	}
	defer f.Close()
	if err := WriteSong(f, song); err != nil {
		return errors.Wrapf(err, "writing %v", path)
	}
	return f.Close()
}
