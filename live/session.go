// Package live turns a stream of note on/off callbacks into notes and asks
// for a prediction once the player has been idle for a while.
package live

import (
	"math"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/midilib/model"
	log "github.com/sirupsen/logrus"
)

type Predictor interface {
	NextNote(notes model.Song) (model.Note, error)
}

type Session struct {
	mu        sync.Mutex
	held      map[heldKey]heldNote
	played    model.Song
	maxNotes  int
	predictor Predictor
	debounced func(f func())
	onPredict func(model.Note)
}

type heldKey struct {
	channel uint8
	key     uint8
}

type heldNote struct {
	start    float64
	velocity uint8
}

// NewSession keeps at most maxNotes of the most recent notes; 0 keeps all.
func NewSession(predictor Predictor, idle time.Duration, maxNotes int, onPredict func(model.Note)) *Session {
	return &Session{
		held:      make(map[heldKey]heldNote),
		maxNotes:  maxNotes,
		predictor: predictor,
		debounced: debounce.New(idle),
		onPredict: onPredict,
	}
}

func (s *Session) NoteStart(channel, key, velocity uint8, at time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[heldKey{channel, key}] = heldNote{start: at.Seconds(), velocity: velocity}
}

func (s *Session) NoteEnd(channel, key uint8, at time.Duration) {
	s.mu.Lock()
	k := heldKey{channel, key}
	h, ok := s.held[k]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.held, k)
	s.played = append(s.played, model.Note{
		Pitch:    int(key),
		Start:    h.start,
		End:      at.Seconds(),
		Velocity: h.velocity,
	})
	if s.maxNotes > 0 && len(s.played) > s.maxNotes {
		s.played = s.played[len(s.played)-s.maxNotes:]
	}
	s.mu.Unlock()

	s.debounced(s.predict)
}

// Played returns a copy of the finished notes.
func (s *Session) Played() model.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make(model.Song, len(s.played))
	copy(res, s.played)
	return res
}

func (s *Session) predict() {
	notes := s.Played()
	if len(notes) == 0 {
		return
	}
	first, last := notes[0].Start, notes[0].Start
	for _, n := range notes {
		first = math.Min(first, n.Start)
		last = math.Max(last, n.Start)
	}

	note, err := s.predictor.NextNote(notes)
	if err != nil {
		log.WithError(err).Error("Could not predict next note")
		return
	}
	// back from the normalized timeline onto the session clock
	note.Start += first
	note.End += first
	log.WithFields(log.Fields{
		"pitch": note.Pitch,
		"start": note.Start,
		"after": note.Start - last,
	}).Info("Predicted next note")
	if s.onPredict != nil {
		s.onPredict(note)
	}
}
