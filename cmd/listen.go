package cmd

import (
	"os"
	"os/signal"
	"time"

	"github.com/jsphweid/midilib/constants"
	"github.com/jsphweid/midilib/live"
	"github.com/jsphweid/midilib/model"
	"github.com/jsphweid/midilib/predict"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var (
	listenIn       int
	listenOut      int
	listenIdle     time.Duration
	listenMaxNotes int
)

func init() {
	flags := listenCmd.Flags()
	flags.IntVar(&listenIn, "in", 0, "midi in port")
	flags.IntVar(&listenOut, "out", -1, "midi out port to play predictions on, -1 for none")
	flags.DurationVar(&listenIdle, "idle", 750*time.Millisecond, "predict after this long without a note ending")
	flags.IntVar(&listenMaxNotes, "max-notes", 64, "most recent notes used for a prediction, 0 for all")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen <model-dir>",
	Short: "Predicts next notes while you play",
	Long:  `Listens on a midi in port and predicts the next note whenever playing pauses.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := predict.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return listen(cmd, m)
	},
}

func playNote(send func(midi.Message) error) func(model.Note) {
	return func(note model.Note) {
		if note.Pitch < 0 || note.Pitch > 127 {
			return
		}
		key := uint8(note.Pitch)
		if err := send(midi.NoteOn(0, key, 100)); err != nil {
			log.WithError(err).Error("Could not play predicted note")
			return
		}
		time.AfterFunc(time.Duration(constants.PredictedNoteLength*float64(time.Second)), func() {
			if err := send(midi.NoteOff(0, key)); err != nil {
				log.WithError(err).Error("Could not stop predicted note")
			}
		})
	}
}

func listen(cmd *cobra.Command, m *predict.PitchDependentWaitModel) error {
	defer midi.CloseDriver()
	in, err := midi.InPort(listenIn)
	if err != nil {
		return errors.Wrapf(err, "can't find midi in port %v", listenIn)
	}

	var onPredict func(model.Note)
	if listenOut >= 0 {
		out, err := midi.OutPort(listenOut)
		if err != nil {
			return errors.Wrapf(err, "can't find midi out port %v", listenOut)
		}
		send, err := midi.SendTo(out)
		if err != nil {
			return errors.Wrap(err, "can't send to midi out port")
		}
		onPredict = playNote(send)
	}

	session := live.NewSession(m, listenIdle, listenMaxNotes, onPredict)
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		at := time.Duration(timestampms) * time.Millisecond
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			session.NoteStart(ch, key, vel, at)
		case msg.GetNoteEnd(&ch, &key):
			session.NoteEnd(ch, key, at)
		default:
			// ignore
		}
	})
	if err != nil {
		return errors.Wrap(err, "can't listen on midi in port")
	}
	defer stop()

	log.WithField("port", in.String()).Info("Listening, interrupt to stop")
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()
	<-ctx.Done()
	return nil
}
