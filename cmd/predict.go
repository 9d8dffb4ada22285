package cmd

import (
	"github.com/jsphweid/midilib/midi"
	"github.com/jsphweid/midilib/predict"
	"github.com/spf13/cobra"
)

var predictWritePath string

func init() {
	predictCmd.Flags().StringVar(&predictWritePath, "write", "", "write the song with the predicted note appended to this midi file")
	rootCmd.AddCommand(predictCmd)
}

var predictCmd = &cobra.Command{
	Use:   "predict <model-dir> <midi-file>",
	Short: "Predicts the note following a midi file",
	Long:  `Predicts the note following a midi file`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := predict.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		song, err := midi.ReadSong(args[1])
		if err != nil {
			return err
		}
		note, err := m.NextNote(song)
		if err != nil {
			return err
		}
		cmd.Printf("pitch: %v\nstart: %v\nend: %v\n", note.Pitch, note.Start, note.End)

		if predictWritePath != "" {
			// song was normalized in place, so it shares the note's timeline
			return midi.WriteSongFile(predictWritePath, append(song, note))
		}
		return nil
	},
}
