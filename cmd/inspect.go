package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/midilib/bucket"
	"github.com/jsphweid/midilib/corpus"
	"github.com/jsphweid/midilib/featuring"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Inspects a featurer or a corpus",
	Long:  `Prints the config of a saved featurer or the metadata of a featured song corpus.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := bucket.ReadString(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return inspect(cmd.OutOrStdout(), s)
	},
}

func inspect(w io.Writer, s string) error {
	if f, err := featuring.UnmarshalNoteBasedFeaturer([]byte(s)); err == nil {
		c := f.Config
		fmt.Fprintf(w, "featurer: %v\n", featuring.KindNoteBased)
		fmt.Fprintf(w, "min_pitch: %v\n", c.MinPitch)
		fmt.Fprintf(w, "max_pitch: %v\n", c.MaxPitch)
		fmt.Fprintf(w, "nb_notes_history: %v\n", c.NbNotesHistory)
		fmt.Fprintf(w, "nb_features: %v\n", c.NbFeatures())
		return nil
	}

	meta, fsongs, err := corpus.Decode(s, nil)
	if err != nil {
		return errors.Wrap(err, "neither a featurer nor a corpus")
	}
	fmt.Fprintf(w, "corpus version: %v\n", meta.Version)
	fmt.Fprintf(w, "min_pitch: %v\n", meta.MinPitch)
	fmt.Fprintf(w, "max_pitch: %v\n", meta.MaxPitch)
	fmt.Fprintf(w, "songs: %v\n", len(fsongs))
	return nil
}
