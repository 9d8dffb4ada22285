package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/midilib/chord"
	"github.com/jsphweid/midilib/corpus"
	"github.com/jsphweid/midilib/featuring"
	"github.com/jsphweid/midilib/util"
	"github.com/spf13/cobra"
)

var reportHistory int

func init() {
	reportCmd.Flags().IntVar(&reportHistory, "history", 0, "start notes prepended to each song (default from <corpus>.featurer)")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <corpus>",
	Short: "Creates a report on a corpus",
	Long:  `Counts songs, notes, training examples and pitch usage of a featured song corpus.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history := reportHistory
		if history == 0 {
			f, err := featuring.FromPath(cmd.Context(), FeaturerPathFor(args[0]))
			if err != nil {
				return err
			}
			history = f.Config.NbNotesHistory
		}
		_, fsongs, err := corpus.Load(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}
		report(cmd.OutOrStdout(), analyzeCorpus(fsongs, history))
		return nil
	},
}

type corpusReport struct {
	numSongs    int
	numNotes    uint64
	pitchCounts map[int]int
	chordCounts map[string]int
}

func analyzeCorpus(fsongs []featuring.FeaturedSong, history int) corpusReport {
	r := corpusReport{numSongs: len(fsongs), pitchCounts: make(map[int]int)}
	var lengths []int
	for _, fsong := range fsongs {
		n := 0
		for _, fnote := range fsong[min(history, len(fsong)):] {
			n++
			r.pitchCounts[fnote.Pitch]++
		}
		lengths = append(lengths, n)
	}
	// every real note is the label of exactly one window
	r.numNotes = util.Sum(lengths)
	r.chordCounts = chord.CountChords(fsongs)
	return r
}

func report(w io.Writer, r corpusReport) {
	fmt.Fprintf(w, "songs: %v\n", r.numSongs)
	fmt.Fprintf(w, "notes (training examples): %v\n", r.numNotes)
	fmt.Fprintf(w, "distinct pitches: %v\n", len(util.GetKeys(r.pitchCounts)))
	fmt.Fprintf(w, "chords: %v\n", util.Sum(values(r.chordCounts)))
	fmt.Fprintf(w, "distinct chords: %v\n", len(r.chordCounts))
}

func values(m map[string]int) []int {
	res := make([]int, 0, len(m))
	for _, k := range util.GetKeys(m) {
		res = append(res, m[k])
	}
	return res
}
