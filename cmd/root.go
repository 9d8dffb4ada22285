package cmd

import (
	"context"

	"github.com/jsphweid/midilib/constants"
	"github.com/jsphweid/midilib/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "midilib",
	Short: "Featurize MIDI and predict next notes",
	Long:  `Turns MIDI songs into note feature windows, trains next-note models on them and serves predictions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(constants.GetLogLevel())
		if err != nil {
			return err
		}
		log.SetLevel(level)
		return nil
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.ExecuteContext(context.Background()))
}

func logProgress(what string) util.ProgressFunc {
	return func(done, total int) {
		log.Debugf("%v %v of %v", what, done, total)
	}
}
