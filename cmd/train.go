package cmd

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jsphweid/midilib/constants"
	"github.com/jsphweid/midilib/corpus"
	"github.com/jsphweid/midilib/featuring"
	"github.com/jsphweid/midilib/predict"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type TrainOptions struct {
	CorpusPath   string
	FeaturerPath string
	OutDir       string
}

var trainOpts TrainOptions

func init() {
	flags := trainCmd.Flags()
	flags.StringVar(&trainOpts.FeaturerPath, "featurer", "", "featurer the corpus was built with (default <corpus>.featurer)")
	flags.StringVar(&trainOpts.OutDir, "out", "", "model directory (default $MIDILIB_OUT_PATH/models/<uuid>)")
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train <corpus>",
	Short: "Trains the baseline next note model",
	Long:  `Trains a markov pitch model and a mean wait model on a featured song corpus and dumps them with the featurer.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := trainOpts
		opts.CorpusPath = args[0]
		dir, err := Train(cmd.Context(), opts)
		if err != nil {
			return err
		}
		cmd.Printf("%v\n", dir)
		return nil
	},
}

// Train returns the directory the model was dumped to.
func Train(ctx context.Context, opts TrainOptions) (string, error) {
	featurerPath := opts.FeaturerPath
	if featurerPath == "" {
		featurerPath = FeaturerPathFor(opts.CorpusPath)
	}
	featurer, err := featuring.FromPath(ctx, featurerPath)
	if err != nil {
		return "", err
	}

	meta, fsongs, err := corpus.Load(ctx, opts.CorpusPath, logProgress("Decoded song"))
	if err != nil {
		return "", err
	}
	if meta.MinPitch != featurer.Config.MinPitch || meta.MaxPitch != featurer.Config.MaxPitch {
		return "", errors.Errorf("corpus pitch range [%v, %v] does not match featurer [%v, %v]",
			meta.MinPitch, meta.MaxPitch, featurer.Config.MinPitch, featurer.Config.MaxPitch)
	}

	m, err := predict.Train(featurer, fsongs, logProgress("Extracted song"))
	if err != nil {
		return "", err
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Join(constants.GetOutDir(), "models", uuid.New().String())
	}
	if err := m.Dump(ctx, outDir); err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"songs": len(fsongs), "model": outDir}).Info("Trained model")
	return outDir, nil
}
