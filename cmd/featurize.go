package cmd

import (
	"context"
	"path/filepath"

	"github.com/jsphweid/midilib/constants"
	"github.com/jsphweid/midilib/corpus"
	"github.com/jsphweid/midilib/featuring"
	"github.com/jsphweid/midilib/file"
	"github.com/jsphweid/midilib/midi"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type FeaturizeOptions struct {
	MediaDir       string
	Name           string
	OutDir         string
	MinPitch       int
	MaxPitch       int
	NbNotesHistory int
	MaxNum         int
}

var featurizeOpts FeaturizeOptions

func init() {
	flags := featurizeCmd.Flags()
	flags.StringVar(&featurizeOpts.Name, "name", "songs", "corpus name")
	flags.StringVar(&featurizeOpts.OutDir, "out", "", "directory or s3:// prefix for the corpus (default $MIDILIB_OUT_PATH/featured_songs)")
	flags.IntVar(&featurizeOpts.MinPitch, "min-pitch", constants.DefaultMinPitch, "lowest pitch kept")
	flags.IntVar(&featurizeOpts.MaxPitch, "max-pitch", constants.DefaultMaxPitch, "highest pitch, reserved for the start-of-song slot")
	flags.IntVar(&featurizeOpts.NbNotesHistory, "history", constants.DefaultNbNotesHistory, "notes per window")
	flags.IntVar(&featurizeOpts.MaxNum, "max", 0, "stop after this many midi files")
	rootCmd.AddCommand(featurizeCmd)
}

var featurizeCmd = &cobra.Command{
	Use:   "featurize [midi-dir]",
	Short: "Builds a featured song corpus from midi files",
	Long:  `Reads every midi file under midi-dir (default $MEDIA_PATH), normalizes and features the notes and dumps the corpus with its featurer.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := featurizeOpts
		if len(args) == 1 {
			opts.MediaDir = args[0]
		} else {
			opts.MediaDir = constants.GetMediaDir()
		}
		path, err := Featurize(cmd.Context(), opts)
		if err != nil {
			return err
		}
		cmd.Printf("%v\n", path)
		return nil
	},
}

func FeaturerPathFor(corpusPath string) string {
	return corpusPath + ".featurer"
}

// Featurize returns the path of the dumped corpus. The featurer is saved
// next to it, see FeaturerPathFor.
func Featurize(ctx context.Context, opts FeaturizeOptions) (string, error) {
	config, err := featuring.NewFeaturingConfig(opts.MinPitch, opts.MaxPitch, opts.NbNotesHistory)
	if err != nil {
		return "", err
	}
	featurer, err := featuring.NewNoteBasedFeaturer(config)
	if err != nil {
		return "", err
	}

	paths, err := file.GatherAllMidiPaths(opts.MediaDir, opts.MaxNum)
	if err != nil {
		return "", err
	}

	var fsongs []featuring.FeaturedSong
	for i, path := range paths {
		log.Debugf("Processing %v of %v midi files", i+1, len(paths))
		song, err := midi.ReadSong(path)
		if err != nil {
			log.WithError(err).Warnf("Skipping %v", path)
			continue
		}
		song, err = featuring.NormalizeSong(song, featuring.DefaultChordTime)
		if err != nil {
			log.WithError(err).Warnf("Skipping %v", path)
			continue
		}
		fsongs = append(fsongs, featurer.FeatureNotes(song))
	}
	if len(fsongs) == 0 {
		return "", errors.Errorf("no usable midi files under %v", opts.MediaDir)
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Join(constants.GetOutDir(), "featured_songs")
	}
	meta := corpus.Metadata{
		Version:  constants.CorpusVersion,
		MinPitch: config.MinPitch,
		MaxPitch: config.MaxPitch,
	}
	corpusPath, err := corpus.Dump(ctx, outDir, opts.Name, meta, fsongs, logProgress("Encoded song"))
	if err != nil {
		return "", err
	}
	if err := featurer.ToPath(ctx, FeaturerPathFor(corpusPath)); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"songs":   len(fsongs),
		"skipped": len(paths) - len(fsongs),
		"corpus":  corpusPath,
	}).Info("Featurized songs")
	return corpusPath, nil
}
