package constants

import "os"

const Version = "0.3.0"

const (
	DefaultMinPitch       = 36
	DefaultMaxPitch       = 84
	DefaultNbNotesHistory = 16
	CorpusVersion         = 1
)

// predicted notes are given a fixed length
const PredictedNoteLength = 0.5

func GetOutDir() string {
	path := os.Getenv("MIDILIB_OUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

func GetMediaDir() string {
	path := os.Getenv("MEDIA_PATH")
	if path != "" {
		return path
	}

	panic("MEDIA_PATH environment variable is not set!")
}

// GetS3Endpoint is empty unless talking to a local or non-AWS S3.
func GetS3Endpoint() string {
	return os.Getenv("MIDILIB_S3_ENDPOINT")
}

func GetS3Region() string {
	region := os.Getenv("MIDILIB_S3_REGION")
	if region != "" {
		return region
	}
	return "us-east-1"
}

func GetLogLevel() string {
	level := os.Getenv("MIDILIB_LOG_LEVEL")
	if level != "" {
		return level
	}
	return "info"
}
