package cmd

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/midilib/model"
	"github.com/jsphweid/midilib/predict"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	nextNoteModel *predict.PitchDependentWaitModel
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve <model-dir>",
	Short: "Serves next note predictions over http",
	Long:  `Serves next note predictions over http`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadServeModel(cmd.Context(), args[0]); err != nil {
			return err
		}
		log.WithField("addr", serveAddr).Info("Serving")
		return http.ListenAndServe(serveAddr, NewRouter())
	},
}

func LoadServeModel(ctx context.Context, dir string) error {
	m, err := predict.Load(ctx, dir)
	if err != nil {
		return err
	}
	nextNoteModel = m
	return nil
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/next-note", HandleNextNote).Methods("POST")
	return cors.Default().Handler(router)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

func HandleNextNote(w http.ResponseWriter, r *http.Request) {
	if nextNoteModel == nil {
		writeError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}

	var input model.NextNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Could not decode request body: "+err.Error())
		return
	}
	if len(input.Notes) == 0 {
		writeError(w, http.StatusBadRequest, "Need at least one note")
		return
	}

	note, err := nextNoteModel.NextNote(input.Notes)
	if err != nil {
		log.WithError(err).Error("Could not predict next note")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.NextNoteResponse{Note: note})
}
