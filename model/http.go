package model

type NextNoteRequest struct {
	Notes []Note `json:"notes"`
}

type NextNoteResponse struct {
	Note Note `json:"note"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
