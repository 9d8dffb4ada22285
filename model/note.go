package model

// Note is a single timed note event. Times are in seconds.
type Note struct {
	Pitch    int     `json:"pitch"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Velocity uint8   `json:"velocity"`
}

type Song = []Note
