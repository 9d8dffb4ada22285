package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/midilib/featuring"
)

func CreateChordKey(pitches []int) string {
	sorted := append([]int(nil), pitches...)
	sort.Ints(sorted)
	var res string
	for i, pitch := range sorted {
		res += fmt.Sprintf("%v", pitch)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

// GroupFeatured does the same for featured notes, where a zero wait means
// the same onset as the previous note. Start-of-song notes are skipped.
func GroupFeatured(fsong featuring.FeaturedSong) [][]int {
	var res [][]int
	for _, fnote := range fsong {
		if fnote.IsStart() {
			continue
		}
		if len(res) > 0 && fnote.Wait == 0 {
			res[len(res)-1] = append(res[len(res)-1], fnote.Pitch)
			continue
		}
		res = append(res, []int{fnote.Pitch})
	}
	return res
}

// CountChords counts groups of at least two notes by chord key.
func CountChords(fsongs []featuring.FeaturedSong) map[string]int {
	res := make(map[string]int)
	for _, fsong := range fsongs {
		for _, group := range GroupFeatured(fsong) {
			if len(group) < 2 {
				continue
			}
			res[CreateChordKey(group)]++
		}
	}
	return res
}
