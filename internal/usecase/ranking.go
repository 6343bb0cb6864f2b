package usecase

import (
	"sort"

	"github.com/wielerspel/peloton-api/internal/domain/participant"
)

// competitionRanks assigns standard competition ranking: descending by
// points, ties share a rank, the next distinct value's rank is 1 + the count
// of strictly higher participants (1,1,3,4). Returns placing keyed by
// participant ID.
func competitionRanks(participants []participant.Participant) map[string]int {
	sorted := make([]participant.Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalPoints > sorted[j].TotalPoints
	})

	ranks := make(map[string]int, len(sorted))
	for i, p := range sorted {
		if i > 0 && p.TotalPoints == sorted[i-1].TotalPoints {
			ranks[p.ID] = ranks[sorted[i-1].ID]
			continue
		}
		ranks[p.ID] = i + 1
	}
	return ranks
}

// sequentialRanks assigns plain 1..N ranks by descending points without tie
// sharing. The differential game family ranks this way on purpose.
func sequentialRanks(participants []participant.Participant) map[string]int {
	sorted := make([]participant.Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalPoints > sorted[j].TotalPoints
	})

	ranks := make(map[string]int, len(sorted))
	for i, p := range sorted {
		ranks[p.ID] = i + 1
	}
	return ranks
}
