package worker

import (
	"context"

	"github.com/thebtf/flowcheck/internal/vector"
	"github.com/thebtf/flowcheck/pkg/models"
)

// recommendGoals clusters every stored goal and returns the suggestions for
// userID. The normalized goal corpus comes from the index.
func (s *Service) recommendGoals(ctx context.Context, userID int64) ([]string, error) {
	docs, err := s.index.Corpus(ctx, vector.CorpusGoals, s.loadGoals)
	if err != nil {
		return nil, err
	}

	goals := make([]models.Goal, len(docs))
	normalized := make([]string, len(docs))
	for i, d := range docs {
		goals[i] = models.Goal{
			ID:             d.ID,
			UserID:         d.OwnerID,
			Text:           d.Text,
			CreatedAtEpoch: d.CreatedAtEpoch,
		}
		normalized[i] = d.Normalized
	}

	recs := s.clusterer.Load().RecommendNormalized(userID, goals, normalized)
	s.metrics.RecordRecommendations(ctx, len(recs))
	return recs, nil
}

func (s *Service) loadGoals(ctx context.Context) ([]vector.Document, error) {
	goals, err := s.goalStore.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]vector.Document, len(goals))
	for i := range goals {
		docs[i] = vector.Document{
			ID:             goals[i].ID,
			OwnerID:        goals[i].UserID,
			Text:           goals[i].Text,
			CreatedAtEpoch: goals[i].CreatedAtEpoch,
		}
	}
	return docs, nil
}
