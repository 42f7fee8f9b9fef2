package services

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/utils"
)

const (
	maxSuggestions  = 5
	maxSearchScan   = 1000
	minSuggestQuery = 2
)

type SearchCandidateSource interface {
	SearchCandidates(ctx context.Context, limit int) ([]*models.Applicant, error)
}

// ApplicantSearch ranks applicants by fuzzy match on name and email.
type ApplicantSearch struct {
	source SearchCandidateSource
}

func NewApplicantSearch(source SearchCandidateSource) *ApplicantSearch {
	return &ApplicantSearch{source: source}
}

// candidates adapts applicants to fuzzy.Source over folded "name email" text.
type candidates []*models.Applicant

func (c candidates) String(i int) string {
	return utils.FoldText(c[i].Fullname + " " + c[i].Email)
}

func (c candidates) Len() int { return len(c) }

// Suggest returns at most five applicants for query, best match first.
// Queries shorter than two characters return nothing.
func (s *ApplicantSearch) Suggest(ctx context.Context, query string) ([]models.ApplicantSuggestion, error) {
	query = utils.FoldText(strings.TrimSpace(query))
	if len([]rune(query)) < minSuggestQuery {
		return []models.ApplicantSuggestion{}, nil
	}

	list, err := s.source.SearchCandidates(ctx, maxSearchScan)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, candidates(list))
	out := make([]models.ApplicantSuggestion, 0, maxSuggestions)
	for _, m := range matches {
		a := list[m.Index]
		out = append(out, models.ApplicantSuggestion{
			ID:       a.ID.Hex(),
			Fullname: a.Fullname,
			Email:    a.Email,
			Score:    m.Score,
		})
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}
