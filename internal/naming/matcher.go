package naming

import (
	"context"
	"errors"
	"log/slog"

	"performersync/internal/logging"
	"performersync/internal/services"
	"performersync/internal/stashbox"
)

// Searcher is the registry search the matcher needs.
type Searcher interface {
	SearchPerformers(ctx context.Context, term string) ([]stashbox.Performer, error)
}

// Match is an exact registry hit for one candidate.
type Match struct {
	Name      string
	ID        string
	Candidate string
}

// Matcher finds the canonical registry record for a list of candidates.
type Matcher struct {
	registry Searcher
	logger   *slog.Logger
}

// NewMatcher builds a matcher over registry.
func NewMatcher(registry Searcher, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{registry: registry, logger: logger}
}

// Match searches each candidate in order and returns the first result whose
// name or alias equals that candidate exactly (ignoring case). Later
// candidates are not searched once one hits. A search rejected by the
// registry counts as no result for that candidate; a transient failure
// aborts the match.
func (m *Matcher) Match(ctx context.Context, candidates []string) (Match, bool, error) {
	for _, candidate := range candidates {
		results, err := m.registry.SearchPerformers(ctx, candidate)
		if err != nil {
			if errors.Is(err, services.ErrSemanticRejection) {
				logging.WarnWithContext(m.logger, "registry search rejected", "registry_search_rejected",
					logging.String("term", candidate),
					logging.String(logging.FieldErrorHint, "check the registry api key and search term"),
					logging.Error(err),
				)
				continue
			}
			return Match{}, false, err
		}
		for i := range results {
			if results[i].MatchesTerm(candidate) {
				return Match{Name: results[i].Name, ID: results[i].ID, Candidate: candidate}, true, nil
			}
		}
	}
	return Match{}, false, nil
}
