package namesync

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"performersync/internal/enrich"
	"performersync/internal/logging"
	"performersync/internal/naming"
	"performersync/internal/performer"
	"performersync/internal/services"
	"performersync/internal/stashbox"
	"performersync/internal/textutil"
)

// Plan is the outcome of planning one performer.
type Plan struct {
	Outcome services.Outcome
	Patch   performer.Patch

	OldName  string
	NewName  string
	Match    naming.Match
	Matched  bool
	Fallback bool
	Linked   bool
	Aliases  []string
	URLs     []string
	Enriched []string
}

// Syncer plans updates against a native registry and an optional canonical
// registry.
type Syncer struct {
	native    stashbox.Registry
	canonical stashbox.Registry
	matcher   *naming.Matcher
	logger    *slog.Logger
}

// New builds a syncer. A nil canonical registry limits renames to native
// aliases.
func New(native, canonical stashbox.Registry, logger *slog.Logger) *Syncer {
	logger = logging.NewComponentLogger(logger, "namesync")
	s := &Syncer{native: native, canonical: canonical, logger: logger}
	if canonical != nil {
		s.matcher = naming.NewMatcher(canonical, logger)
	}
	return s
}

// Eligible reports whether rec carries a native registry link.
func (s *Syncer) Eligible(rec *performer.Record) bool {
	return rec.HasEndpoint(s.native.Endpoint())
}

// Plan computes the single update rec needs. Records without a native link
// are skipped as not linked; records already holding more than one link are
// skipped as cross-referenced. A nil error with OutcomeUpdated carries the
// patch to send. ErrNoTranslatableName and ErrNoChangeNeeded are skips; any
// other error fails the record.
func (s *Syncer) Plan(ctx context.Context, rec *performer.Record) (Plan, error) {
	plan := Plan{OldName: rec.Name}
	nativeID, ok := rec.StashIDFor(s.native.Endpoint())
	if !ok {
		plan.Outcome = services.OutcomeSkippedNotLinked
		return plan, nil
	}
	if len(rec.StashIDs) > 1 {
		plan.Outcome = services.OutcomeSkippedMultiID
		s.logger.Debug("performer already cross-referenced",
			logging.String(logging.FieldPerformerID, rec.ID),
			logging.String("name", rec.Name),
			logging.Int("links", len(rec.StashIDs)),
		)
		return plan, nil
	}

	native, err := s.native.FindPerformer(ctx, nativeID)
	if err != nil {
		plan.Outcome = services.OutcomeError
		return plan, err
	}
	candidates, err := naming.Candidates(native.Aliases, native.Name, rec.Name)
	if err != nil {
		plan.Outcome = services.Classify(err)
		return plan, err
	}

	var full *stashbox.Performer
	if s.matcher != nil {
		match, matched, err := s.matcher.Match(ctx, candidates)
		if err != nil {
			plan.Outcome = services.OutcomeError
			return plan, err
		}
		plan.Match, plan.Matched = match, matched
		if matched {
			full, err = s.canonical.FindPerformerFull(ctx, match.ID)
			if err != nil {
				if services.IsRetryable(err) || errors.Is(err, context.Canceled) {
					plan.Outcome = services.OutcomeError
					return plan, err
				}
				logging.WarnWithContext(s.logger, "canonical profile unavailable", "canonical_profile_unavailable",
					logging.String(logging.FieldPerformerID, rec.ID),
					logging.String("canonical_id", match.ID),
					logging.String(logging.FieldImpact, "renamed and linked without enrichment"),
					logging.Error(err),
				)
				full = nil
			}
		}
	}

	newName := candidates[0]
	if plan.Matched {
		newName = plan.Match.Name
	}
	plan.NewName = newName
	nameChanged := !textutil.EqualFold(newName, rec.Name)
	plan.Fallback = !plan.Matched && nameChanged

	aliases := append([]string(nil), rec.AliasList...)
	if rec.Name != "" && !slices.Contains(aliases, rec.Name) {
		aliases = append(aliases, rec.Name)
	}
	aliases = withoutFold(aliases, newName)
	if full != nil {
		plan.Aliases = performer.MergeAliases(full.Aliases, aliases, rec.Name, newName)
		aliases = append(aliases, plan.Aliases...)
	}
	aliases = textutil.DedupeFold(aliases)

	links := performer.CopyStashIDs(rec.StashIDs)
	if plan.Matched && !rec.HasEndpoint(s.canonical.Endpoint()) {
		links = append(links, performer.StashID{Endpoint: s.canonical.Endpoint(), StashID: plan.Match.ID})
		plan.Linked = true
	}

	var enrichment performer.Patch
	if full != nil {
		enrichment = enrich.Fields(full, rec)
		plan.Enriched = enrichment.Fields()
		plan.URLs = performer.MergeURLs(full.URLList(), rec)
	}

	if !nameChanged && !plan.Linked && enrichment.IsEmpty() && len(plan.Aliases) == 0 && len(plan.URLs) == 0 {
		plan.Outcome = services.OutcomeSkippedNoChange
		return plan, services.Wrap(services.ErrNoChangeNeeded, "namesync", "plan", rec.Name, nil)
	}

	patch := performer.Patch{
		ID:        rec.ID,
		Name:      performer.Str(newName),
		AliasList: aliases,
		StashIDs:  links,
	}
	patch.Merge(enrichment)
	if len(plan.URLs) > 0 {
		patch.URLs = append(append([]string(nil), rec.URLs...), plan.URLs...)
	}
	plan.Patch = patch
	plan.Outcome = services.OutcomeUpdated

	attrs := []logging.Attr{
		logging.String(logging.FieldPerformerID, rec.ID),
		logging.String("from", rec.Name),
		logging.String("to", newName),
		logging.Bool("canonical_match", plan.Matched),
	}
	if plan.Matched {
		attrs = append(attrs, logging.String("canonical_id", plan.Match.ID))
	}
	if len(plan.Enriched) > 0 {
		attrs = append(attrs, logging.Strings("enriched", plan.Enriched))
	}
	s.logger.Info("performer update planned", logging.Args(attrs...)...)
	return plan, nil
}

func withoutFold(values []string, drop string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !textutil.EqualFold(v, drop) {
			out = append(out, v)
		}
	}
	return out
}
