package dedup

import (
	"context"
	"log/slog"

	"performersync/internal/catalog"
	"performersync/internal/logging"
	"performersync/internal/performer"
	"performersync/internal/services"
)

// SelectKeeper returns the position of the most complete member. Ties go to
// the earliest member.
func SelectKeeper(members []performer.Record) int {
	best, bestScore := 0, -1
	for i := range members {
		if score := performer.Score(&members[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// FoldPatch returns the update that absorbs dup into keeper: dup's name and
// aliases become keeper aliases, links are unioned, blank scalars are filled,
// body mods and urls gain dup's entries. Keeper's name never changes.
func FoldPatch(keeper, dup *performer.Record) performer.Patch {
	p := performer.FillScalars(keeper, dup)
	p.ID = keeper.ID

	incoming := append([]string{dup.Name}, dup.AliasList...)
	if added := performer.MergeAliases(incoming, keeper.AliasList, keeper.Name, keeper.Name); len(added) > 0 {
		p.AliasList = append(append([]string(nil), keeper.AliasList...), added...)
	}

	if links, added := performer.UnionStashIDs(keeper.StashIDs, dup.StashIDs); added {
		p.StashIDs = links
	}

	if merged := performer.MergeBodyMods(dup.Tattoos, keeper.Tattoos); merged != "" {
		p.Tattoos = performer.Str(merged)
	}
	if merged := performer.MergeBodyMods(dup.Piercings, keeper.Piercings); merged != "" {
		p.Piercings = performer.Str(merged)
	}

	view := keeper
	var urls []string
	if performer.IsBlank(keeper.URL) && !performer.IsBlank(dup.URL) {
		p.URL = performer.Str(dup.URL)
		view = keeper.Clone()
		view.URL = dup.URL
	} else {
		urls = append(urls, dup.URL)
	}
	urls = append(urls, dup.URLs...)
	if added := performer.MergeURLs(urls, view); len(added) > 0 {
		p.URLs = append(append([]string(nil), keeper.URLs...), added...)
	}
	return p
}

// Merge is the outcome of merging one group.
type Merge struct {
	Signal   Signal
	Key      string
	KeeperID string
	Absorbed []string
	Moved    int
	Keeper   performer.Record
}

// Merger executes group merges against a catalog store.
type Merger struct {
	store  catalog.Store
	logger *slog.Logger
}

// NewMerger builds a merger writing to store.
func NewMerger(store catalog.Store, logger *slog.Logger) *Merger {
	return &Merger{store: store, logger: logging.NewComponentLogger(logger, "dedup")}
}

// MergeGroup keeps the most complete member and absorbs the rest in member
// order. Each absorbed record's fields are applied to the keeper (and
// mirrored in memory so later members merge against the updated keeper), its
// associations are repointed, and it is deleted. The first failing call
// stops the group; writes already made are not rolled back and the returned
// Merge reflects them.
func (m *Merger) MergeGroup(ctx context.Context, g Group) (Merge, error) {
	k := SelectKeeper(g.Members)
	keeper := g.Members[k].Clone()
	result := Merge{Signal: g.Signal, Key: g.Key, KeeperID: keeper.ID}
	logger := m.logger.With(
		logging.String("signal", string(g.Signal)),
		logging.String("keeper_id", keeper.ID),
		logging.String("keeper_name", keeper.Name),
	)

	for i := range g.Members {
		if i == k {
			continue
		}
		dup := &g.Members[i]
		patch := FoldPatch(keeper, dup)
		if !patch.IsEmpty() {
			if err := m.store.UpdatePerformer(ctx, patch); err != nil {
				result.Keeper = *keeper
				return result, services.Wrap(services.ErrTransient, "dedup", "update keeper", "absorb "+dup.ID+" into "+keeper.ID, err)
			}
			patch.Apply(keeper)
		}

		moved, err := m.reassign(ctx, dup.ID, keeper.ID)
		result.Moved += moved
		if err != nil {
			result.Keeper = *keeper
			return result, services.Wrap(services.ErrTransient, "dedup", "reassign associations", "from "+dup.ID+" to "+keeper.ID, err)
		}

		if err := m.store.DeletePerformer(ctx, dup.ID); err != nil {
			result.Keeper = *keeper
			return result, services.Wrap(services.ErrTransient, "dedup", "delete duplicate", dup.ID, err)
		}
		result.Absorbed = append(result.Absorbed, dup.ID)
		logger.Info("duplicate merged",
			logging.String("duplicate_id", dup.ID),
			logging.String("duplicate_name", dup.Name),
			logging.Strings("fields", patch.Fields()),
			logging.Int("associations_moved", moved),
		)
	}
	result.Keeper = *keeper
	return result, nil
}

func (m *Merger) reassign(ctx context.Context, from, to string) (int, error) {
	moved := 0
	for _, kind := range catalog.Kinds() {
		assocs, err := m.store.FindAssociations(ctx, kind, from)
		if err != nil {
			return moved, err
		}
		for _, assoc := range assocs {
			ids, changed := catalog.ReplacePerformer(assoc.PerformerIDs, from, to)
			if !changed {
				continue
			}
			if err := m.store.RewriteAssociation(ctx, kind, assoc.ID, ids); err != nil {
				return moved, err
			}
			moved++
		}
	}
	return moved, nil
}
