package relation

import (
	"context"

	"github.com/vanderheijden86/suiteview/pkg/model"
)

// Group is a named, non-empty bundle of entities related to one source
// entity through a single join rule.
type Group struct {
	Type     model.EntityType `json:"type"`
	Label    string           `json:"label"`
	Entities []model.Record   `json:"entities"`
}

// Resolve computes the related-entity groups for the given entity from
// already-fetched collections. Groups with no matches are omitted
// entirely; unknown entity types yield nil. Matching coerces both sides
// of every foreign-key comparison to strings, since ids arrive as
// numbers or strings depending on the collection's source.
func Resolve(ref model.Ref, collections model.Collections) []Group {
	rec := collections.Find(ref.Type, ref.ID)
	if rec != nil {
		return ResolveRecord(rec, ref.Type, collections)
	}

	// Without the source record only forward rules can run.
	var groups []Group
	for _, rule := range RulesFor(ref.Type) {
		if rule.Reverse {
			continue
		}
		entities := apply(rule, ref, collections.Get(rule.Target))
		if len(entities) == 0 {
			continue
		}
		groups = append(groups, Group{
			Type:     rule.Target,
			Label:    rule.Label,
			Entities: entities,
		})
	}
	return groups
}

// apply runs one forward rule against one target collection.
func apply(rule Rule, ref model.Ref, targets []model.Record) []model.Record {
	if ref.ID == "" {
		return nil
	}

	var out []model.Record
	for _, candidate := range targets {
		for _, key := range rule.ForeignKeys {
			if model.SameID(candidate[key], ref.ID) {
				out = append(out, candidate)
				break // one relation per record, owner key wins
			}
		}
	}
	return out
}

// ResolveRecord is like Resolve but has the source record in hand, which
// additionally enables reverse rules (statement to its account group,
// invoice to its account). Forward-only callers that hold just a ref get
// the same forward groups from Resolve.
func ResolveRecord(rec model.Record, t model.EntityType, collections model.Collections) []Group {
	ref := rec.Ref(t)
	var groups []Group
	for _, rule := range RulesFor(t) {
		var entities []model.Record
		if rule.Reverse {
			entities = applyReverse(rule, rec, collections.Get(rule.Target))
		} else {
			entities = apply(rule, ref, collections.Get(rule.Target))
		}
		if len(entities) == 0 {
			continue
		}
		groups = append(groups, Group{
			Type:     rule.Target,
			Label:    rule.Label,
			Entities: entities,
		})
	}
	return groups
}

// applyReverse follows a foreign key on the source record to the target
// record it names. A dangling or absent key yields nothing.
func applyReverse(rule Rule, rec model.Record, targets []model.Record) []model.Record {
	for _, key := range rule.ForeignKeys {
		want := model.CoerceID(rec[key])
		if want == "" {
			continue
		}
		for _, candidate := range targets {
			if candidate.ID() == want {
				return []model.Record{candidate}
			}
		}
	}
	return nil
}

// Lister is the slice of the entity store the standalone resolver needs.
// Implementations return an empty slice (never an error) on transport or
// shape failures, logging the anomaly themselves.
type Lister interface {
	List(ctx context.Context, t model.EntityType) []model.Record
}

// ResolveFromStore resolves relationships for an entity by fetching only
// the collections its rules scan. For the same entity and data it
// produces exactly the groups ResolveRecord produces from pre-fetched
// collections; a failed fetch simply contributes no matches.
func ResolveFromStore(ctx context.Context, store Lister, rec model.Record, t model.EntityType) []Group {
	collections := make(model.Collections)
	for _, target := range Targets(t) {
		collections[target] = store.List(ctx, target)
	}
	return ResolveRecord(rec, t, collections)
}
