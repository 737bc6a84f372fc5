package relation

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/suiteview/pkg/model"
)

func TestResolveNoMatches(t *testing.T) {
	collections := model.Collections{
		model.TypeClient: {{"id": "C1", "name": "Acme"}},
		model.TypeSite:   {{"id": "s1", "ownerId": "C9"}},
	}

	groups := Resolve(model.Ref{Type: model.TypeClient, ID: "C1"}, collections)
	if len(groups) != 0 {
		t.Errorf("expected no groups for client without sites, got %d", len(groups))
	}
}

func TestResolveUnknownType(t *testing.T) {
	groups := Resolve(model.Ref{Type: "widget", ID: "1"}, model.Collections{})
	if groups != nil {
		t.Errorf("unknown type must yield nil, got %v", groups)
	}
}

func TestResolveSectionHasNoRelations(t *testing.T) {
	groups := Resolve(model.Ref{Type: model.TypeSection, ID: "-1"}, model.Collections{})
	if groups != nil {
		t.Errorf("section nodes must have no relations, got %v", groups)
	}
}

func TestResolveSiteReportedOnceWhenAllKeysEqual(t *testing.T) {
	collections := model.Collections{
		model.TypeSite: {
			{"id": "s1", "name": "HQ", "ownerId": "C1", "agentId": "C1", "tenantId": "C1"},
		},
	}

	groups := Resolve(model.Ref{Type: model.TypeClient, ID: "C1"}, collections)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0].Entities) != 1 {
		t.Errorf("site matching on all three keys must be reported once, got %d entries", len(groups[0].Entities))
	}
}

func TestResolveSiteVisibleToOwnerAndAgent(t *testing.T) {
	collections := model.Collections{
		model.TypeSite: {
			{"id": "s1", "ownerId": "C1", "agentId": "C2", "tenantId": "C1"},
		},
	}

	forOwner := Resolve(model.Ref{Type: model.TypeClient, ID: "C1"}, collections)
	if len(forOwner) != 1 || len(forOwner[0].Entities) != 1 {
		t.Fatalf("owner C1 should see the site once, got %v", forOwner)
	}

	forAgent := Resolve(model.Ref{Type: model.TypeClient, ID: "C2"}, collections)
	if len(forAgent) != 1 || len(forAgent[0].Entities) != 1 {
		t.Fatalf("agent C2 should see the site via the agent relation, got %v", forAgent)
	}
}

func TestResolveCoercesHeterogeneousIDs(t *testing.T) {
	// The supply's siteId arrives as a JSON number while the site id is
	// a string; they must still join.
	collections := model.Collections{
		model.TypeSupply: {
			{"id": "sp1", "siteId": float64(12)},
		},
	}

	groups := Resolve(model.Ref{Type: model.TypeSite, ID: "12"}, collections)
	if len(groups) != 1 || len(groups[0].Entities) != 1 {
		t.Fatalf("expected numeric siteId to match string id, got %v", groups)
	}
}

func TestResolveMeterEmitsChannelsAndItems(t *testing.T) {
	collections := model.Collections{
		model.TypeChannel: {
			{"id": "ch1", "meterId": "m1"},
			{"id": "ch2", "meterId": "m1"},
		},
		model.TypeItem: {
			{"id": "it1", "meterId": "m1"},
		},
	}

	groups := Resolve(model.Ref{Type: model.TypeMeter, ID: "m1"}, collections)
	if len(groups) != 2 {
		t.Fatalf("expected channel and item groups, got %d", len(groups))
	}
	if groups[0].Type != model.TypeChannel || len(groups[0].Entities) != 2 {
		t.Errorf("first group should be 2 channels, got %s x%d", groups[0].Type, len(groups[0].Entities))
	}
	if groups[1].Type != model.TypeItem || len(groups[1].Entities) != 1 {
		t.Errorf("second group should be 1 item, got %s x%d", groups[1].Type, len(groups[1].Entities))
	}
}

func TestResolveMeterOmitsEmptyItemGroup(t *testing.T) {
	collections := model.Collections{
		model.TypeChannel: {{"id": "ch1", "meterId": "m1"}},
		model.TypeItem:    {{"id": "it1", "meterId": "other"}},
	}

	groups := Resolve(model.Ref{Type: model.TypeMeter, ID: "m1"}, collections)
	if len(groups) != 1 {
		t.Fatalf("zero-match groups must be omitted, got %d groups", len(groups))
	}
	if groups[0].Type != model.TypeChannel {
		t.Errorf("expected channels group, got %s", groups[0].Type)
	}
}

func TestResolveStatementPointsAtAccountGroup(t *testing.T) {
	// Statements are siblings of accounts under an account group, so the
	// statement's one relation is the group it belongs to.
	collections := model.Collections{
		model.TypeAccountGroup: {{"id": "g1", "name": "North Island"}},
		model.TypeStatement:    {{"id": "st1", "accountGroupId": "g1"}},
	}

	groups := ResolveRecord(collections.Get(model.TypeStatement)[0], model.TypeStatement, collections)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Type != model.TypeAccountGroup || len(groups[0].Entities) != 1 {
		t.Fatalf("expected the parent account group, got %v", groups[0])
	}
	if groups[0].Entities[0].ID() != "g1" {
		t.Errorf("expected group g1, got %s", groups[0].Entities[0].ID())
	}
}

func TestResolveStatementDanglingGroup(t *testing.T) {
	collections := model.Collections{
		model.TypeStatement: {{"id": "st1", "accountGroupId": "gone"}},
	}
	groups := ResolveRecord(collections.Get(model.TypeStatement)[0], model.TypeStatement, collections)
	if len(groups) != 0 {
		t.Errorf("dangling reverse key must yield no groups, got %v", groups)
	}
}

func TestResolveLooksUpSourceRecordForReverseRules(t *testing.T) {
	// Resolve with just a ref still runs reverse rules when the source
	// record is present in the collections.
	collections := model.Collections{
		model.TypeAccount: {{"id": "a1", "name": "Acct"}},
		model.TypeInvoice: {{"id": "i1", "accountId": "a1"}},
	}

	groups := Resolve(model.Ref{Type: model.TypeInvoice, ID: "i1"}, collections)
	if len(groups) != 1 || groups[0].Type != model.TypeAccount {
		t.Fatalf("expected the invoice's account, got %v", groups)
	}
}

// memoryLister serves pre-canned collections through the store interface.
type memoryLister struct {
	collections model.Collections
	calls       []model.EntityType
}

func (m *memoryLister) List(_ context.Context, t model.EntityType) []model.Record {
	m.calls = append(m.calls, t)
	return m.collections.Get(t)
}

func TestResolveFromStoreMatchesPrefetched(t *testing.T) {
	collections := model.Collections{
		model.TypeSite: {
			{"id": "s1", "ownerId": "C1"},
			{"id": "s2", "agentId": "C1"},
			{"id": "s3", "ownerId": "C2"},
		},
	}
	client := model.Record{"id": "C1", "name": "Acme"}

	lister := &memoryLister{collections: collections}
	fromStore := ResolveFromStore(context.Background(), lister, client, model.TypeClient)
	prefetched := ResolveRecord(client, model.TypeClient, collections)

	if !reflect.DeepEqual(fromStore, prefetched) {
		t.Errorf("store-backed and pre-fetched resolution disagree:\n%v\nvs\n%v", fromStore, prefetched)
	}
	if len(lister.calls) != 1 || lister.calls[0] != model.TypeSite {
		t.Errorf("expected exactly one fetch of sites, got %v", lister.calls)
	}
}

func TestResolveFromStoreFailedFetchYieldsEmpty(t *testing.T) {
	// A store that returns nothing (its contract on failure) produces an
	// empty relation set, not an error.
	lister := &memoryLister{collections: model.Collections{}}
	groups := ResolveFromStore(context.Background(), lister, model.Record{"id": "C1"}, model.TypeClient)
	if len(groups) != 0 {
		t.Errorf("expected empty relation set, got %v", groups)
	}
}

// TestResolveEveryGroupEntityReferencesSource is a property test: for
// random site collections, every site reported for a client actually
// references that client through at least one of the three keys, every
// group is non-empty, and no site is reported twice.
func TestResolveEveryGroupEntityReferencesSource(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		clientIDs := []string{"C1", "C2", "C3"}
		n := rapid.IntRange(0, 12).Draw(rt, "sites")

		var sites []model.Record
		for i := 0; i < n; i++ {
			site := model.Record{"id": fmt.Sprintf("s%d", i)}
			for _, key := range []string{"ownerId", "agentId", "tenantId"} {
				if rapid.Bool().Draw(rt, key+"set") {
					site[key] = rapid.SampledFrom(clientIDs).Draw(rt, key)
				}
			}
			sites = append(sites, site)
		}
		collections := model.Collections{model.TypeSite: sites}

		for _, cid := range clientIDs {
			groups := Resolve(model.Ref{Type: model.TypeClient, ID: cid}, collections)
			for _, g := range groups {
				if len(g.Entities) == 0 {
					rt.Fatalf("empty group emitted for %s", cid)
				}
				seen := make(map[string]bool)
				for _, site := range g.Entities {
					if seen[site.ID()] {
						rt.Fatalf("site %s reported twice for %s", site.ID(), cid)
					}
					seen[site.ID()] = true
					if !model.SameID(site["ownerId"], cid) &&
						!model.SameID(site["agentId"], cid) &&
						!model.SameID(site["tenantId"], cid) {
						rt.Fatalf("site %s does not reference client %s", site.ID(), cid)
					}
				}
			}
		}
	})
}
