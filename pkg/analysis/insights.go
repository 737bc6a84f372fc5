// Package analysis inspects the entity reference graph for data
// quality problems: dangling foreign keys, orphaned records and
// fragmented record groups. Output is structured JSON meant for
// scripts and agents, not humans.
package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/suiteview/pkg/model"
	"github.com/vanderheijden86/suiteview/pkg/relation"
)

// sampleCap bounds every list in the output so graphs with thousands
// of broken references stay readable.
const sampleCap = 10

// Insights is the full analysis report.
type Insights struct {
	Collections []CollectionStats `json:"collections"`
	Relations   []RelationStats   `json:"relations"`
	Orphans     OrphanReport      `json:"orphans"`
	Components  ComponentReport   `json:"components"`
	Hubs        []Hub             `json:"hubs,omitempty"`
}

// CollectionStats summarizes one entity collection.
type CollectionStats struct {
	Type   model.EntityType `json:"type"`
	Total  int              `json:"total"`
	Active int              `json:"active"`
}

// RelationStats reports edge health for one foreign key field.
type RelationStats struct {
	Relation string   `json:"relation"` // e.g. "site.ownerId -> client"
	Edges    int      `json:"edges"`
	Dangling int      `json:"dangling"`
	Samples  []string `json:"samples,omitempty"` // keys of records with broken references
}

// OrphanReport lists records no other record references and that
// reference nothing themselves.
type OrphanReport struct {
	Total   int      `json:"total"`
	ByType  []Count  `json:"by_type,omitempty"`
	Samples []string `json:"samples,omitempty"`
}

// Count pairs an entity type with a tally.
type Count struct {
	Type  model.EntityType `json:"type"`
	Count int              `json:"count"`
}

// ComponentReport describes connectivity of the reference graph.
type ComponentReport struct {
	Count   int `json:"count"`
	Largest int `json:"largest"`
}

// Hub is a record many reference paths flow through.
type Hub struct {
	Key   string  `json:"key"`
	Name  string  `json:"name,omitempty"`
	Score float64 `json:"score"`
}

// entityGraph maps records onto gonum node ids so graph algorithms
// can run over them.
type entityGraph struct {
	directed *simple.DirectedGraph
	ids      map[string]int64 // ref key -> node id
	keys     map[int64]string // node id -> ref key
	names    map[int64]string
}

// Analyze builds the reference graph and runs every report.
func Analyze(collections model.Collections) *Insights {
	g := buildGraph(collections)

	return &Insights{
		Collections: collectionStats(collections),
		Relations:   relationStats(collections),
		Orphans:     orphanReport(collections, g),
		Components:  componentReport(g),
		Hubs:        hubs(g),
	}
}

func buildGraph(collections model.Collections) *entityGraph {
	g := &entityGraph{
		directed: simple.NewDirectedGraph(),
		ids:      make(map[string]int64),
		keys:     make(map[int64]string),
		names:    make(map[int64]string),
	}

	// Keys in insertion order keep node ids stable across runs.
	for _, t := range model.AllTypes() {
		for _, rec := range collections[t] {
			g.add(rec.Ref(t), rec.DisplayName(t))
		}
	}

	// One edge per resolvable foreign key, child pointing at parent.
	for _, parent := range model.AllTypes() {
		for _, rule := range relation.RulesFor(parent) {
			if rule.Reverse {
				continue
			}
			for _, child := range collections[rule.Target] {
				childID, ok := g.ids[child.Ref(rule.Target).Key()]
				if !ok {
					continue
				}
				for _, key := range rule.ForeignKeys {
					parentRec := findByID(collections[parent], child[key])
					if parentRec == nil {
						continue
					}
					parentID := g.ids[parentRec.Ref(parent).Key()]
					if childID == parentID {
						continue
					}
					g.directed.SetEdge(g.directed.NewEdge(
						g.directed.Node(childID), g.directed.Node(parentID)))
				}
			}
		}
	}
	return g
}

func (g *entityGraph) add(ref model.Ref, name string) {
	key := ref.Key()
	if _, ok := g.ids[key]; ok {
		return
	}
	node := g.directed.NewNode()
	g.directed.AddNode(node)
	g.ids[key] = node.ID()
	g.keys[node.ID()] = key
	g.names[node.ID()] = name
}

func findByID(records []model.Record, raw any) model.Record {
	id := model.CoerceID(raw)
	if id == "" {
		return nil
	}
	for _, rec := range records {
		if rec.ID() == id {
			return rec
		}
	}
	return nil
}

func collectionStats(collections model.Collections) []CollectionStats {
	stats := make([]CollectionStats, 0, len(model.AllTypes()))
	for _, t := range model.AllTypes() {
		stats = append(stats, CollectionStats{
			Type:   t,
			Total:  collections.Count(t),
			Active: collections.ActiveCount(t),
		})
	}
	return stats
}

func relationStats(collections model.Collections) []RelationStats {
	var stats []RelationStats
	for _, parent := range model.AllTypes() {
		for _, rule := range relation.RulesFor(parent) {
			if rule.Reverse {
				continue
			}
			for _, key := range rule.ForeignKeys {
				rs := RelationStats{
					Relation: fmt.Sprintf("%s.%s -> %s", rule.Target, key, parent),
				}
				for _, child := range collections[rule.Target] {
					raw, present := child[key]
					if !present || model.CoerceID(raw) == "" {
						continue
					}
					if findByID(collections[parent], raw) != nil {
						rs.Edges++
						continue
					}
					rs.Dangling++
					if len(rs.Samples) < sampleCap {
						rs.Samples = append(rs.Samples, child.Ref(rule.Target).Key())
					}
				}
				stats = append(stats, rs)
			}
		}
	}
	return stats
}

func orphanReport(collections model.Collections, g *entityGraph) OrphanReport {
	report := OrphanReport{}
	counts := make(map[model.EntityType]int)

	for _, t := range model.AllTypes() {
		for _, rec := range collections[t] {
			id := g.ids[rec.Ref(t).Key()]
			if g.directed.From(id).Len() > 0 || g.directed.To(id).Len() > 0 {
				continue
			}
			report.Total++
			counts[t]++
			if len(report.Samples) < sampleCap {
				report.Samples = append(report.Samples, rec.Ref(t).Key())
			}
		}
	}

	for _, t := range model.AllTypes() {
		if counts[t] > 0 {
			report.ByType = append(report.ByType, Count{Type: t, Count: counts[t]})
		}
	}
	return report
}

func componentReport(g *entityGraph) ComponentReport {
	// Connectivity ignores edge direction: a client and its invoices
	// belong to the same record group either way.
	undirected := simple.NewUndirectedGraph()
	nodes := g.directed.Nodes()
	for nodes.Next() {
		undirected.AddNode(nodes.Node())
	}
	edges := g.directed.Edges()
	for edges.Next() {
		e := edges.Edge()
		if e.From().ID() != e.To().ID() {
			undirected.SetEdge(undirected.NewEdge(e.From(), e.To()))
		}
	}

	components := topo.ConnectedComponents(undirected)
	report := ComponentReport{Count: len(components)}
	for _, c := range components {
		if len(c) > report.Largest {
			report.Largest = len(c)
		}
	}
	return report
}

func hubs(g *entityGraph) []Hub {
	scores := network.Betweenness(g.directed)

	var ranked []Hub
	for id, score := range scores {
		if score <= 0 {
			continue
		}
		ranked = append(ranked, Hub{Key: g.keys[id], Name: g.names[id], Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Key < ranked[j].Key
	})
	if len(ranked) > sampleCap {
		ranked = ranked[:sampleCap]
	}
	return ranked
}
