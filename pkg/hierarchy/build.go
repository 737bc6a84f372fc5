// Package hierarchy composes the flat entity collections into the two
// navigable trees the dashboard shows: the supply chain (client, site,
// supply, meter, channel/item) and billing (retailer, account group,
// account/statement, invoice).
package hierarchy

import "github.com/vanderheijden86/suiteview/pkg/model"

// Sentinel ids for the two synthetic section roots. Negative so they can
// never collide with a real record id.
const (
	SupplyChainSectionID = "-1"
	BillingSectionID     = "-2"

	SupplyChainSectionName = "Supply Chain"
	BillingSectionName     = "Billing & Accounts"
)

// Node is an ephemeral view object over one entity record. It references
// the record through Metadata but never owns or mutates it.
type Node struct {
	ID       string
	Name     string
	Type     model.EntityType
	Status   string
	Metadata model.Record
	Count    int
	Children []*Node
}

// Ref returns the node's composite identity.
func (n *Node) Ref() model.Ref {
	return model.Ref{Type: n.Type, ID: n.ID}
}

// Key returns the node's "type-id" expansion key.
func (n *Node) Key() string {
	return n.Ref().Key()
}

// IsSection reports whether the node is a synthetic grouping root, which
// is never selectable as an entity.
func (n *Node) IsSection() bool {
	return n.Type.IsSection()
}

// Forest is the full navigation tree: the two section roots wrapping the
// supply-chain and billing subtrees.
type Forest struct {
	Sections []*Node
}

// SupplyChain returns the supply-chain section node.
func (f Forest) SupplyChain() *Node {
	return f.section(SupplyChainSectionID)
}

// Billing returns the billing section node.
func (f Forest) Billing() *Node {
	return f.section(BillingSectionID)
}

func (f Forest) section(id string) *Node {
	for _, s := range f.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Walk visits every node in the forest depth-first, parents before
// children.
func (f Forest) Walk(visit func(n *Node, depth int)) {
	for _, s := range f.Sections {
		Walk(s, visit)
	}
}

// Walk visits a subtree depth-first, parents before children. A nil
// root is a no-op.
func Walk(root *Node, visit func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		visit(n, depth)
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	if root != nil {
		walk(root, 0)
	}
}

// Build composes the forest from the flat collections. It is a pure
// function of its input: identical collections produce structurally
// identical forests, with children in parent-defined order (source order
// within a level; channels before items under a meter, accounts before
// statements under an account group). Dangling foreign keys simply
// contribute no children.
func Build(collections model.Collections) Forest {
	supplyChain := buildSupplyChain(collections)
	billing := buildBilling(collections)

	return Forest{Sections: []*Node{
		{
			ID:       SupplyChainSectionID,
			Name:     SupplyChainSectionName,
			Type:     model.TypeSection,
			Count:    len(supplyChain),
			Children: supplyChain,
		},
		{
			ID:       BillingSectionID,
			Name:     BillingSectionName,
			Type:     model.TypeSection,
			Count:    len(billing),
			Children: billing,
		},
	}}
}

func buildSupplyChain(collections model.Collections) []*Node {
	var roots []*Node
	for _, client := range collections.Get(model.TypeClient) {
		node := newNode(client, model.TypeClient)
		for _, site := range childrenOfClient(client, collections.Get(model.TypeSite)) {
			node.Children = append(node.Children, buildSite(site, collections))
		}
		node.Count = len(node.Children)
		roots = append(roots, node)
	}
	return roots
}

// childrenOfClient returns the sites related to a client through any of
// the three client relations. A site matching on more than one relation
// appears once.
func childrenOfClient(client model.Record, sites []model.Record) []model.Record {
	id := client.ID()
	var out []model.Record
	for _, site := range sites {
		if model.SameID(site["ownerId"], id) ||
			model.SameID(site["agentId"], id) ||
			model.SameID(site["tenantId"], id) {
			out = append(out, site)
		}
	}
	return out
}

func buildSite(site model.Record, collections model.Collections) *Node {
	node := newNode(site, model.TypeSite)
	for _, supply := range matching(collections.Get(model.TypeSupply), "siteId", site.ID()) {
		node.Children = append(node.Children, buildSupply(supply, collections))
	}
	node.Count = len(node.Children)
	return node
}

func buildSupply(supply model.Record, collections model.Collections) *Node {
	node := newNode(supply, model.TypeSupply)
	for _, meter := range matching(collections.Get(model.TypeMeter), "supplyId", supply.ID()) {
		node.Children = append(node.Children, buildMeter(meter, collections))
	}
	node.Count = len(node.Children)
	return node
}

func buildMeter(meter model.Record, collections model.Collections) *Node {
	node := newNode(meter, model.TypeMeter)
	for _, channel := range matching(collections.Get(model.TypeChannel), "meterId", meter.ID()) {
		node.Children = append(node.Children, newNode(channel, model.TypeChannel))
	}
	for _, item := range matching(collections.Get(model.TypeItem), "meterId", meter.ID()) {
		node.Children = append(node.Children, newNode(item, model.TypeItem))
	}
	node.Count = len(node.Children)
	return node
}

func buildBilling(collections model.Collections) []*Node {
	var roots []*Node
	for _, retailer := range collections.Get(model.TypeRetailer) {
		node := newNode(retailer, model.TypeRetailer)
		for _, group := range matching(collections.Get(model.TypeAccountGroup), "retailerId", retailer.ID()) {
			node.Children = append(node.Children, buildAccountGroup(group, collections))
		}
		node.Count = len(node.Children)
		roots = append(roots, node)
	}
	return roots
}

func buildAccountGroup(group model.Record, collections model.Collections) *Node {
	node := newNode(group, model.TypeAccountGroup)
	for _, account := range matching(collections.Get(model.TypeAccount), "accountGroupId", group.ID()) {
		node.Children = append(node.Children, buildAccount(account, collections))
	}
	for _, statement := range matching(collections.Get(model.TypeStatement), "accountGroupId", group.ID()) {
		node.Children = append(node.Children, newNode(statement, model.TypeStatement))
	}
	node.Count = len(node.Children)
	return node
}

func buildAccount(account model.Record, collections model.Collections) *Node {
	node := newNode(account, model.TypeAccount)
	for _, invoice := range matching(collections.Get(model.TypeInvoice), "accountId", account.ID()) {
		node.Children = append(node.Children, newNode(invoice, model.TypeInvoice))
	}
	node.Count = len(node.Children)
	return node
}

// matching filters records whose foreign key references the parent id.
func matching(records []model.Record, key, parentID string) []model.Record {
	var out []model.Record
	for _, r := range records {
		if model.SameID(r[key], parentID) {
			out = append(out, r)
		}
	}
	return out
}

func newNode(rec model.Record, t model.EntityType) *Node {
	return &Node{
		ID:       rec.ID(),
		Name:     rec.DisplayName(t),
		Type:     t,
		Status:   rec.Status(),
		Metadata: rec,
	}
}
