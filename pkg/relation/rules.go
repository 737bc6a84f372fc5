// Package relation resolves the one-hop relationships between entities.
// The join rules live in a declarative table consumed by a single generic
// routine, so every relationship the dashboard knows about is listed in
// one place and testable on its own.
package relation

import "github.com/vanderheijden86/suiteview/pkg/model"

// Rule describes one join from a source entity type to a target
// collection.
//
// A forward rule scans the target collection for records whose foreign
// key(s) reference the source entity's id. When several keys are listed
// (a site points at a client through ownerId, agentId and tenantId), a
// target record matching on more than one key is still reported once;
// keys are checked in declaration order so the owner relation wins.
//
// A reverse rule follows a foreign key on the source entity itself and
// yields the single target record it points at (a statement's parent
// account group). Dangling keys yield nothing in either direction.
type Rule struct {
	Target      model.EntityType
	ForeignKeys []string
	Label       string
	Reverse     bool
}

// rules is the full join table, keyed by source entity type. Types not
// listed here (and the synthetic section kind) have no relations.
//
// Statements are modeled as siblings of accounts under an account group:
// their one relation points back up at the group, matching the shape the
// hierarchy builder produces.
var rules = map[model.EntityType][]Rule{
	model.TypeClient: {
		{Target: model.TypeSite, ForeignKeys: []string{"ownerId", "agentId", "tenantId"}, Label: "Associated Sites"},
	},
	model.TypeSite: {
		{Target: model.TypeSupply, ForeignKeys: []string{"siteId"}, Label: "Supplies at Site"},
	},
	model.TypeSupply: {
		{Target: model.TypeMeter, ForeignKeys: []string{"supplyId"}, Label: "Meters"},
	},
	model.TypeMeter: {
		{Target: model.TypeChannel, ForeignKeys: []string{"meterId"}, Label: "Channels"},
		{Target: model.TypeItem, ForeignKeys: []string{"meterId"}, Label: "Items"},
	},
	model.TypeRetailer: {
		{Target: model.TypeAccountGroup, ForeignKeys: []string{"retailerId"}, Label: "Account Groups"},
	},
	model.TypeAccountGroup: {
		{Target: model.TypeAccount, ForeignKeys: []string{"accountGroupId"}, Label: "Accounts"},
		{Target: model.TypeStatement, ForeignKeys: []string{"accountGroupId"}, Label: "Statements"},
	},
	model.TypeAccount: {
		{Target: model.TypeInvoice, ForeignKeys: []string{"accountId"}, Label: "Invoices"},
	},
	model.TypeStatement: {
		{Target: model.TypeAccountGroup, ForeignKeys: []string{"accountGroupId"}, Label: "Account Group", Reverse: true},
	},
	model.TypeInvoice: {
		{Target: model.TypeAccount, ForeignKeys: []string{"accountId"}, Label: "Account", Reverse: true},
	},
}

// RulesFor returns the join rules for a source type. Unknown types return
// nil.
func RulesFor(t model.EntityType) []Rule {
	return rules[t]
}

// Targets returns the distinct target collections the given source type's
// rules scan. Used by the store-backed resolver to fetch only what it
// needs.
func Targets(t model.EntityType) []model.EntityType {
	seen := make(map[model.EntityType]bool)
	var out []model.EntityType
	for _, rule := range rules[t] {
		if !seen[rule.Target] {
			seen[rule.Target] = true
			out = append(out, rule.Target)
		}
	}
	return out
}
