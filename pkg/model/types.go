// Package model defines the entity kinds served by the Suitespace back
// office API and the loosely-typed record shape they share.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EntityType identifies one of the fixed entity kinds. The value is the
// singular lower-camel form used for tree nodes and selection keys
// (e.g. "accountGroup").
type EntityType string

const (
	TypeClient       EntityType = "client"
	TypeSite         EntityType = "site"
	TypeSupply       EntityType = "supply"
	TypeMeter        EntityType = "meter"
	TypeChannel      EntityType = "channel"
	TypeItem         EntityType = "item"
	TypeRetailer     EntityType = "retailer"
	TypeAccountGroup EntityType = "accountGroup"
	TypeAccount      EntityType = "account"
	TypeStatement    EntityType = "statement"
	TypeInvoice      EntityType = "invoice"

	// TypeSection is the synthetic grouping node kind used by the
	// navigation forest. It never corresponds to an API collection.
	TypeSection EntityType = "section"
)

// AllTypes lists every real entity kind in fetch order. Section is
/// excluded: it has no backing collection.
func AllTypes() []EntityType {
	return []EntityType{
		TypeClient, TypeSite, TypeSupply, TypeMeter, TypeChannel, TypeItem,
		TypeRetailer, TypeAccountGroup, TypeAccount, TypeStatement, TypeInvoice,
	}
}

// IsValid returns true if the type is one of the recognized entity kinds.
func (t EntityType) IsValid() bool {
	switch t {
	case TypeClient, TypeSite, TypeSupply, TypeMeter, TypeChannel, TypeItem,
		TypeRetailer, TypeAccountGroup, TypeAccount, TypeStatement, TypeInvoice,
		TypeSection:
		return true
	}
	return false
}

// IsSection reports whether the type is the synthetic grouping kind.
func (t EntityType) IsSection() bool {
	return t == TypeSection
}

// Collection returns the plural REST path segment for the type
// ("account-groups" is dashed on the wire).
func (t EntityType) Collection() string {
	switch t {
	case TypeClient:
		return "clients"
	case TypeSite:
		return "sites"
	case TypeSupply:
		return "supplies"
	case TypeMeter:
		return "meters"
	case TypeChannel:
		return "channels"
	case TypeItem:
		return "items"
	case TypeRetailer:
		return "retailers"
	case TypeAccountGroup:
		return "account-groups"
	case TypeAccount:
		return "accounts"
	case TypeStatement:
		return "statements"
	case TypeInvoice:
		return "invoices"
	}
	return ""
}

// FromCollection maps a plural REST path segment back to its entity type.
// Unknown names return "" (not valid).
func FromCollection(name string) EntityType {
	for _, t := range AllTypes() {
		if t.Collection() == name {
			return t
		}
	}
	return ""
}

// Label returns the human-readable display name for the type.
func (t EntityType) Label() string {
	switch t {
	case TypeAccountGroup:
		return "Account Group"
	case "":
		return ""
	default:
		return strings.ToUpper(string(t[0])) + string(t[1:])
	}
}

// Record is a loosely-typed entity as returned by the API. The only field
// every record carries is "id"; everything else is optional and may be
// typed differently across records of the same collection, so access goes
// through the coercing helpers below.
type Record map[string]any

// ID returns the record's identifier coerced to its canonical string form.
func (r Record) ID() string {
	return CoerceID(r["id"])
}

// StringField returns the named field coerced to a string, or "" when the
// field is absent or not representable.
func (r Record) StringField(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	default:
		return CoerceID(v)
	}
}

// Name returns the record's display label.
func (r Record) Name() string {
	return r.StringField("name")
}

// Status returns the record's status string verbatim (may be empty).
func (r Record) Status() string {
	return r.StringField("status")
}

// DisplayName returns the record's name, falling back to "<Type> #<id>"
// when no name field is present.
func (r Record) DisplayName(t EntityType) string {
	if name := r.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%s #%s", t.Label(), r.ID())
}

// Ref returns the record's composite identity under the given type.
func (r Record) Ref(t EntityType) Ref {
	return Ref{Type: t, ID: r.ID()}
}

// stringer matches encoding/json's and goccy/go-json's Number types
// without importing either here.
type stringer interface{ String() string }

// CoerceID converts an id value of any wire type to a canonical string.
// Ids arrive as JSON strings or numbers depending on the collection's
// source, and matching must treat 1 and "1" as the same id. Integral
// floats render without a decimal point.
func CoerceID(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return CoerceID(float64(n))
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case stringer:
		return n.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SameID reports whether two id values denote the same identifier after
// coercion. Empty ids never match anything.
func SameID(a, b any) bool {
	as, bs := CoerceID(a), CoerceID(b)
	return as != "" && as == bs
}

// StatusActive is the canonical normalized form of an active record.
const StatusActive = "active"

// NormalizeStatus lower-cases and trims a raw status string so "Active"
// and "active" compare equal everywhere.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsActive reports whether a raw status string denotes an active record.
// Anything other than "active" (any case) counts as inactive.
func IsActive(status string) bool {
	return NormalizeStatus(status) == StatusActive
}

// Ref is the composite identity of an entity: the pair (type, id).
// Cross-collection ids are not unique, so the pair is the only safe key
// for selection and expansion state.
type Ref struct {
	Type EntityType
	ID   string
}

// Key renders the ref in the "type-id" form used for expansion state.
func (r Ref) Key() string {
	return string(r.Type) + "-" + r.ID
}

// IsZero reports whether the ref is empty.
func (r Ref) IsZero() bool {
	return r.Type == "" && r.ID == ""
}

// Collections holds the flat record lists for every entity kind, keyed by
// type. Missing kinds read as nil slices.
type Collections map[EntityType][]Record

// Get returns the records of the given kind.
func (c Collections) Get(t EntityType) []Record {
	return c[t]
}

// Count returns the number of records of the given kind.
func (c Collections) Count(t EntityType) int {
	return len(c[t])
}

// ActiveCount returns how many records of the given kind carry an active
// status.
func (c Collections) ActiveCount(t EntityType) int {
	n := 0
	for _, r := range c[t] {
		if IsActive(r.Status()) {
			n++
		}
	}
	return n
}

// Find returns the record with the given id in the given kind, or nil.
func (c Collections) Find(t EntityType, id string) Record {
	for _, r := range c[t] {
		if r.ID() == id {
			return r
		}
	}
	return nil
}
