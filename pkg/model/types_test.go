package model

import "testing"

func TestCoerceID(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"string", "s1", "s1"},
		{"nil", nil, ""},
		{"json number", float64(42), "42"},
		{"negative", float64(-7), "-7"},
		{"large integral", float64(123456789), "123456789"},
		{"fractional", 1.5, "1.5"},
		{"int", 9, "9"},
		{"int64", int64(10), "10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoerceID(tc.in); got != tc.want {
				t.Errorf("CoerceID(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSameIDHeterogeneous(t *testing.T) {
	// Numeric and string forms of the same id must match; empty never does.
	if !SameID(float64(1), "1") {
		t.Error("expected 1 (number) to match \"1\" (string)")
	}
	if SameID(nil, "") {
		t.Error("empty ids must never match")
	}
	if SameID("1", "2") {
		t.Error("distinct ids must not match")
	}
}

func TestDisplayNameFallback(t *testing.T) {
	named := Record{"id": float64(3), "name": "Acme"}
	if got := named.DisplayName(TypeClient); got != "Acme" {
		t.Errorf("expected name, got %q", got)
	}

	unnamed := Record{"id": "inv-9"}
	if got := unnamed.DisplayName(TypeInvoice); got != "Invoice #inv-9" {
		t.Errorf("expected synthesized label, got %q", got)
	}

	group := Record{"id": float64(12)}
	if got := group.DisplayName(TypeAccountGroup); got != "Account Group #12" {
		t.Errorf("expected account group label, got %q", got)
	}
}

func TestIsActiveNormalizes(t *testing.T) {
	for _, s := range []string{"active", "Active", "ACTIVE", " active "} {
		if !IsActive(s) {
			t.Errorf("expected %q to be active", s)
		}
	}
	for _, s := range []string{"", "inactive", "pending", "closed"} {
		if IsActive(s) {
			t.Errorf("expected %q to be inactive", s)
		}
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	for _, et := range AllTypes() {
		coll := et.Collection()
		if coll == "" {
			t.Fatalf("%s has no collection", et)
		}
		if got := FromCollection(coll); got != et {
			t.Errorf("FromCollection(%q) = %q, want %q", coll, got, et)
		}
	}
	if FromCollection("unknowns") != "" {
		t.Error("unknown collection should map to empty type")
	}
	if TypeSection.Collection() != "" {
		t.Error("section must not have a collection")
	}
}

func TestRefKey(t *testing.T) {
	// Identity is the (type, id) pair: equal ids across collections must
	// produce distinct keys.
	client := Ref{Type: TypeClient, ID: "1"}
	retailer := Ref{Type: TypeRetailer, ID: "1"}
	if client.Key() == retailer.Key() {
		t.Error("refs with equal ids in different collections must not collide")
	}
	if client.Key() != "client-1" {
		t.Errorf("unexpected key %q", client.Key())
	}
}

func TestCollectionsHelpers(t *testing.T) {
	c := Collections{
		TypeSite: {
			{"id": "s1", "status": "Active"},
			{"id": "s2", "status": "inactive"},
		},
	}
	if c.Count(TypeSite) != 2 {
		t.Errorf("expected 2 sites, got %d", c.Count(TypeSite))
	}
	if c.ActiveCount(TypeSite) != 1 {
		t.Errorf("expected 1 active site, got %d", c.ActiveCount(TypeSite))
	}
	if c.Find(TypeSite, "s2") == nil {
		t.Error("expected to find s2")
	}
	if c.Find(TypeSite, "missing") != nil {
		t.Error("expected nil for missing id")
	}
	if c.Count(TypeMeter) != 0 {
		t.Error("missing kinds must read as empty")
	}
}
