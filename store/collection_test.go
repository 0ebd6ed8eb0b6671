package store_test

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"listbot/store"
)

// ============================================================================
// Collection basics
// ============================================================================

func TestCreateAndDeleteList(t *testing.T) {
	c := store.NewCollection()

	c.CreateList("groceries")
	c.CreateList("chores")

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if !c.Has("groceries") {
		t.Error("expected 'groceries' to exist")
	}

	if !c.DeleteList("groceries") {
		t.Error("expected delete to succeed")
	}
	if c.DeleteList("groceries") {
		t.Error("expected second delete to fail")
	}
	if c.Has("groceries") {
		t.Error("expected 'groceries' to be gone")
	}
}

func TestNamesPreserveInsertionOrder(t *testing.T) {
	c := store.NewCollection()
	for _, name := range []string{"zebra", "apple", "mango"} {
		c.CreateList(name)
	}

	names := c.Names()
	want := []string{"zebra", "apple", "mango"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDeleteKeepsRemainingOrder(t *testing.T) {
	c := store.NewCollection()
	for _, name := range []string{"a", "b", "c"} {
		c.CreateList(name)
	}
	c.DeleteList("b")

	names := c.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("Names() = %v, want [a c]", names)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	c := store.NewCollection()
	c.CreateList("Groceries")

	for _, query := range []string{"groceries", "GROCERIES", "Groceries", "gRoCeRiEs"} {
		actual, ok := c.Resolve(query)
		if !ok {
			t.Errorf("Resolve(%q) not found", query)
			continue
		}
		if actual != "Groceries" {
			t.Errorf("Resolve(%q) = %q, want stored casing 'Groceries'", query, actual)
		}
	}

	if _, ok := c.Resolve("missing"); ok {
		t.Error("expected Resolve to fail for unknown name")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	c := store.NewCollection()
	c.CreateList("groceries")
	c.Append("groceries", "milk")

	items := c.Items("groceries")
	items[0] = "mutated"

	if c.Items("groceries")[0] != "milk" {
		t.Error("expected internal state to be isolated from returned slice")
	}
}

func TestRemoveItemFirstOccurrence(t *testing.T) {
	c := store.NewCollection()
	c.CreateList("groceries")
	c.Append("groceries", "milk")
	c.Append("groceries", "bread")

	if !c.RemoveItem("groceries", "milk") {
		t.Fatal("expected remove to succeed")
	}
	if c.RemoveItem("groceries", "milk") {
		t.Error("expected second remove to fail")
	}

	items := c.Items("groceries")
	if len(items) != 1 || items[0] != "bread" {
		t.Errorf("Items() = %v, want [bread]", items)
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := store.NewCollection()
	c.CreateList("groceries")
	c.Append("groceries", "milk")

	clone := c.Clone()
	clone.Append("groceries", "bread")
	clone.CreateList("chores")

	if c.ItemCount("groceries") != 1 {
		t.Error("expected original items to be unaffected by clone mutation")
	}
	if c.Len() != 1 {
		t.Error("expected original lists to be unaffected by clone mutation")
	}
	if !c.Equal(c.Clone()) {
		t.Error("expected fresh clone to compare equal")
	}
	if c.Equal(clone) {
		t.Error("expected diverged clone to compare unequal")
	}
}

// ============================================================================
// YAML round trip
// ============================================================================

func TestMarshalPreservesOrder(t *testing.T) {
	c := store.NewCollection()
	c.CreateList("zebra")
	c.Append("zebra", "stripes")
	c.CreateList("apple")

	data, err := yaml.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	out := string(data)
	if strings.Index(out, "zebra") > strings.Index(out, "apple") {
		t.Errorf("expected insertion order in output, got:\n%s", out)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	c := store.NewCollection()
	c.CreateList("Groceries")
	c.Append("Groceries", "whole milk")
	c.Append("Groceries", "bread")
	c.CreateList("chores")

	data, err := yaml.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	got, err := store.CollectionFromNode(&doc)
	if err != nil {
		t.Fatalf("CollectionFromNode() error = %v", err)
	}

	if !c.Equal(got) {
		t.Errorf("round trip changed the collection: %v vs %v", c.Names(), got.Names())
	}
}

func TestCollectionFromNodeShapes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid mapping", "groceries:\n  - milk\nchores: []\n", false},
		{"null document", "", false},
		{"explicit null", "null\n", false},
		{"null list value", "groceries:\n", false},
		{"root is sequence", "- milk\n- bread\n", true},
		{"root is scalar", "just a string\n", true},
		{"list value is scalar", "groceries: milk\n", true},
		{"list value is mapping", "groceries:\n  milk: 1\n", true},
		{"item is sequence", "groceries:\n  - [nested]\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc yaml.Node
			if err := yaml.Unmarshal([]byte(tt.input), &doc); err != nil {
				t.Fatalf("input does not parse: %v", err)
			}
			_, err := store.CollectionFromNode(&doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("CollectionFromNode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCollectionFromNodeEmptyDocument(t *testing.T) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(""), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	c, err := store.CollectionFromNode(&doc)
	if err != nil {
		t.Fatalf("CollectionFromNode() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty collection, got %d lists", c.Len())
	}
}
