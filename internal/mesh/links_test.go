package mesh

import (
	"errors"
	"testing"
)

type testNode string

func (n testNode) NodeID() string { return string(n) }

func TestRegistry_LinkAndQuery(t *testing.T) {
	r := NewRegistry()
	a, b := testNode("a"), testNode("b")

	r.Link("owns", a, b)
	if !r.HasLink("owns", a, b) {
		t.Fatalf("expected link present")
	}
	// Directed: reverse is not implied.
	if r.HasLink("owns", b, a) {
		t.Fatalf("links must be directed")
	}

	linked := r.Linked("owns", a)
	if len(linked) != 1 || linked[0].NodeID() != "b" {
		t.Fatalf("expected [b], got %v", linked)
	}
}

func TestRegistry_LinkIdempotent(t *testing.T) {
	r := NewRegistry()
	a, b := testNode("a"), testNode("b")

	r.Link("owns", a, b)
	r.Link("owns", a, b)
	if got := r.Linked("owns", a); len(got) != 1 {
		t.Fatalf("duplicate Link must not duplicate the relation, got %d", len(got))
	}
}

func TestRegistry_UnlinkMissing(t *testing.T) {
	r := NewRegistry()
	a, b := testNode("a"), testNode("b")

	err := r.Unlink("owns", a, b)
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}

	r.Link("owns", a, b)
	if err := r.Unlink("owns", a, b); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if r.HasLink("owns", a, b) {
		t.Fatalf("link survived Unlink")
	}
}

func TestRegistry_LinkedSortedByID(t *testing.T) {
	r := NewRegistry()
	a := testNode("a")

	r.Link("near", a, testNode("z"))
	r.Link("near", a, testNode("m"))
	r.Link("near", a, testNode("b"))

	got := r.Linked("near", a)
	want := []string{"b", "m", "z"}
	for i, n := range got {
		if n.NodeID() != want[i] {
			t.Fatalf("order mismatch at %d: got %s want %s", i, n.NodeID(), want[i])
		}
	}
}

func TestRegistry_LinkNames(t *testing.T) {
	r := NewRegistry()
	a, b := testNode("a"), testNode("b")

	r.Link("owns", a, b)
	r.Link("near", a, b)
	names := r.LinkNames()
	if len(names) != 2 || names[0] != "near" || names[1] != "owns" {
		t.Fatalf("expected [near owns], got %v", names)
	}

	// Fully unlinked names drop out.
	if err := r.Unlink("near", a, b); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	names = r.LinkNames()
	if len(names) != 1 || names[0] != "owns" {
		t.Fatalf("expected [owns], got %v", names)
	}
}
