package ue

import "testing"

func TestHashName(t *testing.T) {
	// CRC32 over little-endian UTF-32 code points, low 16 bits.
	cases := []string{"None", "MapDataTable", "RowStruct", "", "Exilé"}
	for _, text := range cases {
		h := HashName(text)
		if h != HashName(text) {
			t.Errorf("HashName(%q) not deterministic", text)
		}
	}
	if HashName("MapName") == HashName("mapname") {
		t.Error("case-sensitive hash should differ by case")
	}
}

func TestInterIdempotent(t *testing.T) {
	r := NewNameRegistry()

	a := r.Inter("RowStruct")
	b := r.Inter("RowStruct")
	if !a.Equal(b) || a.Kind() != NameInterred || b.Kind() != NameInterred {
		t.Fatalf("Inter not idempotent: %v vs %v", a, b)
	}

	c := r.Inter("MapName")
	if c.Equal(a) {
		t.Fatal("distinct texts interned to equal names")
	}
}

func TestHardcodedLookup(t *testing.T) {
	r := NewNameRegistry()

	n := r.Lookup("None")
	if n.Kind() != NameHardcoded || !n.Equal(NameNone) {
		t.Fatalf("Lookup(None) = %v, want hardcoded None", n)
	}
	if got := r.Inter("StructProperty"); !got.Equal(NameStructProperty) {
		t.Fatalf("Inter(StructProperty) = %v", got)
	}
}

func TestAdHocEquality(t *testing.T) {
	r := NewNameRegistry()

	ad := r.Lookup("SomeModTable")
	if ad.Kind() != NameAdHoc {
		t.Fatalf("expected ad-hoc, got %v", ad.Kind())
	}

	interred := r.Inter("SomeModTable")
	if !ad.Equal(interred) || !interred.Equal(ad) {
		t.Fatal("ad-hoc vs interred equality must compare by text")
	}
	if ad.Equal(r.Lookup("OtherName")) {
		t.Fatal("ad-hoc names with different text compared equal")
	}
}

func TestLookupDoesNotRetain(t *testing.T) {
	r := NewNameRegistry()

	r.Lookup("Transient")
	first := r.Inter("Retained")
	if first.Kind() != NameInterred || first.index != 0 {
		t.Fatalf("ad-hoc lookup consumed an interred index: %v", first)
	}
}
