package schema

import "testing"

func TestStorageKey(t *testing.T) {
	tests := map[string]string{
		"Barra":             "auditoria__Barra",
		"Salvador Shopping": "auditoria__Salvador_Shopping",
		"Recife  \tRiomar":  "auditoria__Recife_Riomar",
	}
	for loc, want := range tests {
		if got := StorageKey(loc); got != want {
			t.Errorf("StorageKey(%q) = %q, want %q", loc, got, want)
		}
	}
}

func TestLocationFromKey(t *testing.T) {
	for _, loc := range Locations {
		got, ok := LocationFromKey(StorageKey(loc))
		if !ok || got != loc {
			t.Errorf("LocationFromKey(StorageKey(%q)) = %q, %v", loc, got, ok)
		}
	}
	if _, ok := LocationFromKey("auditoria__Atlantis"); ok {
		t.Error("expected unknown slug to be rejected")
	}
	if _, ok := LocationFromKey("other__Barra"); ok {
		t.Error("expected foreign prefix to be rejected")
	}
}

func TestLocations(t *testing.T) {
	if len(Locations) != 17 {
		t.Fatalf("expected 17 locations, got %d", len(Locations))
	}
	if !IsLocation("Belém") || IsLocation("belém") {
		t.Error("location names are matched exactly")
	}
}

func TestAuditRow_GetSet(t *testing.T) {
	var r AuditRow
	for i, f := range Fields {
		if !r.Set(f, f+"-value") {
			t.Fatalf("Set(%q) rejected a canonical field", f)
		}
		if got := r.Values()[i]; got != f+"-value" {
			t.Errorf("Values()[%d] = %q", i, got)
		}
	}
	if r.Set("remoteId", "x") {
		t.Error("remoteId is not a canonical field")
	}
	if r.Get("bogus") != "" {
		t.Error("unknown fields read as empty")
	}
}

func TestDocumentClone(t *testing.T) {
	d := Document{"a": 1}
	c := d.Clone()
	c["a"] = 2
	if d["a"] != 1 {
		t.Error("Clone shares storage with the original")
	}
	if Document(nil).Clone() != nil {
		t.Error("nil clones to nil")
	}
}
