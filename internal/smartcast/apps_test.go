package smartcast

import "testing"

func TestLookupApp_CaseInsensitive(t *testing.T) {
	app, ok := LookupApp("netflix")
	if !ok {
		t.Fatal("LookupApp(netflix) not found")
	}
	if app.Name != "Netflix" {
		t.Errorf("Name = %q, want Netflix", app.Name)
	}
}

func TestLookupApp_Unknown(t *testing.T) {
	if _, ok := LookupApp("Winamp"); ok {
		t.Error("LookupApp(Winamp) found, want miss")
	}
}

func TestLookupAppID_RoundTrip(t *testing.T) {
	for _, app := range KnownApps() {
		got, ok := LookupAppID(app.ID, app.Namespace)
		if !ok {
			t.Errorf("LookupAppID(%q, %d) not found", app.ID, app.Namespace)
			continue
		}
		if got.Name != app.Name {
			// Shared IDs across namespaces must still resolve uniquely.
			t.Errorf("LookupAppID(%q, %d) = %q, want %q", app.ID, app.Namespace, got.Name, app.Name)
		}
	}
}

func TestKnownApps_ReturnsCopy(t *testing.T) {
	apps := KnownApps()
	if len(apps) == 0 {
		t.Fatal("KnownApps() returned empty catalogue")
	}
	apps[0].Name = "mutated"
	if knownApps[0].Name == "mutated" {
		t.Error("KnownApps() exposed internal slice")
	}
}
