package smartcast

import "strings"

// knownApps is the launchable app catalogue. Devices do not expose an app
// listing endpoint, so the catalogue ships with castdeck. IDs and namespaces
// come from the platform app store and are stable across firmware versions.
var knownApps = []App{
	{Name: "Netflix", ID: "1", Namespace: 3},
	{Name: "YouTube", ID: "5", Namespace: 5},
	{Name: "YouTube TV", ID: "6", Namespace: 5},
	{Name: "Prime Video", ID: "4", Namespace: 4},
	{Name: "Hulu", ID: "3", Namespace: 2},
	{Name: "Disney+", ID: "75", Namespace: 4},
	{Name: "Max", ID: "128", Namespace: 4},
	{Name: "Apple TV", ID: "130", Namespace: 4},
	{Name: "Peacock", ID: "88", Namespace: 4},
	{Name: "Paramount+", ID: "9", Namespace: 4},
	{Name: "Plex", ID: "40", Namespace: 4},
	{Name: "Pluto TV", ID: "E6F74C01-7E7E-4446-A3A7-86D7DA3C1D2F", Namespace: 0,
		Message: `{"CAST_NAMESPACE":"urn:x-cast:tv.pluto","CAST_MESSAGE":{"type":"LOAD","autoplay":true}}`},
	{Name: "Spotify", ID: "9", Namespace: 3},
	{Name: "Pandora", ID: "2", Namespace: 5},
	{Name: "iHeartRadio", ID: "11", Namespace: 2},
	{Name: "Tubi", ID: "90", Namespace: 4},
	{Name: "Crackle", ID: "8", Namespace: 5},
	{Name: "Vudu", ID: "21", Namespace: 2},
	{Name: "Xumo", ID: "27", Namespace: 2},
	{Name: "Redbox", ID: "110", Namespace: 4},
}

// KnownApps returns the launchable app catalogue in display order.
func KnownApps() []App {
	out := make([]App, len(knownApps))
	copy(out, knownApps)
	return out
}

// LookupApp finds a catalogue entry by name, case-insensitively.
func LookupApp(name string) (App, bool) {
	for _, app := range knownApps {
		if strings.EqualFold(app.Name, name) {
			return app, true
		}
	}
	return App{}, false
}

// LookupAppID finds a catalogue entry by platform coordinates. Used to
// resolve the device's current-app report back to a display name.
func LookupAppID(id string, namespace int) (App, bool) {
	for _, app := range knownApps {
		if app.ID == id && app.Namespace == namespace {
			return app, true
		}
	}
	return App{}, false
}
