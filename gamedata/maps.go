// Package gamedata lifts launcher-facing game data out of pak archives:
// the playable-map table and per-mod modinfo.json blobs.
package gamedata

// MapInfo describes one playable map as found in a map data table.
type MapInfo struct {
	DisplayName string
	AssetPath   string
	ObjectName  string
	DBName      string
}

// MapEntry is a map with its dense table id.
type MapEntry struct {
	ID   int
	Info MapInfo
}

// Maps is an insertion-ordered map table with unique-keyed lookups by
// object name and by asset path.
type Maps struct {
	entries  []MapEntry
	byObject map[string]int
	byAsset  map[string]int
}

func NewMaps() *Maps {
	return &Maps{
		byObject: make(map[string]int),
		byAsset:  make(map[string]int),
	}
}

// Add inserts info under the next sequential id. A duplicate object
// name is silently rejected; Add reports whether the entry was kept.
func (m *Maps) Add(info MapInfo) bool {
	if _, dup := m.byObject[info.ObjectName]; dup {
		return false
	}
	id := len(m.entries)
	m.entries = append(m.entries, MapEntry{ID: id, Info: info})
	m.byObject[info.ObjectName] = id
	m.byAsset[info.AssetPath] = id
	return true
}

func (m *Maps) Len() int {
	return len(m.entries)
}

// Entries returns the table in insertion order.
func (m *Maps) Entries() []MapEntry {
	return m.entries
}

func (m *Maps) Get(id int) (MapEntry, bool) {
	if id < 0 || id >= len(m.entries) {
		return MapEntry{}, false
	}
	return m.entries[id], true
}

func (m *Maps) ByObjectName(name string) (MapEntry, bool) {
	id, ok := m.byObject[name]
	if !ok {
		return MapEntry{}, false
	}
	return m.entries[id], true
}

func (m *Maps) ByAssetPath(path string) (MapEntry, bool) {
	id, ok := m.byAsset[path]
	if !ok {
		return MapEntry{}, false
	}
	return m.entries[id], true
}
