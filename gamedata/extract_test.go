package gamedata

import (
	"path/filepath"
	"testing"

	"exile-core/internal/uetest"
	"exile-core/pak"
	"exile-core/uasset"
)

func openArchive(t *testing.T, pb *uetest.PakBuilder) *pak.Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pak")
	if err := pb.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	a, err := pak.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

type rowSpec struct {
	mapName  string
	mapWorld string
	dbName   string
}

// buildMapTable assembles a data-table package with the given rows in
// serialized order.
func buildMapTable(rows []rowSpec) *uetest.PackageBuilder {
	b := uetest.NewPackage()
	dt := b.AddImport("/Script/Engine", "Class", 0, "DataTable")
	row := b.AddImport("/Script/ConanSandbox", "ScriptStruct", int32(uasset.ImportIndex(dt)), "MapDataRow")

	body := b.NewBody()
	body.ObjectProperty("RowStruct", int32(uasset.ImportIndex(row)))
	body.Terminator()
	body.U32(0) // no object guid
	body.U32(uint32(len(rows)))
	for _, r := range rows {
		body.Raw(b.NameRef("Row_" + r.mapName))
		if r.mapName != "" {
			body.StrProperty("MapName", r.mapName)
		}
		if r.mapWorld != "" {
			body.StrProperty("MapWorld", r.mapWorld)
		}
		if r.dbName != "" {
			body.NameProperty("DBName", r.dbName)
		}
		body.Terminator()
	}
	b.AddExport(int32(uasset.ImportIndex(dt)), "MapDataTable", body.Bytes())
	return b
}

func TestExtractBaseGameMaps(t *testing.T) {
	var pb uetest.PakBuilder
	pb.AddPackage(BaseMapDataTable, buildMapTable([]rowSpec{
		{"Exiled Lands", "/Game/Maps/ConanSandbox.ConanSandbox", "game"},
	}))
	a := openArchive(t, &pb)

	maps := NewMaps()
	if err := ExtractBaseGameMaps(a, maps); err != nil {
		t.Fatal(err)
	}
	if maps.Len() != 1 {
		t.Fatalf("got %d maps", maps.Len())
	}
	got := maps.Entries()[0].Info
	want := MapInfo{
		DisplayName: "Exiled Lands",
		AssetPath:   "/Game/Maps/ConanSandbox",
		ObjectName:  "ConanSandbox",
		DBName:      "game.db",
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestExtractRowOrderingAndDrops(t *testing.T) {
	var pb uetest.PakBuilder
	pb.AddPackage(BaseMapDataTable, buildMapTable([]rowSpec{
		{"Older Duplicate", "/Game/Maps/Shared.Shared", "old"},
		{"Broken World", "/Game/Maps/NoObjectName", "x"}, // no dot: dropped
		{"", "/Game/Maps/NoName.NoName", "y"},            // missing MapName: dropped
		{"Authoritative", "/Game/Maps/Shared.Shared", "game"},
	}))
	a := openArchive(t, &pb)

	maps := NewMaps()
	if err := ExtractBaseGameMaps(a, maps); err != nil {
		t.Fatal(err)
	}

	// The last serialized row is added first, so it wins the duplicate.
	if maps.Len() != 1 {
		t.Fatalf("got %d maps: %+v", maps.Len(), maps.Entries())
	}
	if got := maps.Entries()[0].Info.DisplayName; got != "Authoritative" {
		t.Fatalf("kept %q, want the last serialized row", got)
	}
	if got := maps.Entries()[0].Info.DBName; got != "game.db" {
		t.Fatalf("db name %q", got)
	}
}

func TestExtractRequiresRowStruct(t *testing.T) {
	b := uetest.NewPackage()
	dt := b.AddImport("/Script/Engine", "Class", 0, "DataTable")
	b.AddImport("/Script/ConanSandbox", "ScriptStruct", int32(uasset.ImportIndex(dt)), "MapDataRow")

	// No RowStruct property at all: the export contributes nothing.
	body := b.NewBody()
	body.Terminator()
	body.U32(0)
	body.U32(0)
	b.AddExport(int32(uasset.ImportIndex(dt)), "MapDataTable", body.Bytes())

	var pb uetest.PakBuilder
	pb.AddPackage(BaseMapDataTable, b)
	a := openArchive(t, &pb)

	maps := NewMaps()
	if err := ExtractBaseGameMaps(a, maps); err != nil {
		t.Fatal(err)
	}
	if maps.Len() != 0 {
		t.Fatalf("got %d maps from export without RowStruct", maps.Len())
	}
}

func TestExtractModMaps(t *testing.T) {
	const modTablePath = "Mods/Savage/Content/Maps/SavageMapDataTable"

	// Preload package: references the engine table under its canonical
	// outer and imports the mod's own table package.
	preload := uetest.NewPackage()
	outer := preload.AddImport("/Script/CoreUObject", "Package", 0, mapDataTableOuter)
	preload.AddImport("/Script/Engine", "DataTable", int32(uasset.ImportIndex(outer)), mapDataTableName)
	preload.AddImport("/Script/CoreUObject", "Package", 0, "/Game/"+modTablePath)
	preload.AddExport(0, "PreLoadSavage", []byte{})

	var pb uetest.PakBuilder
	pb.AddPackage("Mods/Savage/Content/PreLoad/PreLoadSavage", preload)
	pb.AddPackage(modTablePath, buildMapTable([]rowSpec{
		{"Savage Wilds", "/Game/Mods/Savage/Maps/SavageWilds.SavageWilds", "savagewilds_game"},
	}))
	a := openArchive(t, &pb)

	maps := NewMaps()
	maps.Add(MapInfo{DisplayName: "Exiled Lands", AssetPath: "/Game/Maps/ConanSandbox", ObjectName: "ConanSandbox", DBName: "game.db"})
	if err := ExtractModMaps(a, maps); err != nil {
		t.Fatal(err)
	}

	if maps.Len() != 2 {
		t.Fatalf("got %d maps", maps.Len())
	}
	entry, ok := maps.ByObjectName("SavageWilds")
	if !ok || entry.ID != 1 {
		t.Fatalf("mod map not merged: %+v %v", entry, ok)
	}
	if entry.Info.DisplayName != "Savage Wilds" || entry.Info.DBName != "savagewilds_game.db" {
		t.Fatalf("mod map info = %+v", entry.Info)
	}
}

func TestExtractModMapsIgnoresForeignOuter(t *testing.T) {
	// Preload whose MapDataTable import hangs off a different outer
	// must not be treated as eligible.
	preload := uetest.NewPackage()
	outer := preload.AddImport("/Script/CoreUObject", "Package", 0, "/Game/Mods/Other/Table")
	preload.AddImport("/Script/Engine", "DataTable", int32(uasset.ImportIndex(outer)), mapDataTableName)
	preload.AddImport("/Script/CoreUObject", "Package", 0, "/Game/Mods/Other/Content/Table")
	preload.AddExport(0, "PreLoadOther", []byte{})

	var pb uetest.PakBuilder
	pb.AddPackage("Mods/Other/Content/PreLoad/PreLoadOther", preload)
	a := openArchive(t, &pb)

	maps := NewMaps()
	if err := ExtractModMaps(a, maps); err != nil {
		t.Fatal(err)
	}
	if maps.Len() != 0 {
		t.Fatalf("got %d maps from ineligible preload", maps.Len())
	}
}
