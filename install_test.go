package exiles

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"exile-core/internal/uetest"
	"exile-core/uasset"
)

func mapTable(rows map[string][2]string) *uetest.PackageBuilder {
	b := uetest.NewPackage()
	dt := b.AddImport("/Script/Engine", "Class", 0, "DataTable")
	row := b.AddImport("/Script/ConanSandbox", "ScriptStruct", int32(uasset.ImportIndex(dt)), "MapDataRow")

	body := b.NewBody()
	body.ObjectProperty("RowStruct", int32(uasset.ImportIndex(row)))
	body.Terminator()
	body.U32(0)
	body.U32(uint32(len(rows)))
	for name, rest := range rows {
		body.Raw(b.NameRef("Row_" + name))
		body.StrProperty("MapName", name)
		body.StrProperty("MapWorld", rest[0])
		body.NameProperty("DBName", rest[1])
		body.Terminator()
	}
	b.AddExport(int32(uasset.ImportIndex(dt)), "MapDataTable", body.Bytes())
	return b
}

// buildInstall lays out a minimal game directory: base pak, one mod
// pak with a preload and modinfo, and a save database.
func buildInstall(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	var base uetest.PakBuilder
	base.AddPackage("ConanSandbox/Content/Base/AlwaysCook/MapDataTable", mapTable(map[string][2]string{
		"Exiled Lands": {"/Game/Maps/ConanSandbox.ConanSandbox", "game"},
	}))
	basePath := filepath.Join(root, "ConanSandbox/Content/Paks/Base.pak")
	if err := os.MkdirAll(filepath.Dir(basePath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := base.WriteFile(basePath); err != nil {
		t.Fatal(err)
	}

	const modTablePath = "Mods/Savage/Content/Maps/SavageMapDataTable"
	preload := uetest.NewPackage()
	outer := preload.AddImport("/Script/CoreUObject", "Package", 0, "/Game/Base/AlwaysCook/MapDataTable")
	preload.AddImport("/Script/Engine", "DataTable", int32(uasset.ImportIndex(outer)), "MapDataTable")
	preload.AddImport("/Script/CoreUObject", "Package", 0, "/Game/"+modTablePath)
	preload.AddExport(0, "PreLoadSavage", []byte{})

	var mod uetest.PakBuilder
	mod.Add("modinfo.json", []byte(`{"name":"Savage Wilds","versionMajor":1,"versionMinor":0,"versionBuild":4,"folderName":"Savage"}`))
	mod.AddPackage("Mods/Savage/Content/PreLoad/PreLoadSavage", preload)
	mod.AddPackage(modTablePath, mapTable(map[string][2]string{
		"Savage Wilds": {"/Game/Mods/Savage/Maps/SavageWilds.SavageWilds", "savagewilds_game"},
	}))
	modPath := filepath.Join(root, "ConanSandbox/Mods/savage.pak")
	if err := os.MkdirAll(filepath.Dir(modPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := mod.WriteFile(modPath); err != nil {
		t.Fatal(err)
	}

	savePath := filepath.Join(root, "ConanSandbox/Saved/game.db")
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		t.Fatal(err)
	}
	writeSave(t, savePath)

	return root
}

func writeSave(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, stmt := range []string{
		`CREATE TABLE actor_position (id INTEGER PRIMARY KEY, map TEXT, class TEXT)`,
		`CREATE TABLE mod_controllers (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE characters (char_name TEXT, guild INTEGER, level INTEGER, lastTimeOnline INTEGER)`,
		`CREATE TABLE guilds (guildId INTEGER PRIMARY KEY, name TEXT)`,
		`INSERT INTO actor_position VALUES (1, 'ConanSandbox', 'BP_Thrall_C')`,
		`INSERT INTO characters VALUES ('Alice', NULL, 17, 1700000000)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOpenGameRejectsOtherDirs(t *testing.T) {
	if _, err := OpenGame(t.TempDir()); !errors.Is(err, ErrNotAGameDir) {
		t.Fatalf("want ErrNotAGameDir, got %v", err)
	}
}

func TestInstallationMaps(t *testing.T) {
	inst, err := OpenGame(buildInstall(t))
	if err != nil {
		t.Fatal(err)
	}

	maps, err := inst.Maps()
	if err != nil {
		t.Fatal(err)
	}
	if maps.Len() != 2 {
		t.Fatalf("got %d maps: %+v", maps.Len(), maps.Entries())
	}
	// Base-game maps come first, mods after in load order.
	if maps.Entries()[0].Info.ObjectName != "ConanSandbox" {
		t.Fatalf("first map = %+v", maps.Entries()[0])
	}
	entry, ok := maps.ByObjectName("SavageWilds")
	if !ok || entry.Info.DBName != "savagewilds_game.db" {
		t.Fatalf("mod map = %+v %v", entry, ok)
	}
}

func TestInstallationMods(t *testing.T) {
	inst, err := OpenGame(buildInstall(t))
	if err != nil {
		t.Fatal(err)
	}

	mods := inst.Mods()
	if len(mods) != 1 {
		t.Fatalf("mods = %+v", mods)
	}
	if mods[0].Name != "Savage Wilds" || mods[0].Version().String() != "1.0.4" {
		t.Fatalf("mod = %+v", mods[0])
	}
	if mods[0].PakPath != filepath.Join(inst.Root, "ConanSandbox/Mods/savage.pak") {
		t.Fatalf("pak path = %q", mods[0].PakPath)
	}
}

func TestInstallationModsSkipsBroken(t *testing.T) {
	root := buildInstall(t)
	broken := filepath.Join(root, "ConanSandbox/Mods/aaa-broken.pak")
	if err := os.WriteFile(broken, []byte("not a pak"), 0644); err != nil {
		t.Fatal(err)
	}

	inst, err := OpenGame(root)
	if err != nil {
		t.Fatal(err)
	}
	mods := inst.Mods()
	if len(mods) != 1 || mods[0].Name != "Savage Wilds" {
		t.Fatalf("mods = %+v", mods)
	}

	// The broken pak must not poison map extraction either.
	maps, err := inst.Maps()
	if err != nil {
		t.Fatal(err)
	}
	if maps.Len() != 2 {
		t.Fatalf("got %d maps", maps.Len())
	}
}

func TestInstallationLoadSave(t *testing.T) {
	inst, err := OpenGame(buildInstall(t))
	if err != nil {
		t.Fatal(err)
	}
	maps, err := inst.Maps()
	if err != nil {
		t.Fatal(err)
	}

	save, err := inst.LoadSave("game.db", maps)
	if err != nil {
		t.Fatal(err)
	}
	if save.MapID != 0 || save.FileName != "game.db" {
		t.Fatalf("save = %+v", save)
	}
	if save.LastPlayedChar == nil || save.LastPlayedChar.Name != "Alice" {
		t.Fatalf("char = %+v", save.LastPlayedChar)
	}

	entry, _ := maps.Get(save.MapID)
	if entry.Info.DisplayName != "Exiled Lands" {
		t.Fatalf("map = %+v", entry)
	}
}
