package gamedata

import (
	"fmt"
	"log"
	"strings"

	"exile-core/pak"
	"exile-core/uasset"
)

const (
	// BaseMapDataTable is the asset path of the base game's map table.
	BaseMapDataTable = "ConanSandbox/Content/Base/AlwaysCook/MapDataTable"

	mapDataTableName  = "MapDataTable"
	mapDataTableOuter = "/Game/Base/AlwaysCook/MapDataTable"

	modPackagePrefix = "/Game/Mods/"
	coreUObject      = "/Script/CoreUObject"
	preloadMarker    = "/PreLoad/"
)

// ExtractBaseGameMaps reads the base game's map data table and inserts
// its rows into maps.
func ExtractBaseGameMaps(a *pak.Archive, maps *Maps) error {
	pkg, err := uasset.OpenPackage(a, BaseMapDataTable)
	if err != nil {
		return fmt.Errorf("base map table: %w", err)
	}
	return gatherPkgMaps(pkg, maps)
}

// ExtractModMaps scans a mod archive for preload packages that re-export
// the engine map table and merges their rows into maps. Malformed
// auxiliary packages are logged and skipped.
func ExtractModMaps(a *pak.Archive, maps *Maps) error {
	for _, entry := range a.Entries() {
		if !strings.Contains(entry.Path, preloadMarker) || !strings.HasSuffix(entry.Path, ".uasset") {
			continue
		}
		assetPath := strings.TrimSuffix(entry.Path, ".uasset")
		preload, err := uasset.OpenPackage(a, assetPath)
		if err != nil {
			log.Printf("gamedata: skipping preload %q: %v", assetPath, err)
			continue
		}
		if !referencesMapDataTable(preload) {
			continue
		}
		for _, imp := range preload.Imports {
			name := imp.ObjectName.Text()
			if !strings.HasPrefix(name, modPackagePrefix) || imp.PackageName.Text() != coreUObject {
				continue
			}
			pkgPath := strings.TrimPrefix(name, "/Game/")
			pkg, err := uasset.OpenPackage(a, pkgPath)
			if err != nil {
				log.Printf("gamedata: skipping mod package %q: %v", pkgPath, err)
				continue
			}
			if err := gatherPkgMaps(pkg, maps); err != nil {
				log.Printf("gamedata: mod package %q: %v", pkgPath, err)
			}
		}
	}
	return nil
}

// referencesMapDataTable reports whether any import names the engine's
// MapDataTable under its canonical outer. Mods that re-export under a
// different outer are deliberately not matched; they are surfaced as a
// warning by the caller-visible absence of their maps rather than by
// guessing alternate outers.
func referencesMapDataTable(pkg *uasset.Package) bool {
	for _, imp := range pkg.Imports {
		if !imp.ObjectName.Name.Is(mapDataTableName) {
			continue
		}
		outer, err := pkg.Import(imp.Outer)
		if err != nil {
			continue
		}
		if outer.ObjectName.Name.Is(mapDataTableOuter) {
			return true
		}
	}
	return false
}

// gatherPkgMaps decodes every data-table export of pkg into maps.
func gatherPkgMaps(pkg *uasset.Package, maps *Maps) error {
	dtClass := uasset.ResourceIndex(0)
	rowStruct := uasset.ResourceIndex(0)
	for i, imp := range pkg.Imports {
		switch {
		case imp.ObjectName.Name.Is("DataTable") && imp.ClassName.Name.Is("Class"):
			dtClass = uasset.ImportIndex(i)
		case imp.ObjectName.Name.Is("MapDataRow") && imp.ClassName.Name.Is("ScriptStruct"):
			rowStruct = uasset.ImportIndex(i)
		}
	}
	if dtClass.IsNone() || rowStruct.IsNone() {
		return nil
	}

	for i, exp := range pkg.Exports {
		if exp.Class != dtClass {
			continue
		}
		if err := decodeMapTable(pkg, i, rowStruct, maps); err != nil {
			return fmt.Errorf("export %q: %w", exp.ObjectName.Text(), err)
		}
	}
	return nil
}

func decodeMapTable(pkg *uasset.Package, exportIdx int, rowStruct uasset.ResourceIndex, maps *Maps) error {
	er, err := pkg.OpenExport(exportIdx)
	if err != nil {
		return err
	}
	defer er.Close()
	pr := uasset.NewPropertyReader(pkg, er)

	// The export must declare RowStruct = MapDataRow before any row is
	// trusted; everything else ahead of the terminator is skipped.
	rowStructOK := false
	for {
		tag, err := pr.ReadTag()
		if err != nil {
			return err
		}
		if tag == nil {
			break
		}
		if tag.Name.Name.Is("RowStruct") {
			ref, err := pr.ReadResourceIndex()
			if err != nil {
				return err
			}
			if ref != rowStruct {
				return nil
			}
			rowStructOK = true
			if err := pr.Skip(tag); err != nil {
				return err
			}
			continue
		}
		if err := pr.Skip(tag); err != nil {
			return err
		}
	}
	if !rowStructOK {
		return nil
	}

	hasGuid, err := pr.ReadUint32()
	if err != nil {
		return err
	}
	if hasGuid != 0 {
		if err := pr.SkipBytes(16); err != nil {
			return err
		}
	}
	numRows, err := pr.ReadUint32()
	if err != nil {
		return err
	}

	// Rows are decoded in serialized order but inserted in reverse:
	// the authoritative first-added row is the last serialized, so
	// duplicates from later merges lose.
	rows := make([]*MapInfo, 0, numRows)
	for i := uint32(0); i < numRows; i++ {
		row, err := decodeMapRow(pr, i == numRows-1)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i] != nil {
			maps.Add(*rows[i])
		}
	}
	return nil
}

// decodeMapRow reads one name-keyed property list. Incomplete rows are
// dropped by returning nil. Only the last row may terminate early once
// every field is populated; earlier rows must be consumed through their
// terminator to reach the next row.
func decodeMapRow(pr *uasset.PropertyReader, last bool) (*MapInfo, error) {
	if err := pr.SkipBytes(8); err != nil { // row name reference
		return nil, err
	}

	var info MapInfo
	var haveName, haveWorld, haveDB bool
	for {
		if last && haveName && haveWorld && haveDB {
			break
		}
		tag, err := pr.ReadTag()
		if err != nil {
			return nil, err
		}
		if tag == nil {
			break
		}
		switch {
		case tag.Name.Name.Is("MapName"):
			if info.DisplayName, err = pr.ReadString(); err != nil {
				return nil, err
			}
			haveName = true
		case tag.Name.Name.Is("MapWorld"):
			world, err := pr.ReadString()
			if err != nil {
				return nil, err
			}
			asset, object, found := strings.Cut(world, ".")
			if found {
				info.AssetPath = asset
				info.ObjectName = object
				haveWorld = true
			}
		case tag.Name.Name.Is("DBName"):
			name, err := pr.ReadNameRef()
			if err != nil {
				return nil, err
			}
			info.DBName = name.Text() + ".db"
			haveDB = true
		default:
		}
		if err := pr.Skip(tag); err != nil {
			return nil, err
		}
	}
	if !haveName || !haveWorld || !haveDB {
		return nil, nil
	}
	return &info, nil
}
