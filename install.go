// Package exiles glues the format readers together around a game
// install directory: it finds the base and mod pak archives, merges
// their map tables, enumerates installed mods, and opens save
// databases with map names already resolved.
package exiles

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"exile-core/gamedata"
	"exile-core/pak"
	"exile-core/savedb"
)

const (
	basePakPath = "ConanSandbox/Content/Paks/Base.pak"
	modsDir     = "ConanSandbox/Mods"
	savedDir    = "ConanSandbox/Saved"
)

var ErrNotAGameDir = errors.New("exiles: not a game install directory")

// Installation is an opened game install directory.
type Installation struct {
	Root    string
	modPaks []string
}

// OpenGame opens the install rooted at dir. The base pak must exist;
// the Mods directory may be absent.
func OpenGame(dir string) (*Installation, error) {
	if _, err := os.Stat(filepath.Join(dir, basePakPath)); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrNotAGameDir, dir, err)
	}

	mods, err := filepath.Glob(filepath.Join(dir, modsDir, "*.pak"))
	if err != nil {
		return nil, err
	}
	sort.Strings(mods)

	return &Installation{Root: dir, modPaks: mods}, nil
}

// BasePak returns the base game archive path.
func (inst *Installation) BasePak() string {
	return filepath.Join(inst.Root, basePakPath)
}

// ModPaks returns the mod archive paths in load order.
func (inst *Installation) ModPaks() []string {
	return inst.modPaks
}

// Maps extracts the merged map table: base-game maps first, then each
// mod's maps in load order. A mod archive that fails to open or parse
// is logged and skipped; the base archive must succeed.
func (inst *Installation) Maps() (*gamedata.Maps, error) {
	maps := gamedata.NewMaps()

	base, err := pak.Open(inst.BasePak())
	if err != nil {
		return nil, err
	}
	err = gamedata.ExtractBaseGameMaps(base, maps)
	base.Close()
	if err != nil {
		return nil, err
	}

	for _, path := range inst.modPaks {
		if err := extractModPak(path, maps); err != nil {
			log.Printf("skipping mod pak %s: %v", filepath.Base(path), err)
		}
	}
	return maps, nil
}

func extractModPak(path string, maps *gamedata.Maps) error {
	a, err := pak.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()
	return gamedata.ExtractModMaps(a, maps)
}

// Mods reads modinfo.json from every mod archive, in load order. An
// archive without a readable modinfo is logged and skipped.
func (inst *Installation) Mods() []gamedata.ModInfo {
	var mods []gamedata.ModInfo
	for _, path := range inst.modPaks {
		info, err := readModPak(path)
		if err != nil {
			log.Printf("skipping mod pak %s: %v", filepath.Base(path), err)
			continue
		}
		mods = append(mods, *info)
	}
	return mods
}

func readModPak(path string) (*gamedata.ModInfo, error) {
	a, err := pak.Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return gamedata.ReadModInfo(a)
}

// SavePath resolves a save database file name under the install's
// Saved directory.
func (inst *Installation) SavePath(dbFileName string) string {
	return filepath.Join(inst.Root, savedDir, dbFileName)
}

// LoadSave opens the named save database and resolves its map against
// the given table.
func (inst *Installation) LoadSave(dbFileName string, maps *gamedata.Maps) (*savedb.SaveGame, error) {
	return savedb.Open(inst.SavePath(dbFileName), func(objectName string) (int, bool) {
		entry, ok := maps.ByObjectName(objectName)
		return entry.ID, ok
	})
}
