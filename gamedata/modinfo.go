package gamedata

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"

	"exile-core/pak"
)

const modInfoEntry = "modinfo.json"

var (
	ErrMissingModInfo = errors.New("gamedata: archive has no modinfo.json")
	ErrBadModInfo     = errors.New("gamedata: malformed modinfo.json")
)

// ModVersion is the three-part mod version.
type ModVersion struct {
	Major int64
	Minor int64
	Build int64
}

func (v ModVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// ModInfo is a parsed modinfo.json plus the pak it came from.
type ModInfo struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	ChangeNotes           string `json:"changeNote"`
	Author                string `json:"author"`
	AuthorURL             string `json:"authorUrl"`
	VersionMajor          int64  `json:"versionMajor"`
	VersionMinor          int64  `json:"versionMinor"`
	VersionBuild          int64  `json:"versionBuild"`
	RequiresLoadOnStartup bool   `json:"bRequiresLoadOnStartup"`
	LiveFileID            int64  `json:"steamPublishedFileId"`
	TestLiveFileID        *int64 `json:"steamTestLivePublishedFileId"`
	FolderName            string `json:"folderName"`
	RevisionNumber        int64  `json:"revisionNumber"`
	SnapshotID            int64  `json:"snapshotId"`

	PakPath string `json:"-"`
}

func (m *ModInfo) Version() ModVersion {
	return ModVersion{Major: m.VersionMajor, Minor: m.VersionMinor, Build: m.VersionBuild}
}

// ReadModInfo reads and parses the archive's modinfo.json entry. The
// entry is either UTF-16-LE with a BOM or plain UTF-8.
func ReadModInfo(a *pak.Archive) (*ModInfo, error) {
	entry := a.Entry(modInfoEntry)
	if entry == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingModInfo, a.Path)
	}
	r, err := a.OpenEntry(modInfoEntry)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var bom [2]byte
	if _, err := io.ReadFull(r, bom[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModInfo, err)
	}

	var text []byte
	if binary.LittleEndian.Uint16(bom[:]) == 0xFEFF {
		text, err = decodeUTF16Body(r, entry.Size)
		if err != nil {
			return nil, err
		}
	} else {
		// Not a BOM: the two bytes are data.
		rest, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadModInfo, err)
		}
		text = append(bom[:], rest...)
	}

	info := &ModInfo{}
	if err := json.Unmarshal(text, info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModInfo, err)
	}
	info.PakPath = a.Path
	return info, nil
}

func decodeUTF16Body(r io.Reader, entrySize uint64) ([]byte, error) {
	ucs2Len := entrySize/2 - 1
	units := make([]uint16, ucs2Len)
	if err := binary.Read(r, binary.LittleEndian, units); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModInfo, err)
	}
	// Worst-case UTF-8 expansion for BMP content is three bytes per
	// code unit.
	out := make([]byte, 0, ucs2Len*3)
	return append(out, string(utf16.Decode(units))...), nil
}
