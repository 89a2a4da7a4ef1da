// Package savedb reads the game's per-map SQLite save databases and
// extracts the map identity and the most recently played character.
package savedb

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNoActors     = errors.New("savedb: no actors in save")
	ErrUnknownMap   = errors.New("savedb: save references an unknown map")
	ErrMultipleMaps = errors.New("savedb: save references multiple maps")
	ErrBadTimestamp = errors.New("savedb: character timestamp out of range")
)

// MapResolver maps a save's map object name to a map-table id.
type MapResolver func(objectName string) (int, bool)

// Character is the most recently played character in a save.
type Character struct {
	Name       string
	Clan       *string
	Level      int
	LastPlayed time.Time
}

// SaveGame summarizes one save database.
type SaveGame struct {
	FileName       string
	MapID          int
	LastPlayedChar *Character
}

func openRO(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+path+"?mode=ro")
}

// Open reads the save database at path read-only. The save must
// reference exactly one map, and resolve must know it.
func Open(path string, resolve MapResolver) (*SaveGame, error) {
	db, err := openRO(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT DISTINCT map FROM actor_position`)
	if err != nil {
		return nil, fmt.Errorf("savedb: %w", err)
	}
	defer rows.Close()

	var mapName string
	count := 0
	for rows.Next() {
		count++
		if count > 1 {
			return nil, fmt.Errorf("%w: %q", ErrMultipleMaps, path)
		}
		if err := rows.Scan(&mapName); err != nil {
			return nil, fmt.Errorf("savedb: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("savedb: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoActors, path)
	}

	mapID, ok := resolve(mapName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMap, mapName)
	}

	char, err := lastPlayedCharacter(db)
	if err != nil {
		return nil, err
	}

	return &SaveGame{
		FileName:       filepath.Base(path),
		MapID:          mapID,
		LastPlayedChar: char,
	}, nil
}

func lastPlayedCharacter(db *sql.DB) (*Character, error) {
	row := db.QueryRow(`
		SELECT c.char_name, g.name, c.level, c.lastTimeOnline
		FROM characters c LEFT JOIN guilds g ON c.guild = g.guildId
		ORDER BY c.lastTimeOnline DESC LIMIT 1`)

	var (
		name    string
		clan    sql.NullString
		level   int
		lastSec int64
	)
	err := row.Scan(&name, &clan, &level, &lastSec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("savedb: %w", err)
	}

	if lastSec > math.MaxInt64/1000 || lastSec < math.MinInt64/1000 {
		return nil, fmt.Errorf("%w: %d", ErrBadTimestamp, lastSec)
	}
	char := &Character{
		Name:       name,
		Level:      level,
		LastPlayed: time.Unix(lastSec, 0).Local(),
	}
	if clan.Valid {
		char.Clan = &clan.String
	}
	return char, nil
}

// ListModControllers returns the classes of actors registered as mod
// controllers, used to cross-check installed mods against a save.
func ListModControllers(path string) ([]string, error) {
	db, err := openRO(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT class FROM actor_position
		WHERE id IN (SELECT id FROM mod_controllers)`)
	if err != nil {
		return nil, fmt.Errorf("savedb: %w", err)
	}
	defer rows.Close()

	var classes []string
	for rows.Next() {
		var class string
		if err := rows.Scan(&class); err != nil {
			return nil, fmt.Errorf("savedb: %w", err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// CreateEmpty truncates or creates the database at path. When
// flsAccountID is non-empty an account table is created and the id
// inserted as online.
func CreateEmpty(path string, flsAccountID string) error {
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return err
	}
	if flsAccountID == "" {
		return nil
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE account (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user TEXT UNIQUE,
			online BOOL NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("savedb: %w", err)
	}
	_, err = db.Exec(`INSERT INTO account (user, online) VALUES (?, 1)`, flsAccountID)
	if err != nil {
		return fmt.Errorf("savedb: %w", err)
	}
	return nil
}
