// exile-inspect dumps what the library can read from a game install:
// the merged map table, installed mods, save summaries, and server
// settings, as indented JSON on stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	exiles "exile-core"
	"exile-core/serverconfig"
)

const usage = `usage: exile-inspect <command> [flags]

commands:
  maps     -game DIR            merged base + mod map table
  mods     -game DIR            installed mods with modinfo
  save     -game DIR -db FILE   summary of one save database
  settings -file PATH           parsed ServerSettings.ini
`

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "maps":
		err = runMaps(os.Args[2:])
	case "mods":
		err = runMods(os.Args[2:])
	case "save":
		err = runSave(os.Args[2:])
	case "settings":
		err = runSettings(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func emit(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(data))
	return err
}

func openGame(fs *flag.FlagSet, args []string) (*exiles.Installation, error) {
	game := fs.String("game", ".", "game install directory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	inst, err := exiles.OpenGame(*game)
	if err != nil {
		return nil, err
	}
	slog.Debug("opened install", "root", inst.Root, "mods", len(inst.ModPaks()))
	return inst, nil
}

func runMaps(args []string) error {
	inst, err := openGame(flag.NewFlagSet("maps", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	maps, err := inst.Maps()
	if err != nil {
		return err
	}
	return emit(maps.Entries())
}

func runMods(args []string) error {
	inst, err := openGame(flag.NewFlagSet("mods", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	return emit(inst.Mods())
}

func runSave(args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	db := fs.String("db", "game.db", "save database file name")
	inst, err := openGame(fs, args)
	if err != nil {
		return err
	}

	maps, err := inst.Maps()
	if err != nil {
		return err
	}
	save, err := inst.LoadSave(*db, maps)
	if err != nil {
		return err
	}

	out := struct {
		Save any `json:"save"`
		Map  any `json:"map"`
	}{Save: save}
	if entry, ok := maps.Get(save.MapID); ok {
		out.Map = entry.Info
	}
	return emit(out)
}

func runSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	file := fs.String("file", filepath.Join("ConanSandbox", "Saved", "Config", "WindowsServer", "ServerSettings.ini"), "ServerSettings.ini path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	settings, err := serverconfig.LoadSettings(*file)
	if err != nil {
		return err
	}
	return emit(settings)
}
