package gameconfig

import (
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFavoriteServer(t *testing.T) {
	uid := strings.Repeat("a", 32)
	line := `(ServerName="Best Server",IPAddress="203.0.113.7",Port=7777,UID=` + uid + `)`

	fav, err := ParseFavoriteServer(line)
	if err != nil {
		t.Fatal(err)
	}
	if fav.ServerName == nil || *fav.ServerName != "Best Server" {
		t.Fatalf("name = %v", fav.ServerName)
	}
	if fav.IPAddress == nil || fav.IPAddress.String() != "203.0.113.7" {
		t.Fatalf("address = %v", fav.IPAddress)
	}
	if fav.Port == nil || *fav.Port != 7777 {
		t.Fatalf("port = %v", fav.Port)
	}
	if fav.UID == nil || *fav.UID != uid {
		t.Fatalf("uid = %v", fav.UID)
	}

	if fav.String() != line {
		t.Fatalf("round trip:\n%s\n%s", line, fav.String())
	}
}

func TestFavoriteServerOptionalFields(t *testing.T) {
	fav, err := ParseFavoriteServer(`(Port=7778)`)
	if err != nil {
		t.Fatal(err)
	}
	if fav.ServerName != nil || fav.IPAddress != nil || fav.UID != nil {
		t.Fatalf("fav = %+v", fav)
	}
	if got := fav.String(); got != `(Port=7778)` {
		t.Fatalf("string = %q", got)
	}
}

func TestFavoriteServerEscapedName(t *testing.T) {
	line := `(ServerName="The \"Best\" \\ Server")`
	fav, err := ParseFavoriteServer(line)
	if err != nil {
		t.Fatal(err)
	}
	if *fav.ServerName != `The "Best" \ Server` {
		t.Fatalf("name = %q", *fav.ServerName)
	}
	if fav.String() != line {
		t.Fatalf("round trip = %q", fav.String())
	}
}

func TestParseFavoriteServerRejects(t *testing.T) {
	for _, line := range []string{
		`ServerName="no parens"`,
		`(IPAddress="not-an-ip")`,
		`(Port=70000)`,
		`(UID=zzz)`,
		`(ServerName="unterminated)`,
	} {
		if _, err := ParseFavoriteServer(line); err == nil {
			t.Errorf("accepted %q", line)
		}
	}
}

func TestLoadFavoriteServersSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.txt")
	content := `(ServerName="One",Port=7777)
garbage line
(ServerName="Two",Port=7778)
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	servers, err := LoadFavoriteServers(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(servers) != 2 {
		t.Fatalf("servers = %+v", servers)
	}
	if *servers[0].ServerName != "One" || *servers[1].ServerName != "Two" {
		t.Fatalf("order = %+v", servers)
	}
}

func TestSaveFavoriteServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.txt")
	addr := netip.MustParseAddr("198.51.100.4")
	port := uint16(7777)
	name := "Alpha"
	servers := []FavoriteServer{
		{ServerName: &name, IPAddress: &addr, Port: &port},
	}
	if err := SaveFavoriteServers(path, servers); err != nil {
		t.Fatal(err)
	}

	reread, err := LoadFavoriteServers(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(reread) != 1 || *reread[0].IPAddress != addr {
		t.Fatalf("reread = %+v", reread)
	}
}

func TestCachedUserRoundTrip(t *testing.T) {
	line := `(MasterAccountId="MA123",TitlePlayerId="TP456",PlatformId="steam:1",TitleDisplayName="Exile",UserToken="tok-789")`
	u, err := ParseCachedUser(line)
	if err != nil {
		t.Fatal(err)
	}
	if u.MasterAccountID != "MA123" || u.TitleDisplayName != "Exile" {
		t.Fatalf("user = %+v", u)
	}
	if u.String() != line {
		t.Fatalf("round trip = %q", u.String())
	}
}
