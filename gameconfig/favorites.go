package gameconfig

import (
	"bufio"
	"fmt"
	"log"
	"net/netip"
	"os"
	"strconv"
	"strings"
)

// FavoriteServer is one line of the client's favorite-server list.
// Every field is optional; absent fields are omitted when writing and
// tolerated when reading.
type FavoriteServer struct {
	ServerName *string
	IPAddress  *netip.Addr
	Port       *uint16
	UID        *string // 32 lowercase hex digits
}

func isServerUID(s string) bool {
	if len(s) != 32 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ParseFavoriteServer parses one record line.
func ParseFavoriteServer(line string) (*FavoriteServer, error) {
	r, err := parseRecord(line)
	if err != nil {
		return nil, err
	}

	var fav FavoriteServer
	if v, ok := r.get("ServerName"); ok {
		fav.ServerName = &v
	}
	if v, ok := r.get("IPAddress"); ok {
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("%w: address %q", ErrBadRecord, v)
		}
		fav.IPAddress = &addr
	}
	if v, ok := r.get("Port"); ok {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: port %q", ErrBadRecord, v)
		}
		p := uint16(port)
		fav.Port = &p
	}
	if v, ok := r.get("UID"); ok {
		if !isServerUID(v) {
			return nil, fmt.Errorf("%w: uid %q", ErrBadRecord, v)
		}
		fav.UID = &v
	}
	return &fav, nil
}

func (f *FavoriteServer) String() string {
	r := &record{}
	if f.ServerName != nil {
		r.add("ServerName", *f.ServerName, true)
	}
	if f.IPAddress != nil {
		r.add("IPAddress", f.IPAddress.String(), true)
	}
	if f.Port != nil {
		r.add("Port", strconv.FormatUint(uint64(*f.Port), 10), false)
	}
	if f.UID != nil {
		r.add("UID", *f.UID, false)
	}
	return r.String()
}

// LoadFavoriteServers reads a favorites list, one record per line.
// Malformed lines are logged and skipped; the rest keep their order.
func LoadFavoriteServers(path string) ([]FavoriteServer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var servers []FavoriteServer
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fav, err := ParseFavoriteServer(line)
		if err != nil {
			log.Printf("skipping favorite server line: %v", err)
			continue
		}
		servers = append(servers, *fav)
	}
	return servers, scanner.Err()
}

// SaveFavoriteServers writes the list back, one record per line, in
// the given order.
func SaveFavoriteServers(path string, servers []FavoriteServer) error {
	var b strings.Builder
	for i := range servers {
		b.WriteString(servers[i].String())
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
