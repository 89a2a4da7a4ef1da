package gameconfig

// CachedUser is the client's remembered online-services identity.
type CachedUser struct {
	MasterAccountID  string
	TitlePlayerID    string
	PlatformID       string
	TitleDisplayName string
	UserToken        string
}

// ParseCachedUser parses the single-line cached-user record.
func ParseCachedUser(line string) (*CachedUser, error) {
	r, err := parseRecord(line)
	if err != nil {
		return nil, err
	}
	var u CachedUser
	u.MasterAccountID, _ = r.get("MasterAccountId")
	u.TitlePlayerID, _ = r.get("TitlePlayerId")
	u.PlatformID, _ = r.get("PlatformId")
	u.TitleDisplayName, _ = r.get("TitleDisplayName")
	u.UserToken, _ = r.get("UserToken")
	return &u, nil
}

func (u *CachedUser) String() string {
	r := &record{}
	r.add("MasterAccountId", u.MasterAccountID, true)
	r.add("TitlePlayerId", u.TitlePlayerID, true)
	r.add("PlatformId", u.PlatformID, true)
	r.add("TitleDisplayName", u.TitleDisplayName, true)
	r.add("UserToken", u.UserToken, true)
	return r.String()
}
