// Package prefs gives typed access to the settings file. Global keys describe the session;
// everything else lives under a per-user namespace "user_<login>_<name>".
package prefs

import (
	"encoding/json"
	"slices"
	"strings"

	"DressCode/internal/cli/model"
	"DressCode/internal/cli/repo"
)

// Global keys.
const (
	KeyCurrentUser = "auth_current_user"
	KeyLoggedIn    = "auth_logged_in"
	KeyUsernames   = "auth_usernames"
)

// Keys written by single-account versions of the app.
const (
	LegacyKeyUsername     = "auth_username"
	LegacyKeyPasswordHash = "auth_password_hash"
	LegacyKeyGender       = "gender"
	LegacyKeyCity         = "weather_city"
)

// Per-user key names.
const (
	namePasswordHash = "password_hash"
	nameNickname     = "nickname"
	nameAvatar       = "avatar_uri"
	nameGender       = "gender"
	nameCity         = "weather_city"
	nameWeather      = "weather_snapshot"
	nameToken        = "server_token"
)

// UserKey builds the namespaced key of name for login.
func UserKey(login, name string) string {
	return "user_" + login + "_" + name
}

// Prefs wraps a PrefsStore.
type Prefs struct {
	kv repo.PrefsStore
}

// New wraps kv and moves legacy single-account keys into the per-user namespace.
func New(kv repo.PrefsStore) (*Prefs, error) {
	p := &Prefs{kv: kv}
	if err := p.migrateLegacy(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Prefs) str(key string) string {
	v, _ := p.kv.Get(key)
	return strings.TrimSpace(v)
}

// CurrentUser returns the selected account, or "".
func (p *Prefs) CurrentUser() string { return p.str(KeyCurrentUser) }

// LoggedIn reports whether a session is open for the current user.
func (p *Prefs) LoggedIn() bool {
	return p.str(KeyLoggedIn) == "true" && p.CurrentUser() != ""
}

// SetSession records the current user and login state in one write.
// An empty login keeps the previous current user.
func (p *Prefs) SetSession(login string, loggedIn bool) error {
	values := map[string]string{KeyLoggedIn: boolString(loggedIn)}
	if login != "" {
		values[KeyCurrentUser] = login
	}
	return p.kv.PutAll(values)
}

// Usernames returns the known accounts in sorted order.
func (p *Prefs) Usernames() []string {
	raw := p.str(KeyUsernames)
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	slices.Sort(list)
	return slices.Compact(list)
}

// HasUser reports whether login has a stored password hash.
func (p *Prefs) HasUser(login string) bool {
	if login == "" {
		return false
	}
	_, ok := p.kv.Get(UserKey(login, namePasswordHash))
	return ok
}

// CreateUser stores a new account and opens a session for it.
func (p *Prefs) CreateUser(login, passwordHash, nickname string) error {
	return p.kv.PutAll(map[string]string{
		UserKey(login, namePasswordHash): passwordHash,
		UserKey(login, nameNickname):     nickname,
		UserKey(login, nameAvatar):       "",
		KeyUsernames:                     p.usernamesWith(login),
		KeyCurrentUser:                   login,
		KeyLoggedIn:                      "true",
	})
}

func (p *Prefs) usernamesWith(login string) string {
	list := p.Usernames()
	if !slices.Contains(list, login) {
		list = append(list, login)
	}
	slices.Sort(list)
	b, _ := json.Marshal(list)
	return string(b)
}

// User returns the settings of login.
func (p *Prefs) User(login string) User {
	return User{p: p, login: login}
}

// User is the per-user namespace.
type User struct {
	p     *Prefs
	login string
}

func (u User) get(name string) string { return u.p.str(UserKey(u.login, name)) }

func (u User) put(name, value string) error {
	return u.p.kv.Put(UserKey(u.login, name), value)
}

func (u User) Login() string { return u.login }

func (u User) PasswordHash() string { return u.get(namePasswordHash) }
func (u User) SetPasswordHash(h string) error { return u.put(namePasswordHash, h) }

func (u User) Nickname() string { return u.get(nameNickname) }
func (u User) SetNickname(v string) error { return u.put(nameNickname, strings.TrimSpace(v)) }
func (u User) Avatar() string { return u.get(nameAvatar) }
func (u User) SetAvatar(path string) error { return u.put(nameAvatar, path) }
func (u User) Gender() string { return u.get(nameGender) }
func (u User) SetGender(g string) error { return u.put(nameGender, g) }
func (u User) City() string { return u.get(nameCity) }
func (u User) SetCity(city string) error { return u.put(nameCity, strings.TrimSpace(city)) }
func (u User) ServerToken() string { return u.get(nameToken) }
func (u User) SetServerToken(tok string) error { return u.put(nameToken, tok) }

// Weather returns the cached snapshot; a missing or unreadable entry is an empty snapshot.
func (u User) Weather() model.WeatherSnapshot {
	var w model.WeatherSnapshot
	raw := u.get(nameWeather)
	if raw == "" {
		return w
	}
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return model.WeatherSnapshot{}
	}
	return w
}

// SetWeather caches w.
func (u User) SetWeather(w model.WeatherSnapshot) error {
	b, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return u.put(nameWeather, string(b))
}

func (p *Prefs) migrateLegacy() error {
	legacyUser := p.str(LegacyKeyUsername)
	legacyHash := p.str(LegacyKeyPasswordHash)
	if legacyUser != "" && legacyHash != "" {
		values := map[string]string{}
		if !p.HasUser(legacyUser) {
			values[UserKey(legacyUser, namePasswordHash)] = legacyHash
			values[UserKey(legacyUser, nameNickname)] = ""
			values[UserKey(legacyUser, nameAvatar)] = ""
			values[KeyUsernames] = p.usernamesWith(legacyUser)
		}
		if p.CurrentUser() == "" {
			values[KeyCurrentUser] = legacyUser
		}
		if len(values) > 0 {
			if err := p.kv.PutAll(values); err != nil {
				return err
			}
		}
		if err := p.kv.Remove(LegacyKeyUsername, LegacyKeyPasswordHash); err != nil {
			return err
		}
	}

	// global gender and city belong to whoever is current; without a user they stay put
	owner := p.CurrentUser()
	if owner == "" {
		return nil
	}
	for legacy, name := range map[string]string{LegacyKeyGender: nameGender, LegacyKeyCity: nameCity} {
		v, ok := p.kv.Get(legacy)
		if !ok {
			continue
		}
		if _, exists := p.kv.Get(UserKey(owner, name)); !exists {
			if err := p.kv.Put(UserKey(owner, name), v); err != nil {
				return err
			}
		}
		if err := p.kv.Remove(legacy); err != nil {
			return err
		}
	}
	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
