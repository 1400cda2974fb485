package schema

// Theme values as stored by the web client (the light spelling is kept for compatibility).
const (
	ThemeDark  = "body-dark"
	ThemeLight = "body-ligth"
)

// Preferences holds per-user display settings.
type Preferences struct {
	Theme string `json:"theme"`
}

// UserData is the record stored under the "user-data" key.
type UserData struct {
	Preferences Preferences `json:"preferences"`
}

// ToggleTheme flips between the dark and light themes. Anything not dark becomes dark.
func (p Preferences) ToggleTheme() Preferences {
	if p.Theme == ThemeDark {
		return Preferences{Theme: ThemeLight}
	}
	return Preferences{Theme: ThemeDark}
}

// ValidTheme reports whether t is a known theme.
func ValidTheme(t string) bool {
	return t == ThemeDark || t == ThemeLight
}
