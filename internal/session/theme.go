package session

import greenhouse "greenhouse_console"

// ResolveTheme maps a stored preference to the concrete theme to render.
// "auto" defers to the system preference probe; an unset preference
// defaults to dark.
func ResolveTheme(preference string, systemPrefersDark func() bool) string {
	switch preference {
	case greenhouse.ThemeLight, greenhouse.ThemeDark:
		return preference
	case greenhouse.ThemeAuto:
		if systemPrefersDark != nil && !systemPrefersDark() {
			return greenhouse.ThemeLight
		}
		return greenhouse.ThemeDark
	default:
		return greenhouse.ThemeDark
	}
}
