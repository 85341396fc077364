package domain

import "strings"

// SettingsKey is the durable-storage key under which a profile's snapshot lives.
const SettingsKey = "accessibility_settings"

type Language string

const (
	LanguageEnglish        Language = "en"
	LanguageBahasaMalaysia Language = "ms"
)

func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageBahasaMalaysia
}

// DisplayName is the name used when instructing the AI service to answer in l.
// Unknown codes fall back to English.
func (l Language) DisplayName() string {
	if l == LanguageBahasaMalaysia {
		return "Bahasa Malaysia"
	}
	return "English"
}

type ThemeMode string

const (
	ThemeDefault      ThemeMode = "default"
	ThemeHighContrast ThemeMode = "high-contrast"
	ThemeDark         ThemeMode = "dark"
	ThemeNight        ThemeMode = "night"
	ThemeColorblind   ThemeMode = "colorblind"
)

var themeModes = []ThemeMode{ThemeDefault, ThemeHighContrast, ThemeDark, ThemeNight, ThemeColorblind}

// ThemeModes lists every theme in panel order.
func ThemeModes() []ThemeMode {
	out := make([]ThemeMode, len(themeModes))
	copy(out, themeModes)
	return out
}

func (t ThemeMode) Valid() bool {
	for _, m := range themeModes {
		if m == t {
			return true
		}
	}
	return false
}

func ParseThemeMode(raw string) (ThemeMode, bool) {
	t := ThemeMode(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

const (
	FontSizeMin  = 80
	FontSizeMax  = 200
	FontSizeStep = 10
)

// AccessibilitySettings is the complete persisted snapshot. JSON names match
// the blob the browser page stores, so either side can read the other's data.
type AccessibilitySettings struct {
	Language          Language  `json:"language"`
	FontSize          int       `json:"fontSize"`
	DyslexicFont      bool      `json:"dyslexicFont"`
	Theme             ThemeMode `json:"theme"`
	SimplifiedContent bool      `json:"simplifiedContent"`
	ReadingMask       bool      `json:"readingMask"`
	IsPanelOpen       bool      `json:"isPanelOpen"`
}

func DefaultSettings() AccessibilitySettings {
	return AccessibilitySettings{
		Language:          LanguageEnglish,
		FontSize:          100,
		DyslexicFont:      false,
		Theme:             ThemeDefault,
		SimplifiedContent: false,
		ReadingMask:       false,
		IsPanelOpen:       false,
	}
}

// ResetSettings is what the panel's reset button produces: defaults, panel kept open.
func ResetSettings() AccessibilitySettings {
	s := DefaultSettings()
	s.IsPanelOpen = true
	return s
}
