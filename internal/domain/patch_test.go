package domain

import (
	"encoding/json"
	"testing"
)

func TestSettingsPatchApplyOverwritesOnlySetFields(t *testing.T) {
	base := DefaultSettings()
	base.Theme = ThemeDark
	base.ReadingMask = true

	got := SettingsPatch{FontSize: Some(150)}.Apply(base)

	want := base
	want.FontSize = 150
	if got != want {
		t.Fatalf("apply: got=%+v want=%+v", got, want)
	}
}

func TestSettingsPatchDecodeTreatsNullAsUnset(t *testing.T) {
	var p SettingsPatch
	if err := json.Unmarshal([]byte(`{"theme":"night","language":null,"isPanelOpen":false}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Theme.Set || p.Theme.Value != ThemeNight {
		t.Fatalf("theme: got=%+v", p.Theme)
	}
	if p.Language.Set {
		t.Fatalf("language: null must leave field unset")
	}
	if !p.IsPanelOpen.Set || p.IsPanelOpen.Value {
		t.Fatalf("isPanelOpen: explicit false must be set, got=%+v", p.IsPanelOpen)
	}
	if p.FontSize.Set {
		t.Fatalf("fontSize: absent field must be unset")
	}
}

func TestSettingsPatchValidate(t *testing.T) {
	cases := []struct {
		name    string
		patch   SettingsPatch
		wantErr bool
	}{
		{"empty", SettingsPatch{}, false},
		{"min font", SettingsPatch{FontSize: Some(80)}, false},
		{"max font", SettingsPatch{FontSize: Some(200)}, false},
		{"below range", SettingsPatch{FontSize: Some(70)}, true},
		{"above range", SettingsPatch{FontSize: Some(210)}, true},
		{"off step", SettingsPatch{FontSize: Some(125)}, true},
		{"bad theme", SettingsPatch{Theme: Some(ThemeMode("sepia"))}, true},
		{"bad language", SettingsPatch{Language: Some(Language("fr"))}, true},
		{"good language", SettingsPatch{Language: Some(LanguageBahasaMalaysia)}, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate: err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestSettingsJSONUsesBrowserFieldNames(t *testing.T) {
	raw, err := json.Marshal(DefaultSettings())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"language":"en","fontSize":100,"dyslexicFont":false,"theme":"default","simplifiedContent":false,"readingMask":false,"isPanelOpen":false}`
	if string(raw) != want {
		t.Fatalf("json: got=%s want=%s", raw, want)
	}
}

func TestResetSettingsKeepsPanelOpen(t *testing.T) {
	r := ResetSettings()
	if !r.IsPanelOpen {
		t.Fatalf("reset must keep the panel open")
	}
	r.IsPanelOpen = false
	if r != DefaultSettings() {
		t.Fatalf("reset differs from defaults beyond isPanelOpen: %+v", r)
	}
}

func TestLanguageDisplayName(t *testing.T) {
	if got := LanguageBahasaMalaysia.DisplayName(); got != "Bahasa Malaysia" {
		t.Fatalf("ms: got=%q", got)
	}
	if got := Language("xx").DisplayName(); got != "English" {
		t.Fatalf("unknown: got=%q", got)
	}
}
