package theme

import (
	"testing"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
)

func TestResolveEveryMode(t *testing.T) {
	want := map[domain.ThemeMode]string{
		domain.ThemeDefault:      "bg-gray-50 text-gray-900",
		domain.ThemeHighContrast: "theme-high-contrast bg-white text-black contrast-200",
		domain.ThemeDark:         "theme-dark bg-[#1A1A1A] text-[#E0E0E0]",
		domain.ThemeNight:        "theme-night bg-[#FDF6E3] text-[#5C4B37]",
		domain.ThemeColorblind:   "theme-colorblind bg-sky-50 text-slate-900",
	}
	for _, mode := range domain.ThemeModes() {
		d := Resolve(mode)
		if d.Name != mode {
			t.Fatalf("Resolve(%q).Name: got=%q", mode, d.Name)
		}
		if got := d.ClassName(); got != want[mode] {
			t.Fatalf("Resolve(%q): got=%q want=%q", mode, got, want[mode])
		}
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	for _, mode := range []domain.ThemeMode{"", "sepia", "DARK"} {
		d := Resolve(mode)
		if d.Name != domain.ThemeDefault || d.BackgroundClass != "bg-gray-50" {
			t.Fatalf("Resolve(%q): got=%+v want default", mode, d)
		}
	}
}

func TestResolveIsPure(t *testing.T) {
	d := Resolve(domain.ThemeHighContrast)
	d.ExtraClasses[0] = "mutated"
	if again := Resolve(domain.ThemeHighContrast); again.ExtraClasses[0] != "contrast-200" {
		t.Fatalf("descriptor table mutated through a returned value: %v", again.ExtraClasses)
	}
}

func TestPresent(t *testing.T) {
	s := domain.DefaultSettings()
	s.FontSize = 150
	s.DyslexicFont = true
	s.Theme = domain.ThemeDark

	p := Present(s)
	if p.RootStyle != "font-size: 150%" || p.FontScalePercent != 150 {
		t.Fatalf("font: got=%q/%d", p.RootStyle, p.FontScalePercent)
	}
	if p.FontClass != DyslexicFontClass {
		t.Fatalf("fontClass: got=%q", p.FontClass)
	}
	if want := "theme-dark bg-[#1A1A1A] text-[#E0E0E0] font-dyslexic"; p.ClassName != want {
		t.Fatalf("className: got=%q want=%q", p.ClassName, want)
	}

	plain := Present(domain.DefaultSettings())
	if plain.FontClass != "" || plain.ClassName != "bg-gray-50 text-gray-900" {
		t.Fatalf("default presentation: %+v", plain)
	}
}

func TestOptionsCoverEveryMode(t *testing.T) {
	opts := Options()
	modes := domain.ThemeModes()
	if len(opts) != len(modes) {
		t.Fatalf("options: got=%d want=%d", len(opts), len(modes))
	}
	for i, o := range opts {
		if o.Mode != modes[i] || o.Label == "" {
			t.Fatalf("option %d: %+v", i, o)
		}
	}
}
