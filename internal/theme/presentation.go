package theme

import (
	"fmt"
	"strings"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
)

const DyslexicFontClass = "font-dyslexic"

type Presentation struct {
	Theme            Descriptor `json:"theme"`
	FontScalePercent int        `json:"fontScalePercent"`
	RootStyle        string     `json:"rootStyle"`
	FontClass        string     `json:"fontClass,omitempty"`
	ClassName        string     `json:"className"`
}

// Present derives the root element presentation from a snapshot. The font
// size is passed through as stored; range checks belong to the caller.
func Present(s domain.AccessibilitySettings) Presentation {
	d := Resolve(s.Theme)
	p := Presentation{
		Theme:            d,
		FontScalePercent: s.FontSize,
		RootStyle:        fmt.Sprintf("font-size: %d%%", s.FontSize),
	}
	classes := []string{d.ClassName()}
	if s.DyslexicFont {
		p.FontClass = DyslexicFontClass
		classes = append(classes, DyslexicFontClass)
	}
	p.ClassName = strings.Join(classes, " ")
	return p
}

type Swatch struct {
	BackgroundClass string `json:"backgroundClass"`
	TextClass       string `json:"textClass"`
	BorderClass     string `json:"borderClass,omitempty"`
}

type Option struct {
	Mode   domain.ThemeMode `json:"mode"`
	Label  string           `json:"label"`
	Swatch Swatch           `json:"swatch"`
}

// Options lists the theme picker entries in panel order.
func Options() []Option {
	return []Option{
		{Mode: domain.ThemeDefault, Label: "Default Mode", Swatch: Swatch{BackgroundClass: "bg-white", TextClass: "text-gray-900"}},
		{Mode: domain.ThemeHighContrast, Label: "High Contrast (7:1)", Swatch: Swatch{BackgroundClass: "bg-white", TextClass: "text-black", BorderClass: "border-2 border-black"}},
		{Mode: domain.ThemeDark, Label: "Dark Mode", Swatch: Swatch{BackgroundClass: "bg-[#1A1A1A]", TextClass: "text-white"}},
		{Mode: domain.ThemeNight, Label: "Night Mode", Swatch: Swatch{BackgroundClass: "bg-orange-50", TextClass: "text-orange-900"}},
		{Mode: domain.ThemeColorblind, Label: "Colorblind Safe", Swatch: Swatch{BackgroundClass: "bg-blue-100", TextClass: "text-blue-900"}},
	}
}
