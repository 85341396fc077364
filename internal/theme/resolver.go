// Package theme turns a settings snapshot into the presentation the front end
// applies: theme classes, font scaling and the dyslexia-friendly font.
package theme

import (
	"strings"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
)

type Descriptor struct {
	Name            domain.ThemeMode `json:"name"`
	BackgroundClass string           `json:"backgroundClass"`
	TextClass       string           `json:"textClass"`
	ExtraClasses    []string         `json:"extraClasses,omitempty"`
}

// ClassName joins every class of d in the order the page applies them.
func (d Descriptor) ClassName() string {
	parts := make([]string, 0, 3+len(d.ExtraClasses))
	if d.Name != domain.ThemeDefault {
		parts = append(parts, "theme-"+string(d.Name))
	}
	parts = append(parts, d.BackgroundClass, d.TextClass)
	parts = append(parts, d.ExtraClasses...)
	return strings.Join(parts, " ")
}

var descriptors = map[domain.ThemeMode]Descriptor{
	domain.ThemeDefault:      {Name: domain.ThemeDefault, BackgroundClass: "bg-gray-50", TextClass: "text-gray-900"},
	domain.ThemeHighContrast: {Name: domain.ThemeHighContrast, BackgroundClass: "bg-white", TextClass: "text-black", ExtraClasses: []string{"contrast-200"}},
	domain.ThemeDark:         {Name: domain.ThemeDark, BackgroundClass: "bg-[#1A1A1A]", TextClass: "text-[#E0E0E0]"},
	domain.ThemeNight:        {Name: domain.ThemeNight, BackgroundClass: "bg-[#FDF6E3]", TextClass: "text-[#5C4B37]"},
	domain.ThemeColorblind:   {Name: domain.ThemeColorblind, BackgroundClass: "bg-sky-50", TextClass: "text-slate-900"},
}

// Resolve is total: an unrecognized mode resolves to the default descriptor.
func Resolve(mode domain.ThemeMode) Descriptor {
	d, ok := descriptors[mode]
	if !ok {
		d = descriptors[domain.ThemeDefault]
	}
	if len(d.ExtraClasses) > 0 {
		d.ExtraClasses = append([]string(nil), d.ExtraClasses...)
	}
	return d
}
