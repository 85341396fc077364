package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Optional wraps a patch field: Set reports whether the field was present.
// A JSON null leaves the field unset so it cannot blank a snapshot value.
type Optional[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Set = true
	o.Value = v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// SettingsPatch is a merge-patch over AccessibilitySettings. Each set field
// overwrites the snapshot field; nothing is merged below field level.
type SettingsPatch struct {
	Language          Optional[Language]  `json:"language"`
	FontSize          Optional[int]       `json:"fontSize"`
	DyslexicFont      Optional[bool]      `json:"dyslexicFont"`
	Theme             Optional[ThemeMode] `json:"theme"`
	SimplifiedContent Optional[bool]      `json:"simplifiedContent"`
	ReadingMask       Optional[bool]      `json:"readingMask"`
	IsPanelOpen       Optional[bool]      `json:"isPanelOpen"`
}

func (p SettingsPatch) Empty() bool {
	return !p.Language.Set && !p.FontSize.Set && !p.DyslexicFont.Set && !p.Theme.Set &&
		!p.SimplifiedContent.Set && !p.ReadingMask.Set && !p.IsPanelOpen.Set
}

func (p SettingsPatch) Apply(base AccessibilitySettings) AccessibilitySettings {
	out := base
	if p.Language.Set {
		out.Language = p.Language.Value
	}
	if p.FontSize.Set {
		out.FontSize = p.FontSize.Value
	}
	if p.DyslexicFont.Set {
		out.DyslexicFont = p.DyslexicFont.Value
	}
	if p.Theme.Set {
		out.Theme = p.Theme.Value
	}
	if p.SimplifiedContent.Set {
		out.SimplifiedContent = p.SimplifiedContent.Value
	}
	if p.ReadingMask.Set {
		out.ReadingMask = p.ReadingMask.Value
	}
	if p.IsPanelOpen.Set {
		out.IsPanelOpen = p.IsPanelOpen.Value
	}
	return out
}

// Validate checks the constraints the settings panel imposes on its controls.
func (p SettingsPatch) Validate() error {
	if p.Language.Set && !p.Language.Value.Valid() {
		return fmt.Errorf("unsupported language %q", p.Language.Value)
	}
	if p.Theme.Set && !p.Theme.Value.Valid() {
		return fmt.Errorf("unsupported theme %q", p.Theme.Value)
	}
	if p.FontSize.Set {
		v := p.FontSize.Value
		if v < FontSizeMin || v > FontSizeMax {
			return fmt.Errorf("fontSize out of range (%d..%d)", FontSizeMin, FontSizeMax)
		}
		if (v-FontSizeMin)%FontSizeStep != 0 {
			return fmt.Errorf("fontSize must move in steps of %d", FontSizeStep)
		}
	}
	return nil
}
