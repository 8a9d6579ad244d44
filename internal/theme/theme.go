package theme

import (
	"image/color"
	"reflect"
)

// Theme defines the colors of the annotation window.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Behind the photo
	Foreground color.RGBA // Status and label text

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonActive          color.RGBA // Selected tool
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Annotation input
	PopupBackground color.RGBA
	PopupBorder     color.RGBA
	PopupText       color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonActive:          color.RGBA{255, 64, 129, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		PopupBackground:       color.RGBA{255, 255, 255, 255},
		PopupBorder:           color.RGBA{255, 64, 129, 255},
		PopupText:             color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
	}
}

// Entry is one named color of a theme.
type Entry struct {
	Key   string
	Color color.RGBA
}

var rgbaType = reflect.TypeOf(color.RGBA{})

// Entries lists the theme colors in declaration order.
func (t *Theme) Entries() []Entry {
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	var out []Entry
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type != rgbaType {
			continue
		}
		out = append(out, Entry{Key: typ.Field(i).Name, Color: val.Field(i).Interface().(color.RGBA)})
	}
	return out
}

// Set assigns a color by case-insensitive key. It reports whether the key
// named a color field.
func (t *Theme) Set(key string, c color.RGBA) bool {
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Type == rgbaType && equalFold(f.Name, key) {
			val.Field(i).Set(reflect.ValueOf(c))
			return true
		}
	}
	return false
}
