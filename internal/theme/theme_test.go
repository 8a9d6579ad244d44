package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#FF4081", color.RGBA{0xFF, 0x40, 0x81, 0xFF}},
		{"#f00", color.RGBA{0xFF, 0, 0, 0xFF}},
		{"#11223344", color.RGBA{0x11, 0x22, 0x33, 0x44}},
		{" Red ", color.RGBA{0xFF, 0, 0, 0xFF}},
		{"hotpink", color.RGBA{0xFF, 0x69, 0xB4, 0xFF}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "#12", "#GGGGGG", "notacolor"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) succeeded", bad)
		}
	}
}

func TestParseTheme(t *testing.T) {
	in := `
// comment
Name: mine
background: #101010
PopupBorder: #00FF0080
Unknown: #FFFFFF
`
	th, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "mine" {
		t.Errorf("name = %q", th.Name)
	}
	if th.Background != (color.RGBA{0x10, 0x10, 0x10, 0xFF}) {
		t.Errorf("background = %v", th.Background)
	}
	if th.PopupBorder != (color.RGBA{0, 0xFF, 0, 0x80}) {
		t.Errorf("popup border = %v", th.PopupBorder)
	}
	if th.CheckerDark != Default().CheckerDark {
		t.Error("missing keys should keep defaults")
	}
	if _, err := Parse(strings.NewReader("Foreground: nope")); err == nil {
		t.Error("expected error for bad color")
	}
}

func TestEntriesRoundTrip(t *testing.T) {
	th := Default()
	th.ButtonActive = color.RGBA{1, 2, 3, 4}
	var sb strings.Builder
	for _, e := range th.Entries() {
		sb.WriteString(e.Key + ": " + Hex(e.Color) + "\n")
	}
	got, err := Parse(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	if *got != *th {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", got, th)
	}
}

func TestLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ocean.theme"), []byte("Name: ocean\nBackground: #000080\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir}

	th, err := l.Load("ocean")
	if err != nil {
		t.Fatal(err)
	}
	if th.Background != (color.RGBA{0, 0, 0x80, 0xFF}) {
		t.Errorf("background = %v", th.Background)
	}

	dark, err := l.Load("dark")
	if err != nil {
		t.Fatal(err)
	}
	if dark.Name != "dark" || dark.ButtonActive != (color.RGBA{0xFF, 0x40, 0x81, 0xFF}) {
		t.Errorf("embedded dark = %+v", dark)
	}

	if _, err := l.Load("missing"); err == nil {
		t.Error("expected not found")
	}
	if def, _ := l.Load(""); def.Name != "Default" {
		t.Error("empty name should return the default theme")
	}
	if len(Builtin()) != 2 {
		t.Errorf("builtin = %v", Builtin())
	}
}
