package tui

import (
	"strings"
	"testing"
)

func TestCanvas_Set(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell = %#x, want 0x2801", c.Grid[0][0])
	}
	c.Set(1, 3)
	if c.Grid[0][0] != 0x2801|0x80 {
		t.Errorf("cell = %#x, want %#x", c.Grid[0][0], 0x2801|0x80)
	}

	// Out of range is ignored.
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
	if c.Grid[0][1] != 0x2800 {
		t.Errorf("neighbor cell touched: %#x", c.Grid[0][1])
	}
}

func TestCanvas_SetCell(t *testing.T) {
	c := NewCanvas(3, 2)
	c.SetCell(1, 1, '┼')
	if c.Grid[1][1] != '┼' {
		t.Errorf("cell = %q", c.Grid[1][1])
	}
	c.SetCell(-1, 0, 'x')
	c.SetCell(3, 0, 'x')
	for _, row := range c.Grid {
		for _, r := range row {
			if r == 'x' {
				t.Fatal("out-of-range SetCell wrote to the grid")
			}
		}
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	if c.Grid[0][0] == 0x2800 {
		t.Error("line start not set")
	}
	if c.Grid[1][3] == 0x2800 {
		t.Error("line end not set")
	}
}

func TestCanvas_String(t *testing.T) {
	c := NewCanvas(2, 2)
	s := c.String()
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if l != "⠀⠀" {
			t.Errorf("line = %q, want two blank braille cells", l)
		}
	}
	if strings.HasSuffix(s, "\n") {
		t.Error("String must not end with a newline")
	}
}

func TestCanvas_Clear(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(0, 0)
	c.SetCell(1, 1, '#')
	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				t.Fatalf("cell = %#x after Clear", r)
			}
		}
	}
}
