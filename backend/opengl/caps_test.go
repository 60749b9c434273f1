package opengl

import (
	"strings"
	"testing"
)

func TestParseVersion(t *testing.T) {
	cases := []struct {
		in     string
		want   Version
		modern bool
	}{
		{"4.6.0 NVIDIA 535.146.02", Version{Desktop, 4, 6}, true},
		{"3.3.0 Mesa 23.1.4", Version{Desktop, 3, 3}, true},
		{"3.2.0", Version{Desktop, 3, 2}, false},
		{"2.1 Metal - 88", Version{Desktop, 2, 1}, false},
		{"2.1.2 NVIDIA 173.14.36", Version{Desktop, 2, 1}, false},
		{"OpenGL ES 3.2 V@0502.0", Version{ES, 3, 2}, true},
		{"OpenGL ES 3.0 Mesa 23.1.4", Version{ES, 3, 0}, true},
		{"OpenGL ES 2.0 (ANGLE 2.1.0)", Version{ES, 2, 0}, false},
		{"OpenGL ES-CM 1.1", Version{ES, 1, 1}, false},
		{"OpenGL ES-CL 1.0", Version{ES, 1, 0}, false},
	}
	for _, tc := range cases {
		got, err := ParseVersion(tc.in)
		if err != nil {
			t.Errorf("ParseVersion(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseVersion(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
		if got.ModernCapable() != tc.modern {
			t.Errorf("%q ModernCapable = %v, want %v", tc.in, got.ModernCapable(), tc.modern)
		}
	}
}

func TestParseVersionMalformed(t *testing.T) {
	for _, in := range []string{"", "OpenGL ES ", "driver strangeness"} {
		if _, err := ParseVersion(in); err == nil {
			t.Errorf("ParseVersion(%q) should fail", in)
		}
	}
}

func TestPreamble(t *testing.T) {
	cases := []struct {
		api    API
		modern bool
		want   string
	}{
		{Desktop, true, "#version 330 core"},
		{Desktop, false, "#version 110"},
		{ES, true, "#version 300 es"},
		{ES, false, "#version 100"},
	}
	for _, tc := range cases {
		got := preamble(tc.api, tc.modern)
		if !strings.HasPrefix(got, tc.want+"\n") {
			t.Errorf("preamble(%v, %v) = %q, want prefix %q", tc.api, tc.modern, got, tc.want)
		}
		if tc.api == ES && !strings.Contains(got, "precision mediump float;") {
			t.Errorf("ES preamble must declare a default precision: %q", got)
		}
	}
}

func TestVersionString(t *testing.T) {
	v := Version{API: ES, Major: 3, Minor: 1}
	if v.String() != "OpenGL ES 3.1" {
		t.Errorf("String = %q", v.String())
	}
}
