package opengl

import (
	"fmt"
	"strings"
)

// API distinguishes desktop OpenGL from OpenGL ES.
type API uint8

const (
	// Desktop is regular OpenGL.
	Desktop API = iota
	// ES is OpenGL ES.
	ES
)

// String implements fmt.Stringer.
func (a API) String() string {
	if a == ES {
		return "OpenGL ES"
	}
	return "OpenGL"
}

// Version is a parsed GL_VERSION string.
type Version struct {
	API   API
	Major int
	Minor int
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%s %d.%d", v.API, v.Major, v.Minor)
}

// ModernCapable reports whether this version supports the modern rendering
// path: hardware instancing and vertex array objects. That requires
// desktop GL 3.3 or ES 3.0.
func (v Version) ModernCapable() bool {
	if v.API == ES {
		return v.Major >= 3
	}
	return v.Major > 3 || (v.Major == 3 && v.Minor >= 3)
}

// ParseVersion parses a GL_VERSION string. Desktop strings start with the
// bare version number; ES strings carry an "OpenGL ES" prefix, with 1.x
// drivers inserting a profile tag ("OpenGL ES-CM 1.1"). Vendor suffixes
// after the version number are ignored.
func ParseVersion(s string) (Version, error) {
	orig := s
	v := Version{API: Desktop}
	for _, prefix := range []string{"OpenGL ES-CM ", "OpenGL ES-CL ", "OpenGL ES "} {
		if strings.HasPrefix(s, prefix) {
			v.API = ES
			s = s[len(prefix):]
			break
		}
	}

	var ok bool
	v.Major, s, ok = parseInt(s)
	if !ok {
		return Version{}, fmt.Errorf("malformed GL_VERSION string %q", orig)
	}
	if len(s) > 0 && s[0] == '.' {
		v.Minor, _, _ = parseInt(s[1:])
	}
	return v, nil
}

func parseInt(s string) (int, string, bool) {
	i := 0
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:], i > 0
}
