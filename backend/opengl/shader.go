package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-compatibility/gl"
)

// ShaderError is a shader compile or link failure carrying the driver's
// info log verbatim. The log is the only diagnostic a driver gives, so it
// is preserved in full.
type ShaderError struct {
	Stage string // "vertex", "fragment" or "link"
	Log   string
}

// Error implements the error interface.
func (e *ShaderError) Error() string {
	return fmt.Sprintf("shader %s failed: %s", e.Stage, e.Log)
}

// compileShader compiles a single shader stage.
func compileShader(kind uint32, stage, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, &ShaderError{Stage: stage, Log: strings.TrimRight(string(log), "\x00\n")}
	}
	return shader, nil
}

// linkProgram compiles both stages and links them into a program.
func linkProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(gl.VERTEX_SHADER, "vertex", vertexSource)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, "fragment", fragmentSource)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	// Shaders are owned by the program once linked.
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, &ShaderError{Stage: "link", Log: strings.TrimRight(string(log), "\x00\n")}
	}
	return program, nil
}
