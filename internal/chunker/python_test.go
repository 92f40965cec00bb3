package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/internal/language"
)

func TestPythonExtract_SimpleFunction(t *testing.T) {
	src := "def f():\n    return 1\n"

	res := NewPythonExtractor().Extract("calc.py", []byte(src))

	require.False(t, res.Degraded)
	require.Len(t, res.Chunks, 1)

	c := res.Chunks[0]
	assert.Equal(t, TypeFunction, c.Type)
	assert.Equal(t, "f", c.Name)
	assert.Equal(t, 1, c.StartLine)
	assert.Equal(t, 2, c.EndLine)
	assert.Equal(t, "def f():\n    return 1", c.Content)
	assert.Equal(t, language.Python, c.Language)
}

func TestPythonExtract_ClassAndMethods(t *testing.T) {
	src := `class Greeter:
    def __init__(self, name):
        self.name = name

    def greet(self):
        return "hello " + self.name
`

	res := NewPythonExtractor().Extract("greeter.py", []byte(src))
	require.False(t, res.Degraded)

	var classes, funcs []Chunk
	for _, c := range res.Chunks {
		switch c.Type {
		case TypeClass:
			classes = append(classes, c)
		case TypeFunction:
			funcs = append(funcs, c)
		}
	}

	require.Len(t, classes, 1)
	assert.Equal(t, "Greeter", classes[0].Name)
	assert.Equal(t, 1, classes[0].StartLine)
	assert.Empty(t, classes[0].Dependencies)

	require.Len(t, funcs, 2)
	assert.Equal(t, "__init__", funcs[0].Name)
	assert.Equal(t, "greet", funcs[1].Name)
}

func TestPythonExtract_Imports(t *testing.T) {
	src := "import os\nfrom pathlib import Path\n\nVALUE = 1\n"

	res := NewPythonExtractor().Extract("mod.py", []byte(src))
	require.False(t, res.Degraded)

	var imports []Chunk
	for _, c := range res.Chunks {
		if c.Type == TypeImport {
			imports = append(imports, c)
		}
	}
	require.Len(t, imports, 2)

	assert.Equal(t, "import os", imports[0].Content)
	assert.Equal(t, 1, imports[0].StartLine)
	assert.Equal(t, 1, imports[0].EndLine)

	assert.Equal(t, "from pathlib import Path", imports[1].Content)
	assert.Equal(t, 2, imports[1].StartLine)
}

func TestPythonExtract_Dependencies(t *testing.T) {
	src := `def total(items):
    acc = 0
    for item in items:
        acc = acc + helper(item)
    return acc
`

	res := NewPythonExtractor().Extract("sum.py", []byte(src))
	require.False(t, res.Degraded)
	require.Len(t, res.Chunks, 1)

	deps := res.Chunks[0].Dependencies
	assert.Contains(t, deps, "acc")
	assert.Contains(t, deps, "item")
	assert.Contains(t, deps, "items")
	assert.Contains(t, deps, "helper")
	// The function's own name lives outside the body.
	assert.NotContains(t, deps, "total")
	assert.IsNonDecreasing(t, deps)
}

func TestPythonExtract_SyntaxErrorFallsBackToGeneric(t *testing.T) {
	src := "def broken(:\n    pass\n"

	res := NewPythonExtractor().Extract("broken.py", []byte(src))

	assert.True(t, res.Degraded)
	assert.NotEmpty(t, res.Reason)
	require.NotEmpty(t, res.Chunks, "fallback must still produce chunks")
	// The heuristic still spots the def line.
	assert.Equal(t, TypeFunction, res.Chunks[0].Type)
	assert.Equal(t, "broken", res.Chunks[0].Name)
}

func TestPythonExtract_NoDefinitionsYieldsFileChunk(t *testing.T) {
	src := "VALUE = 42\nOTHER = VALUE * 2\n"

	res := NewPythonExtractor().Extract("consts.py", []byte(src))

	require.False(t, res.Degraded)
	require.Len(t, res.Chunks, 1)
	c := res.Chunks[0]
	assert.Equal(t, TypeFile, c.Type)
	assert.Equal(t, 1, c.StartLine)
	assert.Equal(t, 3, c.EndLine) // trailing newline counts as a final empty line
	assert.Equal(t, src, c.Content)
}

func TestPythonExtract_Deterministic(t *testing.T) {
	src := `import math

def area(r):
    return math.pi * r * r

class Shape:
    pass
`

	e := NewPythonExtractor()
	first := e.Extract("shapes.py", []byte(src))
	second := e.Extract("shapes.py", []byte(src))

	require.Equal(t, len(first.Chunks), len(second.Chunks))
	for i := range first.Chunks {
		assert.Equal(t, first.Chunks[i], second.Chunks[i])
	}
}

func TestPythonExtract_LineRangeInvariant(t *testing.T) {
	src := `import sys

def main():
    print(sys.argv)

class App:
    def run(self):
        main()
`
	totalLines := 9 // split on \n, trailing newline included

	res := NewPythonExtractor().Extract("app.py", []byte(src))
	require.False(t, res.Degraded)
	require.NotEmpty(t, res.Chunks)

	for _, c := range res.Chunks {
		assert.GreaterOrEqual(t, c.StartLine, 1)
		assert.LessOrEqual(t, c.StartLine, c.EndLine)
		assert.LessOrEqual(t, c.EndLine, totalLines)
	}
}

func TestPythonExtract_EmptySource(t *testing.T) {
	res := NewPythonExtractor().Extract("empty.py", nil)
	assert.Empty(t, res.Chunks)
	assert.False(t, res.Degraded)
}
