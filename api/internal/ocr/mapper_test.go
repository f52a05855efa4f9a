package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToBox_TooFewVertices(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Vertex
	}{
		{"nil", nil},
		{"empty", []Vertex{}},
		{"one", []Vertex{{X: 5, Y: 5}}},
		{"three", []Vertex{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := MapToBox(tt.vertices)
			assert.False(t, ok)
		})
	}
}

func TestMapToBox(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Vertex
		want     Box
	}{
		{
			name:     "axis aligned rectangle",
			vertices: []Vertex{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 5}},
			want:     Box{X: 0, Y: 0, Width: 10, Height: 5},
		},
		{
			name:     "offset rectangle",
			vertices: []Vertex{{X: 120, Y: 40}, {X: 180, Y: 40}, {X: 180, Y: 62}, {X: 120, Y: 62}},
			want:     Box{X: 120, Y: 40, Width: 60, Height: 22},
		},
		{
			name:     "rotated quad uses extrema",
			vertices: []Vertex{{X: 15, Y: 10}, {X: 40, Y: 18}, {X: 35, Y: 30}, {X: 10, Y: 22}},
			want:     Box{X: 10, Y: 10, Width: 30, Height: 20},
		},
		{
			name:     "missing coordinates count as zero",
			vertices: []Vertex{{Y: 8}, {X: 20, Y: 8}, {X: 20, Y: 16}, {X: 4}},
			want:     Box{X: 0, Y: 0, Width: 20, Height: 16},
		},
		{
			name:     "zero area polygon",
			vertices: []Vertex{{X: 7, Y: 7}, {X: 7, Y: 7}, {X: 7, Y: 7}, {X: 7, Y: 7}},
			want:     Box{X: 7, Y: 7},
		},
		{
			name:     "more than four vertices",
			vertices: []Vertex{{X: 2, Y: 3}, {X: 9, Y: 1}, {X: 12, Y: 6}, {X: 8, Y: 11}, {X: 1, Y: 7}},
			want:     Box{X: 1, Y: 1, Width: 11, Height: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MapToBox(tt.vertices)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Width, 0.0)
			assert.GreaterOrEqual(t, got.Height, 0.0)
		})
	}
}

func TestMapToBox_Deterministic(t *testing.T) {
	v := []Vertex{{X: 3, Y: 4}, {X: 9, Y: 4}, {X: 9, Y: 8}, {X: 3, Y: 8}}
	a, _ := MapToBox(v)
	b, _ := MapToBox(v)
	assert.Equal(t, a, b)
	assert.Equal(t, []Vertex{{X: 3, Y: 4}, {X: 9, Y: 4}, {X: 9, Y: 8}, {X: 3, Y: 8}}, v, "input must not be mutated")
}

func TestBoxOrZero(t *testing.T) {
	assert.Equal(t, Box{}, BoxOrZero([]Vertex{{X: 1, Y: 1}, {X: 2, Y: 2}}))
	assert.Equal(t, Box{X: 1, Y: 1, Width: 3, Height: 3},
		BoxOrZero([]Vertex{{X: 1, Y: 1}, {X: 4, Y: 1}, {X: 4, Y: 4}, {X: 1, Y: 4}}))
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.3))
	assert.Equal(t, 0.42, ClampConfidence(0.42))
	assert.Equal(t, 1.0, ClampConfidence(7))
}
