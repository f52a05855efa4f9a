package ocr

// MinPolygonVertices is the smallest polygon MapToBox turns into a box.
const MinPolygonVertices = 4

// MapToBox converts a bounding polygon into the axis-aligned box enclosing it.
// Coordinates stay in the pixel space of the submitted image; no scaling happens here.
// It returns false for polygons with fewer than MinPolygonVertices corners.
func MapToBox(vertices []Vertex) (Box, bool) {
	if len(vertices) < MinPolygonVertices {
		return Box{}, false
	}
	minX, maxX := vertices[0].X, vertices[0].X
	minY, maxY := vertices[0].Y, vertices[0].Y
	for _, v := range vertices[1:] {
		minX = min(minX, v.X)
		maxX = max(maxX, v.X)
		minY = min(minY, v.Y)
		maxY = max(maxY, v.Y)
	}
	return Box{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}, true
}

// BoxOrZero maps the polygon and substitutes a zero box when it cannot be mapped,
// so the word is still emitted.
func BoxOrZero(vertices []Vertex) Box {
	b, _ := MapToBox(vertices)
	return b
}
