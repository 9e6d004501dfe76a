package fbx

import "testing"

const asciiTwoMeshes = `; FBX 6.1.0 project file
; ----------------------------------------------------

Objects:  {
	Model: "Model::Plane", "Mesh" {
		Version: 232
		Vertices: 0.000000,0.000000,0.000000,1.000000,0.000000,0.000000,
			1.000000,1.000000,0.000000,0.000000,1.000000,0.000000
		PolygonVertexIndex: 0,1,2,-4
		LayerElementNormal: 0 {
			Normals: 0,0,1,0,0,1,0,0,1,0,0,1
		}
	}
	Model: "Model::Tri", "Mesh" {
		Version: 232
		Vertices: 0,0,0,2.5e0,0,0,0,1.5E+1,0
		PolygonVertexIndex: 0,1,-3
	}
}
`

func TestParseASCIITwoBlocks(t *testing.T) {
	geoms := ParseASCII([]byte(asciiTwoMeshes))
	if len(geoms) != 2 {
		t.Fatalf("geometries = %d, want 2", len(geoms))
	}

	if geoms[0].VertexCount() != 4 {
		t.Errorf("first vertex count = %d, want 4", geoms[0].VertexCount())
	}
	if len(geoms[0].Indices) != 4 || geoms[0].Indices[3] != -4 {
		t.Errorf("first index stream = %v, want [0 1 2 -4]", geoms[0].Indices)
	}
	if geoms[0].NormalCount() != 4 {
		t.Errorf("first normal count = %d, want 4", geoms[0].NormalCount())
	}

	// Scientific notation must tokenize.
	if geoms[1].Vertices[3] != 2.5 {
		t.Errorf("vertex[3] = %v, want 2.5", geoms[1].Vertices[3])
	}
	if geoms[1].Vertices[7] != 15 {
		t.Errorf("vertex[7] = %v, want 15", geoms[1].Vertices[7])
	}
	if len(geoms[1].Normals) != 0 {
		t.Errorf("second mesh should have no normals, got %d values", len(geoms[1].Normals))
	}
}

func TestParseASCIIPositionalPairing(t *testing.T) {
	// A vertex block with no index counterpart yields nothing.
	input := `; FBX 6.1.0 project file
	Vertices: 0,0,0,1,0,0,0,1,0
`
	if geoms := ParseASCII([]byte(input)); len(geoms) != 0 {
		t.Errorf("geometries = %d, want 0 without an index block", len(geoms))
	}
}

func TestParseASCIIIgnoresLookalikeLabels(t *testing.T) {
	input := `; FBX 6.1.0 project file
	ModelVertices: 9,9,9
	Vertices: 0,0,0,1,0,0,0,1,0
	PolygonVertexIndex: 0,1,-3
`
	geoms := ParseASCII([]byte(input))
	if len(geoms) != 1 {
		t.Fatalf("geometries = %d, want 1", len(geoms))
	}
	if geoms[0].Vertices[0] != 0 || geoms[0].VertexCount() != 3 {
		t.Errorf("mid-identifier label must not capture, got %v", geoms[0].Vertices)
	}
}
