// Command fbxinspect dumps the node tree of a binary FBX file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"meshvault/internal/fbx"
)

func main() {
	maxDepth := flag.Int("depth", 0, "Maximum tree depth to print (0 = unlimited)")
	props := flag.Bool("props", true, "Print node properties")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: fbxinspect [flags] <file.fbx>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	format, version, ok := fbx.SniffFile(path)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %s is not an FBX file\n", path)
		os.Exit(1)
	}
	fmt.Printf("%s: %s FBX version %d\n", path, format, version)

	if format == fbx.FormatASCII {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		geoms := fbx.ParseASCII(data)
		for i, g := range geoms {
			fmt.Printf("geometry %d: %d vertices, %d index entries, %d normals\n",
				i, g.VertexCount(), len(g.Indices), g.NormalCount())
		}
		return
	}

	doc, err := fbx.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, root := range doc.Roots {
		printNode(doc, root, 0, *maxDepth, *props)
	}

	geoms := doc.ExtractGeometries()
	fmt.Printf("\n%d geometry pairing(s)\n", len(geoms))
	for i, g := range geoms {
		fmt.Printf("  %d: %d vertices, %d index entries, %d normals, %d UVs\n",
			i, g.VertexCount(), len(g.Indices), g.NormalCount(), g.UVCount())
	}
}

func printNode(doc *fbx.Document, h, depth, maxDepth int, props bool) {
	if maxDepth > 0 && depth >= maxDepth {
		return
	}
	n := &doc.Nodes[h]

	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s", indent, n.Name)
	if props && len(n.Props) > 0 {
		fmt.Printf(" (%s)", describeProps(n.Props))
	}
	fmt.Println()

	for _, child := range n.Children {
		printNode(doc, child, depth+1, maxDepth, props)
	}
}

func describeProps(props []fbx.Property) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		switch p.Tag {
		case fbx.TagString:
			parts = append(parts, fmt.Sprintf("%q", p.Str))
		case fbx.TagRaw:
			parts = append(parts, fmt.Sprintf("raw[%d]", len(p.Raw)))
		case fbx.TagFloat32, fbx.TagFloat64:
			parts = append(parts, fmt.Sprintf("%g", p.Float))
		case fbx.TagInt16, fbx.TagInt32, fbx.TagInt64:
			parts = append(parts, fmt.Sprintf("%d", p.Int))
		case fbx.TagBool:
			parts = append(parts, fmt.Sprintf("%t", p.Bool))
		case fbx.TagFloatArray, fbx.TagDoubleArray:
			parts = append(parts, fmt.Sprintf("f[%d]", len(p.Floats)))
		case fbx.TagIntArray, fbx.TagLongArray:
			parts = append(parts, fmt.Sprintf("i[%d]", len(p.Ints)))
		case fbx.TagBoolArray:
			parts = append(parts, fmt.Sprintf("b[%d]", len(p.Bools)))
		}
	}
	return strings.Join(parts, ", ")
}
