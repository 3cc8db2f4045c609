package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/notargets/femesh/mesh"
)

// WriteFile writes m to filename in MSH 2.2 ASCII format
func WriteFile(filename string, m *mesh.Mesh) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteGmsh22(file, m)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

/*
WriteGmsh22 writes m in MSH 2.2 ASCII format. Node IDs are 1-based indices. Each element carries
its partition + 1 as physical tag and elementary tag. For solid meshes the boundary faces are
written first as surface elements tagged with their surface partition + 1.
*/
func WriteGmsh22(w io.Writer, m *mesh.Mesh) error {
	for i := range m.Elements {
		if _, ok := elementCodes[m.Elements[i].Type]; !ok {
			return fmt.Errorf("element %d is %v: %w", i, m.Elements[i].Type, ErrUnsupported)
		}
	}
	var faces []int
	for i := range m.Faces {
		f := &m.Faces[i]
		if m.Elements[f.Elem].Spec().Class != mesh.Solid {
			continue
		}
		if _, ok := faceCodes[f.Type]; !ok {
			return fmt.Errorf("face %d is %v: %w", i, f.Type, ErrUnsupported)
		}
		faces = append(faces, i)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	fmt.Fprintf(bw, "$Nodes\n%d\n", m.NodeCount())
	for i := range m.Nodes {
		p := m.Nodes[i].Pos
		fmt.Fprintf(bw, "%d %s %s %s\n", i+1, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	}
	fmt.Fprintf(bw, "$EndNodes\n")

	fmt.Fprintf(bw, "$Elements\n%d\n", len(faces)+m.ElementCount())
	id := 1
	writeElement := func(code, tag int, nodes []int) {
		fmt.Fprintf(bw, "%d %d 2 %d %d", id, code, tag, tag)
		for _, n := range nodes {
			fmt.Fprintf(bw, " %d", n+1)
		}
		fmt.Fprintln(bw)
		id++
	}
	for _, i := range faces {
		f := &m.Faces[i]
		writeElement(faceCodes[f.Type], f.GID+1, f.Nodes)
	}
	for i := range m.Elements {
		el := &m.Elements[i]
		g := elementCodes[el.Type]
		writeElement(g.code, el.GID+1, g.toGmsh(el.Nodes))
	}
	fmt.Fprintf(bw, "$EndElements\n")
	return bw.Flush()
}
