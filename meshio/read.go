package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/femesh/logger"
	"github.com/notargets/femesh/mesh"
	"github.com/notargets/femesh/types"
)

type rawElement struct {
	typ   mesh.ElementType
	phys  int
	nodes []int // node indices, canonical order
}

// ReadFile reads a MSH 2.2 ASCII file
func ReadFile(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ReadGmsh22(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

/*
ReadGmsh22 reads a mesh in MSH 2.2 ASCII format. The elements of the highest dimension present
become the mesh elements, with partition = physical tag - 1. For a solid mesh the surface elements
one dimension lower set the partition of the boundary faces they cover. Element kinds without a
counterpart here are skipped.
*/
func ReadGmsh22(r io.Reader) (*mesh.Mesh, error) {
	var (
		scanner = bufio.NewScanner(r)
		pos     []r3.Vec
		index   = make(map[int]int) // gmsh node ID to node index
		elems   []rawElement
		err     error
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "$MeshFormat":
			err = readMeshFormat(scanner)
		case "$Nodes":
			pos, err = readNodes(scanner, index)
		case "$Elements":
			elems, err = readElements(scanner, index)
		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				// $PhysicalNames, $Periodic and the data sections
				err = skipSection(scanner, "$End"+line[1:])
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return assemble(pos, elems)
}

func skipSection(scanner *bufio.Scanner, end string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == end {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF looking for %s: %w", end, ErrFormat)
}

func readMeshFormat(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat: %w", ErrFormat)
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line %q: %w", scanner.Text(), ErrFormat)
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return fmt.Errorf("version %s is not 2.x: %w", parts[0], ErrFormat)
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary files are not supported: %w", ErrFormat)
	}
	return skipSection(scanner, "$EndMeshFormat")
}

func readCount(scanner *bufio.Scanner, section string) (int, error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("unexpected EOF in %s: %w", section, ErrFormat)
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s count %q: %w", section, scanner.Text(), ErrFormat)
	}
	return n, nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", s, ErrFormat)
	}
	return n, nil
}

func readNodes(scanner *bufio.Scanner, index map[int]int) (pos []r3.Vec, err error) {
	numNodes, err := readCount(scanner, "Nodes")
	if err != nil {
		return nil, err
	}
	pos = make([]r3.Vec, 0, numNodes)
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading nodes: %w", ErrFormat)
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return nil, fmt.Errorf("invalid node line %q: %w", scanner.Text(), ErrFormat)
		}
		nodeID, err := atoi(parts[0])
		if err != nil {
			return nil, err
		}
		var x [3]float64
		for j := range x {
			if x[j], err = strconv.ParseFloat(parts[1+j], 64); err != nil {
				return nil, fmt.Errorf("invalid coordinate %q: %w", parts[1+j], ErrFormat)
			}
		}
		if _, dup := index[nodeID]; dup {
			return nil, fmt.Errorf("node %d defined twice: %w", nodeID, ErrFormat)
		}
		index[nodeID] = len(pos)
		pos = append(pos, r3.Vec{X: x[0], Y: x[1], Z: x[2]})
	}
	return pos, skipSection(scanner, "$EndNodes")
}

func readElements(scanner *bufio.Scanner, index map[int]int) (elems []rawElement, err error) {
	numElements, err := readCount(scanner, "Elements")
	if err != nil {
		return nil, err
	}
	skipped := make(map[int]int)
	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading elements: %w", ErrFormat)
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid element line %q: %w", scanner.Text(), ErrFormat)
		}
		var code, numTags int
		if code, err = atoi(parts[1]); err != nil {
			return nil, err
		}
		if numTags, err = atoi(parts[2]); err != nil {
			return nil, err
		}
		if len(parts) < 3+numTags {
			return nil, fmt.Errorf("element %s: invalid tags: %w", parts[0], ErrFormat)
		}
		typ, ok := byCode[code]
		if !ok {
			skipped[code]++
			continue
		}
		var phys int
		if numTags > 0 {
			if phys, err = atoi(parts[3]); err != nil {
				return nil, err
			}
		}
		nodeStart := 3 + numTags
		expected := typ.Spec().Nodes
		if len(parts) < nodeStart+expected {
			return nil, fmt.Errorf("element %s: expected %d nodes, got %d: %w",
				parts[0], expected, len(parts)-nodeStart, ErrFormat)
		}
		nodes := make([]int, expected)
		for j := range nodes {
			id, err := atoi(parts[nodeStart+j])
			if err != nil {
				return nil, err
			}
			n, ok := index[id]
			if !ok {
				return nil, fmt.Errorf("element %s references unknown node %d: %w", parts[0], id, ErrFormat)
			}
			nodes[j] = n
		}
		elems = append(elems, rawElement{
			typ:   typ,
			phys:  phys,
			nodes: elementCodes[typ].toCanonical(nodes),
		})
	}
	for code, n := range skipped {
		logger.Log.Warn("skipped unsupported gmsh elements", zap.Int("code", code), zap.Int("count", n))
	}
	return elems, skipSection(scanner, "$EndElements")
}

func partition(phys int) int {
	return max(phys-1, 0)
}

// assemble builds the mesh from the highest dimension elements and tags boundary faces from the
// surface elements below them
func assemble(pos []r3.Vec, elems []rawElement) (*mesh.Mesh, error) {
	dim := 0
	for _, e := range elems {
		dim = max(dim, elementCodes[e.typ].dim)
	}
	if dim == 0 {
		return nil, fmt.Errorf("no supported elements: %w", ErrFormat)
	}
	var (
		body    []rawElement
		surface = make(map[types.FaceKey]int)
	)
	for _, e := range elems {
		switch elementCodes[e.typ].dim {
		case dim:
			body = append(body, e)
		case 2:
			surface[types.NewFaceKey(e.nodes[:e.typ.Spec().Corners])] = partition(e.phys)
		}
	}

	m := mesh.NewMesh(len(pos), len(body), 0, 0)
	for i, p := range pos {
		m.Nodes[i].Pos = p
	}
	for i, e := range body {
		el := &m.Elements[i]
		el.SetType(e.typ)
		copy(el.Nodes, e.nodes)
		el.GID = partition(e.phys)
	}
	m.Rebuild(nil, nil)

	if dim == 3 && len(surface) > 0 {
		tagged := 0
		for i := range m.Faces {
			f := &m.Faces[i]
			if gid, ok := surface[types.NewFaceKey(f.Nodes[:f.Type.Corners()])]; ok {
				f.GID = gid
				tagged++
			}
		}
		m.BuildMesh()
		logger.Log.Debug("tagged boundary faces", zap.Int("faces", tagged), zap.Int("surface elements", len(surface)))
	}
	logger.Log.Info("read gmsh mesh",
		zap.Int("nodes", m.NodeCount()), zap.Int("elements", m.ElementCount()), zap.Stringer("type", m.MeshType()))
	return m, nil
}
