package assets

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

// ModelLoader decodes Wavefront OBJ models and their MTL material libraries
// from an asset file system.
type ModelLoader struct {
	fsys fs.FS
}

func NewModelLoader(fsys fs.FS) *ModelLoader {
	return &ModelLoader{fsys: fsys}
}

/**
 * @brief Loads the model at name. Faces are triangulated as fans and split
 * into one mesh per object and material. Missing normals are generated from
 * the faces; tangents and binormals are derived from the texture
 * coordinates when present.
 */
func (l *ModelLoader) LoadModel(name string) (*resources.ModelData, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, core.NewResourceLoadError(name, core.LoadStageOpen, err)
	}
	defer f.Close()

	dec := newObjDecoder()
	if err := dec.parse(f, dec.parseObjLine); err != nil {
		return nil, core.NewResourceLoadError(name, core.LoadStageDecode, err)
	}

	for _, lib := range dec.matlibs {
		libPath := path.Join(path.Dir(name), lib)
		mf, err := l.fsys.Open(libPath)
		if err != nil {
			core.LogWarn("model %s: material library %s: %s", name, libPath, err)
			continue
		}
		err = dec.parse(mf, dec.parseMtlLine)
		mf.Close()
		if err != nil {
			return nil, core.NewResourceLoadError(libPath, core.LoadStageDecode, err)
		}
	}

	return dec.build(), nil
}

type objIndex struct {
	v, vt, vn int
}

type objGroup struct {
	name     string
	material string
	faces    [][]objIndex
}

type objDecoder struct {
	positions []math.Vec3
	normals   []math.Vec3
	uvs       []math.Vec2
	groups    []*objGroup
	current   *objGroup
	object    string
	matlibs   []string

	materials     []resources.Material
	materialIndex map[string]int
	matCurrent    int
	line          int
}

func newObjDecoder() *objDecoder {
	return &objDecoder{materialIndex: make(map[string]int), object: "default", matCurrent: -1}
}

func (dec *objDecoder) parse(r io.Reader, parseLine func(fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	dec.line = 0
	for scanner.Scan() {
		dec.line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := parseLine(fields); err != nil {
			return fmt.Errorf("line %d: %w", dec.line, err)
		}
	}
	return scanner.Err()
}

func (dec *objDecoder) parseObjLine(fields []string) error {
	args := fields[1:]
	switch fields[0] {
	case "mtllib":
		if len(args) < 1 {
			return fmt.Errorf("mtllib with no fields")
		}
		dec.matlibs = append(dec.matlibs, strings.Join(args, " "))
	case "o", "g":
		if len(args) > 0 {
			dec.object = args[0]
		}
		dec.current = nil
	case "usemtl":
		if len(args) < 1 {
			return fmt.Errorf("usemtl with no fields")
		}
		dec.current = dec.group(dec.object, args[0])
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, math.NewVec3(v[0], v[1], v[2]))
	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, math.NewVec3(v[0], v[1], v[2]))
	case "vt":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		// OBJ texture space has V pointing up.
		dec.uvs = append(dec.uvs, math.NewVec2(v[0], 1-v[1]))
	case "f":
		return dec.parseFace(args)
	}
	// Smoothing groups, lines and points are ignored.
	return nil
}

func (dec *objDecoder) group(object, material string) *objGroup {
	for _, g := range dec.groups {
		if g.name == object && g.material == material {
			return g
		}
	}
	g := &objGroup{name: object, material: material}
	dec.groups = append(dec.groups, g)
	return g
}

func (dec *objDecoder) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face with %d vertices", len(args))
	}
	if dec.current == nil {
		dec.current = dec.group(dec.object, "")
	}
	face := make([]objIndex, len(args))
	for i, arg := range args {
		parts := strings.Split(arg, "/")
		var err error
		if face[i].v, err = resolveIndex(parts[0], len(dec.positions)); err != nil {
			return err
		}
		face[i].vt, face[i].vn = -1, -1
		if len(parts) > 1 && parts[1] != "" {
			if face[i].vt, err = resolveIndex(parts[1], len(dec.uvs)); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if face[i].vn, err = resolveIndex(parts[2], len(dec.normals)); err != nil {
				return err
			}
		}
	}
	dec.current.faces = append(dec.current.faces, face)
	return nil
}

// resolveIndex turns a one based, possibly negative OBJ index into a zero
// based one.
func resolveIndex(s string, count int) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	idx := val - 1
	if val < 0 {
		idx = count + val
	}
	if val == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("index %d out of range [1, %d]", val, count)
	}
	return idx, nil
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (dec *objDecoder) parseMtlLine(fields []string) error {
	args := fields[1:]
	if fields[0] == "newmtl" {
		if len(args) < 1 {
			return fmt.Errorf("newmtl with no fields")
		}
		dec.materialIndex[args[0]] = len(dec.materials)
		dec.materials = append(dec.materials, resources.Material{Name: args[0], ShininessStrength: 1})
		dec.matCurrent = len(dec.materials) - 1
		return nil
	}
	if dec.matCurrent < 0 || len(args) == 0 {
		return nil
	}
	mat := &dec.materials[dec.matCurrent]

	// Texture options such as -bm are skipped; the file name comes last.
	file := args[len(args)-1]
	switch fields[0] {
	case "map_Kd":
		mat.Textures[resources.TEXTURE_KIND_DIFFUSE] = file
	case "map_Ks", "map_Ns":
		if mat.Textures[resources.TEXTURE_KIND_SPECULAR] == "" {
			mat.Textures[resources.TEXTURE_KIND_SPECULAR] = file
		}
	case "map_bump", "map_Bump", "bump", "norm":
		mat.Textures[resources.TEXTURE_KIND_NORMAL] = file
	case "Ks":
		ks, err := parseFloats(args, min(len(args), 3))
		if err != nil {
			return err
		}
		var sum float32
		for _, k := range ks {
			sum += k
		}
		mat.ShininessStrength = sum / float32(len(ks))
	}
	return nil
}

/* Mesh building */

func (dec *objDecoder) build() *resources.ModelData {
	model := &resources.ModelData{Materials: dec.materials}
	for _, g := range dec.groups {
		if len(g.faces) == 0 {
			continue
		}
		material := -1
		if idx, ok := dec.materialIndex[g.material]; ok {
			material = idx
		}
		mesh := dec.buildMesh(g)
		mesh.MaterialIndex = material
		model.Meshes = append(model.Meshes, mesh)
	}
	return model
}

func (dec *objDecoder) buildMesh(g *objGroup) resources.MeshData {
	mesh := resources.MeshData{Name: g.name}
	if g.material != "" {
		mesh.Name = g.name + "/" + g.material
	}
	vertices := make(map[objIndex]uint32)
	hasNormals, hasUVs := true, true

	for _, face := range g.faces {
		ids := make([]uint32, len(face))
		for i, corner := range face {
			id, ok := vertices[corner]
			if !ok {
				id = uint32(len(mesh.Positions))
				vertices[corner] = id
				mesh.Positions = append(mesh.Positions, dec.positions[corner.v])
				var n math.Vec3
				if corner.vn >= 0 {
					n = dec.normals[corner.vn]
				} else {
					hasNormals = false
				}
				mesh.Normals = append(mesh.Normals, n)
				var uv math.Vec2
				if corner.vt >= 0 {
					uv = dec.uvs[corner.vt]
				} else {
					hasUVs = false
				}
				mesh.TexCoords = append(mesh.TexCoords, uv)
			}
			ids[i] = id
		}
		for i := 1; i+1 < len(ids); i++ {
			mesh.Indices = append(mesh.Indices, ids[0], ids[i], ids[i+1])
		}
	}

	if !hasNormals {
		generateNormals(&mesh)
	}
	if hasUVs {
		generateTangents(&mesh)
	} else {
		mesh.TexCoords = nil
	}
	return mesh
}

// generateNormals replaces the normals with area weighted face normals.
func generateNormals(mesh *resources.MeshData) {
	normals := make([]math.Vec3, len(mesh.Positions))
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		n := mesh.Positions[b].Sub(mesh.Positions[a]).Cross(mesh.Positions[c].Sub(mesh.Positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalized()
	}
	mesh.Normals = normals
}

// generateTangents computes per vertex tangents and binormals from the
// texture coordinate gradients, orthogonalized against the normals.
func generateTangents(mesh *resources.MeshData) {
	tangents := make([]math.Vec3, len(mesh.Positions))
	binormals := make([]math.Vec3, len(mesh.Positions))
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		e1 := mesh.Positions[b].Sub(mesh.Positions[a])
		e2 := mesh.Positions[c].Sub(mesh.Positions[a])
		d1 := mesh.TexCoords[b].Sub(mesh.TexCoords[a])
		d2 := mesh.TexCoords[c].Sub(mesh.TexCoords[a])
		det := d1.X*d2.Y - d2.X*d1.Y
		if det == 0 {
			continue
		}
		r := 1 / det
		t := e1.MulScalar(d2.Y).Sub(e2.MulScalar(d1.Y)).MulScalar(r)
		bt := e2.MulScalar(d1.X).Sub(e1.MulScalar(d2.X)).MulScalar(r)
		for _, v := range [3]uint32{a, b, c} {
			tangents[v] = tangents[v].Add(t)
			binormals[v] = binormals[v].Add(bt)
		}
	}
	for i := range tangents {
		n := mesh.Normals[i]
		t := tangents[i].Sub(n.MulScalar(n.Dot(tangents[i]))).Normalized()
		tangents[i] = t
		binormals[i] = binormals[i].Sub(n.MulScalar(n.Dot(binormals[i]))).Normalized()
	}
	mesh.Tangents = tangents
	mesh.Binormals = binormals
}
