// Package glb writes and reads binary glTF 2.0 (GLB) containers.
//
// A GLB file is a 12-byte header followed by a JSON chunk describing the
// scene and a BIN chunk holding every vertex, index and image buffer.
// All integers are little-endian and chunk payloads are 4-byte aligned.
package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/assetgen/pkg/asset"
	"github.com/Faultbox/assetgen/pkg/texture"
)

// Generator is written to the asset.generator field.
const Generator = "assetgen"

// ErrExport is returned when an asset cannot be serialized or written.
var ErrExport = errors.New("export failed")

// binWriter packs buffer views into one 4-byte aligned blob.
type binWriter struct {
	buf   bytes.Buffer
	views []bufferView
}

// add appends data as a new buffer view and returns its index.
func (w *binWriter) add(data []byte, target int) int {
	w.align()
	view := bufferView{
		Buffer:     0,
		ByteOffset: w.buf.Len(),
		ByteLength: len(data),
	}
	if target != 0 {
		view.Target = ptr(target)
	}
	w.buf.Write(data)
	w.views = append(w.views, view)
	return len(w.views) - 1
}

func (w *binWriter) align() {
	for w.buf.Len()%4 != 0 {
		w.buf.WriteByte(0)
	}
}

// Encode serializes an asset into a GLB container.
func Encode(a *asset.Asset) ([]byte, error) {
	if a == nil || a.Mesh == nil {
		return nil, fmt.Errorf("%w: nil asset", ErrExport)
	}
	if err := a.Mesh.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExport, a.Name, err)
	}
	if a.Material.BaseColor == nil {
		return nil, fmt.Errorf("%w: %s has no base color texture", ErrExport, a.Name)
	}

	m := a.Mesh
	var w binWriter
	doc := document{
		Asset:   assetInfo{Version: "2.0", Generator: Generator},
		Scene:   ptr(0),
		Scenes:  []scene{{Name: a.Name, Nodes: []int{0}}},
		Buffers: []buffer{{}},
	}

	// Vertex attributes
	positions := make([]byte, 0, len(m.Positions)*12)
	for _, p := range m.Positions {
		positions = appendFloats(positions, p[0], p[1], p[2])
	}
	normals := make([]byte, 0, len(m.Normals)*12)
	for _, n := range m.Normals {
		normals = appendFloats(normals, n[0], n[1], n[2])
	}
	uvs := make([]byte, 0, len(m.UVs)*8)
	for _, uv := range m.UVs {
		uvs = appendFloats(uvs, uv[0], uv[1])
	}

	min, max := m.Bounds()
	count := m.VertexCount()
	doc.Accessors = append(doc.Accessors,
		accessor{
			BufferView:    ptr(w.add(positions, targetArrayBuffer)),
			ComponentType: ComponentFloat,
			Count:         count,
			Type:          accessorVec3,
			Min:           []float32{min[0], min[1], min[2]},
			Max:           []float32{max[0], max[1], max[2]},
		},
		accessor{
			BufferView:    ptr(w.add(normals, targetArrayBuffer)),
			ComponentType: ComponentFloat,
			Count:         count,
			Type:          accessorVec3,
		},
		accessor{
			BufferView:    ptr(w.add(uvs, targetArrayBuffer)),
			ComponentType: ComponentFloat,
			Count:         count,
			Type:          accessorVec2,
		},
	)

	// Indices
	indices, componentType := packIndices(m.Faces)
	doc.Accessors = append(doc.Accessors, accessor{
		BufferView:    ptr(w.add(indices, targetElementArrayBuffer)),
		ComponentType: componentType,
		Count:         len(m.Faces) * 3,
		Type:          accessorScalar,
	})

	doc.Meshes = []meshDef{{
		Name: a.Name,
		Primitives: []primitive{{
			Attributes: map[string]int{"POSITION": 0, "NORMAL": 1, "TEXCOORD_0": 2},
			Indices:    ptr(3),
			Material:   ptr(0),
			Mode:       ptr(modeTriangles),
		}},
	}}

	n := node{Name: a.Name, Mesh: ptr(0)}
	if a.Scale != 0 && a.Scale != 1 {
		n.Scale = &[3]float32{a.Scale, a.Scale, a.Scale}
	}
	doc.Nodes = []node{n}

	// Material and embedded images
	doc.Samplers = []sampler{{
		MagFilter: filterLinear,
		MinFilter: filterLinearMipmapLinear,
		WrapS:     wrapRepeat,
		WrapT:     wrapRepeat,
	}}
	addTexture := func(tex *texture.Texture, name string) (int, error) {
		data, err := tex.EncodePNG()
		if err != nil {
			return 0, fmt.Errorf("%w: %s %s: %w", ErrExport, a.Name, name, err)
		}
		doc.Images = append(doc.Images, imageDef{
			Name:       name,
			BufferView: ptr(w.add(data, 0)),
			MimeType:   mimePNG,
		})
		doc.Textures = append(doc.Textures, textureRef{
			Sampler: ptr(0),
			Source:  ptr(len(doc.Images) - 1),
		})
		return len(doc.Textures) - 1, nil
	}

	baseIndex, err := addTexture(a.Material.BaseColor, a.Name+"_basecolor")
	if err != nil {
		return nil, err
	}
	mat := material{
		Name: a.Name + "_material",
		PbrMetallicRoughness: &pbrMetallicRoughness{
			BaseColorTexture: &textureInfo{Index: baseIndex},
			MetallicFactor:   ptr(a.Material.Metallic),
			RoughnessFactor:  ptr(a.Material.Roughness),
		},
	}
	if a.Material.NormalMap != nil {
		normalIndex, err := addTexture(a.Material.NormalMap, a.Name+"_normal")
		if err != nil {
			return nil, err
		}
		mat.NormalTexture = &textureInfo{Index: normalIndex}
	}
	doc.Materials = []material{mat}

	w.align()
	doc.BufferViews = w.views
	doc.Buffers[0].ByteLength = w.buf.Len()

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s descriptor: %w", ErrExport, a.Name, err)
	}
	return container(jsonData, w.buf.Bytes())
}

// container frames a JSON descriptor and binary blob as a GLB file.
func container(jsonData, binData []byte) ([]byte, error) {
	jsonLen := padded(len(jsonData))
	binLen := padded(len(binData))
	total := headerSize + chunkHeaderSize + jsonLen + chunkHeaderSize + binLen
	if uint64(total) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: container of %d bytes exceeds 4 GiB", ErrExport, total)
	}

	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, Magic)
	out = binary.LittleEndian.AppendUint32(out, Version)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))

	out = binary.LittleEndian.AppendUint32(out, uint32(jsonLen))
	out = binary.LittleEndian.AppendUint32(out, ChunkJSON)
	out = append(out, jsonData...)
	out = append(out, bytes.Repeat([]byte{' '}, jsonLen-len(jsonData))...)

	out = binary.LittleEndian.AppendUint32(out, uint32(binLen))
	out = binary.LittleEndian.AppendUint32(out, ChunkBIN)
	out = append(out, binData...)
	out = append(out, make([]byte, binLen-len(binData))...)

	return out, nil
}

// packIndices flattens faces, using 16-bit indices when every index fits.
func packIndices(faces [][3]uint32) ([]byte, int) {
	var maxIndex uint32
	for _, f := range faces {
		for _, idx := range f {
			if idx > maxIndex {
				maxIndex = idx
			}
		}
	}

	if maxIndex <= math.MaxUint16 {
		out := make([]byte, 0, len(faces)*6)
		for _, f := range faces {
			for _, idx := range f {
				out = binary.LittleEndian.AppendUint16(out, uint16(idx))
			}
		}
		return out, ComponentUnsignedShort
	}

	out := make([]byte, 0, len(faces)*12)
	for _, f := range faces {
		for _, idx := range f {
			out = binary.LittleEndian.AppendUint32(out, idx)
		}
	}
	return out, ComponentUnsignedInt
}

func appendFloats(b []byte, values ...float32) []byte {
	for _, v := range values {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

func padded(n int) int {
	return (n + 3) &^ 3
}
