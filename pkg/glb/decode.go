package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/assetgen/pkg/mesh"
)

// GLB decoding errors.
var (
	ErrInvalidMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedVersion = errors.New("unsupported GLB version")
	ErrTruncated          = errors.New("truncated GLB data")
	ErrLengthMismatch     = errors.New("GLB length mismatch")
	ErrMissingChunk       = errors.New("GLB missing chunk")
	ErrInvalidAccessor    = errors.New("invalid GLB accessor")
)

// Image is an embedded image.
type Image struct {
	Name     string
	MimeType string
	Data     []byte
}

// Model is the first mesh primitive of a decoded GLB file.
type Model struct {
	Generator string
	Name      string
	Scale     float32
	MeshCount int

	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32

	// IndexComponentType is ComponentUnsignedShort or ComponentUnsignedInt.
	IndexComponentType int

	Roughness float32
	Metallic  float32
	HasNormal bool
	Images    []Image

	// Length is the total length recorded in the header.
	Length uint32
	// JSON is the raw descriptor chunk without padding.
	JSON []byte
}

// VertexCount returns the number of vertices.
func (m *Model) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Model) TriangleCount() int {
	return len(m.Indices) / 3
}

// Mesh returns the decoded geometry as a mesh sharing the model's buffers.
func (m *Model) Mesh() *mesh.Mesh {
	faces := make([][3]uint32, len(m.Indices)/3)
	for i := range faces {
		faces[i] = [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
	}
	return &mesh.Mesh{
		Positions: m.Positions,
		Normals:   m.Normals,
		UVs:       m.UVs,
		Faces:     faces,
	}
}

// DecodeFile reads and decodes a GLB file.
func DecodeFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read GLB file: %w", err)
	}
	return Decode(data)
}

// Decode parses GLB data.
func Decode(data []byte) (*Model, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	r := bytes.NewReader(data)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08X", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if int(h.Length) != len(data) {
		return nil, fmt.Errorf("%w: header says %d, data is %d bytes", ErrLengthMismatch, h.Length, len(data))
	}

	jsonData, err := readChunk(r, ChunkJSON)
	if err != nil {
		return nil, err
	}
	var binData []byte
	if r.Len() > 0 {
		if binData, err = readChunk(r, ChunkBIN); err != nil {
			return nil, err
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrLengthMismatch, r.Len())
	}

	var doc document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: glTF %q", ErrUnsupportedVersion, doc.Asset.Version)
	}
	if len(doc.Buffers) > 0 {
		if binData == nil {
			return nil, fmt.Errorf("%w: BIN", ErrMissingChunk)
		}
		if doc.Buffers[0].ByteLength > len(binData) {
			return nil, fmt.Errorf("%w: buffer of %d bytes in %d byte BIN chunk",
				ErrLengthMismatch, doc.Buffers[0].ByteLength, len(binData))
		}
	}

	d := decoder{doc: &doc, bin: binData}
	model := &Model{
		Generator: doc.Asset.Generator,
		MeshCount: len(doc.Meshes),
		Scale:     1,
		Length:    h.Length,
		JSON:      bytes.TrimRight(jsonData, " "),
	}
	if len(doc.Nodes) > 0 {
		model.Name = doc.Nodes[0].Name
		if s := doc.Nodes[0].Scale; s != nil {
			model.Scale = s[0]
		}
	}
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return model, nil
	}

	prim := doc.Meshes[0].Primitives[0]
	if model.Positions, err = d.vec3(prim.Attributes, "POSITION"); err != nil {
		return nil, err
	}
	if model.Normals, err = d.vec3(prim.Attributes, "NORMAL"); err != nil {
		return nil, err
	}
	if model.UVs, err = d.vec2(prim.Attributes, "TEXCOORD_0"); err != nil {
		return nil, err
	}
	if prim.Indices != nil {
		if model.Indices, model.IndexComponentType, err = d.indices(*prim.Indices); err != nil {
			return nil, err
		}
		for _, idx := range model.Indices {
			if int(idx) >= len(model.Positions) {
				return nil, fmt.Errorf("%w: index %d of %d vertices", ErrInvalidAccessor, idx, len(model.Positions))
			}
		}
	}

	model.Roughness, model.Metallic = 1, 1
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		mat := doc.Materials[*prim.Material]
		if pbr := mat.PbrMetallicRoughness; pbr != nil {
			if pbr.RoughnessFactor != nil {
				model.Roughness = *pbr.RoughnessFactor
			}
			if pbr.MetallicFactor != nil {
				model.Metallic = *pbr.MetallicFactor
			}
		}
		model.HasNormal = mat.NormalTexture != nil
	}

	for i, img := range doc.Images {
		if img.BufferView == nil {
			continue
		}
		data, err := d.view(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		model.Images = append(model.Images, Image{Name: img.Name, MimeType: img.MimeType, Data: data})
	}
	return model, nil
}

// readChunk reads one chunk header and its payload, which must be of type want.
func readChunk(r *bytes.Reader, want uint32) ([]byte, error) {
	var ch chunkHeader
	if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
		return nil, fmt.Errorf("%w: chunk 0x%08X header", ErrTruncated, want)
	}
	if ch.Type != want {
		return nil, fmt.Errorf("%w: expected chunk 0x%08X, got 0x%08X", ErrMissingChunk, want, ch.Type)
	}
	if ch.Length%4 != 0 {
		return nil, fmt.Errorf("%w: chunk 0x%08X length %d not 4-byte aligned", ErrLengthMismatch, want, ch.Length)
	}
	if int64(ch.Length) > int64(r.Len()) {
		return nil, fmt.Errorf("%w: chunk 0x%08X needs %d bytes, %d left", ErrTruncated, want, ch.Length, r.Len())
	}
	payload := make([]byte, ch.Length)
	r.Read(payload)
	return payload, nil
}

type decoder struct {
	doc *document
	bin []byte
}

// view returns the bytes of a buffer view.
func (d *decoder) view(index int) ([]byte, error) {
	if index < 0 || index >= len(d.doc.BufferViews) {
		return nil, fmt.Errorf("%w: buffer view %d out of range", ErrInvalidAccessor, index)
	}
	bv := d.doc.BufferViews[index]
	if bv.Buffer != 0 {
		return nil, fmt.Errorf("%w: buffer view %d uses external buffer %d", ErrInvalidAccessor, index, bv.Buffer)
	}
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || end > len(d.bin) {
		return nil, fmt.Errorf("%w: buffer view %d [%d:%d] outside %d byte buffer",
			ErrInvalidAccessor, index, bv.ByteOffset, end, len(d.bin))
	}
	return d.bin[bv.ByteOffset:end], nil
}

// elements returns the tightly packed elements of an accessor.
func (d *decoder) elements(index int, wantType string, wantComponents ...int) ([]byte, *accessor, error) {
	if index < 0 || index >= len(d.doc.Accessors) {
		return nil, nil, fmt.Errorf("%w: accessor %d out of range", ErrInvalidAccessor, index)
	}
	acc := &d.doc.Accessors[index]
	if acc.Type != wantType {
		return nil, nil, fmt.Errorf("%w: accessor %d is %s, expected %s", ErrInvalidAccessor, index, acc.Type, wantType)
	}
	typeOK := false
	for _, c := range wantComponents {
		typeOK = typeOK || acc.ComponentType == c
	}
	if !typeOK {
		return nil, nil, fmt.Errorf("%w: accessor %d component type %d", ErrInvalidAccessor, index, acc.ComponentType)
	}
	if acc.BufferView == nil {
		return nil, nil, fmt.Errorf("%w: accessor %d has no buffer view", ErrInvalidAccessor, index)
	}
	data, err := d.view(*acc.BufferView)
	if err != nil {
		return nil, nil, err
	}

	elemSize := componentSize(acc.ComponentType) * componentCount(acc.Type)
	stride := elemSize
	if bv := d.doc.BufferViews[*acc.BufferView]; bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	if acc.Count < 0 || acc.ByteOffset < 0 {
		return nil, nil, fmt.Errorf("%w: accessor %d count %d offset %d", ErrInvalidAccessor, index, acc.Count, acc.ByteOffset)
	}
	if acc.Count == 0 {
		return nil, acc, nil
	}
	if stride < elemSize {
		return nil, nil, fmt.Errorf("%w: accessor %d stride %d below element size %d",
			ErrInvalidAccessor, index, stride, elemSize)
	}
	// Compare by division so a huge count cannot overflow.
	avail := len(data) - acc.ByteOffset
	if avail < elemSize || acc.Count-1 > (avail-elemSize)/stride {
		return nil, nil, fmt.Errorf("%w: accessor %d count %d overruns buffer view", ErrInvalidAccessor, index, acc.Count)
	}

	out := make([]byte, acc.Count*elemSize)
	for i := 0; i < acc.Count; i++ {
		src := acc.ByteOffset + i*stride
		copy(out[i*elemSize:(i+1)*elemSize], data[src:src+elemSize])
	}
	return out, acc, nil
}

func (d *decoder) floats(attributes map[string]int, name, accType string) ([]float32, error) {
	index, ok := attributes[name]
	if !ok {
		return nil, nil
	}
	raw, _, err := d.elements(index, accType, ComponentFloat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func (d *decoder) vec3(attributes map[string]int, name string) ([]mgl32.Vec3, error) {
	f, err := d.floats(attributes, name, accessorVec3)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, len(f)/3)
	for i := range out {
		out[i] = mgl32.Vec3{f[i*3], f[i*3+1], f[i*3+2]}
	}
	return out, nil
}

func (d *decoder) vec2(attributes map[string]int, name string) ([]mgl32.Vec2, error) {
	f, err := d.floats(attributes, name, accessorVec2)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec2, len(f)/2)
	for i := range out {
		out[i] = mgl32.Vec2{f[i*2], f[i*2+1]}
	}
	return out, nil
}

func (d *decoder) indices(index int) ([]uint32, int, error) {
	raw, acc, err := d.elements(index, accessorScalar, ComponentUnsignedShort, ComponentUnsignedInt)
	if err != nil {
		return nil, 0, fmt.Errorf("indices: %w", err)
	}
	if acc == nil {
		return nil, 0, nil
	}
	out := make([]uint32, acc.Count)
	for i := range out {
		if acc.ComponentType == ComponentUnsignedShort {
			out[i] = uint32(binary.LittleEndian.Uint16(raw[i*2:]))
		} else {
			out[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
	}
	return out, acc.ComponentType, nil
}
