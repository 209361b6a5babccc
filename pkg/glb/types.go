package glb

// glTF 2.0 JSON schema subset written and read by this package.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html

// GLB container constants.
const (
	Magic     uint32 = 0x46546C67 // "glTF"
	Version   uint32 = 2
	ChunkJSON uint32 = 0x4E4F534A // "JSON"
	ChunkBIN  uint32 = 0x004E4942 // "BIN\x00"

	headerSize      = 12
	chunkHeaderSize = 8
)

// Accessor component types.
const (
	ComponentUnsignedShort = 5123
	ComponentUnsignedInt   = 5125
	ComponentFloat         = 5126
)

// Buffer view targets.
const (
	targetArrayBuffer        = 34962
	targetElementArrayBuffer = 34963
)

const (
	modeTriangles = 4

	accessorScalar = "SCALAR"
	accessorVec2   = "VEC2"
	accessorVec3   = "VEC3"

	filterLinear             = 9729
	filterLinearMipmapLinear = 9987
	wrapRepeat               = 10497

	mimePNG = "image/png"
)

type header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type chunkHeader struct {
	Length uint32
	Type   uint32
}

type document struct {
	Asset       assetInfo    `json:"asset"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []scene      `json:"scenes,omitempty"`
	Nodes       []node       `json:"nodes,omitempty"`
	Meshes      []meshDef    `json:"meshes,omitempty"`
	Accessors   []accessor   `json:"accessors,omitempty"`
	BufferViews []bufferView `json:"bufferViews,omitempty"`
	Buffers     []buffer     `json:"buffers,omitempty"`
	Materials   []material   `json:"materials,omitempty"`
	Textures    []textureRef `json:"textures,omitempty"`
	Images      []imageDef   `json:"images,omitempty"`
	Samplers    []sampler    `json:"samplers,omitempty"`
}

type assetInfo struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

type scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

type node struct {
	Name  string      `json:"name,omitempty"`
	Mesh  *int        `json:"mesh,omitempty"`
	Scale *[3]float32 `json:"scale,omitempty"`
}

type meshDef struct {
	Name       string      `json:"name,omitempty"`
	Primitives []primitive `json:"primitives"`
}

type primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

type accessor struct {
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Max           []float32 `json:"max,omitempty"`
	Min           []float32 `json:"min,omitempty"`
}

type bufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
	Target     *int `json:"target,omitempty"`
}

type buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

type material struct {
	Name                 string                `json:"name,omitempty"`
	PbrMetallicRoughness *pbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *textureInfo          `json:"normalTexture,omitempty"`
}

// Factors are pointers so that 0 is written; glTF defaults both to 1.
type pbrMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture *textureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32     `json:"roughnessFactor,omitempty"`
}

type textureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

type textureRef struct {
	Sampler *int `json:"sampler,omitempty"`
	Source  *int `json:"source,omitempty"`
}

type imageDef struct {
	Name       string `json:"name,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
}

type sampler struct {
	MagFilter int `json:"magFilter,omitempty"`
	MinFilter int `json:"minFilter,omitempty"`
	WrapS     int `json:"wrapS,omitempty"`
	WrapT     int `json:"wrapT,omitempty"`
}

// componentSize returns the byte size of one accessor component.
func componentSize(componentType int) int {
	switch componentType {
	case ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// componentCount returns the number of components per accessor element.
func componentCount(accessorType string) int {
	switch accessorType {
	case accessorScalar:
		return 1
	case accessorVec2:
		return 2
	case accessorVec3:
		return 3
	default:
		return 0
	}
}

func ptr[T any](v T) *T {
	return &v
}
