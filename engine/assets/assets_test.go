package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestLoadTexture2D(t *testing.T) {
	fsys := fstest.MapFS{
		"textures/red.png": {Data: encodePNG(t, solidImage(4, 2, color.NRGBA{R: 255, G: 10, B: 20, A: 255}))},
	}
	data, err := NewTextureLoader(fsys).LoadTexture("textures/red.png")
	require.NoError(t, err)

	assert.Equal(t, metadata.TEXTURE_TYPE_2D, data.Type)
	assert.Equal(t, metadata.PIXEL_FORMAT_A8R8G8B8, data.Format)
	assert.Equal(t, uint32(4), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	// 4x2, 2x1, 1x1
	require.Len(t, data.Mips, 3)
	assert.Len(t, data.Mips[0], 4*2*4)
	assert.Len(t, data.Mips[1], 2*1*4)
	assert.Len(t, data.Mips[2], 4)
	// B, G, R, A
	assert.Equal(t, []byte{20, 10, 255, 255}, data.Mips[0][:4])
	assert.Equal(t, []byte{20, 10, 255, 255}, data.Mips[2])
}

func TestLoadTextureGrayscale(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range gray.Pix {
		gray.Pix[i] = 77
	}
	fsys := fstest.MapFS{"spec.png": {Data: encodePNG(t, gray)}}

	data, err := NewTextureLoader(fsys).LoadTexture("spec.png")
	require.NoError(t, err)
	assert.Equal(t, metadata.PIXEL_FORMAT_L8, data.Format)
	require.Len(t, data.Mips, 2)
	assert.Equal(t, []byte{77, 77, 77, 77}, data.Mips[0])
	assert.Equal(t, []byte{77}, data.Mips[1])
}

func TestLoadTextureCube(t *testing.T) {
	fsys := fstest.MapFS{}
	for i, face := range cubeFaces {
		c := color.NRGBA{R: uint8(i * 40), A: 255}
		fsys["sky/"+face+".png"] = &fstest.MapFile{Data: encodePNG(t, solidImage(2, 2, c))}
	}

	data, err := NewTextureLoader(fsys).LoadTexture("sky")
	require.NoError(t, err)
	assert.Equal(t, metadata.TEXTURE_TYPE_CUBE, data.Type)
	require.Len(t, data.Mips, 2)
	assert.Len(t, data.Mips[0], 6*2*2*4)
	assert.Len(t, data.Mips[1], 6*4)
	// Faces are stored in posx, negx, posy, negy, posz, negz order.
	for i := range cubeFaces {
		assert.Equal(t, uint8(i*40), data.Mips[1][i*4+2])
	}
}

func TestLoadTextureCubeMissingFace(t *testing.T) {
	fsys := fstest.MapFS{"sky/posx.png": {Data: encodePNG(t, solidImage(2, 2, color.White))}}

	_, err := NewTextureLoader(fsys).LoadTexture("sky")
	var loadErr *core.ResourceLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "sky", loadErr.Path)
}

func TestLoadTextureErrors(t *testing.T) {
	fsys := fstest.MapFS{"broken.png": {Data: []byte("not an image")}}
	loader := NewTextureLoader(fsys)

	var loadErr *core.ResourceLoadError
	_, err := loader.LoadTexture("missing.png")
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, core.LoadStageOpen, loadErr.Stage)

	_, err = loader.LoadTexture("broken.png")
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, core.LoadStageDecode, loadErr.Stage)
}

const quadOBJ = `# two materials, one quad each
mtllib quad.mtl
o floor
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
usemtl stone
f 1/1/1 2/2/1 3/3/1 4/4/1
o wall
usemtl brick
f -4/-4 -3/-3 -2/-2
`

const quadMTL = `newmtl stone
Ks 0.5 0.5 0.5
map_Kd textures/stone.png
map_bump -bm 0.5 textures/stone_ddn.png
newmtl brick
map_Kd textures/brick.png
map_Ks textures/brick_spec.png
`

func TestLoadModel(t *testing.T) {
	fsys := fstest.MapFS{
		"models/quad.obj": {Data: []byte(quadOBJ)},
		"models/quad.mtl": {Data: []byte(quadMTL)},
	}
	model, err := NewModelLoader(fsys).LoadModel("models/quad.obj")
	require.NoError(t, err)

	require.Len(t, model.Materials, 2)
	stone, brick := model.Materials[0], model.Materials[1]
	assert.Equal(t, "textures/stone.png", stone.Textures[resources.TEXTURE_KIND_DIFFUSE])
	assert.Equal(t, "textures/stone_ddn.png", stone.Textures[resources.TEXTURE_KIND_NORMAL])
	assert.Empty(t, stone.Textures[resources.TEXTURE_KIND_SPECULAR])
	assert.InDelta(t, 0.5, stone.ShininessStrength, 1e-6)
	assert.Equal(t, "textures/brick_spec.png", brick.Textures[resources.TEXTURE_KIND_SPECULAR])
	assert.InDelta(t, 1, brick.ShininessStrength, 1e-6)

	require.Len(t, model.Meshes, 2)
	floor := model.Meshes[0]
	assert.Equal(t, "floor/stone", floor.Name)
	assert.Equal(t, 0, floor.MaterialIndex)
	assert.Len(t, floor.Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, floor.Indices)
	require.Len(t, floor.Tangents, 4)
	require.Len(t, floor.Binormals, 4)
	for i := range floor.Positions {
		assert.InDelta(t, 1, floor.Normals[i].Y, 1e-6)
		assert.InDelta(t, 1, floor.Tangents[i].X, 1e-5)
		assert.InDelta(t, 0, floor.Tangents[i].Dot(floor.Normals[i]), 1e-5)
	}

	// The wall has no normals, they are generated from the face.
	wall := model.Meshes[1]
	assert.Equal(t, 1, wall.MaterialIndex)
	assert.Len(t, wall.Indices, 3)
	for _, n := range wall.Normals {
		assert.InDelta(t, 1, n.Length(), 1e-5)
	}
}

func TestLoadModelWithoutMaterials(t *testing.T) {
	fsys := fstest.MapFS{
		"tri.obj": {Data: []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")},
	}
	model, err := NewModelLoader(fsys).LoadModel("tri.obj")
	require.NoError(t, err)
	require.Len(t, model.Meshes, 1)
	assert.Equal(t, -1, model.Meshes[0].MaterialIndex)
	assert.Empty(t, model.Meshes[0].TexCoords)
	assert.Empty(t, model.Meshes[0].Tangents)
	assert.InDelta(t, 1, model.Meshes[0].Normals[0].Z, 1e-6)
}

func TestLoadModelBadIndex(t *testing.T) {
	fsys := fstest.MapFS{"bad.obj": {Data: []byte("v 0 0 0\nf 1 2 3\n")}}
	_, err := NewModelLoader(fsys).LoadModel("bad.obj")

	var loadErr *core.ResourceLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, core.LoadStageDecode, loadErr.Stage)
	assert.Contains(t, err.Error(), "line 2")
}

func TestAssetManagerRecordsShaderChanges(t *testing.T) {
	core.SetLogLevel(core.LogLevelError)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shaders"), 0o755))
	shader := filepath.Join(root, "shaders", "ColorCopy.hlsl")
	require.NoError(t, os.WriteFile(shader, []byte("const float f;"), 0o644))

	am, err := NewAssetManager(root)
	require.NoError(t, err)
	require.NoError(t, am.Watch())
	defer am.Close()

	require.NoError(t, os.WriteFile(shader, []byte("const float g;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "shaders", "notes.txt"), []byte("x"), 0o644))

	var changes map[AssetType][]string
	assert.Eventually(t, func() bool {
		for k, v := range am.Changes() {
			if changes == nil {
				changes = make(map[AssetType][]string)
			}
			changes[k] = append(changes[k], v...)
		}
		return len(changes[ASSET_TYPE_SHADER]) > 0
	}, 5*time.Second, 20*time.Millisecond)

	assert.Contains(t, changes[ASSET_TYPE_SHADER], "shaders/ColorCopy.hlsl")
	assert.NotContains(t, changes, ASSET_TYPE_NONE)
}

func TestAssetManagerClose(t *testing.T) {
	am, err := NewAssetManager(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, am.Watch())
	require.NoError(t, am.Close())
	assert.ErrorIs(t, am.Close(), ErrClosed)
	assert.ErrorIs(t, am.Watch(), ErrClosed)

	_, err = NewAssetManager(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

const testFont = `info face="Test" size=8 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=0 aa=1 padding=0,0,0,0 spacing=0,0 outline=0
common lineHeight=8 base=7 scaleW=16 scaleH=16 pages=1 packed=0 alphaChnl=0 redChnl=0 greenChnl=0 blueChnl=0
page id=0 file="test_0.png"
chars count=1
char id=65   x=0     y=0     width=6     height=8     xoffset=0     yoffset=0     xadvance=7     page=0  chnl=15
kernings count=0
`

func TestLoadingScreenKeepsNewestLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.fnt"), []byte(testFont), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_0.png"), encodePNG(t, solidImage(16, 16, color.White)), 0o644))

	// Room for two lines of 8 pixels between the margins.
	screen, err := NewLoadingScreen(filepath.Join(dir, "test.fnt"), 64, 2*LOADING_SCREEN_MARGIN+16)
	require.NoError(t, err)

	img := screen.Render("A\nAA\nAAA\n")
	assert.Equal(t, []string{"AA", "AAA"}, screen.Lines())

	lit := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !lit; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0 {
				lit = true
				break
			}
		}
	}
	assert.True(t, lit, "no glyph was drawn")
}
