package assets

import (
	"fmt"
	"image"
	"io/fs"
	"path"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

// Face file names of a cube map directory, in upload order. Any image
// extension is accepted.
var cubeFaces = [6]string{"posx", "negx", "posy", "negy", "posz", "negz"}

/**
 * @brief Decodes textures from an asset file system. A regular file becomes
 * a 2D texture; a directory holding six face images becomes a cube map.
 * Color images are stored as A8R8G8B8 and grayscale ones as L8, each with a
 * full box filtered mip chain.
 */
type TextureLoader struct {
	fsys fs.FS
}

func NewTextureLoader(fsys fs.FS) *TextureLoader {
	return &TextureLoader{fsys: fsys}
}

func (l *TextureLoader) LoadTexture(name string) (*resources.TextureData, error) {
	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		return nil, core.NewResourceLoadError(name, core.LoadStageOpen, err)
	}
	if info.IsDir() {
		return l.loadCube(name)
	}

	img, err := l.decode(name)
	if err != nil {
		return nil, err
	}
	format := formatOf(img)
	bounds := img.Bounds()
	return &resources.TextureData{
		Type:   metadata.TEXTURE_TYPE_2D,
		Format: format,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Depth:  1,
		Mips:   mipChain([]image.Image{img}, format),
	}, nil
}

func (l *TextureLoader) loadCube(dir string) (*resources.TextureData, error) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return nil, core.NewResourceLoadError(dir, core.LoadStageOpen, err)
	}

	faces := make([]image.Image, len(cubeFaces))
	for i, face := range cubeFaces {
		for _, e := range entries {
			if e.IsDir() || strings.TrimSuffix(e.Name(), path.Ext(e.Name())) != face {
				continue
			}
			img, err := l.decode(path.Join(dir, e.Name()))
			if err != nil {
				return nil, err
			}
			faces[i] = img
			break
		}
		if faces[i] == nil {
			return nil, core.NewResourceLoadError(dir, core.LoadStageOpen, fmt.Errorf("missing cube face %s", face))
		}
	}

	size := faces[0].Bounds().Size()
	for i, f := range faces[1:] {
		if f.Bounds().Size() != size {
			return nil, core.NewResourceLoadError(dir, core.LoadStageDecode,
				fmt.Errorf("cube face %s is %v, expected %v", cubeFaces[i+1], f.Bounds().Size(), size))
		}
	}
	if size.X != size.Y {
		return nil, core.NewResourceLoadError(dir, core.LoadStageDecode, fmt.Errorf("cube faces must be square, got %v", size))
	}

	return &resources.TextureData{
		Type:   metadata.TEXTURE_TYPE_CUBE,
		Format: metadata.PIXEL_FORMAT_A8R8G8B8,
		Width:  uint32(size.X),
		Height: uint32(size.Y),
		Depth:  1,
		Mips:   mipChain(faces, metadata.PIXEL_FORMAT_A8R8G8B8),
	}, nil
}

func (l *TextureLoader) decode(name string) (image.Image, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, core.NewResourceLoadError(name, core.LoadStageOpen, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, core.NewResourceLoadError(name, core.LoadStageDecode, err)
	}
	return img, nil
}

func formatOf(img image.Image) metadata.PixelFormat {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return metadata.PIXEL_FORMAT_L8
	}
	return metadata.PIXEL_FORMAT_A8R8G8B8
}

/**
 * @brief Builds the mip chain of one or more faces of the same size. Each
 * level holds every face back to back, tightly packed in the given format.
 */
func mipChain(faces []image.Image, format metadata.PixelFormat) [][]byte {
	size := faces[0].Bounds().Size()
	levels := resources.FullMipCount(uint32(size.X), uint32(size.Y))
	mips := make([][]byte, 0, levels)

	current := make([]*image.NRGBA, len(faces))
	for i, f := range faces {
		current[i] = imaging.Clone(f)
	}
	for level := uint32(0); level < levels; level++ {
		if level > 0 {
			w := max(size.X>>level, 1)
			h := max(size.Y>>level, 1)
			for i := range current {
				current[i] = imaging.Resize(current[i], w, h, imaging.Box)
			}
		}
		var data []byte
		for _, img := range current {
			data = append(data, pack(img, format)...)
		}
		mips = append(mips, data)
	}
	return mips
}

// pack converts img to the byte layout of format. A8R8G8B8 is stored
// B, G, R, A in memory.
func pack(img *image.NRGBA, format metadata.PixelFormat) []byte {
	b := img.Bounds()
	switch format {
	case metadata.PIXEL_FORMAT_L8:
		gray := image.NewGray(b)
		draw.Draw(gray, b, img, b.Min, draw.Src)
		out := make([]byte, 0, b.Dx()*b.Dy())
		for y := 0; y < b.Dy(); y++ {
			row := gray.Pix[y*gray.Stride:]
			out = append(out, row[:b.Dx()]...)
		}
		return out
	default:
		out := make([]byte, 0, b.Dx()*b.Dy()*4)
		for y := 0; y < b.Dy(); y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < b.Dx(); x++ {
				px := row[x*4 : x*4+4]
				out = append(out, px[2], px[1], px[0], px[3])
			}
		}
		return out
	}
}
