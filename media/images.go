package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"htmldocx/config"
)

// Image processing for package media.

// subtypeToExt maps MIME subtype from data URI to file extension.
func subtypeToExt(subtype string) string {
	switch s := strings.ToLower(subtype); s {
	case "svg+xml", "svg":
		return "svg"
	case "x-icon", "vnd.microsoft.icon":
		return "ico"
	case "tif":
		return "tiff"
	default:
		return s
	}
}

// sniffExt detects image type by content, empty when unknown.
func sniffExt(data []byte) string {
	// filetype does not know about SVG
	if head := data[:min(len(data), 512)]; bytes.Contains(head, []byte("<svg")) {
		return "svg"
	}
	kind, err := filetype.Match(data)
	if err == nil && kind != filetype.Unknown {
		return subtypeToExt(kind.Extension)
	}
	return ""
}

// normalized is image data ready to be stored in the package.
type normalized struct {
	data   []byte
	ext    string
	width  int
	height int
}

// normalize converts formats Word cannot display, limits image size and
// detects intrinsic dimensions. It never fails: when anything goes wrong
// original data is kept and dimensions are left unknown.
func normalize(data []byte, ext string, cfg *config.ImagesConfig, log *zap.Logger) normalized {
	res := normalized{data: data, ext: ext}

	if ext == "svg" {
		w, h, err := svgSize(data)
		if err != nil {
			log.Warn("Unable to parse SVG image", zap.Error(err))
			return res
		}
		res.width, res.height = w, h
		if cfg == nil || !cfg.RasterizeSVG {
			return res
		}
		tw, th := limitDim(w, h, cfg)
		img, err := rasterizeSVG(data, tw, th)
		if err != nil {
			log.Warn("Unable to rasterize SVG image", zap.Error(err))
			return res
		}
		if out, err := encodePNG(img); err != nil {
			log.Warn("Unable to encode rasterized SVG image", zap.Error(err))
		} else {
			res.data, res.ext = out, "png"
		}
		return res
	}

	conf, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		log.Debug("Unable to detect image dimensions", zap.String("ext", ext), zap.Error(err))
		return res
	}
	res.width, res.height = conf.Width, conf.Height

	convert := format == "webp" && cfg != nil && cfg.ConvertWebP
	resize := cfg != nil && cfg.MaxDimension > 0 && (conf.Width > cfg.MaxDimension || conf.Height > cfg.MaxDimension)
	if !convert && !resize {
		return res
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("Unable to decode image", zap.String("format", format), zap.Error(err))
		return res
	}
	if resize {
		img = imaging.Fit(img, cfg.MaxDimension, cfg.MaxDimension, imaging.Lanczos)
		log.Debug("Image scaled down",
			zap.Int("width", conf.Width), zap.Int("height", conf.Height),
			zap.Int("new width", img.Bounds().Dx()), zap.Int("new height", img.Bounds().Dy()))
	}

	var out []byte
	if format == "jpeg" && !convert {
		out, err = encodeJPEG(img)
	} else {
		out, err = encodePNG(img)
		ext = "png"
	}
	if err != nil {
		log.Warn("Unable to encode processed image", zap.String("format", format), zap.Error(err))
		return res
	}
	res.data, res.ext = out, ext
	res.width, res.height = img.Bounds().Dx(), img.Bounds().Dy()
	return res
}

// limitDim returns rasterization box for SVG of given size.
func limitDim(w, h int, cfg *config.ImagesConfig) (int, int) {
	if cfg.MaxDimension <= 0 || (w <= cfg.MaxDimension && h <= cfg.MaxDimension) {
		return 0, 0
	}
	return cfg.MaxDimension, cfg.MaxDimension
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, toGray(img), imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("unable to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("unable to encode JPEG: %w", err)
	}
	out, _, err := ensureJFIF(buf.Bytes(), dpiPxPerInch, screenDPI, screenDPI)
	if err != nil {
		return nil, fmt.Errorf("unable to encode JPEG: %w", err)
	}
	return out, nil
}
