package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"go.uber.org/zap/zaptest"

	"htmldocx/config"
)

func TestRasterizeSVG(t *testing.T) {
	svg := []byte(testSVG)

	tests := []struct {
		name         string
		targetW      int
		targetH      int
		wantW, wantH int
	}{
		{"intrinsic", 0, 0, 100, 50},
		{"scale_by_width", 200, 0, 200, 100},
		{"scale_by_height", 0, 200, 400, 200},
		{"fit_box", 150, 150, 150, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := rasterizeSVG(svg, tt.targetW, tt.targetH)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Fatalf("unexpected bounds: %v", img.Bounds())
			}
		})
	}

	t.Run("clamped", func(t *testing.T) {
		saved := maxRasterDim
		maxRasterDim = 64
		defer func() { maxRasterDim = saved }()

		img, err := rasterizeSVG(svg, 1000, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
			t.Fatalf("unexpected bounds: %v", img.Bounds())
		}
	})
}

func TestNormalize(t *testing.T) {
	log := zaptest.NewLogger(t)

	t.Run("untouched", func(t *testing.T) {
		data := pngBytes(t, 40, 20)
		res := normalize(data, "png", &config.ImagesConfig{MaxDimension: 100}, log)
		if !bytes.Equal(res.data, data) || res.ext != "png" {
			t.Error("normalize() changed image which needs no processing")
		}
		if res.width != 40 || res.height != 20 {
			t.Errorf("normalize() size = %dx%d, want 40x20", res.width, res.height)
		}
	})

	t.Run("scaled png", func(t *testing.T) {
		res := normalize(pngBytes(t, 40, 20), "png", &config.ImagesConfig{MaxDimension: 10}, log)
		if res.width != 10 || res.height != 5 || res.ext != "png" {
			t.Errorf("normalize() = %dx%d %s, want 10x5 png", res.width, res.height, res.ext)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(res.data))
		if err != nil || cfg.Width != 10 {
			t.Errorf("scaled data decodes to %+v, %v", cfg, err)
		}
	})

	t.Run("scaled jpeg keeps format", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, testImage(30, 30), nil); err != nil {
			t.Fatal(err)
		}
		res := normalize(buf.Bytes(), "jpeg", &config.ImagesConfig{MaxDimension: 15}, log)
		_, format, err := image.DecodeConfig(bytes.NewReader(res.data))
		if err != nil || format != "jpeg" || res.ext != "jpeg" {
			t.Errorf("normalize() format = %q, ext = %q, err = %v", format, res.ext, err)
		}
	})

	t.Run("svg kept", func(t *testing.T) {
		res := normalize([]byte(testSVG), "svg", &config.ImagesConfig{}, log)
		if res.ext != "svg" || res.width != 100 || res.height != 50 {
			t.Errorf("normalize() = %s %dx%d", res.ext, res.width, res.height)
		}
	})

	t.Run("svg rasterized within limit", func(t *testing.T) {
		res := normalize([]byte(testSVG), "svg", &config.ImagesConfig{RasterizeSVG: true, MaxDimension: 40}, log)
		if res.ext != "png" {
			t.Fatalf("normalize() ext = %q, want png", res.ext)
		}
		conf, err := png.DecodeConfig(bytes.NewReader(res.data))
		if err != nil {
			t.Fatalf("png.DecodeConfig() error = %v", err)
		}
		if conf.Width != 40 || conf.Height != 20 {
			t.Errorf("rasterized size = %dx%d, want 40x20", conf.Width, conf.Height)
		}
	})

	t.Run("broken data", func(t *testing.T) {
		res := normalize([]byte("garbage"), "png", &config.ImagesConfig{ConvertWebP: true}, log)
		if string(res.data) != "garbage" || res.width != 0 {
			t.Error("normalize() of undecodable data must keep it as is")
		}
	})
}

func TestSniffExt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", pngBytes(t, 1, 1), "png"},
		{"gif", gifBytes(t, 1, 1), "gif"},
		{"svg", []byte(`<?xml version="1.0"?>` + testSVG), "svg"},
		{"unknown", []byte("plain text"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffExt(tt.data); got != tt.want {
				t.Errorf("sniffExt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubtypeToExt(t *testing.T) {
	tests := map[string]string{
		"jpeg":    "jpeg",
		"PNG":     "png",
		"svg+xml": "svg",
		"tif":     "tiff",
	}
	for in, want := range tests {
		if got := subtypeToExt(in); got != want {
			t.Errorf("subtypeToExt(%q) = %q, want %q", in, got, want)
		}
	}
}
