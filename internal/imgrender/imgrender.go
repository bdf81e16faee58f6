// Package imgrender converts raster images into character cells for text
// surfaces. Two modes are supported: a grayscale ASCII ramp and ANSI
// truecolor half-blocks, selected by the image_mode directive.
package imgrender

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Mode names accepted by the image_mode directive.
const (
	ModeASCII  = "ascii"
	ModeBlocks = "blocks"
	ModeNone   = "none"
	ModeAuto   = "auto"
)

// Luminance ramp from dark to light.
const ramp = " .:-=+*#%@"

// ASCII renders img into a width×height grid of ramp characters.
func ASCII(img image.Image, width, height int) []string {
	if width < 1 || height < 1 {
		return nil
	}
	gray := imaging.Grayscale(imaging.Resize(img, width, height, imaging.Lanczos))

	out := make([]string, height)
	var b strings.Builder
	for y := range height {
		b.Reset()
		for x := range width {
			r, _, _, _ := gray.At(x, y).RGBA()
			idx := int(r>>8) * (len(ramp) - 1) / 255
			b.WriteByte(ramp[idx])
		}
		out[y] = b.String()
	}
	return out
}

// Blocks renders img with the upper-half-block glyph and 24-bit ANSI colors,
// packing two pixel rows into every text row.
func Blocks(img image.Image, width, height int) []string {
	if width < 1 || height < 1 {
		return nil
	}
	resized := imaging.Resize(img, width, height*2, imaging.Lanczos)

	out := make([]string, height)
	var b strings.Builder
	for y := range height {
		b.Reset()
		for x := range width {
			tr, tg, tb, _ := resized.At(x, y*2).RGBA()
			br, bgc, bb, _ := resized.At(x, y*2+1).RGBA()
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				tr>>8, tg>>8, tb>>8, br>>8, bgc>>8, bb>>8)
		}
		b.WriteString("\x1b[0m")
		out[y] = b.String()
	}
	return out
}

// Render loads the image at path and renders it in the given mode.
// Returns false when the mode is none, the mode is unknown, or the file
// cannot be decoded. Callers fall back to a placeholder.
func Render(path, mode string, width, height int) ([]string, bool) {
	switch mode {
	case ModeASCII, ModeBlocks, ModeAuto, "":
	default:
		return nil, false
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, false
	}
	if height < 1 {
		// Derive from aspect ratio, halved for cell proportions.
		b := img.Bounds()
		if b.Dx() > 0 {
			height = width * b.Dy() / b.Dx() / 2
		}
		if height < 1 {
			height = 1
		}
	}
	if mode == ModeBlocks {
		return Blocks(img, width, height), true
	}
	return ASCII(img, width, height), true
}

// Func adapts a mode to the render.ImageFunc signature.
func Func(mode string) func(path string, width, height int) ([]string, bool) {
	if mode == ModeNone {
		return nil
	}
	return func(path string, width, height int) ([]string, bool) {
		return Render(path, mode, width, height)
	}
}
