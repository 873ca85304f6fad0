// Package imaging подготавливает загруженные фото: уменьшение перед отправкой в модель
// и простая склейка для mock-примерки.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// MaxSide: предельная сторона картинки после Shrink.
const MaxSide = 1024

var ErrEmpty = errors.New("empty image")

// Decode разбирает JPEG или PNG.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG кодирует img в JPEG с заданным качеством.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit уменьшает img так, чтобы большая сторона была не больше maxSide. Меньшие картинки не трогает.
func Fit(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return img
	}
	return resize.Thumbnail(uint(maxSide), uint(maxSide), img, resize.Lanczos3)
}

// Shrink декодирует фото, ужимает до MaxSide и перекодирует в JPEG.
func Shrink(data []byte, quality int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(Fit(img, MaxSide), quality)
}

// Composite накладывает одежду на фото человека: ширина одежды 55% ширины человека,
// по центру по горизонтали, верхний край на 35% высоты. Выступающее за кадр обрезается.
func Composite(person, garment image.Image) image.Image {
	pb := person.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, pb.Dx(), pb.Dy()))
	draw.Draw(out, out.Bounds(), person, pb.Min, draw.Src)

	targetW := pb.Dx() * 55 / 100
	gb := garment.Bounds()
	if targetW <= 0 || gb.Dx() <= 0 || gb.Dy() <= 0 {
		return out
	}
	targetH := gb.Dy() * targetW / gb.Dx()
	if targetH <= 0 {
		targetH = 1
	}
	scaled := resize.Resize(uint(targetW), uint(targetH), garment, resize.Bilinear)

	x := (pb.Dx() - targetW) / 2
	y := pb.Dy() * 35 / 100
	dst := image.Rect(x, y, x+targetW, y+targetH).Intersect(out.Bounds())
	draw.Draw(out, dst, scaled, scaled.Bounds().Min, draw.Over)
	return out
}

// MockTryOn — локальная «примерка» без модели: склейка двух фото, результат в JPEG.
func MockTryOn(personData, garmentData []byte) ([]byte, error) {
	person, err := Decode(personData)
	if err != nil {
		return nil, fmt.Errorf("person: %w", err)
	}
	garment, err := Decode(garmentData)
	if err != nil {
		return nil, fmt.Errorf("garment: %w", err)
	}
	return EncodeJPEG(Composite(person, garment), 92)
}

// AverageColor считает средний цвет центральной половины кадра.
func AverageColor(img image.Image) (r, g, b uint8) {
	bd := img.Bounds()
	inner := image.Rect(
		bd.Min.X+bd.Dx()/4, bd.Min.Y+bd.Dy()/4,
		bd.Max.X-bd.Dx()/4, bd.Max.Y-bd.Dy()/4,
	)
	if inner.Empty() {
		inner = bd
	}
	var sr, sg, sb, n uint64
	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		for x := inner.Min.X; x < inner.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			sr += uint64(cr >> 8)
			sg += uint64(cg >> 8)
			sb += uint64(cb >> 8)
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	return uint8(sr / n), uint8(sg / n), uint8(sb / n)
}
