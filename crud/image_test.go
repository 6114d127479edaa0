package crud

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

// testImage draws a solid image of the given size.
func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 20, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageCreate(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	img := &domain.Image{
		OwnerType: domain.OwnerTypePost,
		OwnerName: "My First Post!",
		File:      bytes.NewReader(pngBytes(t, 20, 10)),
		Filename:  "photo.PNG",
	}
	if err := s.Image.Create(ctx, img); err != nil {
		t.Fatal(err)
	}
	prefix := "uploads/social_media/posts/my-first-post-"
	if !strings.HasPrefix(img.Key, prefix) || !strings.HasSuffix(img.Key, ".png") {
		t.Fatalf("key = %q, want %s<uuid>.png", img.Key, prefix)
	}
	if img.ContentType != "image/png" {
		t.Fatalf("content type = %q", img.ContentType)
	}

	width, height := storedSize(t, s, img.Key)
	if width != 20 || height != 10 {
		t.Fatalf("stored image is %dx%d, want it untouched", width, height)
	}
	if url := s.Image.URL(ctx, img.Key); url != "/media/"+img.Key {
		t.Fatalf("url = %q", url)
	}
	if url := s.Image.URL(ctx, ""); url != "" {
		t.Fatalf("url of empty key = %q", url)
	}

	if err := s.Image.Delete(ctx, img.Key); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Image.store.Read(ctx, img.Key); err == nil {
		t.Fatal("deleted image is still readable")
	}
}

func TestImageCreateDownscales(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	img := &domain.Image{
		OwnerType: domain.OwnerTypeUser,
		OwnerName: "alice",
		File:      bytes.NewReader(jpegBytes(t, 200, 100)),
		Filename:  "me.jpg",
	}
	if err := s.Image.Create(ctx, img); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(img.Key, "uploads/social_media/users/alice-") || !strings.HasSuffix(img.Key, ".jpeg") {
		t.Fatalf("key = %q", img.Key)
	}
	width, height := storedSize(t, s, img.Key)
	if width != 64 || height != 32 {
		t.Fatalf("stored image is %dx%d, want 64x32", width, height)
	}
}

func TestImageCreateRejects(t *testing.T) {
	s := newTestServices(t)
	valid := pngBytes(t, 4, 4)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"extension", "photo.gif", valid},
		{"content type", "notes.png", []byte("just some text, not an image")},
		{"extension mismatch", "photo.jpeg", valid},
		{"empty", "photo.png", nil},
		{"too large", "photo.png", make([]byte, domain.MaxUploadSize+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &domain.Image{
				OwnerType: domain.OwnerTypePost,
				OwnerName: "post",
				File:      bytes.NewReader(tt.data),
				Filename:  tt.filename,
			}
			assertCode(t, s.Image.Create(context.Background(), img), errs.EINVALID)
		})
	}

	err := s.Image.Create(context.Background(), &domain.Image{OwnerType: domain.OwnerTypePost, Filename: "photo.png"})
	assertCode(t, err, errs.EINVALID)
	err = s.Image.Create(context.Background(), &domain.Image{
		OwnerType: "comments",
		File:      bytes.NewReader(valid),
		Filename:  "photo.png",
	})
	assertCode(t, err, errs.EINTERNAL)
}

// storedSize decodes the dimensions of the image stored under key.
func storedSize(t *testing.T, s *Services, key string) (int, int) {
	t.Helper()
	rc, err := s.Image.store.Read(context.Background(), key)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode stored image: %v", err)
	}
	return cfg.Width, cfg.Height
}
