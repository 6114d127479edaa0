package crud

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/logging"
	"github.com/lobodInI/API-Social-Media/storage"
)

// urlExpiry is how long presigned image URLs stay valid.
const urlExpiry = 24 * time.Hour

// ImageService manages Images.
// It implements the domain.ImageService interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image data.
// On success, it passes the data on to imageStore.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	maxDimension int
	imageStore
}

// imageStore writes validated images to the configured storage backend
// and resolves stored keys into URLs.
type imageStore struct {
	store storage.Storage
}

// NewImageService returns an instance of ImageService.
func NewImageService(store storage.Storage, maxDimension int) *ImageService {
	return &ImageService{
		imageValidator{
			maxDimension: maxDimension,
			imageStore: imageStore{
				store: store,
			},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ImageService = &ImageService{}

// Create runs validations needed for storing uploaded images. On success, img.Key
// holds the key the image was stored under.
func (iv *imageValidator) Create(ctx context.Context, img *domain.Image) error {
	err := runImageValFns(img,
		iv.ownerTypeValid,
		iv.extensionValid,
		iv.belowMaxSize,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
		iv.downscale,
		iv.keyUnique,
	)
	if err != nil {
		return err
	}
	return iv.imageStore.Create(ctx, img)
}

// runImageValFns runs any number of functions of type imageValFn on the passed in Image object.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// A imageValFn is any function that takes in a pointer to a domain.Image object and returns an error.
type imageValFn func(img *domain.Image) error

// ownerTypeValid makes sure that the image belongs to a post or a user.
func (iv *imageValidator) ownerTypeValid(img *domain.Image) error {
	if img.OwnerType != domain.OwnerTypePost && img.OwnerType != domain.OwnerTypeUser {
		return fmt.Errorf("image: unknown owner type %q", img.OwnerType)
	}
	if img.File == nil {
		return errs.Errorf(errs.EINVALID, "No file was submitted.")
	}
	return nil
}

// belowMaxSize makes sure that the image to be uploaded does not exceed MaxUploadSize.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	if size > domain.MaxUploadSize {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" exceeds upload size limit of "+strconv.FormatInt(domain.MaxUploadSize>>20, 10)+"MB.",
		)
	}
	if size == 0 {
		return errs.Errorf(errs.EINVALID, "The submitted file is empty.")
	}
	img.Size = size
	return nil
}

// contentTypeValid makes sure that the image to be uploaded is a jpeg or png file,
// judging by its content rather than by the name or the header the client sent.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(img.File, buffer)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer[:n])
	if contentType != "image/jpeg" && contentType != "image/png" {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" invalid content-type, must be image/jpeg or image/png.",
		)
	}
	img.ContentType = contentType
	return nil
}

// contentTypeExtensionMatch makes sure that the image's filename extension and content type match.
func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	contentType := strings.TrimPrefix(img.ContentType, "image/")
	ext := strings.TrimPrefix(img.Extension, ".")
	if contentType != ext {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" content-type "+img.ContentType+" does not match extension "+img.Extension+".",
		)
	}
	return nil
}

// extensionValid makes sure that the image to be uploaded has the extension .jpeg,
// .jpg or .png. If the extension is .jpg it will be renamed to .jpeg for consistency.
func (iv *imageValidator) extensionValid(img *domain.Image) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" invalid extension, must be .jpeg or .png",
		)
	}
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	img.Extension = ext
	return nil
}

// downscale decodes the image and, if either side exceeds the maximum dimension,
// replaces the file with a version scaled to fit, keeping the aspect ratio.
// Files that don't decode are rejected even if their header looked right.
func (iv *imageValidator) downscale(img *domain.Image) error {
	cfg, _, err := image.DecodeConfig(img.File)
	if err != nil {
		return errs.Errorf(errs.EINVALID, "Image "+img.Filename+" is not a valid image.")
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	if iv.maxDimension <= 0 || (cfg.Width <= iv.maxDimension && cfg.Height <= iv.maxDimension) {
		return nil
	}

	src, err := imaging.Decode(img.File)
	if err != nil {
		return errs.Errorf(errs.EINVALID, "Image "+img.Filename+" is not a valid image.")
	}
	dst := imaging.Fit(src, iv.maxDimension, iv.maxDimension, imaging.Lanczos)

	format := imaging.PNG
	if img.ContentType == "image/jpeg" {
		format = imaging.JPEG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, format, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("encode downscaled image: %w", err)
	}
	img.File = bytes.NewReader(buf.Bytes())
	img.Size = int64(buf.Len())
	return nil
}

// keyUnique builds the storage key from the owner's slug and a random uuid,
// for example uploads/social_media/posts/my-first-post-<uuid>.png.
func (iv *imageValidator) keyUnique(img *domain.Image) error {
	name := slug.Make(img.OwnerName)
	if name == "" {
		name = strings.TrimSuffix(img.OwnerType, "s")
	}
	img.Key = fmt.Sprintf("%s/%s/%s-%s%s", domain.ImagesBaseDir, img.OwnerType, name, uuid.NewString(), img.Extension)
	return nil
}

// resetFilePointer sets the file pointer back to beginning of the file,
// so that subsequent reads can properly read from the beginning again.
func resetFilePointer(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}

// Create writes the image file to storage under img.Key.
func (is *imageStore) Create(ctx context.Context, img *domain.Image) error {
	if err := resetFilePointer(img); err != nil {
		return err
	}
	return is.store.Write(ctx, img.Key, img.File, img.Size, img.ContentType)
}

// Delete removes a stored image. An empty key is ignored.
func (is *imageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return is.store.Delete(ctx, key)
}

// URL resolves a stored key into a URL for clients. An empty key, or a key
// the backend fails to resolve, yields the empty string.
func (is *imageStore) URL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	url, err := is.store.GetURL(ctx, key, urlExpiry)
	if err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("resolve image url")
		return ""
	}
	return url
}
