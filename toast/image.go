package toast

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Image is a validated reference to a local image file.
type Image struct {
	uri string
}

// NewImage validates path and normalizes it to a file URI. Remote images are
// rejected because unpackaged applications cannot display them.
func NewImage(path string) (Image, error) {
	if u, err := url.Parse(path); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return Image{}, fmt.Errorf("%w: online images are not supported: %s", ErrInvalidImage, path)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Image{}, fmt.Errorf("%w: resolve %s: %v", ErrInvalidImage, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Image{}, fmt.Errorf("%w: file %s does not exist", ErrInvalidImage, abs)
	}
	if info.IsDir() {
		return Image{}, fmt.Errorf("%w: %s is a directory", ErrInvalidImage, abs)
	}

	return Image{uri: fileURI(abs)}, nil
}

// URI returns the file URI of the image.
func (i Image) URI() string {
	return i.uri
}

// IsZero reports whether the image was never constructed.
func (i Image) IsZero() bool {
	return i.uri == ""
}

// DisplayImage is an image placed on the toast itself.
type DisplayImage struct {
	Image     Image
	AltText   string
	Placement ImagePlacement
	// CircleCrop only has an effect on app logo placements.
	CircleCrop bool
}

// DisplayImageFromPath builds a DisplayImage without creating the Image first.
func DisplayImageFromPath(path, altText string, placement ImagePlacement, circleCrop bool) (DisplayImage, error) {
	img, err := NewImage(path)
	if err != nil {
		return DisplayImage{}, err
	}
	return DisplayImage{
		Image:      img,
		AltText:    altText,
		Placement:  placement,
		CircleCrop: circleCrop,
	}, nil
}

// fileURI converts an absolute path to a file:/// URI on every OS.
func fileURI(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
