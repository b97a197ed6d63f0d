package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Uploaded banners are scaled down to this width; smaller images are kept
// as they are.
const bannerMaxWidth = 1200

type BannerService struct {
	RootDir string
}

func NewBannerService(rootDir string) *BannerService {
	return &BannerService{RootDir: filepath.Clean(rootDir)}
}

// Save decodes the upload, resizes it and writes a JPEG under the files
// root. Returns the stored file name.
func (s *BannerService) Save(r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > bannerMaxWidth {
		img = imaging.Resize(img, bannerMaxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(s.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	name := uuid.NewString() + ".jpg"
	if err := imaging.Save(img, filepath.Join(s.RootDir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save banner: %w", err)
	}
	return name, nil
}

// Path resolves a stored banner name to an absolute path, refusing
// anything that escapes the files root.
func (s *BannerService) Path(name string) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("bad banner name")
	}
	abs := filepath.Join(s.RootDir, name)
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// Remove deletes a stored banner, ignoring a missing file.
func (s *BannerService) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.RootDir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
