package investment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/NadavMozeson/typescript-discord-bot/internal/imaging"
)

// ImageCache keeps the image of each open listing so the profit post can show
// it next to the fresh one.
type ImageCache struct {
	dir string
}

// NewImageCache stores images under dir, creating it when missing
func NewImageCache(dir string) (*ImageCache, error) {
	if dir == "" {
		dir = filepath.Join("images", "investments")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &ImageCache{dir: dir}, nil
}

func (c *ImageCache) pattern(messageID string) string {
	return filepath.Join(c.dir, "investment_"+messageID+".*")
}

// Save writes data as investment_<messageID>.<ext>
func (c *ImageCache) Save(messageID string, data []byte) error {
	name := filepath.Join(c.dir, "investment_"+messageID+imaging.Extension(data))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("failed to cache image: %w", err)
	}
	return nil
}

// Load returns the cached image, or nil when there is none
func (c *ImageCache) Load(messageID string) ([]byte, error) {
	matches, err := filepath.Glob(c.pattern(messageID))
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	data, err := os.ReadFile(matches[0])
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Remove deletes the cached image if present
func (c *ImageCache) Remove(messageID string) error {
	matches, err := filepath.Glob(c.pattern(messageID))
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
