package store

import "sync"

// ImageCache remembers the last representative image URL seen for each item.
// It is a best-effort fallback for when a lookup returns no usable listing:
// entries are overwritten unconditionally and never expire.
type ImageCache struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

// OpenImageCache loads (or initializes) the image cache document at path.
func OpenImageCache(path string) (*ImageCache, error) {
	c := &ImageCache{
		path: path,
		data: make(map[string]string),
	}
	if err := loadDocument(path, &c.data); err != nil {
		return nil, err
	}
	if c.data == nil {
		c.data = make(map[string]string)
	}
	return c, nil
}

// Get returns the cached image URL for item, if one was ever recorded.
func (c *ImageCache) Get(item string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.data[item]
	return url, ok
}

// Put overwrites the cached image URL for item.
func (c *ImageCache) Put(item, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[item] = url
	return saveDocument(c.path, c.data)
}
