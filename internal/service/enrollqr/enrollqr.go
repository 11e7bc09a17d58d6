package enrollqr

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 128
	MaxSize     = 1024

	defaultCacheSize = 16
)

type Service interface {
	// PNG renders the patient app URL as a QR code of size x size pixels.
	// A zero size uses DefaultSize.
	PNG(ctx context.Context, size int) ([]byte, error)
	URL() string
}

type qrService struct {
	url string
	mu  sync.Mutex
	lru *simplelru.LRU
}

func New(appURL string, cacheSize int) (Service, error) {
	if appURL == "" {
		return nil, ErrAppURLMissing
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	lru, err := simplelru.NewLRU(cacheSize, nil)
	if err != nil {
		return nil, fmt.Errorf("create qr cache: %w", err)
	}
	return &qrService{url: appURL, lru: lru}, nil
}

func (s *qrService) URL() string { return s.url }

func (s *qrService) PNG(_ context.Context, size int) ([]byte, error) {
	if size == 0 {
		size = DefaultSize
	}
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: size must be between %d and %d", ErrInvalidSize, MinSize, MaxSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.lru.Get(size); ok {
		return bytes.Clone(v.([]byte)), nil
	}
	png, err := qrcode.Encode(s.url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	s.lru.Add(size, png)
	return bytes.Clone(png), nil
}
