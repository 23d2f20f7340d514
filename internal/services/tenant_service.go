// Package services – TenantService
//
// This file implements the TenantService, which resolves widget customizations
// by publish key. Tenants are loaded from an optional JSON file and kept in an
// in-memory map; a built-in demo tenant is registered so the service is usable
// without any configuration. Missing branding fields are filled with neutral
// defaults so the widget renderer always receives a complete customization.
//
// Service-level errors (e.g., ErrTenantNotFound) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-chat-widget/internal/domain"
)

// DemoPublishKey identifies the built-in demo tenant available out of the box.
const DemoPublishKey = "demo"

// Branding defaults applied when a tenant record leaves a field empty.
const (
	defaultPrimaryColor    = "#0d6efd"
	defaultTextColor       = "#ffffff"
	defaultBackgroundColor = "#ffffff"
	defaultFontFamily      = "system-ui, sans-serif"
)

// TenantService resolves publish keys to widget customizations.
// It is safe for concurrent use.
type TenantService struct {
	mu      sync.RWMutex
	tenants map[string]domain.Customization

	// titler derives a presentable brand name from a publish key when a
	// tenant record has no explicit brand name.
	titler cases.Caser
}

// NewTenantService constructs a TenantService pre-populated with the demo tenant.
func NewTenantService() *TenantService {
	s := &TenantService{
		tenants: make(map[string]domain.Customization),
		titler:  cases.Title(language.English),
	}
	s.Register(DemoPublishKey, domain.Customization{
		BrandName:  "Demo Assistant",
		WebsiteURL: "https://example.com",
	})
	return s
}

// LoadFile merges tenants from a JSON file mapping publish keys to
// customizations. Existing entries with the same key are replaced.
func (s *TenantService) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tenants file: %w", err)
	}
	var m map[string]domain.Customization
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("parse tenants file %s: %w", path, err)
	}
	for k, c := range m {
		s.Register(k, c)
	}
	return nil
}

// Register adds or replaces a tenant under the given publish key.
// Blank branding fields are filled with defaults at registration time.
func (s *TenantService) Register(key string, c domain.Customization) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if strings.TrimSpace(c.BrandName) == "" {
		c.BrandName = s.titler.String(strings.ReplaceAll(key, "-", " "))
	}
	if c.PrimaryColor == "" {
		c.PrimaryColor = defaultPrimaryColor
	}
	if c.TextColor == "" {
		c.TextColor = defaultTextColor
	}
	if c.BackgroundColor == "" {
		c.BackgroundColor = defaultBackgroundColor
	}
	if c.FontFamily == "" {
		c.FontFamily = defaultFontFamily
	}
	// Chat routing requires a website URL; derive a placeholder so widgets
	// for file-loaded tenants can still reach the sandbox chat endpoint.
	if strings.TrimSpace(c.WebsiteURL) == "" {
		c.WebsiteURL = "https://" + key + ".example.com"
	}

	s.mu.Lock()
	s.tenants[key] = c
	s.mu.Unlock()
}

// Customization returns the customization registered for the publish key.
// Unknown keys yield ErrTenantNotFound.
func (s *TenantService) Customization(_ context.Context, key string) (*domain.Customization, error) {
	s.mu.RLock()
	c, ok := s.tenants[strings.TrimSpace(key)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrTenantNotFound
	}
	out := c
	return &out, nil
}
