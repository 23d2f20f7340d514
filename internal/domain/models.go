// Package domain defines the data model of the widget runtime: tenant
// customization, visitor identity, chat messages, and the storage rows that
// back the persistence layer. The JSON shapes here are wire contracts shared
// with the backend and with the values persisted by the storage layer, so
// field tags must not change without a migration plan.
package domain

import "time"

// Customization is the tenant branding fetched once per widget load from
// GET /widget-chatbot. It is immutable after fetch; when the fetch fails the
// widget never initializes (fail-closed), so a zero Customization is never
// rendered.
//
// Fields:
//   - BrandName: assistant/brand display name shown in the header.
//   - LogoURL: optional logo rendered next to the brand name.
//   - PrimaryColor / TextColor / BackgroundColor: palette applied to the
//     header, bubbles, and buttons.
//   - FontFamily: CSS font stack for the whole widget subtree.
//   - WebsiteURL: the tenant's site, passed as the routing parameter on
//     every chat request.
type Customization struct {
	BrandName       string `json:"brand_name"`
	LogoURL         string `json:"logo_url"`
	PrimaryColor    string `json:"primary_color"`
	TextColor       string `json:"text_color"`
	BackgroundColor string `json:"background_color"`
	FontFamily      string `json:"font_family"`
	WebsiteURL      string `json:"website_url"`
}

// VisitorIdentity is the name/email pair captured once per tenant per
// browser through the blocking pre-chat form. It never expires; a corrupt
// stored value is treated as absent and the visitor is simply re-prompted.
type VisitorIdentity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Valid reports whether both fields carry a value. The identity form only
// transitions the widget to the identified state when this holds.
func (v VisitorIdentity) Valid() bool {
	return v.Name != "" && v.Email != ""
}

// ChatMessage is a single entry of the persisted conversation history.
// Messages are immutable once created and append-only; the history keeps at
// most the newest HistoryLimit entries (FIFO eviction from the front).
//
// Timestamp is an ISO-8601 (RFC 3339) string rather than a time.Time so the
// persisted JSON matches what the widget has always written.
type ChatMessage struct {
	Text      string `json:"text"`
	IsUser    bool   `json:"isUser"`
	Timestamp string `json:"timestamp"`
}

// StorageEntry is one key/value row of the widget's local storage. The
// persistence layer stores JSON documents in Value, namespaced by Scope
// ("local" for durable browser-profile data) and Key (tenant-namespaced by
// the store layer, not here).
type StorageEntry struct {
	Scope     string    `json:"scope" gorm:"type:varchar(16);not null;primaryKey"`
	Key       string    `json:"key"   gorm:"type:varchar(255);not null;primaryKey"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for StorageEntry.
func (StorageEntry) TableName() string { return "storage_entries" }
