// Package content holds static proposal building blocks: reusable
// templates and the per-tenant branding configuration.
package content

import (
	"errors"
	"time"
)

// Template is a named static content block, read-only to the response
// lifecycle.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Branding is the singleton presentation configuration. It carries
// display settings only, never financial data; concurrent updates
// serialize with last-writer-wins and no history is retained.
type Branding struct {
	LogoURL          string    `json:"logo_url,omitempty"`
	CompanyName      string    `json:"company_name"`
	PrimaryColor     string    `json:"primary_color"`
	SecondaryColor   string    `json:"secondary_color"`
	FontFamily       string    `json:"font_family"`
	PresentationURL  string    `json:"presentation_url,omitempty"`
	PresentationName string    `json:"presentation_name,omitempty"`
	PresentationSize int64     `json:"presentation_size,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Defaults mirror the original branding bootstrap values.
const (
	DefaultPrimaryColor   = "#1976D2"
	DefaultSecondaryColor = "#FF9800"
	DefaultFontFamily     = "Roboto"
)

var (
	ErrNotFound   = errors.New("content: not found")
	ErrValidation = errors.New("content: invalid input")
)
