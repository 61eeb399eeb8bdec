// Package templates рендерит тексты писем из встроенных text/template шаблонов.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/shestoi/orderflow/platform/contracts"
)

//go:embed files/*.tmpl
var files embed.FS

const (
	orderCreatedTemplate   = "order_created.tmpl"
	orderCancelledTemplate = "order_cancelled.tmpl"
)

// Renderer рендерит шаблоны для уведомлений
type Renderer struct {
	templates *template.Template
}

// NewRenderer загружает встроенные шаблоны
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(files, "files/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// RenderOrderCreated рендерит тело письма о принятом заказе
func (r *Renderer) RenderOrderCreated(order contracts.Order) (string, error) {
	return r.render(orderCreatedTemplate, order)
}

// RenderOrderCancelled рендерит тело письма об отменённом заказе
func (r *Renderer) RenderOrderCancelled(order contracts.Order) (string, error) {
	return r.render(orderCancelledTemplate, order)
}

func (r *Renderer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
