package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/shanehull/digmap/internal/render"
)

// HTMLEmailRenderer renders reports as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(data NotificationData) (*RenderedMessage, error) {
	subject := fmt.Sprintf("Отчёт копателя: %s (%s)", data.Place, data.Coordinate)

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

// renderPlainText produces a readable plain text version for email clients and the console.
func renderPlainText(data NotificationData) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s (%s)\n", data.Place, data.Coordinate))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	if w := data.Weather; w != nil {
		sb.WriteString("ПОГОДА\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		sb.WriteString(fmt.Sprintf("%s°C, %s\n", w.Temperature, w.Description))
		sb.WriteString(fmt.Sprintf("Обновлено: %s\n\n", w.UpdatedAt))
	}

	sb.WriteString("АНАЛИЗ МЕСТНОСТИ\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	sb.WriteString(render.PlainText(string(data.Region)) + "\n\n")

	if data.Historical != "" {
		sb.WriteString("ИСТОРИЧЕСКАЯ СПРАВКА\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		sb.WriteString(render.PlainText(string(data.Historical)) + "\n\n")
	}

	if data.MapURL != "" {
		sb.WriteString(fmt.Sprintf("Карта: %s\n", data.MapURL))
	}

	return sb.String()
}
