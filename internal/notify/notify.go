/*
Package notify delivers location reports to the console and by email.
*/
package notify

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/shanehull/digmap/internal/pipeline"
	"github.com/shanehull/digmap/internal/render"
	"github.com/shanehull/digmap/internal/types"
)

// NotificationData is the template view of one report. Generated sections are
// already sanitized.
type NotificationData struct {
	Place       string
	Coordinate  types.Coordinate
	Weather     *render.Weather
	Region      template.HTML
	Historical  template.HTML
	MapURL      string
	GeneratedAt string
}

type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *RenderedMessage) error
}

// NewNotificationData builds the view of r. baseURL, when set, is the public
// address of the web app and yields a link to the report on the map.
func NewNotificationData(r pipeline.Report, baseURL string) NotificationData {
	data := NotificationData{
		Place:       r.Place,
		Coordinate:  r.Coordinate,
		Weather:     render.WeatherView(r.Weather),
		Region:      render.Sanitize(r.Region),
		Historical:  render.Sanitize(r.Historical),
		GeneratedAt: time.Now().Format(render.TimeLayout),
	}
	if baseURL != "" {
		q := url.Values{}
		q.Set("lat", strconv.FormatFloat(r.Coordinate.Lat, 'f', -1, 64))
		q.Set("lon", strconv.FormatFloat(r.Coordinate.Lon, 'f', -1, 64))
		data.MapURL = baseURL + "/center_map?" + q.Encode()
	}
	return data
}

type Notifier struct {
	renderer *HTMLEmailRenderer
	sender   Sender
	baseURL  string
}

func NewNotifier(sender Sender, baseURL string) *Notifier {
	return &Notifier{renderer: NewHTMLEmailRenderer(), sender: sender, baseURL: baseURL}
}

// SendReport renders r and hands it to the sender.
func (n *Notifier) SendReport(ctx context.Context, r pipeline.Report) error {
	msg, err := n.renderer.Render(NewNotificationData(r, n.baseURL))
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}

// PrintReport writes the plain text form of r to w.
func PrintReport(w io.Writer, r pipeline.Report) {
	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprint(w, renderPlainText(NewNotificationData(r, "")))
	fmt.Fprintln(w, "===========================================")
}
