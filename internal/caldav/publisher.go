// Package caldav pushes generated events to a CalDAV calendar collection.
package caldav

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/alexanderramin/dayplan/internal/calendar"
	"github.com/alexanderramin/dayplan/internal/domain"
)

const productID = "-//dayplan//caldav publisher//EN"

// Config locates the target collection. Publishing is enabled only when
// URL, Username and Password are all set.
type Config struct {
	URL        string `yaml:"url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Collection string `yaml:"collection"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

func (c Config) Enabled() bool {
	return c.URL != "" && c.Username != "" && c.Password != ""
}

// Publisher writes one calendar object per event.
type Publisher struct {
	client     *caldav.Client
	collection string
	location   *time.Location
}

// NewPublisher connects a Publisher to the server described by cfg. Event
// wall-clock times are interpreted in loc.
func NewPublisher(cfg Config, loc *time.Location) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("caldav: url and credentials are required")
	}
	timeout := 30 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	httpClient := webdav.HTTPClientWithBasicAuth(&http.Client{Timeout: timeout}, cfg.Username, cfg.Password)

	client, err := caldav.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Publisher{client: client, collection: cfg.Collection, location: loc}, nil
}

// Publish PUTs ev as <collection>/<uid>.ics and returns the object path.
func (p *Publisher) Publish(ctx context.Context, uid string, ev domain.Event) (string, error) {
	cal, err := p.toCalendar(uid, ev)
	if err != nil {
		return "", err
	}

	path := p.collection
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	path += uid + ".ics"

	obj, err := p.client.PutCalendarObject(ctx, path, cal)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", uid, err)
	}
	return obj.Path, nil
}

func (p *Publisher) toCalendar(uid string, ev domain.Event) (*ical.Calendar, error) {
	start, end, err := calendar.EventTimes(ev, p.location)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetText(ical.PropSummary, ev.Title)
	if ev.Location != "" {
		vevent.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.Description != "" {
		vevent.Props.SetText(ical.PropDescription, ev.Description)
	}
	vevent.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	cal.Children = append(cal.Children, vevent.Component)
	return cal, nil
}
