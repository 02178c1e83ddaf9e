package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/linearcalendar/internal"
)

const (
	defaultSleep = 5 * time.Second
	// maxResults caps a single range fetch; no further pages are requested.
	maxResults = 2500
)

var _ internal.Remote = (*Client)(nil)

// Client is the Google Calendar remote. It holds at most one session.
type Client struct {
	oauthCfg *oauth2.Config
	loc      *time.Location

	mu    sync.RWMutex
	svc   *calendar.Service
	users *oauth2api.Service

	Verbose    bool
	Output     io.Writer
	RetryDelay time.Duration
}

// NewClient builds a client from an OAuth client credentials file. Dates are
// sent to Google in loc, UTC when nil.
func NewClient(credJSON []byte, loc *time.Location) (*Client, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON,
		calendar.CalendarScope,
		oauth2api.UserinfoProfileScope,
		oauth2api.UserinfoEmailScope,
	)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Client{
		oauthCfg:   oauthCfg,
		loc:        loc,
		Output:     os.Stdout,
		RetryDelay: defaultSleep,
	}, nil
}

// Connect starts a session from a token previously returned by Login.
func (c *Client) Connect(ctx context.Context, auth []byte) error {
	var tok *oauth2.Token
	if err := json.Unmarshal(auth, &tok); err != nil {
		return fmt.Errorf("google: parsing token: %v", err)
	}
	return c.ConnectWithOptions(ctx, option.WithHTTPClient(c.oauthCfg.Client(ctx, tok)))
}

// ConnectWithOptions starts a session with explicit API client options.
func (c *Client) ConnectWithOptions(ctx context.Context, opts ...option.ClientOption) error {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("google: calendar service: %v", err)
	}
	users, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("google: userinfo service: %v", err)
	}

	c.mu.Lock()
	c.svc, c.users = svc, users
	c.mu.Unlock()
	return nil
}

func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.svc != nil
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	c.svc, c.users = nil, nil
	c.mu.Unlock()
}

func (c *Client) session() (*calendar.Service, *oauth2api.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.svc == nil {
		return nil, nil, internal.ErrAuthRequired
	}
	return c.svc, c.users, nil
}

func (c *Client) Profile(ctx context.Context) (*internal.Profile, error) {
	_, users, err := c.session()
	if err != nil {
		return nil, err
	}

	var info *oauth2api.Userinfo
	err = c.retry(ctx, func() (err error) {
		info, err = users.Userinfo.Get().Context(ctx).Do()
		return err
	})
	if err != nil {
		c.logf(nil, "unable to get profile: %v", err)
		return nil, c.wrap(err)
	}
	return &internal.Profile{
		Name:    info.Name,
		Email:   info.Email,
		Picture: info.Picture,
	}, nil
}

func (c *Client) Calendars(ctx context.Context) ([]internal.CalendarInfo, error) {
	svc, _, err := c.session()
	if err != nil {
		return nil, err
	}

	var cals []internal.CalendarInfo
	err = c.retry(ctx, func() error {
		cals = cals[:0]
		return svc.CalendarList.List().Context(ctx).Pages(ctx, func(list *calendar.CalendarList) error {
			for _, item := range list.Items {
				cals = append(cals, newCalendarInfo(item))
			}
			return nil
		})
	})
	if err != nil {
		c.logf(nil, "unable to get list of calendars: %v", err)
		return nil, c.wrap(err)
	}
	return cals, nil
}

func (c *Client) Events(ctx context.Context, calendarID string, from, to internal.Date) ([]internal.Event, error) {
	svc, _, err := c.session()
	if err != nil {
		return nil, err
	}
	cal := &internal.CalendarInfo{ID: calendarID}
	c.logf(cal, "checking for events between %s and %s", from, to)

	call := svc.Events.
		List(calendarID).
		Context(ctx).
		TimeMin(from.Midnight(c.loc).Format(time.RFC3339)).
		TimeMax(endOfDay(to, c.loc).Format(time.RFC3339)).
		TimeZone(c.loc.String()).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)

	var events *calendar.Events
	err = c.retry(ctx, func() (err error) {
		events, err = call.Do()
		return err
	})
	if err != nil {
		c.logf(cal, "unable to get list of events: %v", err)
		return nil, c.wrap(err)
	}

	res := make([]internal.Event, 0, len(events.Items))
	for _, item := range events.Items {
		if e, ok := newEvent(item, calendarID); ok {
			res = append(res, e)
		}
	}
	if len(res) == 0 {
		c.logf(cal, "no events in range")
	}
	return res, nil
}

func (c *Client) CreateEvent(ctx context.Context, calendarID string, req internal.NewEvent) (internal.Event, error) {
	cal := &internal.CalendarInfo{ID: calendarID}
	msg := fmt.Sprintf("creating event: %q on %s... ", req.Title, req.Start)
	defer func() {
		c.logf(cal, "%s", msg)
	}()

	svc, _, err := c.session()
	if err != nil {
		msg += "❌"
		return internal.Event{}, err
	}

	var gevent *calendar.Event
	err = c.retry(ctx, func() (err error) {
		gevent, err = svc.Events.Insert(calendarID, newGoogleEvent(req, c.loc)).Context(ctx).Do()
		return err
	})
	if err != nil {
		msg += "❌"
		return internal.Event{}, c.wrap(err)
	}

	e, ok := newEvent(gevent, calendarID)
	if !ok {
		msg += "❌"
		return internal.Event{}, fmt.Errorf("%w: created event %s has no dates", internal.ErrRemoteRequestFailed, gevent.Id)
	}
	msg += "✅"
	return e, nil
}

func (c *Client) UpdateEvent(ctx context.Context, current internal.Event, patch internal.EventPatch) (internal.Event, error) {
	if !current.IsMirrored() {
		return internal.Event{}, fmt.Errorf("google: event %s is not mirrored", current.ID)
	}
	cal := &internal.CalendarInfo{ID: current.Mirror.CalendarID}
	msg := fmt.Sprintf("updating event: %q on %s... ", current.Title, current.Start)
	defer func() {
		c.logf(cal, "%s", msg)
	}()

	svc, _, err := c.session()
	if err != nil {
		msg += "❌"
		return internal.Event{}, err
	}

	var gevent *calendar.Event
	err = c.retry(ctx, func() (err error) {
		gevent, err = svc.Events.
			Patch(current.Mirror.CalendarID, current.Mirror.RemoteID, newGooglePatch(current, patch, c.loc)).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		msg += "❌"
		return internal.Event{}, c.wrap(err)
	}

	e, ok := newEvent(gevent, current.Mirror.CalendarID)
	if !ok {
		e = current.Apply(patch)
	}
	msg += "✅"
	return e, nil
}

func (c *Client) DeleteEvent(ctx context.Context, ev internal.Event) error {
	if !ev.IsMirrored() {
		return fmt.Errorf("google: event %s is not mirrored", ev.ID)
	}
	cal := &internal.CalendarInfo{ID: ev.Mirror.CalendarID}
	msg := fmt.Sprintf("deleting event %s... ", ev.Mirror.RemoteID)
	defer func() {
		c.logf(cal, "%s", msg)
	}()

	svc, _, err := c.session()
	if err != nil {
		msg += "❌"
		return err
	}

	err = c.retry(ctx, func() error {
		return svc.Events.Delete(ev.Mirror.CalendarID, ev.Mirror.RemoteID).Context(ctx).Do()
	})
	if err != nil && !alreadyDeleted(err) {
		msg += "❌"
		return c.wrap(err)
	}
	msg += "✅"
	return nil
}

func (c *Client) Login(ctx context.Context) ([]byte, error) {
	state := fmt.Sprintf("linearcal-%d", time.Now().UTC().Nanosecond())
	authURL := c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(c.Output, "\nGo to the following link in your browser\n%s\n", authURL)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    ":8080",
		Handler: mux,
	}

	var (
		token   *oauth2.Token
		authErr error
	)

	mux.HandleFunc("/linearcal", func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			go server.Shutdown(ctx)
		}()

		query := req.URL.Query()
		if query.Get("state") != state {
			authErr = errors.New("oauth link is not valid")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, authErr = c.oauthCfg.Exchange(ctx, query.Get("code"))
		if authErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", authErr)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
	})

	serverCh := make(chan struct{})
	var svrErr error
	go func() {
		svrErr = server.ListenAndServe()
		close(serverCh)
	}()

	<-serverCh

	if svrErr != nil && svrErr != http.ErrServerClosed {
		return nil, svrErr
	}

	if authErr != nil {
		return nil, authErr
	}

	return json.Marshal(token)
}

// retry repeats fn while Google reports a rate limit.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	for {
		err := fn()
		if err == nil || !shouldRetry(err) {
			return err
		}
		c.logf(nil, "rate limited, retrying in %s", c.RetryDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
}

// wrap classifies err. An authentication failure also ends the session.
func (c *Client) wrap(err error) error {
	if authExpired(err) {
		c.Disconnect()
		return fmt.Errorf("%w: %w", internal.ErrAuthExpired, err)
	}
	return fmt.Errorf("%w: %w", internal.ErrRemoteRequestFailed, err)
}

func (c *Client) logf(cal *internal.CalendarInfo, format string, a ...any) {
	if c.Verbose {
		internal.Logf(c.Output, "google:", cal, format, a...)
	}
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func alreadyDeleted(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone) {
		return true
	}
	return errIsReason(err, "deleted")
}

func authExpired(err error) bool {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		return true
	}
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusUnauthorized
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
