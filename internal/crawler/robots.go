package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

var ErrDisallowed = errors.New("disallowed by robots.txt")

// RobotsGuard answers robots.txt checks, fetching each host's file once.
type RobotsGuard struct {
	Client    *http.Client
	UserAgent string

	mu          sync.Mutex
	robotsCache map[string]*robotstxt.Group
}

func NewRobotsGuard(client *http.Client, userAgent string) *RobotsGuard {
	if client == nil {
		client = http.DefaultClient
	}
	return &RobotsGuard{
		Client:      client,
		UserAgent:   userAgent,
		robotsCache: make(map[string]*robotstxt.Group),
	}
}

// Check returns ErrDisallowed when the host's robots.txt forbids the path.
// A missing or unreadable robots.txt allows everything.
func (g *RobotsGuard) Check(ctx context.Context, link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return err
	}

	group := g.group(ctx, u)
	if group == nil {
		return nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if !group.Test(path) {
		return fmt.Errorf("%s: %w", link, ErrDisallowed)
	}
	return nil
}

func (g *RobotsGuard) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	g.mu.Lock()
	defer g.mu.Unlock()

	if group, ok := g.robotsCache[u.Host]; ok {
		return group
	}

	var group *robotstxt.Group
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Scheme+"://"+u.Host+"/robots.txt", nil)
	if err == nil {
		if resp, err := g.Client.Do(req); err == nil {
			data, err := robotstxt.FromResponse(resp)
			resp.Body.Close()
			if err == nil {
				group = data.FindGroup(g.agent())
			}
		}
	}
	g.robotsCache[u.Host] = group
	return group
}

func (g *RobotsGuard) agent() string {
	if g.UserAgent == "" {
		return "*"
	}
	return g.UserAgent
}
