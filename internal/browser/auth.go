// internal/browser/auth.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

// AuthState is an immutable snapshot of an authenticated page's cookies. It
// is captured once after login and applied to each new page so sequences can
// start signed in without sharing a page.
type AuthState struct {
	cookies []*network.CookieParam
}

// CaptureAuthState reads every cookie visible to p.
func CaptureAuthState(ctx context.Context, p schemas.PageContext) (*AuthState, error) {
	var cookies []*network.Cookie
	err := p.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to capture cookies from page %s: %w", p.ID(), err)
	}

	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, cookieParam(c))
	}
	return &AuthState{cookies: params}, nil
}

func cookieParam(c *network.Cookie) *network.CookieParam {
	param := &network.CookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: c.SameSite,
	}
	if !c.Session && c.Expires > 0 {
		sec := int64(c.Expires)
		nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
		expires := cdp.TimeSinceEpoch(time.Unix(sec, nsec))
		param.Expires = &expires
	}
	return param
}

// Len returns the number of captured cookies.
func (a *AuthState) Len() int { return len(a.cookies) }

// Names lists the captured cookie names.
func (a *AuthState) Names() []string {
	names := make([]string, 0, len(a.cookies))
	for _, c := range a.cookies {
		names = append(names, c.Name)
	}
	return names
}

// Apply installs the captured cookies into p's browser context.
func (a *AuthState) Apply(ctx context.Context, p schemas.PageContext) error {
	if len(a.cookies) == 0 {
		return nil
	}
	if err := p.Run(ctx, network.SetCookies(a.cookies)); err != nil {
		return fmt.Errorf("failed to apply auth state to page %s: %w", p.ID(), err)
	}
	return nil
}
