// api/schemas/page.go
package schemas

import (
	"context"
	"strings"

	"github.com/chromedp/chromedp"
)

// PageContext is the contract every scenario step drives. It is one isolated,
// navigable browser tab owned by exactly one scenario at a time.
type PageContext interface {
	ID() string                                                     // Unique page identifier, used in logs and reports.
	Navigate(ctx context.Context, url string) error                 // Loads a URL and returns once the main frame committed.
	Evaluate(ctx context.Context, expression string, res any) error // Evaluates JavaScript in the current document.
	Location(ctx context.Context) (string, error)                   // Returns the current document URL.
	Run(ctx context.Context, actions ...chromedp.Action) error      // Executes raw chromedp actions against the tab.
	NavigationCount() uint64                                        // Monotonic count of completed navigations.
	AcceptNextDialog()                                              // Arms acceptance of the next native dialog.
	Close(ctx context.Context) error                                // Releases the tab and its browser context.
}

// Credential holds the login pair used by the login sequence.
type Credential struct {
	Email    string `json:"email" yaml:"email" mapstructure:"email"`
	Password string `json:"-" yaml:"password" mapstructure:"password"`
}

// IDSelector returns a CSS selector matching the element whose id is exactly id.
// Ids such as "q[last_name]" contain characters that CSS treats as syntax, so
// they are escaped rather than interpolated.
func IDSelector(id string) string {
	var b strings.Builder
	b.Grow(len(id) + 8)
	b.WriteByte('#')
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-', r >= 0x80:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				// A leading digit must be written as a code point escape.
				b.WriteString(`\3`)
				b.WriteRune(r)
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
