// internal/browser/console.go
package browser

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/runtime"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

// maxConsoleEntries bounds how much console output a page keeps. Older
// entries are dropped first.
const maxConsoleEntries = 200

// consoleLog collects console API calls, log entries and uncaught exceptions
// for one page. chromedp enables the runtime and log domains when it attaches
// to a target, so no extra setup is needed.
type consoleLog struct {
	mu      sync.Mutex
	entries []schemas.ConsoleEntry
}

func (c *consoleLog) add(e schemas.ConsoleEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == maxConsoleEntries {
		copy(c.entries, c.entries[1:])
		c.entries = c.entries[:maxConsoleEntries-1]
	}
	c.entries = append(c.entries, e)
}

func (c *consoleLog) snapshot() []schemas.ConsoleEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return nil
	}
	out := make([]schemas.ConsoleEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// handle records ev if it is a console-related event and reports whether it was.
func (c *consoleLog) handle(ev interface{}) bool {
	switch e := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		entry := schemas.ConsoleEntry{Type: string(e.Type), Source: "console-api", Text: consoleArgs(e.Args)}
		if e.Timestamp != nil {
			entry.Timestamp = e.Timestamp.Time()
		}
		c.add(entry)
	case *log.EventEntryAdded:
		if e.Entry == nil {
			return true
		}
		entry := schemas.ConsoleEntry{Type: string(e.Entry.Level), Source: string(e.Entry.Source), Text: e.Entry.Text}
		if e.Entry.URL != "" {
			entry.Text += " (" + e.Entry.URL + ")"
		}
		if e.Entry.Timestamp != nil {
			entry.Timestamp = e.Entry.Timestamp.Time()
		}
		c.add(entry)
	case *runtime.EventExceptionThrown:
		if e.ExceptionDetails == nil {
			return true
		}
		text := e.ExceptionDetails.Text
		if ex := e.ExceptionDetails.Exception; ex != nil && ex.Description != "" {
			text = ex.Description
		}
		entry := schemas.ConsoleEntry{Type: "exception", Source: "runtime", Text: text}
		if e.Timestamp != nil {
			entry.Timestamp = e.Timestamp.Time()
		}
		c.add(entry)
	default:
		return false
	}
	return true
}

// consoleArgs renders console arguments the way the devtools console shows
// them: primitives by value, objects by description.
func consoleArgs(args []*runtime.RemoteObject) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		var val interface{}
		switch {
		case arg.Value != nil && json.Unmarshal(arg.Value, &val) == nil:
			fmt.Fprintf(&b, "%v", val)
		case arg.Description != "":
			b.WriteString(arg.Description)
		default:
			fmt.Fprintf(&b, "[%s]", arg.Type)
		}
	}
	return b.String()
}
