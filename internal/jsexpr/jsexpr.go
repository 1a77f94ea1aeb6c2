// internal/jsexpr/jsexpr.go

// Package jsexpr builds the small JavaScript expressions evaluated in pages.
// Every value interpolated into a script goes through Literal.
package jsexpr

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Literal encodes v as a JavaScript literal. JSON is a subset of JavaScript
// expression syntax, and the encoder escapes <, > and & as well.
func Literal(v interface{}) string {
	out, err := json.MarshalToString(v)
	if err != nil {
		// Only strings, numbers and string slices are ever passed in.
		panic(fmt.Sprintf("jsexpr: cannot encode %T: %v", v, err))
	}
	return out
}

// Exists is true when selector matches at least one element.
func Exists(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, Literal(selector))
}

// Count returns the number of elements matching selector.
func Count(selector string) string {
	return fmt.Sprintf(`document.querySelectorAll(%s).length`, Literal(selector))
}

// Visible is true when the first element matching selector has a non-empty
// box and is not hidden by style.
func Visible(selector string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  const r = el.getBoundingClientRect();
  const s = window.getComputedStyle(el);
  return r.width > 0 && r.height > 0 && s.visibility !== 'hidden' && s.display !== 'none';
})()`, Literal(selector))
}

// Text returns the rendered innerText of the first element matching
// selector, or null when nothing matches.
func Text(selector string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  return el ? el.innerText : null;
})()`, Literal(selector))
}

// ReadyState returns document.readyState.
const ReadyState = `document.readyState`

// Click dispatches a DOM click on the first element matching selector and
// reports whether one was found. Anchors without an href still run their
// handlers this way, which a synthesized mouse click does not guarantee.
func Click(selector string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  el.click();
  return true;
})()`, Literal(selector))
}

// Assign writes value into the first element matching selector and fires
// input and change events. Reports whether an element was found.
func Assign(selector, value string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  el.value = %s;
  el.dispatchEvent(new Event('input', { bubbles: true }));
  el.dispatchEvent(new Event('change', { bubbles: true }));
  return true;
})()`, Literal(selector), Literal(value))
}

// SelectOption chooses the option of a select element whose value equals
// value, or failing that whose visible label does, the way typing into a
// select picks an option. It returns "missing" when no select matches,
// "no-option" when neither is offered, and "ok" otherwise.
func SelectOption(selector, value string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return "missing";
  const v = %s;
  const opts = Array.from(el.options || []);
  const opt = opts.find(o => o.value === v) || opts.find(o => o.text.trim() === v);
  if (!opt) return "no-option";
  el.value = opt.value;
  el.dispatchEvent(new Event('input', { bubbles: true }));
  el.dispatchEvent(new Event('change', { bubbles: true }));
  return "ok";
})()`, Literal(selector), Literal(value))
}
