// Package draft holds the in-progress contributor list of a submission
// form. The list is ephemeral: entries get an identity only once the
// form is accepted and stored. All operations are copy-on-write: the
// input list is never mutated, so re-renders after a failed validation
// cannot leak state between entries.
package draft

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Contributor is one draft entry. The primary author is not part of the
// list; it occupies a fixed singleton slot in the form.
type Contributor struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Affiliation string
	CountryID   int
	Role        string
}

// List is an ordered sequence of contributor drafts.
type List []Contributor

func (l List) clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Add appends one blank entry with the fixed default shape. Existing
// entries are untouched. No client-side upper bound; the server decides.
func (l List) Add() List {
	out := l.clone()
	return append(out, Contributor{})
}

// Remove deletes the entry at i and reindexes the rest. Out-of-range
// indices are a no-op, not an error.
func (l List) Remove(i int) List {
	if i < 0 || i >= len(l) {
		return l.clone()
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	out = append(out, l[i+1:]...)
	return out
}

// Update replaces exactly one field on exactly one entry. Unknown fields
// and out-of-range indices are reported, never applied.
func (l List) Update(i int, field, value string) (List, error) {
	if i < 0 || i >= len(l) {
		return l.clone(), fmt.Errorf("contributor index %d out of range", i)
	}
	out := l.clone()
	c := out[i]
	switch field {
	case "first_name":
		c.FirstName = value
	case "last_name":
		c.LastName = value
	case "email":
		c.Email = value
	case "phone_number":
		c.PhoneNumber = value
	case "affiliation":
		c.Affiliation = value
	case "country_id":
		n, err := strconv.Atoi(value)
		if err != nil {
			return l.clone(), fmt.Errorf("country_id: %w", err)
		}
		c.CountryID = n
	case "role":
		c.Role = value
	default:
		return l.clone(), fmt.Errorf("unknown contributor field %q", field)
	}
	out[i] = c
	return out, nil
}

// ---------- form decoding ----------

// FromForm decodes contributors[<i>][<field>] inputs into an ordered
// list. Indices are read densely from 0; the list ends at the first
// index with no fields present.
func FromForm(form url.Values) List {
	var out List
	for i := 0; ; i++ {
		prefix := fmt.Sprintf("contributors[%d]", i)
		if !hasAnyField(form, prefix) {
			return out
		}
		countryID, _ := strconv.Atoi(form.Get(prefix + "[country_id]"))
		out = append(out, Contributor{
			FirstName:   strings.TrimSpace(form.Get(prefix + "[first_name]")),
			LastName:    strings.TrimSpace(form.Get(prefix + "[last_name]")),
			Email:       strings.TrimSpace(form.Get(prefix + "[email]")),
			PhoneNumber: strings.TrimSpace(form.Get(prefix + "[phone_number]")),
			Affiliation: strings.TrimSpace(form.Get(prefix + "[affiliation]")),
			CountryID:   countryID,
			Role:        strings.TrimSpace(form.Get(prefix + "[role]")),
		})
	}
}

var formFields = []string{"first_name", "last_name", "email", "phone_number", "affiliation", "country_id", "role"}

func hasAnyField(form url.Values, prefix string) bool {
	for _, f := range formFields {
		if _, ok := form[prefix+"["+f+"]"]; ok {
			return true
		}
	}
	return false
}

// ---------- list actions posted by the form buttons ----------

// Apply interprets the form's _action value against the list:
// "add_contributor" appends, "remove_contributor:<i>" removes. Returns
// changed=false for anything else so the handler can fall through to a
// submit.
func Apply(l List, action string) (List, bool) {
	if action == "add_contributor" {
		return l.Add(), true
	}
	if idx, ok := strings.CutPrefix(action, "remove_contributor:"); ok {
		i, err := strconv.Atoi(idx)
		if err != nil {
			return l.clone(), true // malformed index behaves like a no-op redraw
		}
		return l.Remove(i), true
	}
	return l, false
}

// ---------- server-side field errors ----------

// FieldErrors maps dotted keys ("contributors.<i>.<field>", or a plain
// field name for the author block) to messages, mirroring how the
// validation response is keyed.
type FieldErrors map[string]string

// For returns the message for one contributor field, or "".
func (fe FieldErrors) For(i int, field string) string {
	return fe[fmt.Sprintf("contributors.%d.%s", i, field)]
}

// Field returns the message for a top-level form field, or "".
func (fe FieldErrors) Field(name string) string { return fe[name] }

// Any reports whether there is at least one error to render.
func (fe FieldErrors) Any() bool { return len(fe) > 0 }
