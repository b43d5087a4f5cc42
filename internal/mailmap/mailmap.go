// Package mailmap loads a .mailmap rewrite table and resolves commit
// signatures through it, grounded on the teacher's identity.Detector
// external-dictionary-file loading pattern (ConfigIdentityDetectorPeopleDictPath)
// but rewriting signatures rather than clustering author identities.
package mailmap

import (
	"bufio"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// entry is one parsed .mailmap line, in any of the forms parseLine
// accepts; the commit fields stay empty for the single-address form:
//
//	Proper Name <proper@email>
//	Proper Name <proper@email> Commit Name <commit@email>
type entry struct {
	properName, properEmail string
	commitName, commitEmail string
}

// Mailmap is a read-only, once-loaded rewrite table.
type Mailmap struct {
	byEmail     map[string]entry
	byNameEmail map[string]entry
}

// Empty returns a Mailmap with no rewrite rules; resolving through it is a no-op.
func Empty() *Mailmap {
	return &Mailmap{byEmail: map[string]entry{}, byNameEmail: map[string]entry{}}
}

// Load parses a .mailmap file. A missing file is not an error by
// convention of the caller (see Blame construction): this function only
// parses an already-open reader.
func Load(r io.Reader) (*Mailmap, error) {
	m := Empty()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, ok := parseLine(line)
		if !ok {
			continue
		}
		if e.commitEmail != "" {
			if e.commitName != "" {
				m.byNameEmail[e.commitName+"\x00"+e.commitEmail] = e
			} else {
				// "Proper Name <proper@email> <commit@email>" form: no
				// commit name given, so the commit email alone identifies it.
				m.byEmail[e.commitEmail] = e
			}
		}
		if e.properEmail != "" {
			m.byEmail[e.properEmail] = e
		}
	}
	return m, scanner.Err()
}

// parseLine handles:
//
//	Proper Name <proper@email>
//	<proper@email> <commit@email>
//	Proper Name <proper@email> <commit@email>
//	Proper Name <proper@email> Commit Name <commit@email>
func parseLine(line string) (entry, bool) {
	var e entry
	fields := splitAngled(line)
	switch len(fields) {
	case 2:
		e.properName = strings.TrimSpace(fields[0].name)
		e.properEmail = fields[0].email
		e.commitEmail = fields[1].email
		e.commitName = strings.TrimSpace(fields[1].name)
		return e, true
	case 1:
		e.properName = strings.TrimSpace(fields[0].name)
		e.properEmail = fields[0].email
		return e, true
	default:
		return e, false
	}
}

type angled struct {
	name, email string
}

// splitAngled extracts the "name <email>" segments from a mailmap line.
func splitAngled(line string) []angled {
	var out []angled
	rest := line
	for {
		lt := strings.IndexByte(rest, '<')
		if lt < 0 {
			break
		}
		gt := strings.IndexByte(rest[lt:], '>')
		if gt < 0 {
			break
		}
		gt += lt
		out = append(out, angled{name: rest[:lt], email: rest[lt+1 : gt]})
		rest = rest[gt+1:]
	}
	return out
}

// Resolve rewrites sig through the mailmap, matching git's precedence:
// (name,email) pairs first, then email-only.
func (m *Mailmap) Resolve(sig object.Signature) object.Signature {
	if m == nil {
		return sig
	}
	if e, ok := m.byNameEmail[sig.Name+"\x00"+sig.Email]; ok {
		return rewritten(sig, e)
	}
	if e, ok := m.byEmail[sig.Email]; ok {
		return rewritten(sig, e)
	}
	return sig
}

func rewritten(sig object.Signature, e entry) object.Signature {
	out := sig
	if e.properName != "" {
		out.Name = e.properName
	}
	if e.properEmail != "" {
		out.Email = e.properEmail
	}
	return out
}
