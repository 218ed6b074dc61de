package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/hash"
)

// Frame wraps payload in the canonical framed form: "<kind> <size>\0<payload>".
// The storage key (see store.go) is the SHA-1 of exactly these bytes.
func Frame(kind Kind, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	out = append(out, payload...)
	return out
}

// Unframe splits framed bytes back into kind and payload, validating the
// header's declared size against the actual payload length.
func Unframe(framed []byte) (Kind, []byte, error) {
	nul := bytes.IndexByte(framed, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("%w: object header missing NUL terminator", errs.ErrMalformedObject)
	}
	header := string(framed[:nul])
	sp := strings.IndexByte(header, ' ')
	if sp < 0 {
		return "", nil, fmt.Errorf("%w: object header missing space: %q", errs.ErrMalformedObject, header)
	}
	kind := Kind(header[:sp])
	switch kind {
	case KindBlob, KindTree, KindCommit, KindTag:
	default:
		return "", nil, fmt.Errorf("%w: unknown object kind %q", errs.ErrMalformedObject, kind)
	}
	size, err := strconv.Atoi(header[sp+1:])
	if err != nil {
		return "", nil, fmt.Errorf("%w: non-numeric object size %q: %v", errs.ErrMalformedObject, header[sp+1:], err)
	}
	payload := framed[nul+1:]
	if size != len(payload) {
		return "", nil, fmt.Errorf("%w: object size %d disagrees with payload length %d", errs.ErrCorrupt, size, len(payload))
	}
	return kind, payload, nil
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob returns the blob payload, verbatim.
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob builds a Blob from its payload, verbatim.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree's leaves in their stored order: the codec
// never re-sorts on write, so callers must present leaves already in §4.4
// collation order.
func MarshalTree(t *Tree) []byte {
	var buf bytes.Buffer
	for _, leaf := range t.Leaves {
		fmt.Fprintf(&buf, "%s %s", leaf.Mode, leaf.Name)
		buf.WriteByte(0)
		buf.Write(leaf.Hash[:])
	}
	return buf.Bytes()
}

// UnmarshalTree parses a Tree from its serialized form, preserving entry order.
func UnmarshalTree(data []byte) (*Tree, error) {
	t := &Tree{}
	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("%w: tree entry missing mode separator", errs.ErrMalformedObject)
		}
		mode := string(rest[:sp])
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: tree entry missing name terminator", errs.ErrMalformedObject)
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]

		if len(rest) < hash.Size {
			return nil, fmt.Errorf("%w: tree entry truncated hash", errs.ErrMalformedObject)
		}
		var h hash.Hash
		copy(h[:], rest[:hash.Size])
		rest = rest[hash.Size:]

		t.Leaves = append(t.Leaves, TreeLeaf{Mode: mode, Name: name, Hash: h})
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

func formatSignature(sig Signature) string {
	return fmt.Sprintf("%s <%s> %d %s", sig.Name, sig.Email, sig.Timestamp, sig.TZOffset)
}

func parseSignature(s string) (Signature, error) {
	// "Name <email> epoch tzoffset"
	open := strings.LastIndexByte(s, '<')
	close := strings.LastIndexByte(s, '>')
	if open < 0 || close < 0 || close < open {
		return Signature{}, fmt.Errorf("%w: malformed signature %q", errs.ErrMalformedObject, s)
	}
	name := strings.TrimSpace(s[:open])
	email := s[open+1 : close]
	rest := strings.TrimSpace(s[close+1:])
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("%w: malformed signature timestamp/tz %q", errs.ErrMalformedObject, rest)
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: malformed signature timestamp %q: %v", errs.ErrMalformedObject, fields[0], err)
	}
	return Signature{Name: name, Email: email, Timestamp: ts, TZOffset: fields[1]}, nil
}

// MarshalCommit serializes a Commit: header lines (tree, parents, author,
// committer, optional gpgsig), a blank line, then the message verbatim.
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", formatSignature(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", formatSignature(c.Committer))
	if c.GPGSig != "" {
		fmt.Fprintf(&buf, "gpgsig %s\n", indentContinuation(c.GPGSig))
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// indentContinuation prefixes every line after the first with a single
// space, matching Git's multi-line header continuation convention.
func indentContinuation(s string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = " " + lines[i]
	}
	return strings.Join(lines, "\n")
}

func dedentContinuation(s string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], " ")
	}
	return strings.Join(lines, "\n")
}

// UnmarshalCommit parses a Commit from its serialized form.
func UnmarshalCommit(data []byte) (*Commit, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("%w: commit missing header/message separator", errs.ErrMalformedObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &Commit{Message: message}
	lines := splitHeaderLines(header)
	for _, line := range lines {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed commit header line %q", errs.ErrMalformedObject, line)
		}
		switch key {
		case "tree":
			h, err := hash.ParseHex(val)
			if err != nil {
				return nil, fmt.Errorf("%w: commit tree hash: %v", errs.ErrMalformedObject, err)
			}
			c.Tree = h
		case "parent":
			h, err := hash.ParseHex(val)
			if err != nil {
				return nil, fmt.Errorf("%w: commit parent hash: %v", errs.ErrMalformedObject, err)
			}
			c.Parents = append(c.Parents, h)
		case "author":
			sig, err := parseSignature(val)
			if err != nil {
				return nil, err
			}
			c.Author = sig
		case "committer":
			sig, err := parseSignature(val)
			if err != nil {
				return nil, err
			}
			c.Committer = sig
		case "gpgsig":
			c.GPGSig = dedentContinuation(val)
		default:
			return nil, fmt.Errorf("%w: unknown commit header key %q", errs.ErrMalformedObject, key)
		}
	}
	return c, nil
}

// splitHeaderLines splits commit/tag header text into logical lines,
// joining continuation lines (those starting with a leading space) onto
// the preceding logical line.
func splitHeaderLines(header string) []string {
	raw := strings.Split(header, "\n")
	var lines []string
	for _, l := range raw {
		if strings.HasPrefix(l, " ") && len(lines) > 0 {
			lines[len(lines)-1] += "\n" + l
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// ---------------------------------------------------------------------------
// Tag
// ---------------------------------------------------------------------------

// MarshalTag serializes a Tag: object/type/tag/tagger header lines, a blank
// line, then the message verbatim.
func MarshalTag(t *Tag) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.Object)
	fmt.Fprintf(&buf, "type %s\n", t.Kind)
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	fmt.Fprintf(&buf, "tagger %s\n", formatSignature(t.Tagger))
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// UnmarshalTag parses a Tag from its serialized form.
func UnmarshalTag(data []byte) (*Tag, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("%w: tag missing header/message separator", errs.ErrMalformedObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	t := &Tag{Message: message}
	for _, line := range splitHeaderLines(header) {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed tag header line %q", errs.ErrMalformedObject, line)
		}
		switch key {
		case "object":
			h, err := hash.ParseHex(val)
			if err != nil {
				return nil, fmt.Errorf("%w: tag object hash: %v", errs.ErrMalformedObject, err)
			}
			t.Object = h
		case "type":
			t.Kind = Kind(val)
		case "tag":
			t.Name = val
		case "tagger":
			sig, err := parseSignature(val)
			if err != nil {
				return nil, err
			}
			t.Tagger = sig
		default:
			return nil, fmt.Errorf("%w: unknown tag header key %q", errs.ErrMalformedObject, key)
		}
	}
	return t, nil
}
