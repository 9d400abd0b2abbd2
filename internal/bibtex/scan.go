package bibtex

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Entry is one raw bibliographic entry as found in the source.
type Entry struct {
	Type   string            // lower-cased entry type, e.g. "inproceedings"
	Key    string            // citation key
	Fields map[string]string // lower-cased field name -> raw value
	Raw    string            // entry text, for error reporting
	Line   int               // 1-based line of the leading '@'
	Err    error             // syntax error; Fields may be partial
}

var errUnterminated = errors.New("unterminated entry")

// ignoredTypes are entry types that carry no record.
var ignoredTypes = map[string]bool{"comment": true, "preamble": true, "string": true}

// scanEntries calls yield for each entry in src, in order, until yield
// returns false. Text outside entries is ignored.
func scanEntries(src []byte, yield func(Entry) bool) {
	pos := 0
	for pos < len(src) {
		at := bytes.IndexByte(src[pos:], '@')
		if at < 0 {
			return
		}
		start := pos + at
		e, end, ok := scanEntry(src, start)
		pos = end
		if !ok {
			continue
		}
		e.Line = 1 + bytes.Count(src[:start], []byte{'\n'})
		if !yield(e) {
			return
		}
	}
}

// scanEntry parses the entry starting at src[start] == '@'. It returns the
// position after the entry and false when the '@' does not open a record.
func scanEntry(src []byte, start int) (Entry, int, bool) {
	s := &scanner{src: src, pos: start + 1}

	typ := s.ident()
	if typ == "" {
		return Entry{}, start + 1, false
	}
	s.skipSpace()
	var closer byte
	switch s.peek() {
	case '{':
		closer = '}'
	case '(':
		closer = ')'
	default:
		return Entry{}, s.pos, false
	}
	s.pos++

	typ = strings.ToLower(typ)
	if ignoredTypes[typ] {
		if err := s.skipBalanced(closer); err != nil {
			return Entry{}, len(src), false
		}
		return Entry{}, s.pos, false
	}

	e := Entry{Type: typ, Fields: make(map[string]string)}
	err := s.body(&e, closer)
	end := s.pos
	if err != nil {
		e.Err = err
		end = resync(src, start+1)
	}
	e.Raw = strings.TrimSpace(string(src[start:end]))
	return e, end, true
}

type scanner struct {
	src []byte
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == ':' || c == '.' || c == '+' || c == '/'
}

func (s *scanner) ident() string {
	begin := s.pos
	for !s.eof() && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[begin:s.pos])
}

// body parses "key, name = value, ..." up to and including closer.
func (s *scanner) body(e *Entry, closer byte) error {
	s.skipSpace()
	begin := s.pos
	for !s.eof() && s.src[s.pos] != ',' && s.src[s.pos] != closer && !isSpace(s.src[s.pos]) {
		s.pos++
	}
	e.Key = string(s.src[begin:s.pos])
	s.skipSpace()
	switch s.peek() {
	case closer:
		s.pos++
		return nil
	case ',':
		s.pos++
	case 0:
		return errUnterminated
	default:
		return fmt.Errorf("expected ',' after key %q", e.Key)
	}

	for {
		s.skipSpace()
		if s.eof() {
			return errUnterminated
		}
		if s.peek() == closer {
			s.pos++
			return nil
		}
		name := s.ident()
		if name == "" {
			return fmt.Errorf("expected field name at %q", s.context())
		}
		s.skipSpace()
		if s.peek() != '=' {
			return fmt.Errorf("expected '=' after field %q", name)
		}
		s.pos++
		value, err := s.value()
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		e.Fields[strings.ToLower(name)] = value

		s.skipSpace()
		switch s.peek() {
		case ',':
			s.pos++
		case closer:
			s.pos++
			return nil
		case 0:
			return errUnterminated
		default:
			return fmt.Errorf("expected ',' after field %q", name)
		}
	}
}

// value parses a field value, joining '#'-concatenated parts.
func (s *scanner) value() (string, error) {
	var b strings.Builder
	for {
		s.skipSpace()
		part, err := s.valuePart()
		if err != nil {
			return "", err
		}
		b.WriteString(part)
		s.skipSpace()
		if s.peek() != '#' {
			return b.String(), nil
		}
		s.pos++
	}
}

func (s *scanner) valuePart() (string, error) {
	switch s.peek() {
	case '{':
		s.pos++
		begin := s.pos
		if err := s.skipBalanced('}'); err != nil {
			return "", err
		}
		return string(s.src[begin : s.pos-1]), nil
	case '"':
		s.pos++
		begin := s.pos
		depth := 0
		for !s.eof() {
			c := s.src[s.pos]
			switch {
			case c == '{':
				depth++
			case c == '}':
				depth--
			case c == '"' && depth == 0 && s.src[s.pos-1] != '\\':
				s.pos++
				return string(s.src[begin : s.pos-1]), nil
			}
			s.pos++
		}
		return "", errUnterminated
	case 0:
		return "", errUnterminated
	default:
		v := s.ident()
		if v == "" {
			return "", fmt.Errorf("unexpected %q", s.context())
		}
		return v, nil
	}
}

// skipBalanced advances past the closer matching an already consumed opener.
func (s *scanner) skipBalanced(closer byte) error {
	opener := byte('{')
	if closer == ')' {
		opener = '('
	}
	depth := 1
	for !s.eof() {
		c := s.src[s.pos]
		s.pos++
		switch c {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return errUnterminated
}

func (s *scanner) context() string {
	end := min(s.pos+20, len(s.src))
	return string(s.src[s.pos:end])
}

// resync returns the start of the next line beginning with '@' after pos,
// or len(src). A broken entry never swallows the entries that follow it.
func resync(src []byte, pos int) int {
	for i := pos; i < len(src); i++ {
		if src[i] != '\n' {
			continue
		}
		j := i + 1
		for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\r') {
			j++
		}
		if j < len(src) && src[j] == '@' {
			return j
		}
	}
	return len(src)
}
