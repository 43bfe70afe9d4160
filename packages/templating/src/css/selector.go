package css

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// selectorGroup names the capture groups of selectorRegexp.
type selectorGroup int

const (
	groupAll       selectorGroup = iota
	groupNot                     // ":not("
	groupTag                     // tag, .class or #id
	groupPrefix                  // "." or "#"
	groupAttr                    // attribute name
	groupAttrValue               // attribute value, double quoted
	groupAttrValue2              // attribute value, single quoted
	groupAttrValue3              // attribute value, unquoted
	groupNotEnd                  // ")"
	groupSeparator               // ","
)

var selectorRegexp = regexp.MustCompile(
	`(\:not\()|` +
		`(([\.\#]?)[-\w]+)|` +
		`(?:\[([-.\w*\\$]+)(?:=(?:"([^"]*)"|'([^']*)'|([^\]\s]+)))?\])|` +
		`(\))|` +
		`(\s*,\s*)`,
)

// Selector is one compound selector: an optional element name, class names,
// attribute name/value pairs and :not() selectors.
type Selector struct {
	Element      string
	ClassNames   []string
	Attrs        []string // name, value, name, value, ...
	NotSelectors []*Selector
}

// Parse parses a comma separated selector list such as
// "my-card, [ng-if], input.big:not([disabled])".
func Parse(selector string) ([]*Selector, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("css: empty selector")
	}
	var results []*Selector
	addResult := func(s *Selector) {
		if len(s.NotSelectors) > 0 && s.Element == "" && len(s.ClassNames) == 0 && len(s.Attrs) == 0 {
			s.Element = "*"
		}
		results = append(results, s)
	}

	top := &Selector{}
	current := top
	inNot := false
	consumed := 0

	for _, m := range selectorRegexp.FindAllStringSubmatchIndex(selector, -1) {
		if gap := strings.TrimSpace(selector[consumed:m[0]]); gap != "" {
			return nil, fmt.Errorf("css: unexpected %q in selector %q", gap, selector)
		}
		consumed = m[1]
		group := func(g selectorGroup) string {
			start, end := m[2*g], m[2*g+1]
			if start < 0 {
				return ""
			}
			return selector[start:end]
		}

		if group(groupNot) != "" {
			if inNot {
				return nil, fmt.Errorf("css: nesting :not in a selector is not allowed")
			}
			inNot = true
			current = &Selector{}
			top.NotSelectors = append(top.NotSelectors, current)
		}
		if tag := group(groupTag); tag != "" {
			switch group(groupPrefix) {
			case "#":
				current.AddAttribute("id", tag[1:])
			case ".":
				current.AddClassName(tag[1:])
			default:
				current.Element = tag
			}
		}
		if name := group(groupAttr); name != "" {
			value := group(groupAttrValue)
			if value == "" {
				value = group(groupAttrValue2)
			}
			if value == "" {
				value = group(groupAttrValue3)
			}
			unescaped, err := unescapeAttribute(name)
			if err != nil {
				return nil, err
			}
			current.AddAttribute(unescaped, value)
		}
		if group(groupNotEnd) != "" {
			inNot = false
			current = top
		}
		if group(groupSeparator) != "" {
			if inNot {
				return nil, fmt.Errorf("css: multiple selectors in :not are not supported")
			}
			addResult(top)
			top = &Selector{}
			current = top
		}
	}
	if rest := strings.TrimSpace(selector[consumed:]); rest != "" {
		return nil, fmt.Errorf("css: unexpected %q in selector %q", rest, selector)
	}
	if inNot {
		return nil, fmt.Errorf("css: unterminated :not in selector %q", selector)
	}
	addResult(top)
	return results, nil
}

func unescapeAttribute(attr string) (string, error) {
	var sb strings.Builder
	escaping := false
	for i := 0; i < len(attr); i++ {
		c := attr[i]
		if c == '\\' {
			escaping = true
			continue
		}
		if c == '$' && !escaping {
			return "", fmt.Errorf(`css: unescaped "$" in attribute selector %q, escape it with "\\$"`, attr)
		}
		escaping = false
		sb.WriteByte(c)
	}
	return sb.String(), nil
}

// AddAttribute appends an attribute constraint. Values are case insensitive.
func (s *Selector) AddAttribute(name, value string) {
	s.Attrs = append(s.Attrs, name, strings.ToLower(value))
}

// AddClassName appends a class constraint. Class names are case insensitive.
func (s *Selector) AddClassName(name string) {
	s.ClassNames = append(s.ClassNames, strings.ToLower(name))
}

// AttrNames returns the attribute names the selector constrains.
func (s *Selector) AttrNames() []string {
	var names []string
	for i := 0; i < len(s.Attrs); i += 2 {
		names = append(names, s.Attrs[i])
	}
	return names
}

func (s *Selector) String() string {
	var sb strings.Builder
	sb.WriteString(s.Element)
	for _, c := range s.ClassNames {
		sb.WriteString("." + c)
	}
	for i := 0; i < len(s.Attrs); i += 2 {
		name := strings.ReplaceAll(strings.ReplaceAll(s.Attrs[i], `\`, `\\`), "$", `\$`)
		if v := s.Attrs[i+1]; v != "" {
			fmt.Fprintf(&sb, "[%s=%s]", name, v)
		} else {
			fmt.Fprintf(&sb, "[%s]", name)
		}
	}
	for _, n := range s.NotSelectors {
		fmt.Fprintf(&sb, ":not(%s)", n)
	}
	return sb.String()
}

// FromElement describes an element node as a selector to match against:
// its tag name, its classes and all of its attributes.
func FromElement(n *html.Node) *Selector {
	s := &Selector{Element: n.Data}
	for _, a := range n.Attr {
		if a.Namespace != "" {
			continue
		}
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				s.AddClassName(c)
			}
		}
		s.AddAttribute(a.Key, a.Val)
	}
	return s
}
