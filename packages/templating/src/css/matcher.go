package css

// SelectorMatcher indexes selectors together with a payload and finds the
// payloads whose selector matches a given element description.
type SelectorMatcher[T any] struct {
	elementMap          map[string][]*selectorContext[T]
	elementPartialMap   map[string]*SelectorMatcher[T]
	classMap            map[string][]*selectorContext[T]
	classPartialMap     map[string]*SelectorMatcher[T]
	attrValueMap        map[string]map[string][]*selectorContext[T]
	attrValuePartialMap map[string]map[string]*SelectorMatcher[T]
	listContexts        []*selectorListContext
}

// NewSelectorMatcher returns an empty matcher.
func NewSelectorMatcher[T any]() *SelectorMatcher[T] {
	return &SelectorMatcher[T]{
		elementMap:          map[string][]*selectorContext[T]{},
		elementPartialMap:   map[string]*SelectorMatcher[T]{},
		classMap:            map[string][]*selectorContext[T]{},
		classPartialMap:     map[string]*SelectorMatcher[T]{},
		attrValueMap:        map[string]map[string][]*selectorContext[T]{},
		attrValuePartialMap: map[string]map[string]*SelectorMatcher[T]{},
	}
}

// MatchCallback receives the selector that matched and its payload.
type MatchCallback[T any] func(s *Selector, payload T)

// AddSelectables registers payload under every selector of a selector list.
// A list matches at most once per Match call.
func (m *SelectorMatcher[T]) AddSelectables(selectors []*Selector, payload T) {
	var list *selectorListContext
	if len(selectors) > 1 {
		list = &selectorListContext{}
		m.listContexts = append(m.listContexts, list)
	}
	for _, s := range selectors {
		m.addSelectable(s, payload, list)
	}
}

func (m *SelectorMatcher[T]) addSelectable(s *Selector, payload T, list *selectorListContext) {
	matcher := m
	selectable := &selectorContext[T]{selector: s, payload: payload, list: list}

	if s.Element != "" {
		if len(s.Attrs) == 0 && len(s.ClassNames) == 0 {
			addTerminal(matcher.elementMap, s.Element, selectable)
			return
		}
		matcher = addPartial(matcher.elementPartialMap, s.Element)
	}

	for i, className := range s.ClassNames {
		if len(s.Attrs) == 0 && i == len(s.ClassNames)-1 {
			addTerminal(matcher.classMap, className, selectable)
			return
		}
		matcher = addPartial(matcher.classPartialMap, className)
	}

	for i := 0; i < len(s.Attrs); i += 2 {
		name, value := s.Attrs[i], s.Attrs[i+1]
		if i == len(s.Attrs)-2 {
			values, ok := matcher.attrValueMap[name]
			if !ok {
				values = map[string][]*selectorContext[T]{}
				matcher.attrValueMap[name] = values
			}
			addTerminal(values, value, selectable)
			return
		}
		partials, ok := matcher.attrValuePartialMap[name]
		if !ok {
			partials = map[string]*SelectorMatcher[T]{}
			matcher.attrValuePartialMap[name] = partials
		}
		matcher = addPartial(partials, value)
	}
}

func addTerminal[T any](m map[string][]*selectorContext[T], name string, selectable *selectorContext[T]) {
	m[name] = append(m[name], selectable)
}

func addPartial[T any](m map[string]*SelectorMatcher[T], name string) *SelectorMatcher[T] {
	matcher, ok := m[name]
	if !ok {
		matcher = NewSelectorMatcher[T]()
		m[name] = matcher
	}
	return matcher
}

// Match calls cb for every registered selector matching target and reports
// whether there was at least one match.
func (m *SelectorMatcher[T]) Match(target *Selector, cb MatchCallback[T]) bool {
	for _, list := range m.listContexts {
		list.alreadyMatched = false
	}

	result := m.matchTerminal(m.elementMap, target.Element, target, cb)
	result = m.matchPartial(m.elementPartialMap, target.Element, target, cb) || result

	for _, className := range target.ClassNames {
		result = m.matchTerminal(m.classMap, className, target, cb) || result
		result = m.matchPartial(m.classPartialMap, className, target, cb) || result
	}

	for i := 0; i < len(target.Attrs); i += 2 {
		name, value := target.Attrs[i], target.Attrs[i+1]
		if values, ok := m.attrValueMap[name]; ok {
			if value != "" {
				result = m.matchTerminal(values, "", target, cb) || result
			}
			result = m.matchTerminal(values, value, target, cb) || result
		}
		if partials, ok := m.attrValuePartialMap[name]; ok {
			if value != "" {
				result = m.matchPartial(partials, "", target, cb) || result
			}
			result = m.matchPartial(partials, value, target, cb) || result
		}
	}
	return result
}

func (m *SelectorMatcher[T]) matchTerminal(terminals map[string][]*selectorContext[T], name string, target *Selector, cb MatchCallback[T]) bool {
	selectables := append([]*selectorContext[T](nil), terminals[name]...)
	selectables = append(selectables, terminals["*"]...)
	result := false
	for _, s := range selectables {
		if s.finalize(target, cb) {
			result = true
		}
	}
	return result
}

func (m *SelectorMatcher[T]) matchPartial(partials map[string]*SelectorMatcher[T], name string, target *Selector, cb MatchCallback[T]) bool {
	nested, ok := partials[name]
	if !ok {
		return false
	}
	return nested.Match(target, cb)
}

type selectorListContext struct {
	alreadyMatched bool
}

type selectorContext[T any] struct {
	selector *Selector
	payload  T
	list     *selectorListContext
}

func (c *selectorContext[T]) finalize(target *Selector, cb MatchCallback[T]) bool {
	if c.list != nil && c.list.alreadyMatched {
		return true
	}
	if len(c.selector.NotSelectors) > 0 {
		not := NewSelectorMatcher[struct{}]()
		not.AddSelectables(c.selector.NotSelectors, struct{}{})
		if not.Match(target, nil) {
			return false
		}
	}
	if c.list != nil {
		c.list.alreadyMatched = true
	}
	if cb != nil {
		cb(c.selector, c.payload)
	}
	return true
}
