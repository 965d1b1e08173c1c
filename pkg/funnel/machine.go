package funnel

import "product-advisor-be/pkg/store"

// Answer is a resolved user reply: either a selection of a concrete funnel
// option or free text. Transport payloads are resolved into this variant
// exactly once, so the rest of the flow never re-guesses label vs value.
type Answer struct {
	Step      string
	Selection *Option
	Text      string
}

// IsSelection reports whether the answer resolved to a funnel option.
func (a Answer) IsSelection() bool {
	return a.Selection != nil
}

// Machine drives the funnel over a session's mutable state. It is stateless
// itself: all position and criteria live in the session.
type Machine struct {
	vocab *Vocabulary
}

func NewMachine(vocab *Vocabulary) *Machine {
	return &Machine{vocab: vocab}
}

func (m *Machine) Vocabulary() *Vocabulary {
	return m.vocab
}

// Start resets the funnel and activates the first step.
func (m *Machine) Start(s *store.Session) *Step {
	s.ResetFunnel()
	first := m.vocab.steps[0]
	s.CurrentStep = first.Key
	return &m.vocab.steps[0]
}

// Resolve matches a raw payload against funnel options. The current step is
// tried first; when no step is active the whole vocabulary is scanned, so a
// stale button press still lands on its own step.
func (m *Machine) Resolve(s *store.Session, raw string) (Answer, bool) {
	if s.CurrentStep != "" {
		if step, ok := m.vocab.Step(s.CurrentStep); ok {
			if opt, ok := step.ResolveOption(raw); ok {
				return Answer{Step: step.Key, Selection: &opt}, true
			}
		}
	}
	for i := range m.vocab.steps {
		step := &m.vocab.steps[i]
		if opt, ok := step.ResolveOption(raw); ok {
			return Answer{Step: step.Key, Selection: &opt}, true
		}
	}
	return Answer{Text: raw}, false
}

// ApplySelection records a resolved option and advances to the next pending
// step. A nil return means the funnel is complete.
func (m *Machine) ApplySelection(s *store.Session, a Answer) *Step {
	if a.Selection != nil {
		s.Criteria[a.Step] = a.Selection.Value
	}
	return m.advance(s)
}

// ApplyExtraction merges criteria recognized in free text, overwriting any
// prior value for the same key (the customer changed their mind), then
// advances. Keys outside the vocabulary are ignored.
func (m *Machine) ApplyExtraction(s *store.Session, extracted map[string]string) *Step {
	for key, value := range extracted {
		if _, known := m.vocab.Step(key); known {
			s.Criteria[key] = value
		}
	}
	return m.advance(s)
}

// advance moves the session to the first step not yet answered.
func (m *Machine) advance(s *store.Session) *Step {
	next := m.NextPending(s)
	if next == nil {
		s.CurrentStep = ""
		return nil
	}
	s.CurrentStep = next.Key
	return next
}

// NextPending returns the first step in funnel order without a recorded
// answer, or nil when every step has been visited.
func (m *Machine) NextPending(s *store.Session) *Step {
	for i := range m.vocab.steps {
		if _, answered := s.Criteria[m.vocab.steps[i].Key]; !answered {
			return &m.vocab.steps[i]
		}
	}
	return nil
}

// Back re-opens the previous step, discarding only its criterion so it is
// asked again. At the first step (or outside the funnel) it behaves as a
// full restart.
func (m *Machine) Back(s *store.Session) *Step {
	order := m.vocab.Order()
	idx := -1
	for i, key := range order {
		if key == s.CurrentStep {
			idx = i
			break
		}
	}
	if idx > 0 {
		prev := order[idx-1]
		delete(s.Criteria, prev)
		s.CurrentStep = prev
		step, _ := m.vocab.Step(prev)
		return step
	}
	return m.Start(s)
}

// CurrentStep returns the active step, or nil in free mode.
func (m *Machine) CurrentStep(s *store.Session) *Step {
	if s.CurrentStep == "" {
		return nil
	}
	step, ok := m.vocab.Step(s.CurrentStep)
	if !ok {
		return nil
	}
	return step
}
