package kube

import "fmt"

// OutputSet accumulates command results in execution order. Keys are the
// command strings; a repeated command (for example a follow-up re-running an
// initial command) gets a qualified key instead of overwriting the earlier
// result.
type OutputSet struct {
	order []string
	byKey map[string]CommandResult
}

func NewOutputSet() *OutputSet {
	return &OutputSet{byKey: make(map[string]CommandResult)}
}

// Add stores a result under the command string, disambiguating duplicates
// with the phase label and, if needed, a counter.
func (s *OutputSet) Add(command, phase string, res CommandResult) {
	key := command
	if _, exists := s.byKey[key]; exists {
		key = fmt.Sprintf("%s (%s)", command, phase)
	}
	for i := 2; ; i++ {
		if _, exists := s.byKey[key]; !exists {
			break
		}
		key = fmt.Sprintf("%s (%s #%d)", command, phase, i)
	}
	s.order = append(s.order, key)
	s.byKey[key] = res
}

// Keys returns the stored keys in insertion order.
func (s *OutputSet) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *OutputSet) Get(key string) (CommandResult, bool) {
	res, ok := s.byKey[key]
	return res, ok
}

func (s *OutputSet) Len() int { return len(s.order) }

func (s *OutputSet) Empty() bool { return len(s.order) == 0 }
