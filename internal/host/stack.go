package host

// Stack is the z-order of panels currently in the interactive tree.
// The last element is topmost and receives escape and backdrop input.
type Stack struct {
	ids []string
}

// Push places id on top, moving it if it is already present.
func (s *Stack) Push(id string) {
	s.Remove(id)
	s.ids = append(s.ids, id)
}

// Remove takes id out of the stack.
func (s *Stack) Remove(id string) bool {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Top returns the topmost id.
func (s *Stack) Top() (string, bool) {
	if len(s.ids) == 0 {
		return "", false
	}
	return s.ids[len(s.ids)-1], true
}

// Contains reports whether id is in the stack.
func (s *Stack) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of panels in the stack.
func (s *Stack) Len() int {
	return len(s.ids)
}

// IDs returns the stack bottom to top.
func (s *Stack) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
