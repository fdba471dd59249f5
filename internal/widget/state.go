package widget

import "sync"

type viewState struct {
	mu        sync.Mutex
	playing   int
	loadError error
}

func newViewState() *viewState {
	return &viewState{playing: -1}
}

func (s *viewState) setCurrent(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = i
}

func (s *viewState) current() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing, s.playing >= 0
}

func (s *viewState) clearCurrent() { s.setCurrent(-1) }

func (s *viewState) setCatalogErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadError = err
}

func (s *viewState) catalogErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadError
}
