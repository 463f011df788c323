package scene

func (s *sceneImpl) QueueForDisposal(x Disposable) {
	if x == nil {
		return
	}
	s.disposalMu.Lock()
	defer s.disposalMu.Unlock()
	s.toDispose = append(s.toDispose, x)
}

// flushDisposal disposes everything queued so far. Items queued by a Dispose call wait for the
// next frame.
func (s *sceneImpl) flushDisposal() {
	s.disposalMu.Lock()
	queue := s.toDispose
	s.toDispose = nil
	s.disposalMu.Unlock()

	for _, x := range queue {
		x.Dispose()
	}
}
