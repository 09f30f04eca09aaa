package tracker

// PutRaw stores document bytes without encoding or validation.
func (s *MemoryStore) PutRaw(profileID string, data []byte) {
	s.mu.Lock()
	s.docs[profileID] = append([]byte{}, data...)
	s.mu.Unlock()
}

// Raw returns the stored bytes for profileID.
func (s *MemoryStore) Raw(profileID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[profileID]
	return append([]byte{}, data...), ok
}
