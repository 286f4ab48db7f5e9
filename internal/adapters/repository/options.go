package repository

import "github.com/okian/deliberation/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithStates seeds the store, keeping each state's version.
func WithStates(states ...model.State) Option {
	return func(s *MemoryStore) {
		for _, st := range states {
			s.states[st.EventID] = st.Clone()
		}
	}
}
