package service

import (
	"time"

	"github.com/okian/deliberation/internal/adapters/repository"
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/season"
	"github.com/okian/deliberation/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEventID sets the event whose deliberations the service owns.
func WithEventID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.eventID = id
		}
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many command and event ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the authoritative state store. The service closes it on
// Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithSeason sets the rubric schema and GP default used for scoring.
func WithSeason(sn *season.Season) Option {
	return func(s *Service) {
		if sn != nil {
			s.season = sn
		}
	}
}

// WithSnapshot sets the upstream snapshot the service starts from.
func WithSnapshot(snap model.Snapshot) Option {
	return func(s *Service) { s.initial = snap.Clone() }
}

// WithPicklistPolicy sets the picklist capacity rule.
func WithPicklistPolicy(maxAllowed int, multiplier float64) Option {
	return func(s *Service) {
		s.picklistMax = maxAllowed
		s.picklistMultiplier = multiplier
	}
}

// WithChampionsPool sets how many top ranked teams are champions
// candidates. Zero uses the champions award count.
func WithChampionsPool(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.championsPool = n
		}
	}
}

// WithExemptAwards sets the awards not decided in the final deliberation.
func WithExemptAwards(names ...string) Option {
	return func(s *Service) { s.exemptAwards = names }
}

// WithAutoAssignedAward sets the award filled by the engine instead of
// the judges.
func WithAutoAssignedAward(name string) Option {
	return func(s *Service) { s.autoAssigned = name }
}

// WithAdvancementPercent sets the share of teams, champions included,
// that advance when champions are placed. Zero disables advancement.
func WithAdvancementPercent(percent float64) Option {
	return func(s *Service) { s.advancementPercent = percent }
}

// WithClock overrides the time source stamped on deliberations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
