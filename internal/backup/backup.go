// Package backup exports and imports a learner's cards together with their
// scheduling state as a YAML archive.
package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/srs"
)

// Archive is the on-disk backup format.
type Archive struct {
	ExportedAt time.Time    `yaml:"exported_at"`
	UserID     string       `yaml:"user_id"`
	Cards      []CardRecord `yaml:"cards"`
}

// CardRecord is one card with its scheduling fields.
type CardRecord struct {
	Front           string    `yaml:"front"`
	Back            string    `yaml:"back"`
	IntervalDays    int       `yaml:"interval_days"`
	RepetitionCount int       `yaml:"repetition_count"`
	EasinessFactor  float64   `yaml:"easiness_factor"`
	DueAt           time.Time `yaml:"due_at"`
}

// Service reads and writes backup archives.
type Service struct {
	cards card.Repository
	clock func() time.Time
}

// NewService creates a backup service. A nil clock defaults to UTC wall time.
func NewService(cards card.Repository, clock func() time.Time) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{cards: cards, clock: clock}
}

// Export writes the user's full collection to w.
func (s *Service) Export(ctx context.Context, userID string, w io.Writer) error {
	cards, err := s.cards.FindAllByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("cards.FindAllByUser() > %w", err)
	}

	archive := Archive{
		ExportedAt: s.clock(),
		UserID:     userID,
		Cards:      make([]CardRecord, 0, len(cards)),
	}
	for _, c := range cards {
		archive.Cards = append(archive.Cards, CardRecord{
			Front:           c.Front,
			Back:            c.Back,
			IntervalDays:    c.IntervalDays,
			RepetitionCount: c.RepetitionCount,
			EasinessFactor:  c.EasinessFactor,
			DueAt:           c.DueAt,
		})
	}

	encoder := yaml.NewEncoder(w)
	defer func() {
		_ = encoder.Close()
	}()
	if err := encoder.Encode(archive); err != nil {
		return fmt.Errorf("yaml encode archive > %w", err)
	}
	return nil
}

// Import reads an archive from r and creates its cards for the user,
// preserving the scheduling state. Returns the number of imported cards.
// Records with broken invariants are repaired, not rejected: the easiness
// factor is raised to the minimum and a negative interval becomes zero.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (int, error) {
	var archive Archive
	if err := yaml.NewDecoder(r).Decode(&archive); err != nil {
		return 0, fmt.Errorf("yaml decode archive > %w", err)
	}

	now := s.clock()
	imported := 0
	for _, record := range archive.Cards {
		if record.EasinessFactor < srs.MinEasinessFactor {
			record.EasinessFactor = srs.MinEasinessFactor
		}
		if record.IntervalDays < 0 {
			record.IntervalDays = 0
		}
		if record.DueAt.IsZero() {
			record.DueAt = now
		}

		c := card.NewCard(userID, record.Front, record.Back, now)
		c.ApplyReviewState(srs.ReviewState{
			IntervalDays:    record.IntervalDays,
			RepetitionCount: record.RepetitionCount,
			EasinessFactor:  record.EasinessFactor,
			DueAt:           record.DueAt,
		})
		if err := s.cards.Create(ctx, &c); err != nil {
			return imported, fmt.Errorf("cards.Create(%s) > %w", record.Front, err)
		}
		imported++
	}
	return imported, nil
}
