// Package cli implements the interactive terminal review session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kioku-app/kioku/internal/activity"
	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/review"
	"github.com/kioku-app/kioku/internal/srs"
)

var errEnd = errors.New("end of session")

// ReviewSession runs a terminal flashcard session over the cards that are due.
type ReviewSession struct {
	userID     string
	cards      card.Repository
	reviews    *review.Service
	activities *activity.Service
	clock      func() time.Time

	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color

	queue      []card.Card
	reviewed   int
	remembered int
}

// NewReviewSession loads the user's due cards and prepares a session over them.
func NewReviewSession(
	ctx context.Context,
	userID string,
	cards card.Repository,
	reviews *review.Service,
	activities *activity.Service,
	clock func() time.Time,
) (*ReviewSession, error) {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	all, err := cards.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cards.FindAllByUser() > %w", err)
	}

	byID := make(map[string]card.Card, len(all))
	items := make([]srs.DueItem, 0, len(all))
	for _, c := range all {
		key := strconv.FormatInt(c.ID, 10)
		byID[key] = c
		items = append(items, srs.DueItem{ID: key, State: c.ReviewState()})
	}

	var queue []card.Card
	for _, id := range srs.SelectDue(items, clock()) {
		queue = append(queue, byID[id])
	}

	return &ReviewSession{
		userID:       userID,
		cards:        cards,
		reviews:      reviews,
		activities:   activities,
		clock:        clock,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		queue:        queue,
	}, nil
}

// CardCount returns how many cards are queued for this session.
func (s *ReviewSession) CardCount() int {
	return len(s.queue)
}

// Run reviews the queued cards one by one until the queue is empty, the user
// quits, or an interrupt arrives.
func (s *ReviewSession) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if len(s.queue) == 0 {
		fmt.Fprintln(s.stdoutWriter, "No cards are due. Come back later.")
		return nil
	}

	if _, err := s.activities.RecordActivity(ctx, s.userID); err != nil {
		return fmt.Errorf("activities.RecordActivity() > %w", err)
	}

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := s.session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(s.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	s.printSummary()
	return nil
}

// session shows one card, asks for a grade and persists the review.
func (s *ReviewSession) session(ctx context.Context) error {
	if len(s.queue) == 0 {
		return errEnd
	}
	current := s.queue[0]

	fmt.Fprintf(s.stdoutWriter, "%s\n", s.bold.Sprintf("%s", current.Front))
	fmt.Fprint(s.stdoutWriter, "Press Enter to reveal the answer, or type 'quit' to exit: ")
	input, err := s.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errEnd
		}
		return fmt.Errorf("stdinReader.ReadString() > %w", err)
	}
	if strings.TrimSpace(input) == "quit" {
		return errEnd
	}

	fmt.Fprintf(s.stdoutWriter, "%s\n", s.italic.Sprintf("%s", current.Back))

	quality, err := s.readQuality()
	if err != nil {
		return err
	}

	updated, err := s.reviews.Review(ctx, s.userID, current.ID, quality)
	if err != nil {
		return fmt.Errorf("reviews.Review() > %w", err)
	}

	s.reviewed++
	if quality.Remembered() {
		s.remembered++
		fmt.Fprint(s.stdoutWriter, "✅ ")
		fmt.Fprintln(s.stdoutWriter, color.GreenString("Remembered. Next review in %d day(s).", updated.IntervalDays))
	} else {
		fmt.Fprint(s.stdoutWriter, "❌ ")
		fmt.Fprintln(s.stdoutWriter, color.RedString("Forgotten. The card starts over tomorrow."))
	}
	fmt.Fprintln(s.stdoutWriter)

	s.queue = s.queue[1:]
	return nil
}

// readQuality asks the user for a grade until a number or 'quit' comes in.
// Numbers outside [0,5] are clamped, matching the scheduler's contract.
func (s *ReviewSession) readQuality() (srs.Quality, error) {
	for {
		fmt.Fprint(s.stdoutWriter, "How well did you remember? [0-5, or 'quit']: ")
		input, err := s.stdinReader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, errEnd
			}
			return 0, fmt.Errorf("stdinReader.ReadString() > %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "quit" {
			return 0, errEnd
		}

		n, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintln(s.stdoutWriter, "Please enter a number between 0 and 5.")
			continue
		}
		return srs.Quality(n).Clamp(), nil
	}
}

func (s *ReviewSession) printSummary() {
	fmt.Fprintf(s.stdoutWriter, "Session finished: %d reviewed, %d remembered, %d left in queue.\n",
		s.reviewed, s.remembered, len(s.queue))
}
