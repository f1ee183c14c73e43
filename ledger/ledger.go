// Package ledger keeps the date-ranged history of which club a player or coach belongs to.
//
// Every person has at most one open row (no end date) per affiliation kind. The ledger checks this
// before and after each mutation and refuses to write a state that breaks it.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/tennis-clubs/models"
)

var (
	ErrNotFound           = errors.New("affiliation not found")
	ErrConflict           = errors.New("person already has an open affiliation")
	ErrInvariantViolation = errors.New("person has more than one open affiliation")
	ErrInvalidDateRange   = errors.New("affiliation cannot end before it starts")
)

// Store gives the ledger indexed access to the rows of one affiliation kind.
type Store interface {
	ListByPerson(ctx context.Context, personID int) ([]models.Affiliation, error)
	Insert(ctx context.Context, a *models.Affiliation) error
	UpdateRange(ctx context.Context, a *models.Affiliation) error
}

// RejoinPolicy decides what Transfer does when the target club was already visited.
type RejoinPolicy string

const (
	// RejoinReopen closes the current row and reopens the visited club's row.
	RejoinReopen RejoinPolicy = "reopen"
	// RejoinLegacy only moves the visited row's start date and leaves the current row open.
	// A start past the visited row's end is rejected with ErrInvalidDateRange.
	RejoinLegacy RejoinPolicy = "legacy"
)

// ParseRejoinPolicy reads a configured policy name; empty means RejoinReopen.
func ParseRejoinPolicy(s string) (RejoinPolicy, error) {
	switch RejoinPolicy(s) {
	case RejoinReopen, RejoinLegacy:
		return RejoinPolicy(s), nil
	case "":
		return RejoinReopen, nil
	default:
		return "", fmt.Errorf("unknown rejoin policy %q", s)
	}
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRejoinPolicy sets the rejoin policy. An empty policy keeps the default.
func WithRejoinPolicy(p RejoinPolicy) Option {
	return func(l *Ledger) {
		if p != "" {
			l.policy = p
		}
	}
}

// WithLogger sets the logger used for invariant violations.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Ledger applies affiliation changes for one kind of affiliation through its Store.
type Ledger struct {
	store  Store
	policy RejoinPolicy
	logger *slog.Logger
}

// New returns a Ledger using RejoinReopen and a discarding logger unless opts say otherwise.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		policy: RejoinReopen,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy reports the rejoin policy in effect.
func (l *Ledger) Policy() RejoinPolicy {
	return l.policy
}

// CurrentClub returns the club of the person's open row.
func (l *Ledger) CurrentClub(ctx context.Context, personID int) (models.ClubRef, error) {
	rows, err := l.load(ctx, personID)
	if err != nil {
		return models.ClubRef{}, err
	}
	open, err := l.openRow(ctx, personID, rows)
	if err != nil {
		return models.ClubRef{}, err
	}
	if open == nil {
		return models.ClubRef{}, fmt.Errorf("%w: person %d has no current club", ErrNotFound, personID)
	}
	return models.ClubRef{ID: open.ClubID, Name: open.ClubName}, nil
}

// History returns the closed spells of the person, oldest first.
func (l *Ledger) History(ctx context.Context, personID int) ([]models.HistoryEntry, error) {
	rows, err := l.load(ctx, personID)
	if err != nil {
		return nil, err
	}
	return historyOf(rows), nil
}

// Snapshot returns the current club (nil when the person has none) and the history in one read.
func (l *Ledger) Snapshot(ctx context.Context, personID int) (models.AffiliationSummary, error) {
	rows, err := l.load(ctx, personID)
	if err != nil {
		return models.AffiliationSummary{}, err
	}
	summary, err := Summarize(personID, rows)
	if err != nil {
		l.reportViolation(ctx, personID, rows)
	}
	return summary, err
}

// Join opens the first affiliation of a person. A club visited before has its row reopened
// because (person, club) identifies a row.
func (l *Ledger) Join(ctx context.Context, personID, clubID int, from time.Time) error {
	from = Day(from)
	rows, err := l.load(ctx, personID)
	if err != nil {
		return err
	}
	open, err := l.openRow(ctx, personID, rows)
	if err != nil {
		return err
	}
	if open != nil {
		return fmt.Errorf("%w: person %d is at club %d since %s", ErrConflict, personID, open.ClubID, open.From.Format(time.DateOnly))
	}

	var p plan
	if visited := findClub(rows, clubID); visited != nil {
		visited.From = from
		visited.To = nil
		p.updates = append(p.updates, *visited)
	} else {
		p.inserts = append(p.inserts, models.Affiliation{PersonID: personID, ClubID: clubID, From: from})
	}
	return l.commit(ctx, personID, rows, p)
}

// Transfer moves the person from the current club to newClubID as of effective.
func (l *Ledger) Transfer(ctx context.Context, personID, newClubID int, effective time.Time) error {
	effective = Day(effective)
	rows, err := l.load(ctx, personID)
	if err != nil {
		return err
	}
	open, err := l.openRow(ctx, personID, rows)
	if err != nil {
		return err
	}
	if open == nil {
		return fmt.Errorf("%w: person %d has no current club to transfer from", ErrNotFound, personID)
	}

	p, err := l.planTransfer(rows, *open, newClubID, effective)
	if err != nil {
		return err
	}
	if err := l.commit(ctx, personID, rows, p); err != nil {
		return err
	}
	l.logger.DebugContext(ctx, "affiliation transferred",
		slog.Int("person_id", personID),
		slog.Int("from_club_id", open.ClubID),
		slog.Int("to_club_id", newClubID),
		slog.String("effective", effective.Format(time.DateOnly)),
		slog.String("policy", string(l.policy)),
	)
	return nil
}

// Terminate closes the open row at clubID without opening another one.
func (l *Ledger) Terminate(ctx context.Context, personID, clubID int, to time.Time) error {
	to = Day(to)
	rows, err := l.load(ctx, personID)
	if err != nil {
		return err
	}
	open, err := l.openRow(ctx, personID, rows)
	if err != nil {
		return err
	}
	if open == nil || open.ClubID != clubID {
		return fmt.Errorf("%w: person %d has no open affiliation at club %d", ErrNotFound, personID, clubID)
	}
	if to.Before(open.From) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, to.Format(time.DateOnly), open.From.Format(time.DateOnly))
	}

	closed := *open
	closed.To = &to
	return l.commit(ctx, personID, rows, plan{updates: []models.Affiliation{closed}})
}

func (l *Ledger) planTransfer(rows []models.Affiliation, open models.Affiliation, newClubID int, effective time.Time) (plan, error) {
	if open.ClubID == newClubID {
		open.From = effective
		return plan{updates: []models.Affiliation{open}}, nil
	}

	visited := findClub(rows, newClubID)
	if visited != nil && l.policy == RejoinLegacy {
		if visited.To != nil && effective.After(*visited.To) {
			return plan{}, fmt.Errorf("%w: moving the start of the spell at club %d to %s would pass its end %s",
				ErrInvalidDateRange, newClubID, effective.Format(time.DateOnly), visited.To.Format(time.DateOnly))
		}
		visited.From = effective
		return plan{updates: []models.Affiliation{*visited}}, nil
	}

	if effective.Before(open.From) {
		return plan{}, fmt.Errorf("%w: transfer on %s precedes current spell start %s",
			ErrInvalidDateRange, effective.Format(time.DateOnly), open.From.Format(time.DateOnly))
	}
	closed := open
	closed.To = &effective

	// The open row is closed before anything is (re)opened.
	p := plan{updates: []models.Affiliation{closed}}
	if visited != nil {
		visited.From = effective
		visited.To = nil
		p.updates = append(p.updates, *visited)
	} else {
		p.inserts = append(p.inserts, models.Affiliation{PersonID: open.PersonID, ClubID: newClubID, From: effective})
	}
	return p, nil
}

func (l *Ledger) load(ctx context.Context, personID int) ([]models.Affiliation, error) {
	rows, err := l.store.ListByPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to load affiliations of person %d: %w", personID, err)
	}
	return rows, nil
}

func (l *Ledger) openRow(ctx context.Context, personID int, rows []models.Affiliation) (*models.Affiliation, error) {
	open, err := openOf(personID, rows)
	if err != nil {
		l.reportViolation(ctx, personID, rows)
	}
	return open, err
}

func (l *Ledger) commit(ctx context.Context, personID int, rows []models.Affiliation, p plan) error {
	after := p.apply(rows)
	if n := countOpen(after); n > 1 {
		l.logger.ErrorContext(ctx, "refusing affiliation change that leaves several open rows",
			slog.Int("person_id", personID), slog.Int("open_rows", n))
		return fmt.Errorf("%w: change would leave person %d with %d open rows", ErrInvariantViolation, personID, n)
	}

	for i := range p.updates {
		if err := l.store.UpdateRange(ctx, &p.updates[i]); err != nil {
			return fmt.Errorf("failed to update affiliation of person %d at club %d: %w", personID, p.updates[i].ClubID, err)
		}
	}
	for i := range p.inserts {
		if err := l.store.Insert(ctx, &p.inserts[i]); err != nil {
			return fmt.Errorf("failed to insert affiliation of person %d at club %d: %w", personID, p.inserts[i].ClubID, err)
		}
	}
	return nil
}

func (l *Ledger) reportViolation(ctx context.Context, personID int, rows []models.Affiliation) {
	clubs := make([]int, 0)
	for _, r := range rows {
		if r.IsOpen() {
			clubs = append(clubs, r.ClubID)
		}
	}
	l.logger.ErrorContext(ctx, "affiliation invariant violated",
		slog.Int("person_id", personID), slog.Any("open_club_ids", clubs))
}

// Summarize folds the rows of one person into the current club and the history.
func Summarize(personID int, rows []models.Affiliation) (models.AffiliationSummary, error) {
	summary := models.AffiliationSummary{PersonID: personID, History: historyOf(rows)}
	open, err := openOf(personID, rows)
	if err != nil {
		return summary, err
	}
	if open != nil {
		summary.Current = &models.ClubRef{ID: open.ClubID, Name: open.ClubName}
	}
	return summary, nil
}

// Day drops the clock part; affiliation bounds are calendar days.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type plan struct {
	updates []models.Affiliation
	inserts []models.Affiliation
}

func (p plan) apply(rows []models.Affiliation) []models.Affiliation {
	out := make([]models.Affiliation, 0, len(rows)+len(p.inserts))
	for _, r := range rows {
		for _, u := range p.updates {
			if u.ClubID == r.ClubID {
				r = u
			}
		}
		out = append(out, r)
	}
	return append(out, p.inserts...)
}

func openOf(personID int, rows []models.Affiliation) (*models.Affiliation, error) {
	var open *models.Affiliation
	for i := range rows {
		if !rows[i].IsOpen() {
			continue
		}
		if open != nil {
			return nil, fmt.Errorf("%w: person %d is open at clubs %d and %d", ErrInvariantViolation, personID, open.ClubID, rows[i].ClubID)
		}
		r := rows[i]
		open = &r
	}
	return open, nil
}

func countOpen(rows []models.Affiliation) int {
	n := 0
	for _, r := range rows {
		if r.IsOpen() {
			n++
		}
	}
	return n
}

func findClub(rows []models.Affiliation, clubID int) *models.Affiliation {
	for i := range rows {
		if rows[i].ClubID == clubID {
			r := rows[i]
			return &r
		}
	}
	return nil
}

func historyOf(rows []models.Affiliation) []models.HistoryEntry {
	entries := make([]models.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		if r.IsOpen() {
			continue
		}
		entries = append(entries, models.HistoryEntry{
			ClubID:   r.ClubID,
			ClubName: r.ClubName,
			From:     r.From,
			To:       *r.To,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].From.Equal(entries[j].From) {
			return entries[i].ClubID < entries[j].ClubID
		}
		return entries[i].From.Before(entries[j].From)
	})
	return entries
}
