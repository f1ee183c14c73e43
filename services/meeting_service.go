package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/repositories"
)

type MeetingService interface {
	CreateMeeting(ctx context.Context, clubID int, input MeetingInput) (*models.Meeting, error)
	GetMeeting(ctx context.Context, clubID, meetingID int) (*models.Meeting, error)
	ListMeetings(ctx context.Context, clubID int) ([]models.Meeting, error)
	UpdateMeeting(ctx context.Context, clubID, meetingID int, input MeetingInput) (*models.Meeting, error)
	DeleteMeeting(ctx context.Context, clubID, meetingID int) error
}

// MeetingInput lists attendees by national id.
type MeetingInput struct {
	Timestamp time.Time `json:"meeting_timestamp" validate:"required"`
	Agenda    string    `json:"agenda" validate:"required,max=500"`
	Notes     *string   `json:"notes" validate:"omitempty,max=2000"`
	Attendees []string  `json:"attendees" validate:"dive,numeric,len=11"`
}

type meetingService struct {
	tx          repositories.Transactor
	meetingRepo repositories.MeetingRepository
	personRepo  repositories.PersonRepository
	clubRepo    repositories.ClubRepository
}

func NewMeetingService(
	tx repositories.Transactor,
	meetingRepo repositories.MeetingRepository,
	personRepo repositories.PersonRepository,
	clubRepo repositories.ClubRepository,
) MeetingService {
	return &meetingService{tx: tx, meetingRepo: meetingRepo, personRepo: personRepo, clubRepo: clubRepo}
}

func (s *meetingService) CreateMeeting(ctx context.Context, clubID int, input MeetingInput) (*models.Meeting, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, translateClubError(err)
	}
	meeting := &models.Meeting{ClubID: clubID}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.fill(ctx, exec, meeting, input); err != nil {
			return err
		}
		return translateMeetingError(s.meetingRepo.WithTx(exec).Create(ctx, meeting))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return s.GetMeeting(ctx, clubID, meeting.ID)
}

func (s *meetingService) GetMeeting(ctx context.Context, clubID, meetingID int) (*models.Meeting, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, translateMeetingError(err)
	}
	if meeting.ClubID != clubID {
		return nil, ErrMeetingNotFound
	}
	if err := s.labelAttendees(ctx, []*models.Meeting{meeting}); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (s *meetingService) ListMeetings(ctx context.Context, clubID int) ([]models.Meeting, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, translateClubError(err)
	}
	meetings, err := s.meetingRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings of club %d: %w", clubID, err)
	}
	ptrs := make([]*models.Meeting, len(meetings))
	for i := range meetings {
		ptrs[i] = &meetings[i]
	}
	if err := s.labelAttendees(ctx, ptrs); err != nil {
		return nil, err
	}
	return meetings, nil
}

func (s *meetingService) UpdateMeeting(ctx context.Context, clubID, meetingID int, input MeetingInput) (*models.Meeting, error) {
	meeting := &models.Meeting{ID: meetingID, ClubID: clubID}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.fill(ctx, exec, meeting, input); err != nil {
			return err
		}
		return translateMeetingError(s.meetingRepo.WithTx(exec).Update(ctx, meeting))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update meeting %d: %w", meetingID, err)
	}
	return s.GetMeeting(ctx, clubID, meetingID)
}

func (s *meetingService) DeleteMeeting(ctx context.Context, clubID, meetingID int) error {
	if _, err := s.GetMeeting(ctx, clubID, meetingID); err != nil {
		return err
	}
	return translateMeetingError(s.meetingRepo.Delete(ctx, meetingID))
}

func (s *meetingService) fill(ctx context.Context, exec repositories.SQLExecutor, meeting *models.Meeting, input MeetingInput) error {
	agenda := strings.TrimSpace(input.Agenda)
	if agenda == "" {
		return fmt.Errorf("%w: agenda is required", ErrValidationFailed)
	}
	meeting.Timestamp = input.Timestamp
	meeting.Agenda = agenda
	meeting.Notes = input.Notes

	personRepo := s.personRepo.WithTx(exec)
	seen := make(map[int]bool, len(input.Attendees))
	meeting.AttendeeIDs = make([]int, 0, len(input.Attendees))
	for _, nid := range input.Attendees {
		p, err := personRepo.GetByNationalID(ctx, strings.TrimSpace(nid))
		if err != nil {
			if errors.Is(err, repositories.ErrPersonNotFound) {
				return fmt.Errorf("%w: person %s", ErrUnknownReference, nid)
			}
			return fmt.Errorf("failed to look up attendee %s: %w", nid, err)
		}
		if !seen[p.ID] {
			seen[p.ID] = true
			meeting.AttendeeIDs = append(meeting.AttendeeIDs, p.ID)
		}
	}
	return nil
}

// labelAttendees resolves attendee ids of all meetings with one query.
func (s *meetingService) labelAttendees(ctx context.Context, meetings []*models.Meeting) error {
	ids := make([]int, 0)
	for _, m := range meetings {
		ids = append(ids, m.AttendeeIDs...)
	}
	persons, err := s.personRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load meeting attendees: %w", err)
	}
	labels := make(map[int]string, len(persons))
	for _, p := range persons {
		labels[p.ID] = p.Label()
	}
	for _, m := range meetings {
		m.Attendees = make([]string, 0, len(m.AttendeeIDs))
		for _, id := range m.AttendeeIDs {
			if label, ok := labels[id]; ok {
				m.Attendees = append(m.Attendees, label)
			}
		}
	}
	return nil
}

func translateMeetingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMeetingNotFound):
		return ErrMeetingNotFound
	case errors.Is(err, repositories.ErrClubNotFound):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrMeetingInvalidAttendee):
		return fmt.Errorf("%w: %w", ErrUnknownReference, err)
	}
	return err
}
