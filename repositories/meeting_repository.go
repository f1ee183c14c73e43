package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/lib/pq"
)

var (
	ErrMeetingNotFound        = errors.New("meeting not found")
	ErrMeetingInvalidAttendee = errors.New("invalid attendee reference")
)

// MeetingRepository stores meetings with their attendee rows. Writes touching attendees
// belong inside a transaction.
type MeetingRepository interface {
	WithTx(exec SQLExecutor) MeetingRepository
	Create(ctx context.Context, meeting *models.Meeting) error
	GetByID(ctx context.Context, id int) (*models.Meeting, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Meeting, error)
	Update(ctx context.Context, meeting *models.Meeting) error
	Delete(ctx context.Context, id int) error
	DeleteByClub(ctx context.Context, clubID int) error
}

type postgresMeetingRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresMeetingRepository(db *sql.DB) MeetingRepository {
	return &postgresMeetingRepository{db: db}
}

func (r *postgresMeetingRepository) WithTx(exec SQLExecutor) MeetingRepository {
	return &postgresMeetingRepository{db: r.db, exec: exec}
}

func (r *postgresMeetingRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

// AttendeeIDs is filled from the meeting_attendees rows.
const selectMeetingSQL = `
	SELECT m.id, m.club_id, m.meeting_timestamp, m.agenda, m.notes,
		COALESCE(array_agg(ma.person_id ORDER BY ma.person_id) FILTER (WHERE ma.person_id IS NOT NULL), '{}')
	FROM meetings m
	LEFT JOIN meeting_attendees ma ON ma.meeting_id = m.id`

func scanMeeting(row rowScanner, m *models.Meeting) error {
	var attendees pq.Int64Array
	if err := row.Scan(&m.ID, &m.ClubID, &m.Timestamp, &m.Agenda, &m.Notes, &attendees); err != nil {
		return err
	}
	m.AttendeeIDs = make([]int, len(attendees))
	for i, id := range attendees {
		m.AttendeeIDs[i] = int(id)
	}
	return nil
}

func (r *postgresMeetingRepository) Create(ctx context.Context, m *models.Meeting) error {
	exec := r.getExecutor()
	query := `INSERT INTO meetings (club_id, meeting_timestamp, agenda, notes) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := exec.QueryRowContext(ctx, query, m.ClubID, m.Timestamp, m.Agenda, m.Notes).Scan(&m.ID); err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return ErrClubNotFound
		}
		return err
	}
	return r.insertAttendees(ctx, exec, m.ID, m.AttendeeIDs)
}

func (r *postgresMeetingRepository) insertAttendees(ctx context.Context, exec SQLExecutor, meetingID int, personIDs []int) error {
	if len(personIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO meeting_attendees (meeting_id, person_id)
		SELECT $1, UNNEST($2::int[])
		ON CONFLICT DO NOTHING`
	if _, err := exec.ExecContext(ctx, query, meetingID, pq.Array(personIDs)); err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return ErrMeetingInvalidAttendee
		}
		return err
	}
	return nil
}

func (r *postgresMeetingRepository) GetByID(ctx context.Context, id int) (*models.Meeting, error) {
	var m models.Meeting
	row := r.getExecutor().QueryRowContext(ctx, selectMeetingSQL+" WHERE m.id = $1 GROUP BY m.id", id)
	if err := scanMeeting(row, &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMeetingNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMeetingRepository) ListByClub(ctx context.Context, clubID int) ([]models.Meeting, error) {
	query := selectMeetingSQL + " WHERE m.club_id = $1 GROUP BY m.id ORDER BY m.meeting_timestamp DESC"
	rows, err := r.getExecutor().QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetings := make([]models.Meeting, 0)
	for rows.Next() {
		var m models.Meeting
		if scanErr := scanMeeting(rows, &m); scanErr != nil {
			return nil, scanErr
		}
		meetings = append(meetings, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return meetings, nil
}

// Update replaces the attendee list as well.
func (r *postgresMeetingRepository) Update(ctx context.Context, m *models.Meeting) error {
	exec := r.getExecutor()
	query := `UPDATE meetings SET meeting_timestamp = $1, agenda = $2, notes = $3 WHERE id = $4 AND club_id = $5`
	result, err := exec.ExecContext(ctx, query, m.Timestamp, m.Agenda, m.Notes, m.ID, m.ClubID)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrMeetingNotFound); err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM meeting_attendees WHERE meeting_id = $1`, m.ID); err != nil {
		return err
	}
	return r.insertAttendees(ctx, exec, m.ID, m.AttendeeIDs)
}

func (r *postgresMeetingRepository) Delete(ctx context.Context, id int) error {
	result, err := r.getExecutor().ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMeetingNotFound)
}

func (r *postgresMeetingRepository) DeleteByClub(ctx context.Context, clubID int) error {
	_, err := r.getExecutor().ExecContext(ctx, `DELETE FROM meetings WHERE club_id = $1`, clubID)
	return err
}
