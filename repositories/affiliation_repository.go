package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/lib/pq"
)

var (
	ErrAffiliationNotFound   = errors.New("affiliation not found")
	ErrAffiliationConflict   = errors.New("affiliation conflicts with an existing row")
	ErrAffiliationInvalidRef = errors.New("affiliation references an unknown person or club")
)

// AffiliationRepository stores one affiliation kind. Its ListByPerson, Insert and UpdateRange
// make it a ledger store.
type AffiliationRepository interface {
	WithTx(exec SQLExecutor) AffiliationRepository
	Kind() models.AffiliationKind
	ListByPerson(ctx context.Context, personID int) ([]models.Affiliation, error)
	ListByPersons(ctx context.Context, personIDs []int) (map[int][]models.Affiliation, error)
	Insert(ctx context.Context, a *models.Affiliation) error
	UpdateRange(ctx context.Context, a *models.Affiliation) error
	ListCurrentMembers(ctx context.Context, clubID int) ([]models.Person, error)
	DeleteByPerson(ctx context.Context, personID int) error
	DeleteByClub(ctx context.Context, clubID int) error
}

type postgresAffiliationRepository struct {
	db    *sql.DB
	exec  SQLExecutor
	kind  models.AffiliationKind
	table string
}

// NewPostgresAffiliationRepository panics on an unknown kind since the kind names the table.
func NewPostgresAffiliationRepository(db *sql.DB, kind models.AffiliationKind) AffiliationRepository {
	switch kind {
	case models.AffiliationRepresents, models.AffiliationCoaches:
	default:
		panic(fmt.Sprintf("repositories: unknown affiliation kind %q", kind))
	}
	return &postgresAffiliationRepository{db: db, kind: kind, table: string(kind)}
}

func (r *postgresAffiliationRepository) WithTx(exec SQLExecutor) AffiliationRepository {
	return &postgresAffiliationRepository{db: r.db, exec: exec, kind: r.kind, table: r.table}
}

func (r *postgresAffiliationRepository) Kind() models.AffiliationKind {
	return r.kind
}

func (r *postgresAffiliationRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

func (r *postgresAffiliationRepository) selectSQL() string {
	return fmt.Sprintf(`
		SELECT a.person_id, a.club_id, c.name, a.from_date, a.to_date
		FROM %s a
		JOIN clubs c ON c.id = a.club_id`, r.table)
}

func (r *postgresAffiliationRepository) ListByPerson(ctx context.Context, personID int) ([]models.Affiliation, error) {
	query := r.selectSQL() + " WHERE a.person_id = $1 ORDER BY a.from_date ASC, a.club_id ASC"

	rows, err := r.getExecutor().QueryContext(ctx, query, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	affiliations := make([]models.Affiliation, 0)
	for rows.Next() {
		var a models.Affiliation
		if scanErr := rows.Scan(&a.PersonID, &a.ClubID, &a.ClubName, &a.From, &a.To); scanErr != nil {
			return nil, scanErr
		}
		affiliations = append(affiliations, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return affiliations, nil
}

// ListByPersons loads the rows of many persons in one query, for listings.
func (r *postgresAffiliationRepository) ListByPersons(ctx context.Context, personIDs []int) (map[int][]models.Affiliation, error) {
	byPerson := make(map[int][]models.Affiliation, len(personIDs))
	if len(personIDs) == 0 {
		return byPerson, nil
	}

	query := r.selectSQL() + " WHERE a.person_id = ANY($1) ORDER BY a.person_id, a.from_date ASC"
	rows, err := r.getExecutor().QueryContext(ctx, query, pq.Array(personIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Affiliation
		if scanErr := rows.Scan(&a.PersonID, &a.ClubID, &a.ClubName, &a.From, &a.To); scanErr != nil {
			return nil, scanErr
		}
		byPerson[a.PersonID] = append(byPerson[a.PersonID], a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return byPerson, nil
}

func (r *postgresAffiliationRepository) Insert(ctx context.Context, a *models.Affiliation) error {
	query := fmt.Sprintf(`INSERT INTO %s (person_id, club_id, from_date, to_date) VALUES ($1, $2, $3, $4)`, r.table)
	_, err := r.getExecutor().ExecContext(ctx, query, a.PersonID, a.ClubID, a.From, a.To)
	return r.handleAffiliationError(err)
}

func (r *postgresAffiliationRepository) UpdateRange(ctx context.Context, a *models.Affiliation) error {
	query := fmt.Sprintf(`UPDATE %s SET from_date = $1, to_date = $2 WHERE person_id = $3 AND club_id = $4`, r.table)
	result, err := r.getExecutor().ExecContext(ctx, query, a.From, a.To, a.PersonID, a.ClubID)
	if err != nil {
		return r.handleAffiliationError(err)
	}
	return checkAffectedRows(result, ErrAffiliationNotFound)
}

// ListCurrentMembers returns the persons whose open row is at clubID.
func (r *postgresAffiliationRepository) ListCurrentMembers(ctx context.Context, clubID int) ([]models.Person, error) {
	query := fmt.Sprintf(`%s
		JOIN %s a ON a.person_id = pe.id
		WHERE a.club_id = $1 AND a.to_date IS NULL
		ORDER BY pe.surname ASC, pe.name ASC`, selectPersonSQL, r.table)

	rows, err := r.getExecutor().QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	persons := make([]models.Person, 0)
	for rows.Next() {
		var p models.Person
		if scanErr := scanPerson(rows, &p); scanErr != nil {
			return nil, scanErr
		}
		persons = append(persons, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return persons, nil
}

func (r *postgresAffiliationRepository) DeleteByPerson(ctx context.Context, personID int) error {
	_, err := r.getExecutor().ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE person_id = $1`, r.table), personID)
	return err
}

func (r *postgresAffiliationRepository) DeleteByClub(ctx context.Context, clubID int) error {
	_, err := r.getExecutor().ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE club_id = $1`, r.table), clubID)
	return err
}

func (r *postgresAffiliationRepository) handleAffiliationError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "") {
		return ErrAffiliationConflict
	}
	if _, ok := isForeignKeyViolation(err); ok {
		return ErrAffiliationInvalidRef
	}
	return err
}
