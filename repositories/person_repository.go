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
	ErrPersonNotFound           = errors.New("person not found")
	ErrPersonNationalIDConflict = errors.New("person with this national id already exists")
	ErrPersonInvalidPlace       = errors.New("invalid place reference")
	ErrPersonInUse              = errors.New("person is still referenced")
)

// PersonRepository reads the identity part shared by players and coaches.
type PersonRepository interface {
	WithTx(exec SQLExecutor) PersonRepository
	GetByNationalID(ctx context.Context, nationalID string) (*models.Person, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.Person, error)
}

type postgresPersonRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresPersonRepository(db *sql.DB) PersonRepository {
	return &postgresPersonRepository{db: db}
}

func (r *postgresPersonRepository) WithTx(exec SQLExecutor) PersonRepository {
	return &postgresPersonRepository{db: r.db, exec: exec}
}

func (r *postgresPersonRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectPersonSQL = `
	SELECT pe.id, pe.oib, pe.name, pe.surname, pe.date_of_birth, pe.sex, pe.zip_code, pl.name
	FROM persons pe
	LEFT JOIN places pl ON pl.zip_code = pe.zip_code`

func (r *postgresPersonRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Person, error) {
	var p models.Person
	err := scanPerson(r.getExecutor().QueryRowContext(ctx, selectPersonSQL+" WHERE pe.oib = $1", nationalID), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to find person: %w", err)
	}
	return &p, nil
}

func (r *postgresPersonRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Person, error) {
	persons := make([]models.Person, 0, len(ids))
	if len(ids) == 0 {
		return persons, nil
	}

	rows, err := r.getExecutor().QueryContext(ctx, selectPersonSQL+" WHERE pe.id = ANY($1) ORDER BY pe.surname, pe.name", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

// scanPerson reads the persons columns of selectPersonSQL followed by extra.
func scanPerson(row rowScanner, p *models.Person, extra ...interface{}) error {
	var placeName sql.NullString
	dest := []interface{}{&p.ID, &p.NationalID, &p.Name, &p.Surname, &p.DateOfBirth, &p.Sex, &p.ZipCode, &placeName}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if p.ZipCode != nil && placeName.Valid {
		p.Place = &models.Place{ZipCode: *p.ZipCode, Name: placeName.String}
	}
	return nil
}

func insertPerson(ctx context.Context, exec SQLExecutor, p *models.Person) error {
	query := `
		INSERT INTO persons (oib, name, surname, date_of_birth, sex, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := exec.QueryRowContext(ctx, query, p.NationalID, p.Name, p.Surname, p.DateOfBirth, p.Sex, p.ZipCode).Scan(&p.ID)
	return handlePersonError(err)
}

func updatePerson(ctx context.Context, exec SQLExecutor, p *models.Person) error {
	query := `
		UPDATE persons
		SET oib = $1, name = $2, surname = $3, date_of_birth = $4, sex = $5, zip_code = $6
		WHERE id = $7`
	result, err := exec.ExecContext(ctx, query, p.NationalID, p.Name, p.Surname, p.DateOfBirth, p.Sex, p.ZipCode, p.ID)
	if err != nil {
		return handlePersonError(err)
	}
	return checkAffectedRows(result, ErrPersonNotFound)
}

// deletePerson removes the person only if it has a row in roleTable.
func deletePerson(ctx context.Context, exec SQLExecutor, id int, roleTable string) error {
	query := `DELETE FROM persons WHERE id = $1 AND EXISTS (SELECT 1 FROM ` + roleTable + ` WHERE person_id = $1)`
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return handlePersonError(err)
	}
	return checkAffectedRows(result, ErrPersonNotFound)
}

func handlePersonError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "persons_oib_key") {
		return ErrPersonNationalIDConflict
	}
	if constraint, ok := isForeignKeyViolation(err); ok {
		if constraint == "persons_zip_code_fkey" {
			return ErrPersonInvalidPlace
		}
		return ErrPersonInUse
	}
	return err
}

func personFilterSQL(filter models.PersonFilter, query string, args []interface{}) (string, []interface{}) {
	argID := len(args) + 1
	if filter.Surname != nil {
		query += fmt.Sprintf(" AND pe.surname ILIKE $%d", argID)
		args = append(args, "%"+*filter.Surname+"%")
		argID++
	}
	if filter.Sex != nil {
		query += fmt.Sprintf(" AND pe.sex = $%d", argID)
		args = append(args, *filter.Sex)
		argID++
	}

	query += " ORDER BY pe.surname ASC, pe.name ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}
	return query, args
}
