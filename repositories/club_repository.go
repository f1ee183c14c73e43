package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-clubs/models"
)

var (
	ErrClubNotFound     = errors.New("club not found")
	ErrClubNameConflict = errors.New("club name conflict")
	ErrClubInvalidPlace = errors.New("invalid place reference")
	ErrClubInUse        = errors.New("club is still referenced")
)

type ListClubsFilter struct {
	Name   *string
	Limit  int
	Offset int
}

type ClubRepository interface {
	WithTx(exec SQLExecutor) ClubRepository
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	GetByName(ctx context.Context, name string) (*models.Club, error)
	List(ctx context.Context, filter ListClubsFilter) ([]models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresClubRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) WithTx(exec SQLExecutor) ClubRepository {
	return &postgresClubRepository{db: r.db, exec: exec}
}

func (r *postgresClubRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

const selectClubSQL = `
	SELECT
		c.id, c.name, c.foundation_year, c.email, c.phone_number, c.web_address,
		c.budget, c.zip_code, c.logo_key, c.created_at, p.name
	FROM clubs c
	LEFT JOIN places p ON p.zip_code = c.zip_code`

func scanClub(row rowScanner, c *models.Club) error {
	var placeName sql.NullString
	if err := row.Scan(
		&c.ID, &c.Name, &c.FoundationYear, &c.Email, &c.PhoneNumber, &c.WebAddress,
		&c.Budget, &c.ZipCode, &c.LogoKey, &c.CreatedAt, &placeName,
	); err != nil {
		return err
	}
	if c.ZipCode != nil && placeName.Valid {
		c.Place = &models.Place{ZipCode: *c.ZipCode, Name: placeName.String}
	}
	return nil
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (name, foundation_year, email, phone_number, web_address, budget, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.getExecutor().QueryRowContext(ctx, query,
		club.Name, club.FoundationYear, club.Email, club.PhoneNumber, club.WebAddress, club.Budget, club.ZipCode,
	).Scan(&club.ID, &club.CreatedAt)
	return r.handleClubError(err)
}

func (r *postgresClubRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Club, error) {
	var c models.Club
	err := scanClub(r.getExecutor().QueryRowContext(ctx, selectClubSQL+" WHERE "+where, arg), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to find club: %w", err)
	}
	return &c, nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	return r.findOne(ctx, "c.id = $1", id)
}

func (r *postgresClubRepository) GetByName(ctx context.Context, name string) (*models.Club, error) {
	return r.findOne(ctx, "c.name = $1", name)
}

func (r *postgresClubRepository) List(ctx context.Context, filter ListClubsFilter) ([]models.Club, error) {
	query := selectClubSQL + " WHERE 1=1"
	args := []interface{}{}
	argID := 1

	if filter.Name != nil {
		query += fmt.Sprintf(" AND c.name ILIKE $%d", argID)
		args = append(args, "%"+*filter.Name+"%")
		argID++
	}

	query += " ORDER BY c.name ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.getExecutor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		var c models.Club
		if scanErr := scanClub(rows, &c); scanErr != nil {
			return nil, scanErr
		}
		clubs = append(clubs, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *postgresClubRepository) Update(ctx context.Context, club *models.Club) error {
	query := `
		UPDATE clubs
		SET name = $1, foundation_year = $2, email = $3, phone_number = $4, web_address = $5, budget = $6, zip_code = $7
		WHERE id = $8`

	result, err := r.getExecutor().ExecContext(ctx, query,
		club.Name, club.FoundationYear, club.Email, club.PhoneNumber, club.WebAddress, club.Budget, club.ZipCode, club.ID,
	)
	if err != nil {
		return r.handleClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error {
	query := `UPDATE clubs SET logo_key = $1 WHERE id = $2`
	result, err := r.getExecutor().ExecContext(ctx, query, logoKey, clubID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Delete(ctx context.Context, id int) error {
	result, err := r.getExecutor().ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return r.handleClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) handleClubError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "clubs_name_key") {
		return ErrClubNameConflict
	}
	if constraint, ok := isForeignKeyViolation(err); ok {
		if constraint == "clubs_zip_code_fkey" {
			return ErrClubInvalidPlace
		}
		return ErrClubInUse
	}
	return err
}
