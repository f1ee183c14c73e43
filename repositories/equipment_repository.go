package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tennis-clubs/models"
)

var (
	ErrEquipmentNotFound     = errors.New("equipment not found")
	ErrClubEquipmentNotFound = errors.New("club does not own this equipment")
	ErrClubEquipmentConflict = errors.New("club already owns this equipment")
)

// EquipmentRepository covers the shared equipment catalogue and the per-club ownership rows.
type EquipmentRepository interface {
	WithTx(exec SQLExecutor) EquipmentRepository
	FindOrCreate(ctx context.Context, eq *models.Equipment) error
	UpdateCatalogue(ctx context.Context, eq *models.Equipment) error
	AddToClub(ctx context.Context, ce *models.ClubEquipment) error
	GetForClub(ctx context.Context, clubID, equipmentID int) (*models.ClubEquipment, error)
	ListByClub(ctx context.Context, clubID int) ([]models.ClubEquipment, error)
	UpdateQuantity(ctx context.Context, clubID, equipmentID int, quantity *int) error
	RemoveFromClub(ctx context.Context, clubID, equipmentID int) error
	RemoveAllFromClub(ctx context.Context, clubID int) error
}

type postgresEquipmentRepository struct {
	db   *sql.DB
	exec SQLExecutor
}

func NewPostgresEquipmentRepository(db *sql.DB) EquipmentRepository {
	return &postgresEquipmentRepository{db: db}
}

func (r *postgresEquipmentRepository) WithTx(exec SQLExecutor) EquipmentRepository {
	return &postgresEquipmentRepository{db: r.db, exec: exec}
}

func (r *postgresEquipmentRepository) getExecutor() SQLExecutor {
	if r.exec != nil {
		return r.exec
	}
	return r.db
}

// FindOrCreate looks equipment up by name. A new price replaces the stored one.
func (r *postgresEquipmentRepository) FindOrCreate(ctx context.Context, eq *models.Equipment) error {
	query := `
		INSERT INTO equipment (name, price)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT equipment_name_key
		DO UPDATE SET price = COALESCE(EXCLUDED.price, equipment.price)
		RETURNING id, price`
	return r.getExecutor().QueryRowContext(ctx, query, eq.Name, eq.Price).Scan(&eq.ID, &eq.Price)
}

func (r *postgresEquipmentRepository) UpdateCatalogue(ctx context.Context, eq *models.Equipment) error {
	result, err := r.getExecutor().ExecContext(ctx, `UPDATE equipment SET price = $1 WHERE id = $2`, eq.Price, eq.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEquipmentNotFound)
}

func (r *postgresEquipmentRepository) AddToClub(ctx context.Context, ce *models.ClubEquipment) error {
	query := `INSERT INTO club_equipment (club_id, equipment_id, quantity) VALUES ($1, $2, $3)`
	_, err := r.getExecutor().ExecContext(ctx, query, ce.ClubID, ce.ID, ce.Quantity)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrClubEquipmentConflict
		}
		if _, ok := isForeignKeyViolation(err); ok {
			return ErrClubNotFound
		}
		return err
	}
	return nil
}

const selectClubEquipmentSQL = `
	SELECT e.id, e.name, e.price, ce.club_id, ce.quantity
	FROM club_equipment ce
	JOIN equipment e ON e.id = ce.equipment_id`

func scanClubEquipment(row rowScanner, ce *models.ClubEquipment) error {
	return row.Scan(&ce.ID, &ce.Name, &ce.Price, &ce.ClubID, &ce.Quantity)
}

func (r *postgresEquipmentRepository) GetForClub(ctx context.Context, clubID, equipmentID int) (*models.ClubEquipment, error) {
	var ce models.ClubEquipment
	row := r.getExecutor().QueryRowContext(ctx, selectClubEquipmentSQL+" WHERE ce.club_id = $1 AND ce.equipment_id = $2", clubID, equipmentID)
	if err := scanClubEquipment(row, &ce); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubEquipmentNotFound
		}
		return nil, err
	}
	return &ce, nil
}

func (r *postgresEquipmentRepository) ListByClub(ctx context.Context, clubID int) ([]models.ClubEquipment, error) {
	rows, err := r.getExecutor().QueryContext(ctx, selectClubEquipmentSQL+" WHERE ce.club_id = $1 ORDER BY e.name ASC", clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.ClubEquipment, 0)
	for rows.Next() {
		var ce models.ClubEquipment
		if scanErr := scanClubEquipment(rows, &ce); scanErr != nil {
			return nil, scanErr
		}
		items = append(items, ce)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresEquipmentRepository) UpdateQuantity(ctx context.Context, clubID, equipmentID int, quantity *int) error {
	query := `UPDATE club_equipment SET quantity = $1 WHERE club_id = $2 AND equipment_id = $3`
	result, err := r.getExecutor().ExecContext(ctx, query, quantity, clubID, equipmentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubEquipmentNotFound)
}

func (r *postgresEquipmentRepository) RemoveFromClub(ctx context.Context, clubID, equipmentID int) error {
	query := `DELETE FROM club_equipment WHERE club_id = $1 AND equipment_id = $2`
	result, err := r.getExecutor().ExecContext(ctx, query, clubID, equipmentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubEquipmentNotFound)
}

func (r *postgresEquipmentRepository) RemoveAllFromClub(ctx context.Context, clubID int) error {
	_, err := r.getExecutor().ExecContext(ctx, `DELETE FROM club_equipment WHERE club_id = $1`, clubID)
	return err
}
