package models

import "time"

// Training is a session a coach holds with a group of players.
type Training struct {
	ID          int       `json:"id" db:"training_id"`
	CoachID     int       `json:"coach_id" db:"coach_id"`
	Timestamp   time.Time `json:"training_timestamp" db:"training_timestamp"`
	Duration    *string   `json:"duration,omitempty" db:"duration"`
	Description *string   `json:"description,omitempty" db:"description"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`

	PlayerIDs []int    `json:"-" db:"-"`
	Coach     string   `json:"coach" db:"-"`
	Players   []string `json:"players" db:"-"`
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCreditCard
}

// Transaction is a payment booked in a club's finances. PersonID is nil once the
// paying person has been deleted.
type Transaction struct {
	ID            int           `json:"id" db:"transaction_id"`
	ClubID        int           `json:"club_id" db:"club_id"`
	PersonID      *int          `json:"-" db:"person_id"`
	Timestamp     time.Time     `json:"transaction_timestamp" db:"transaction_timestamp"`
	Price         float64       `json:"price" db:"price"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	Description   *string       `json:"description,omitempty" db:"description"`

	Person *Person `json:"person,omitempty" db:"-"`
}
