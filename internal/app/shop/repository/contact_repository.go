package repository

import (
	"context"
	"errors"
	"fmt"

	"orderservice/internal/app/shop/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contactRepository struct {
	db *pgxpool.Pool
}

// NewContactRepository создает новый репозиторий контактов
func NewContactRepository(db *pgxpool.Pool) ContactRepository {
	return &contactRepository{db: db}
}

// Create создает новый контакт пользователя
func (r *contactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	query := `
		INSERT INTO contacts (id, user_id, city, street, house, structure, building, apartment, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		ctx, query,
		contact.ID, contact.UserID, contact.City, contact.Street, contact.House,
		contact.Structure, contact.Building, contact.Apartment, contact.Phone, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// GetByID получает контакт по ID
func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	query := `
		SELECT id, user_id, city, street, house, structure, building, apartment, phone, created_at
		FROM contacts WHERE id = $1
	`

	var contact entity.Contact
	err := r.db.QueryRow(ctx, query, id).Scan(
		&contact.ID, &contact.UserID, &contact.City, &contact.Street, &contact.House,
		&contact.Structure, &contact.Building, &contact.Apartment, &contact.Phone, &contact.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return &contact, nil
}

// GetByUser получает все контакты пользователя
func (r *contactRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]entity.Contact, error) {
	query := `
		SELECT id, user_id, city, street, house, structure, building, apartment, phone, created_at
		FROM contacts WHERE user_id = $1 ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}
	defer rows.Close()

	var contacts []entity.Contact
	for rows.Next() {
		var contact entity.Contact
		if err := rows.Scan(
			&contact.ID, &contact.UserID, &contact.City, &contact.Street, &contact.House,
			&contact.Structure, &contact.Building, &contact.Apartment, &contact.Phone, &contact.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// Update обновляет контакт
func (r *contactRepository) Update(ctx context.Context, contact *entity.Contact) error {
	query := `
		UPDATE contacts
		SET city = $1, street = $2, house = $3, structure = $4, building = $5, apartment = $6, phone = $7
		WHERE id = $8 AND user_id = $9
	`

	result, err := r.db.Exec(
		ctx, query,
		contact.City, contact.Street, contact.House, contact.Structure,
		contact.Building, contact.Apartment, contact.Phone, contact.ID, contact.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrContactNotFound
	}

	return nil
}

// DeleteByIDs удаляет контакты по списку id в пределах одного пользователя
// Чужие id молча игнорируются, возвращается число удалённых строк
func (r *contactRepository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM contacts WHERE user_id = $1 AND id = ANY($2)`

	result, err := r.db.Exec(ctx, query, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete contacts: %w", err)
	}

	return result.RowsAffected(), nil
}
