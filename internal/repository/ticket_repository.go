package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/event-ticket-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Validate is the only
// operation allowed to touch validation_state.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	// Validate applies the one-way PENDING -> VALIDATED transition as a single
	// conditional update. It returns the updated row when this caller won the
	// transition, or pgx.ErrNoRows when the ticket is missing or was already
	// validated; callers distinguish the two with a follow-up read.
	Validate(ctx context.Context, id, operatorID string, at time.Time) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, event_id, holder_name, holder_phone, holder_document,
               validation_state, validated_by, validated_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (event_id, holder_name, holder_phone, holder_document, validation_state)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.EventID,
		ticket.HolderName,
		ticket.HolderPhone,
		ticket.HolderDocument,
		ticket.ValidationState,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets WHERE event_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Validate is the compare-and-set the entrance workflow hangs on: the WHERE
// clause re-checks validation_state inside the same statement, so under
// concurrent callers for one ticket exactly one sees the row come back.
func (r *ticketRepository) Validate(ctx context.Context, id, operatorID string, at time.Time) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets
        SET validation_state=$2, validated_by=$3, validated_at=$4, updated_at=NOW()
        WHERE id=$1 AND validation_state=$5
        RETURNING ` + ticketColumns
	return r.fetchSingle(ctx, query, id,
		domain.ValidationStateValidated,
		operatorID,
		at,
		domain.ValidationStatePending,
	)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.HolderName,
		&ticket.HolderPhone,
		&ticket.HolderDocument,
		&ticket.ValidationState,
		&ticket.ValidatedBy,
		&ticket.ValidatedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.EventID,
			&ticket.HolderName,
			&ticket.HolderPhone,
			&ticket.HolderDocument,
			&ticket.ValidationState,
			&ticket.ValidatedBy,
			&ticket.ValidatedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
