package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dpp-hub/portal-core/internal/domain"
)

// TicketActivityRepository stores the append-only ticket activity log.
type TicketActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.ActivityLogEntry, error)
}

type ticketActivityRepository struct {
	pool *pgxpool.Pool
}

// NewTicketActivityRepository builds repository.
func NewTicketActivityRepository(pool *pgxpool.Pool) TicketActivityRepository {
	return &ticketActivityRepository{pool: pool}
}

func (r *ticketActivityRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO ticket_activity_log (ticket_id, action, details, actor_name)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		details,
		entry.ActorName,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByTicket returns entries oldest first.
func (r *ticketActivityRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.ActivityLogEntry, error) {
	const query = `
        SELECT id, ticket_id, action, details, actor_name, created_at
        FROM ticket_activity_log WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.Details,
			&entry.ActorName,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
