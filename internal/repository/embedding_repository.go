package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EmbeddingRepository stores ticket text chunks. Vectors for these rows are
// written by the remote similarity service, never by this application.
type EmbeddingRepository interface {
	ReplaceForTicket(ctx context.Context, ticketID int, chunks []string) error
	ListByTicket(ctx context.Context, ticketID int) ([]domain.TicketEmbedding, error)
}

type embeddingRepository struct {
	pool *pgxpool.Pool
}

// NewEmbeddingRepository constructs repository.
func NewEmbeddingRepository(pool *pgxpool.Pool) EmbeddingRepository {
	return &embeddingRepository{pool: pool}
}

func (r *embeddingRepository) ReplaceForTicket(ctx context.Context, ticketID int, chunks []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM ticket_embeddings WHERE ticket_id=$1`, ticketID); err != nil {
		return err
	}
	const insert = `INSERT INTO ticket_embeddings (ticket_id, chunk_text) VALUES ($1,$2)`
	for _, chunk := range chunks {
		if _, err := tx.Exec(ctx, insert, ticketID, chunk); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *embeddingRepository) ListByTicket(ctx context.Context, ticketID int) ([]domain.TicketEmbedding, error) {
	const query = `
        SELECT id, ticket_id, chunk_text
        FROM ticket_embeddings WHERE ticket_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketEmbedding
	for rows.Next() {
		var emb domain.TicketEmbedding
		if err := rows.Scan(&emb.ID, &emb.TicketID, &emb.ChunkText); err != nil {
			return nil, err
		}
		result = append(result, emb)
	}
	return result, rows.Err()
}
