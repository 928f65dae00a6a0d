package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/motel-concierge/motel"
)

func (s *Store) InsertTicket(ctx context.Context, t *motel.Ticket) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	row := ticketRow{
		RoomNumber:           t.RoomNumber,
		RequestDescription:   t.Description,
		Status:               string(t.Status),
		AssignedToDepartment: t.Department,
		CreatedAt:            createdAt,
	}
	if _, err := s.idb(ctx).NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return classify(err, "insert ticket for room "+t.RoomNumber)
	}
	if row.ID == 0 {
		return fmt.Errorf("%w: ticket insert for room %s returned no id", motel.ErrUnknown, t.RoomNumber)
	}
	t.ID = row.ID
	t.CreatedAt = createdAt
	return nil
}

func (s *Store) OpenTickets(ctx context.Context) ([]motel.Ticket, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var rows []ticketRow
	err := s.idb(ctx).NewSelect().
		Model(&rows).
		Where("t.status = ?", string(motel.TicketOpen)).
		Order("t.created_at DESC", "t.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, classify(err, "open tickets")
	}
	out := make([]motel.Ticket, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CloseTicket(ctx context.Context, id int64) (motel.TicketStatus, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	var prev string
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model((*ticketRow)(nil)).
			Column("status").
			Where("t.id = ?", id).
			For("UPDATE").
			Scan(ctx, &prev)
		if errors.Is(err, sql.ErrNoRows) {
			return motel.ErrTicketNotFound
		}
		if err != nil {
			return err
		}
		if motel.TicketStatus(prev) == motel.TicketClosed {
			return nil
		}
		_, err = tx.NewUpdate().
			Model((*ticketRow)(nil)).
			Set("status = ?", string(motel.TicketClosed)).
			Where("t.id = ?", id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return "", classify(err, fmt.Sprintf("close ticket %d", id))
	}
	return motel.TicketStatus(prev), nil
}
