package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"auction-sync/internal/domain"
)

var _ domain.BidRepository = (*MySQLBidRepository)(nil)

const createObservedBids = `
        CREATE TABLE IF NOT EXISTS observed_bids (
            bid_id      BIGINT PRIMARY KEY,
            auction_id  BIGINT NOT NULL,
            bidder_id   BIGINT NOT NULL,
            username    VARCHAR(255) NOT NULL DEFAULT '',
            amount      DECIMAL(18,2) NOT NULL,
            bid_time    DATETIME(6) NULL,
            recorded_at DATETIME(6) NOT NULL,
            INDEX idx_observed_bids_auction (auction_id, bid_time)
        )
    `

// MySQLBidRepository stores the bid history observed through relayed auction
// snapshots. Bids are keyed by their marketplace id so replays are harmless.
type MySQLBidRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db, now: time.Now}
}

func (r *MySQLBidRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createObservedBids)
	return err
}

// SaveBids inserts bids not seen before and returns how many were new.
func (r *MySQLBidRepository) SaveBids(ctx context.Context, bids []domain.Bid) (int64, error) {
	if len(bids) == 0 {
		return 0, nil
	}

	query, args := buildInsertBids(bids, r.now())
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert observed bids: %w", err)
	}
	return res.RowsAffected()
}

func buildInsertBids(bids []domain.Bid, recordedAt time.Time) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`INSERT IGNORE INTO observed_bids (bid_id, auction_id, bidder_id, username, amount, bid_time, recorded_at) VALUES `)

	args := make([]interface{}, 0, len(bids)*7)
	for i, bid := range bids {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?)")

		var bidTime interface{}
		if !bid.BidTime.IsZero() {
			bidTime = bid.BidTime.Time
		}
		args = append(args, bid.ID, bid.AuctionID, bid.BidderID, bid.Username, bid.Amount, bidTime, recordedAt)
	}
	return sb.String(), args
}

func (r *MySQLBidRepository) GetBidHistory(ctx context.Context, auctionID int64) ([]domain.Bid, error) {
	query := `
        SELECT bid_id, auction_id, bidder_id, username, amount, bid_time
        FROM observed_bids
        WHERE auction_id = ?
        ORDER BY bid_time ASC, bid_id ASC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var bid domain.Bid
		var bidTime sql.NullTime

		err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.BidderID, &bid.Username, &bid.Amount, &bidTime)
		if err != nil {
			return nil, err
		}

		if bidTime.Valid {
			bid.BidTime = domain.NewTimestamp(bidTime.Time)
		}
		bids = append(bids, bid)
	}

	return bids, rows.Err()
}

// LatestBidTime returns the newest recorded bid time, or the zero time when
// nothing is stored for the auction.
func (r *MySQLBidRepository) LatestBidTime(ctx context.Context, auctionID int64) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(bid_time) FROM observed_bids WHERE auction_id = ?`, auctionID).Scan(&latest)
	if err != nil {
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}
