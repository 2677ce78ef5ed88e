package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lottery/internal/model"
)

// Queries runs typed statements against a pool or a transaction.
type Queries struct {
	db   DBTX
	lock bool
}

func (q *Queries) forUpdate() string {
	if q.lock {
		return " FOR UPDATE"
	}
	return ""
}

// GetActivity loads one activity row.
func (q *Queries) GetActivity(ctx context.Context, activityID int64) (*model.Activity, error) {
	defer observe("get_activity", time.Now())
	var a model.Activity
	err := q.db.QueryRow(ctx, `
        SELECT id, name, description, status, created_at
        FROM activity
        WHERE id = $1`+q.forUpdate(), activityID).
		Scan(&a.ID, &a.Name, &a.Description, &a.Status, &a.CreatedAt)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("activity %d: %w", activityID, model.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

// InsertActivity stores a new activity and returns its id.
func (q *Queries) InsertActivity(ctx context.Context, activity *model.Activity) (int64, error) {
	defer observe("insert_activity", time.Now())
	var id int64
	if err := q.db.QueryRow(ctx, `
        INSERT INTO activity (name, description, status, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id
    `, activity.Name, activity.Description, activity.Status).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateActivityStatus sets the activity status.
func (q *Queries) UpdateActivityStatus(ctx context.Context, activityID int64, status model.ActivityStatus) error {
	defer observe("update_activity_status", time.Now())
	tag, err := q.db.Exec(ctx, `UPDATE activity SET status = $2 WHERE id = $1`, activityID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %d: %w", activityID, model.ErrNotFound)
	}
	return nil
}

// GetPrize loads one prize row.
func (q *Queries) GetPrize(ctx context.Context, prizeID int64) (*model.Prize, error) {
	defer observe("get_prize", time.Now())
	var p model.Prize
	err := q.db.QueryRow(ctx, `
        SELECT id, name, description, price, image_url
        FROM prize
        WHERE id = $1
    `, prizeID).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("prize %d: %w", prizeID, model.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// ListPrizesByIDs returns the prizes that exist among prizeIDs.
func (q *Queries) ListPrizesByIDs(ctx context.Context, prizeIDs []int64) ([]model.Prize, error) {
	defer observe("list_prizes_by_ids", time.Now())
	if len(prizeIDs) == 0 {
		return nil, nil
	}
	rows, err := q.db.Query(ctx, `
        SELECT id, name, description, price, image_url
        FROM prize
        WHERE id = ANY($1)
        ORDER BY id
    `, prizeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prizes []model.Prize
	for rows.Next() {
		var p model.Prize
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL); err != nil {
			return nil, err
		}
		prizes = append(prizes, p)
	}
	return prizes, rows.Err()
}

// InsertPrize stores a new prize and returns its id.
func (q *Queries) InsertPrize(ctx context.Context, prize *model.Prize) (int64, error) {
	defer observe("insert_prize", time.Now())
	var id int64
	if err := q.db.QueryRow(ctx, `
        INSERT INTO prize (name, description, price, image_url, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id
    `, prize.Name, prize.Description, prize.Price, prize.ImageURL).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetActivityPrize loads the (activity, prize) junction row.
func (q *Queries) GetActivityPrize(ctx context.Context, activityID, prizeID int64) (*model.ActivityPrize, error) {
	defer observe("get_activity_prize", time.Now())
	var ap model.ActivityPrize
	err := q.db.QueryRow(ctx, `
        SELECT activity_id, prize_id, tier, amount, status
        FROM activity_prize
        WHERE activity_id = $1 AND prize_id = $2`+q.forUpdate(), activityID, prizeID).
		Scan(&ap.ActivityID, &ap.PrizeID, &ap.Tier, &ap.Amount, &ap.Status)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("activity %d prize %d: %w", activityID, prizeID, model.ErrNotFound)
		}
		return nil, err
	}
	return &ap, nil
}

// ListActivityPrizes returns every prize row of an activity.
func (q *Queries) ListActivityPrizes(ctx context.Context, activityID int64) ([]model.ActivityPrize, error) {
	defer observe("list_activity_prizes", time.Now())
	rows, err := q.db.Query(ctx, `
        SELECT activity_id, prize_id, tier, amount, status
        FROM activity_prize
        WHERE activity_id = $1
        ORDER BY tier, prize_id
    `, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ActivityPrize
	for rows.Next() {
		var ap model.ActivityPrize
		if err := rows.Scan(&ap.ActivityID, &ap.PrizeID, &ap.Tier, &ap.Amount, &ap.Status); err != nil {
			return nil, err
		}
		items = append(items, ap)
	}
	return items, rows.Err()
}

// CountInitPrizes counts prize rows of an activity that are not drawn yet.
func (q *Queries) CountInitPrizes(ctx context.Context, activityID int64) (int, error) {
	defer observe("count_init_prizes", time.Now())
	var n int
	err := q.db.QueryRow(ctx, `
        SELECT COUNT(1) FROM activity_prize
        WHERE activity_id = $1 AND status = $2
    `, activityID, model.PrizeInit).Scan(&n)
	return n, err
}

// InsertActivityPrizes seeds the prize rows of a new activity.
func (q *Queries) InsertActivityPrizes(ctx context.Context, prizes []model.ActivityPrize) error {
	defer observe("insert_activity_prizes", time.Now())
	if len(prizes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ap := range prizes {
		batch.Queue(`
            INSERT INTO activity_prize (activity_id, prize_id, tier, amount, status)
            VALUES ($1, $2, $3, $4, $5)
        `, ap.ActivityID, ap.PrizeID, ap.Tier, ap.Amount, ap.Status)
	}
	return q.db.SendBatch(ctx, batch).Close()
}

// UpdateActivityPrizeStatus sets the status of one junction row.
func (q *Queries) UpdateActivityPrizeStatus(ctx context.Context, activityID, prizeID int64, status model.PrizeStatus) error {
	defer observe("update_activity_prize_status", time.Now())
	tag, err := q.db.Exec(ctx, `
        UPDATE activity_prize SET status = $3
        WHERE activity_id = $1 AND prize_id = $2
    `, activityID, prizeID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %d prize %d: %w", activityID, prizeID, model.ErrNotFound)
	}
	return nil
}

// ListActivityUsers returns the roster of an activity.
func (q *Queries) ListActivityUsers(ctx context.Context, activityID int64) ([]model.ActivityUser, error) {
	defer observe("list_activity_users", time.Now())
	return q.queryActivityUsers(ctx, `
        SELECT activity_id, user_id, user_name, status
        FROM activity_user
        WHERE activity_id = $1
        ORDER BY user_id
    `, activityID)
}

// ListActivityUsersByIDs returns the roster rows matching userIDs.
func (q *Queries) ListActivityUsersByIDs(ctx context.Context, activityID int64, userIDs []int64) ([]model.ActivityUser, error) {
	defer observe("list_activity_users_by_ids", time.Now())
	if len(userIDs) == 0 {
		return nil, nil
	}
	return q.queryActivityUsers(ctx, `
        SELECT activity_id, user_id, user_name, status
        FROM activity_user
        WHERE activity_id = $1 AND user_id = ANY($2)
        ORDER BY user_id`+q.forUpdate(), activityID, userIDs)
}

func (q *Queries) queryActivityUsers(ctx context.Context, sql string, args ...any) ([]model.ActivityUser, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.ActivityUser
	for rows.Next() {
		var au model.ActivityUser
		if err := rows.Scan(&au.ActivityID, &au.UserID, &au.UserName, &au.Status); err != nil {
			return nil, err
		}
		users = append(users, au)
	}
	return users, rows.Err()
}

// InsertActivityUsers seeds the roster of a new activity.
func (q *Queries) InsertActivityUsers(ctx context.Context, users []model.ActivityUser) error {
	defer observe("insert_activity_users", time.Now())
	if len(users) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, au := range users {
		batch.Queue(`
            INSERT INTO activity_user (activity_id, user_id, user_name, status)
            VALUES ($1, $2, $3, $4)
        `, au.ActivityID, au.UserID, au.UserName, au.Status)
	}
	return q.db.SendBatch(ctx, batch).Close()
}

// UpdateActivityUserStatus sets the status of the listed roster rows.
func (q *Queries) UpdateActivityUserStatus(ctx context.Context, activityID int64, userIDs []int64, status model.UserStatus) error {
	defer observe("update_activity_user_status", time.Now())
	if len(userIDs) == 0 {
		return nil
	}
	_, err := q.db.Exec(ctx, `
        UPDATE activity_user SET status = $3
        WHERE activity_id = $1 AND user_id = ANY($2)
    `, activityID, userIDs, status)
	return err
}

// ListUsersByIDs returns the registered users among userIDs.
func (q *Queries) ListUsersByIDs(ctx context.Context, userIDs []int64) ([]model.User, error) {
	defer observe("list_users_by_ids", time.Now())
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := q.db.Query(ctx, `
        SELECT id, user_name, email, phone_number
        FROM users
        WHERE id = ANY($1)
        ORDER BY id
    `, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.Email, &u.PhoneNumber); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// InsertWinningRecords writes the records of one draw as a batch.
func (q *Queries) InsertWinningRecords(ctx context.Context, records []model.WinningRecord) error {
	defer observe("insert_winning_records", time.Now())
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
            INSERT INTO winning_record (winner_id, winner_name, winner_email, winner_phone,
                activity_id, activity_name, prize_id, prize_name, prize_tier, winning_time)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        `, r.WinnerID, r.WinnerName, r.WinnerEmail, r.WinnerPhone,
			r.ActivityID, r.ActivityName, r.PrizeID, r.PrizeName, r.PrizeTier, r.WinningTime)
	}
	return q.db.SendBatch(ctx, batch).Close()
}

const winningRecordColumns = `id, winner_id, winner_name, winner_email, winner_phone,
        activity_id, activity_name, prize_id, prize_name, prize_tier, winning_time`

// ListWinningRecords returns every record of an activity.
func (q *Queries) ListWinningRecords(ctx context.Context, activityID int64) ([]model.WinningRecord, error) {
	defer observe("list_winning_records", time.Now())
	return q.queryWinningRecords(ctx, `
        SELECT `+winningRecordColumns+`
        FROM winning_record
        WHERE activity_id = $1
        ORDER BY id
    `, activityID)
}

// ListWinningRecordsByPrize returns the records of one prize draw.
func (q *Queries) ListWinningRecordsByPrize(ctx context.Context, activityID, prizeID int64) ([]model.WinningRecord, error) {
	defer observe("list_winning_records_by_prize", time.Now())
	return q.queryWinningRecords(ctx, `
        SELECT `+winningRecordColumns+`
        FROM winning_record
        WHERE activity_id = $1 AND prize_id = $2
        ORDER BY id
    `, activityID, prizeID)
}

func (q *Queries) queryWinningRecords(ctx context.Context, sql string, args ...any) ([]model.WinningRecord, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.WinningRecord
	for rows.Next() {
		var r model.WinningRecord
		if err := rows.Scan(&r.ID, &r.WinnerID, &r.WinnerName, &r.WinnerEmail, &r.WinnerPhone,
			&r.ActivityID, &r.ActivityName, &r.PrizeID, &r.PrizeName, &r.PrizeTier, &r.WinningTime); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountWinningRecords counts the records of one prize draw.
func (q *Queries) CountWinningRecords(ctx context.Context, activityID, prizeID int64) (int, error) {
	defer observe("count_winning_records", time.Now())
	var n int
	err := q.db.QueryRow(ctx, `
        SELECT COUNT(1) FROM winning_record
        WHERE activity_id = $1 AND prize_id = $2
    `, activityID, prizeID).Scan(&n)
	return n, err
}

// DeleteWinningRecords removes the records of one prize draw.
func (q *Queries) DeleteWinningRecords(ctx context.Context, activityID, prizeID int64, winnerIDs []int64) error {
	defer observe("delete_winning_records", time.Now())
	if len(winnerIDs) > 0 {
		_, err := q.db.Exec(ctx, `
            DELETE FROM winning_record
            WHERE activity_id = $1 AND prize_id = $2 AND winner_id = ANY($3)
        `, activityID, prizeID, winnerIDs)
		return err
	}
	_, err := q.db.Exec(ctx, `
        DELETE FROM winning_record
        WHERE activity_id = $1 AND prize_id = $2
    `, activityID, prizeID)
	return err
}
