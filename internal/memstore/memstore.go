// Package memstore implements repository.Store in memory. Transactions work
// on a copy of the data that replaces the committed state only when the
// transaction function returns nil. Faults can be injected per operation.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lottery/internal/model"
	"lottery/internal/repository"
)

type apKey struct{ activityID, prizeID int64 }
type auKey struct{ activityID, userID int64 }

type state struct {
	activities     map[int64]model.Activity
	prizes         map[int64]model.Prize
	activityPrizes map[apKey]model.ActivityPrize
	activityUsers  map[auKey]model.ActivityUser
	users          map[int64]model.User
	records        []model.WinningRecord
	nextID         int64
}

func newState() *state {
	return &state{
		activities:     make(map[int64]model.Activity),
		prizes:         make(map[int64]model.Prize),
		activityPrizes: make(map[apKey]model.ActivityPrize),
		activityUsers:  make(map[auKey]model.ActivityUser),
		users:          make(map[int64]model.User),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.activities {
		c.activities[k] = v
	}
	for k, v := range s.prizes {
		c.prizes[k] = v
	}
	for k, v := range s.activityPrizes {
		c.activityPrizes[k] = v
	}
	for k, v := range s.activityUsers {
		c.activityUsers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	c.records = append([]model.WinningRecord(nil), s.records...)
	c.nextID = s.nextID
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store is an in-memory repository.Store. It is safe for concurrent use;
// transactions are serialized.
type Store struct {
	mu     sync.Mutex
	data   *state
	faults map[string]error
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: newState(), faults: make(map[string]error)}
}

// FailOn makes every later call of the named Repository method return err.
// A nil err clears the fault.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, method)
		return
	}
	s.faults[method] = err
}

// InTx implements repository.TxRunner.
func (s *Store) InTx(ctx context.Context, fn func(repository.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(&view{st: work, faults: s.faults}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) run(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{st: s.data, faults: s.faults})
}

// SeedUser registers a user outside of any activity.
func (s *Store) SeedUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = u
}

// SeedPrize registers a prize with a caller-chosen id.
func (s *Store) SeedPrize(p model.Prize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.prizes[p.ID] = p
	if p.ID > s.data.nextID {
		s.data.nextID = p.ID
	}
}

// SeedActivity stores an activity with its prize and user rosters and
// returns the assigned id. The ActivityID fields of the rows are overwritten.
func (s *Store) SeedActivity(a model.Activity, prizes []model.ActivityPrize, users []model.ActivityUser) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.data.id()
	s.data.activities[a.ID] = a
	for _, ap := range prizes {
		ap.ActivityID = a.ID
		s.data.activityPrizes[apKey{a.ID, ap.PrizeID}] = ap
	}
	for _, au := range users {
		au.ActivityID = a.ID
		s.data.activityUsers[auKey{a.ID, au.UserID}] = au
	}
	return a.ID
}

// view implements repository.Repository over one state.
type view struct {
	st     *state
	faults map[string]error
}

func (v *view) fault(method string) error {
	if err, ok := v.faults[method]; ok {
		return err
	}
	return nil
}

func (v *view) GetActivity(_ context.Context, activityID int64) (*model.Activity, error) {
	if err := v.fault("GetActivity"); err != nil {
		return nil, err
	}
	a, ok := v.st.activities[activityID]
	if !ok {
		return nil, fmt.Errorf("activity %d: %w", activityID, model.ErrNotFound)
	}
	return &a, nil
}

func (v *view) InsertActivity(_ context.Context, activity *model.Activity) (int64, error) {
	if err := v.fault("InsertActivity"); err != nil {
		return 0, err
	}
	a := *activity
	a.ID = v.st.id()
	v.st.activities[a.ID] = a
	return a.ID, nil
}

func (v *view) UpdateActivityStatus(_ context.Context, activityID int64, status model.ActivityStatus) error {
	if err := v.fault("UpdateActivityStatus"); err != nil {
		return err
	}
	a, ok := v.st.activities[activityID]
	if !ok {
		return fmt.Errorf("activity %d: %w", activityID, model.ErrNotFound)
	}
	a.Status = status
	v.st.activities[activityID] = a
	return nil
}

func (v *view) GetPrize(_ context.Context, prizeID int64) (*model.Prize, error) {
	if err := v.fault("GetPrize"); err != nil {
		return nil, err
	}
	p, ok := v.st.prizes[prizeID]
	if !ok {
		return nil, fmt.Errorf("prize %d: %w", prizeID, model.ErrNotFound)
	}
	return &p, nil
}

func (v *view) ListPrizesByIDs(_ context.Context, prizeIDs []int64) ([]model.Prize, error) {
	if err := v.fault("ListPrizesByIDs"); err != nil {
		return nil, err
	}
	var out []model.Prize
	for _, id := range uniqueSorted(prizeIDs) {
		if p, ok := v.st.prizes[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (v *view) InsertPrize(_ context.Context, prize *model.Prize) (int64, error) {
	if err := v.fault("InsertPrize"); err != nil {
		return 0, err
	}
	p := *prize
	p.ID = v.st.id()
	v.st.prizes[p.ID] = p
	return p.ID, nil
}

func (v *view) GetActivityPrize(_ context.Context, activityID, prizeID int64) (*model.ActivityPrize, error) {
	if err := v.fault("GetActivityPrize"); err != nil {
		return nil, err
	}
	ap, ok := v.st.activityPrizes[apKey{activityID, prizeID}]
	if !ok {
		return nil, fmt.Errorf("activity %d prize %d: %w", activityID, prizeID, model.ErrNotFound)
	}
	return &ap, nil
}

func (v *view) ListActivityPrizes(_ context.Context, activityID int64) ([]model.ActivityPrize, error) {
	if err := v.fault("ListActivityPrizes"); err != nil {
		return nil, err
	}
	var out []model.ActivityPrize
	for k, ap := range v.st.activityPrizes {
		if k.activityID == activityID {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].PrizeID < out[j].PrizeID
	})
	return out, nil
}

func (v *view) CountInitPrizes(_ context.Context, activityID int64) (int, error) {
	if err := v.fault("CountInitPrizes"); err != nil {
		return 0, err
	}
	n := 0
	for k, ap := range v.st.activityPrizes {
		if k.activityID == activityID && ap.Status == model.PrizeInit {
			n++
		}
	}
	return n, nil
}

func (v *view) InsertActivityPrizes(_ context.Context, prizes []model.ActivityPrize) error {
	if err := v.fault("InsertActivityPrizes"); err != nil {
		return err
	}
	for _, ap := range prizes {
		k := apKey{ap.ActivityID, ap.PrizeID}
		if _, dup := v.st.activityPrizes[k]; dup {
			return fmt.Errorf("duplicate activity prize %d/%d", ap.ActivityID, ap.PrizeID)
		}
		v.st.activityPrizes[k] = ap
	}
	return nil
}

func (v *view) UpdateActivityPrizeStatus(_ context.Context, activityID, prizeID int64, status model.PrizeStatus) error {
	if err := v.fault("UpdateActivityPrizeStatus"); err != nil {
		return err
	}
	k := apKey{activityID, prizeID}
	ap, ok := v.st.activityPrizes[k]
	if !ok {
		return fmt.Errorf("activity %d prize %d: %w", activityID, prizeID, model.ErrNotFound)
	}
	ap.Status = status
	v.st.activityPrizes[k] = ap
	return nil
}

func (v *view) ListActivityUsers(_ context.Context, activityID int64) ([]model.ActivityUser, error) {
	if err := v.fault("ListActivityUsers"); err != nil {
		return nil, err
	}
	var out []model.ActivityUser
	for k, au := range v.st.activityUsers {
		if k.activityID == activityID {
			out = append(out, au)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (v *view) ListActivityUsersByIDs(_ context.Context, activityID int64, userIDs []int64) ([]model.ActivityUser, error) {
	if err := v.fault("ListActivityUsersByIDs"); err != nil {
		return nil, err
	}
	var out []model.ActivityUser
	for _, id := range uniqueSorted(userIDs) {
		if au, ok := v.st.activityUsers[auKey{activityID, id}]; ok {
			out = append(out, au)
		}
	}
	return out, nil
}

func (v *view) InsertActivityUsers(_ context.Context, users []model.ActivityUser) error {
	if err := v.fault("InsertActivityUsers"); err != nil {
		return err
	}
	for _, au := range users {
		k := auKey{au.ActivityID, au.UserID}
		if _, dup := v.st.activityUsers[k]; dup {
			return fmt.Errorf("duplicate activity user %d/%d", au.ActivityID, au.UserID)
		}
		v.st.activityUsers[k] = au
	}
	return nil
}

func (v *view) UpdateActivityUserStatus(_ context.Context, activityID int64, userIDs []int64, status model.UserStatus) error {
	if err := v.fault("UpdateActivityUserStatus"); err != nil {
		return err
	}
	for _, id := range userIDs {
		k := auKey{activityID, id}
		if au, ok := v.st.activityUsers[k]; ok {
			au.Status = status
			v.st.activityUsers[k] = au
		}
	}
	return nil
}

func (v *view) ListUsersByIDs(_ context.Context, userIDs []int64) ([]model.User, error) {
	if err := v.fault("ListUsersByIDs"); err != nil {
		return nil, err
	}
	var out []model.User
	for _, id := range uniqueSorted(userIDs) {
		if u, ok := v.st.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (v *view) InsertWinningRecords(_ context.Context, records []model.WinningRecord) error {
	if err := v.fault("InsertWinningRecords"); err != nil {
		return err
	}
	for _, r := range records {
		for _, existing := range v.st.records {
			if existing.ActivityID == r.ActivityID && existing.PrizeID == r.PrizeID && existing.WinnerID == r.WinnerID {
				return fmt.Errorf("duplicate winning record %d/%d/%d", r.ActivityID, r.PrizeID, r.WinnerID)
			}
		}
		r.ID = v.st.id()
		v.st.records = append(v.st.records, r)
	}
	return nil
}

func (v *view) ListWinningRecords(_ context.Context, activityID int64) ([]model.WinningRecord, error) {
	if err := v.fault("ListWinningRecords"); err != nil {
		return nil, err
	}
	var out []model.WinningRecord
	for _, r := range v.st.records {
		if r.ActivityID == activityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (v *view) ListWinningRecordsByPrize(_ context.Context, activityID, prizeID int64) ([]model.WinningRecord, error) {
	if err := v.fault("ListWinningRecordsByPrize"); err != nil {
		return nil, err
	}
	var out []model.WinningRecord
	for _, r := range v.st.records {
		if r.ActivityID == activityID && r.PrizeID == prizeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (v *view) CountWinningRecords(_ context.Context, activityID, prizeID int64) (int, error) {
	if err := v.fault("CountWinningRecords"); err != nil {
		return 0, err
	}
	n := 0
	for _, r := range v.st.records {
		if r.ActivityID == activityID && r.PrizeID == prizeID {
			n++
		}
	}
	return n, nil
}

func (v *view) DeleteWinningRecords(_ context.Context, activityID, prizeID int64, winnerIDs []int64) error {
	if err := v.fault("DeleteWinningRecords"); err != nil {
		return err
	}
	only := make(map[int64]bool, len(winnerIDs))
	for _, id := range winnerIDs {
		only[id] = true
	}
	kept := v.st.records[:0]
	for _, r := range v.st.records {
		match := r.ActivityID == activityID && r.PrizeID == prizeID && (len(only) == 0 || only[r.WinnerID])
		if !match {
			kept = append(kept, r)
		}
	}
	v.st.records = kept
	return nil
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
