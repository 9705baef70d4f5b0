package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	rediscache "github.com/ds124wfegd/parking-system/internal/database/redis"
	"github.com/ds124wfegd/parking-system/internal/entity"
)

// testLogger возвращает логгер, который ничего не пишет
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memoryCache — кэш в памяти, запоминает сброшенные шаблоны
type memoryCache struct {
	data        map[string][]byte
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return rediscache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	return nil
}

type stubLotRepo struct {
	lot      *entity.Lot
	lots     []*entity.LotWithAvailability
	spot     *entity.SpotDetails
	spots    []*entity.SpotDetails
	getErr   error
	allErr   error
	updErr   error
	delErr   error
	resErr   error
	spotErr  error
	allCalls int
	resized  []int
}

func (r *stubLotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	lot.ID = 1
	r.lot = lot
	return nil
}

func (r *stubLotRepo) GetByID(ctx context.Context, id int64) (*entity.LotWithAvailability, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, lot := range r.lots {
		if lot.ID == id {
			return lot, nil
		}
	}
	return nil, entity.ErrLotNotFound
}

func (r *stubLotRepo) GetAll(ctx context.Context) ([]*entity.LotWithAvailability, error) {
	r.allCalls++
	if r.allErr != nil {
		return nil, r.allErr
	}
	return r.lots, nil
}

func (r *stubLotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	r.lot = lot
	return r.updErr
}

func (r *stubLotRepo) Delete(ctx context.Context, id int64) error {
	return r.delErr
}

func (r *stubLotRepo) Resize(ctx context.Context, lotID int64, newTotal int) error {
	if r.resErr != nil {
		return r.resErr
	}
	r.resized = append(r.resized, newTotal)
	return nil
}

func (r *stubLotRepo) GetSpots(ctx context.Context, lotID int64, status entity.SpotStatus) ([]*entity.SpotDetails, error) {
	return r.spots, nil
}

func (r *stubLotRepo) GetSpotByID(ctx context.Context, spotID int64) (*entity.SpotDetails, error) {
	if r.spotErr != nil {
		return nil, r.spotErr
	}
	if r.spot == nil {
		return nil, entity.ErrSpotNotFound
	}
	return r.spot, nil
}

type stubReservationRepo struct {
	reservation *entity.Reservation
	current     *entity.Reservation
	history     []*entity.ReservationRecord
	reserveErr  error
	occupyErr   error
	releaseErr  error
	currentErr  error
	reserves    int
}

func (r *stubReservationRepo) Reserve(ctx context.Context, userID, lotID int64) (*entity.Reservation, error) {
	r.reserves++
	if r.reserveErr != nil {
		return nil, r.reserveErr
	}
	return r.reservation, nil
}

func (r *stubReservationRepo) Occupy(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error) {
	if r.occupyErr != nil {
		return nil, r.occupyErr
	}
	return r.reservation, nil
}

func (r *stubReservationRepo) Release(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error) {
	if r.releaseErr != nil {
		return nil, r.releaseErr
	}
	return r.reservation, nil
}

func (r *stubReservationRepo) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	if r.reservation == nil {
		return nil, entity.ErrReservationNotFound
	}
	return r.reservation, nil
}

func (r *stubReservationRepo) GetCurrentByUser(ctx context.Context, userID int64) (*entity.Reservation, error) {
	if r.currentErr != nil {
		return nil, r.currentErr
	}
	return r.current, nil
}

func (r *stubReservationRepo) GetHistoryByUser(ctx context.Context, userID int64, status entity.ReservationStatus) ([]*entity.ReservationRecord, error) {
	return r.history, nil
}

func (r *stubReservationRepo) GetAll(ctx context.Context, status entity.ReservationStatus) ([]*entity.ReservationRecord, error) {
	return r.history, nil
}

type stubUserRepo struct {
	users     map[string]*entity.User
	createErr error
	admin     *entity.User
	inactive  []*entity.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = int64(len(r.users) + 1)
	if r.users == nil {
		r.users = make(map[string]*entity.User)
	}
	r.users[user.Username] = user
	return nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *stubUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetAll(ctx context.Context) ([]*entity.User, error) {
	all := make([]*entity.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	return all, nil
}

func (r *stubUserRepo) GetInactive(ctx context.Context, before time.Time) ([]*entity.User, error) {
	return r.inactive, nil
}

func (r *stubUserRepo) GetFirstAdmin(ctx context.Context) (*entity.User, error) {
	if r.admin == nil {
		return nil, entity.ErrUserNotFound
	}
	return r.admin, nil
}

type stubPublisher struct {
	published []*Task
	err       error
}

func (p *stubPublisher) Publish(ctx context.Context, task *Task) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, task)
	return nil
}
