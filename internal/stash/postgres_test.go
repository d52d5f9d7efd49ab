package stash_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/udisondev/itemcode/internal/itemcode"
	"github.com/udisondev/itemcode/internal/stash"
	"github.com/udisondev/itemcode/internal/testutil"
)

// PostgresSuite тестирует PostgresStore на реальной базе (DB_ADDR или testcontainer).
type PostgresSuite struct {
	suite.Suite
	ctx   context.Context
	dsn   string
	store *stash.PostgresStore
}

func (s *PostgresSuite) SetupSuite() {
	s.dsn = testutil.SetupTestDB(s.T())
	s.ctx = testutil.ContextWithTimeout(s.T(), 2*time.Minute)

	store, err := stash.NewPostgres(s.ctx, s.dsn)
	s.Require().NoError(err)
	s.store = store
}

func (s *PostgresSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
}

// SetupTest очищает stash перед каждым тестом: DB_ADDR может указывать на общую базу.
func (s *PostgresSuite) SetupTest() {
	entries, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	for _, e := range entries {
		s.Require().NoError(s.store.Delete(s.ctx, e.ID))
	}
}

func (s *PostgresSuite) TestStoreContract() {
	testStore(s.T(), s.store)
}

// TestMigrateTwice — повторный goose up ничего не ломает.
func (s *PostgresSuite) TestMigrateTwice() {
	s.Require().NoError(stash.Migrate(s.ctx, s.dsn))
}

// TestConcurrentDuplicates — unique index пропускает ровно одну запись.
func (s *PostgresSuite) TestConcurrentDuplicates() {
	const writers = 8
	code := "BL2(DDDDDDDDDDDD)"

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, dupes  int
		unexpected []error
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Put(s.ctx, newEntry("writer", code, time.Now().Add(time.Duration(i)*time.Second)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, stash.ErrDuplicate):
				dupes++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	s.Empty(unexpected)
	s.Equal(1, ok)
	s.Equal(writers-1, dupes)
}

func (s *PostgresSuite) TestServiceOverPostgres() {
	in, err := itemcode.NewInspector(itemcode.BL2)
	s.Require().NoError(err)
	svc := stash.NewService(s.store, in, "bl2")

	plain := testutil.SealedSerial(testutil.WeaponMarker, 0xde, 0xad, 0xbe, 0xef)
	e, err := svc.Add(s.ctx, "pg", itemcode.Format("BL2", plain, nil))
	s.Require().NoError(err)

	again, err := svc.Add(s.ctx, "pg again", itemcode.Format("BL2", testutil.EncryptSerial(plain, 0x1357, 21), nil))
	s.ErrorIs(err, stash.ErrDuplicate)
	s.Equal(e.ID, again.ID)
	s.True(e.CreatedAt.Equal(again.CreatedAt), "microsecond precision survives the round trip")
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}
