package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/salon-core/internal/model"
	"github.com/Leganyst/salon-core/internal/notify"
	"github.com/Leganyst/salon-core/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db))
	return db
}

// recordingNotifier keeps events instead of dispatching them.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev notify.Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return true
}

func (n *recordingNotifier) last() notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// inlineNotifier dispatches synchronously so tests can inspect the outcome.
type inlineNotifier struct {
	d       *notify.Dispatcher
	reports []notify.Report
}

func (n *inlineNotifier) Notify(ctx context.Context, ev notify.Event) bool {
	n.reports = append(n.reports, n.d.Dispatch(ctx, ev))
	return true
}

type failingPushClient struct{}

func (failingPushClient) Send(context.Context, string, notify.Message) error {
	return context.DeadlineExceeded
}

type fixture struct {
	db       *gorm.DB
	svc      *AppointmentService
	notifier Notifier

	customer     *model.User
	receptionist *model.User
	technician   *model.User
	cut, wash    *model.ServiceItem
}

func (f *fixture) asCustomer() Actor     { return Actor{ID: f.customer.ID, Role: model.RoleCustomer} }
func (f *fixture) asReceptionist() Actor { return Actor{ID: f.receptionist.ID, Role: model.RoleReceptionist} }
func (f *fixture) asTechnician() Actor   { return Actor{ID: f.technician.ID, Role: model.RoleTechnician} }

func newFixture(t *testing.T, notifier Notifier) *fixture {
	t.Helper()
	db := newTestDB(t)
	log, _ := test.NewNullLogger()

	f := &fixture{db: db, notifier: notifier}
	f.customer = mustUser(t, db, "Lan", model.RoleCustomer)
	f.receptionist = mustUser(t, db, "Thu", model.RoleReceptionist)
	f.technician = mustUser(t, db, "Minh", model.RoleTechnician)
	f.cut = mustService(t, db, "Cut", 100)
	f.wash = mustService(t, db, "Wash", 50)

	f.svc = NewAppointmentService(
		db,
		repository.NewGormAppointmentRepository(db),
		repository.NewGormServiceCatalog(db),
		repository.NewGormAccountDirectory(db),
		NewAdmissionGuard(3),
		notifier,
		time.UTC,
		log,
	)
	return f
}

// newDispatchFixture wires the real dispatcher with a push client that always fails.
func newDispatchFixture(t *testing.T) (*fixture, *inlineNotifier) {
	t.Helper()
	n := &inlineNotifier{}
	f := newFixture(t, n)
	log, _ := test.NewNullLogger()
	n.d = notify.NewDispatcher(
		repository.NewGormNotificationRepository(f.db),
		notify.NewResolver(repository.NewGormTokenDirectory(f.db)),
		notify.NewGateway(failingPushClient{}, log),
		time.UTC,
		log,
	)
	return f, n
}

func mustUser(t *testing.T, db *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{FullName: name, Phone: "0900000000", Role: role, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func mustService(t *testing.T, db *gorm.DB, name string, price int64) *model.ServiceItem {
	t.Helper()
	s := &model.ServiceItem{Name: name, Price: price, IsActive: true}
	require.NoError(t, db.Create(s).Error)
	return s
}

func future(d time.Duration) string {
	return time.Now().UTC().Add(d).Truncate(time.Second).Format(time.RFC3339)
}

func strPtr(s string) *string { return &s }
func i64(v int64) *int64      { return &v }
