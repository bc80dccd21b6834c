package postgresql

import (
	"context"
	"fmt"
	"runtime"

	"servibook-api/res/store"

	sqlCommenter "github.com/gouyelliot/gorm-sqlcommenter-plugin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type storeImpl struct {
	db *gorm.DB

	userStore            *userStore
	providerProfileStore *providerProfileStore
	addressStore         *addressStore
	quoteStore           *quoteStore
	bookingStore         *bookingStore
	historyStore         *historyStore
	recurrenceStore      *recurrenceStore
	availabilityStore    *availabilityStore
}

func (sImpl *storeImpl) Users() store.UserStore {
	return sImpl.userStore
}

func (sImpl *storeImpl) ProviderProfiles() store.ProviderProfileStore {
	return sImpl.providerProfileStore
}

func (sImpl *storeImpl) Addresses() store.AddressStore {
	return sImpl.addressStore
}

func (sImpl *storeImpl) Quotes() store.QuoteStore {
	return sImpl.quoteStore
}

func (sImpl *storeImpl) Bookings() store.BookingStore {
	return sImpl.bookingStore
}

func (sImpl *storeImpl) BookingStatusHistories() store.BookingStatusHistoryStore {
	return sImpl.historyStore
}

func (sImpl *storeImpl) Recurrences() store.RecurrenceStore {
	return sImpl.recurrenceStore
}

func (sImpl *storeImpl) Availability() store.AvailabilityStore {
	return sImpl.availabilityStore
}

// Transaction runs fn against a store bound to a single database transaction
func (sImpl *storeImpl) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return sImpl.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newStoreWithDB(tx))
	})
}

func (sImpl *storeImpl) GetDB() interface{} {
	return sImpl.db
}

func Connect(connectionUrl string) (*storeImpl, error) {
	db, err := gorm.Open(postgres.Open(connectionUrl), &gorm.Config{TranslateError: true, PrepareStmt: false})
	if err != nil {
		return nil, err
	}

	err = db.Use(sqlCommenter.New())
	if err != nil {
		return nil, err
	}

	err = decorateDBOperationsWithAdditionalInfo(db)
	if err != nil {
		return nil, err
	}

	return newStoreWithDB(db), nil
}

// Migrate creates or updates the schema for all tables
func Migrate(s store.Store) error {
	db, ok := s.GetDB().(*gorm.DB)
	if !ok {
		return fmt.Errorf("store is not backed by gorm")
	}

	return db.AutoMigrate(
		&store.User{},
		&store.ProviderProfile{},
		&store.Address{},
		&store.Quote{},
		&store.Booking{},
		&store.BookingStatusHistory{},
		&store.Recurrence{},
		&store.AvailabilityWindow{},
	)
}

func newStoreWithDB(db *gorm.DB) *storeImpl {
	s := &storeImpl{db: db}

	s.userStore = NewUserStore(s)
	s.providerProfileStore = NewProviderProfileStore(s)
	s.addressStore = NewAddressStore(s)
	s.quoteStore = NewQuoteStore(s)
	s.bookingStore = NewBookingStore(s)
	s.historyStore = NewHistoryStore(s)
	s.recurrenceStore = NewRecurrenceStore(s)
	s.availabilityStore = NewAvailabilityStore(s)

	return s
}

// COMMON UTILITIES

func identifyCallee(stackDepth int) string {
	function, _, line, ok := runtime.Caller(stackDepth)
	if !ok {
		return "<missing-runtime-info>"
	}
	return fmt.Sprintf("%s:%d", runtime.FuncForPC(function).Name(), line)
}

func annotateWithInfoHook(db *gorm.DB) {
	info := identifyCallee(4) // Skip the internal gorm calls & the 2 local setup calls
	db.Clauses(sqlCommenter.NewTag("action", info))
}

func decorateDBOperationsWithAdditionalInfo(db *gorm.DB) error {
	return db.Callback().Query().Before("gorm:query").Register("store::annotate_with_info", annotateWithInfoHook)
}
