package repositories

import "database/sql"

// MySQLStore bundles the MySQL repositories behind one value so it can be
// handed to services as a single backend, like MemoryStore.
type MySQLStore struct {
	BookingRepository
	UserRepository
	ReviewRepository
	NotificationRepository
}

func NewMySQLStore(db *sql.DB) MySQLStore {
	return MySQLStore{
		BookingRepository:      BookingRepository{DB: db},
		UserRepository:         UserRepository{DB: db},
		ReviewRepository:       ReviewRepository{DB: db},
		NotificationRepository: NotificationRepository{DB: db},
	}
}
