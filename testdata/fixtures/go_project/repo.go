package project

import (
	"example.com/userapp/store"
)

// SaveUser persists a user through the store package.
func SaveUser(u *User) error {
	return store.Put(store.Record{ID: u.ID, Data: u.Name})
}
