package lotto

import "sync"

var _ Holder = (*Account)(nil)

// Account is an in-memory player wallet.
type Account struct {
	mu      sync.Mutex
	id      string
	balance int64
}

// NewAccount opens a wallet with the given starting balance.
func NewAccount(id string, balance int64) *Account {
	return &Account{id: id, balance: balance}
}

// ID returns the owner identifier.
func (a *Account) ID() string {
	return a.id
}

// Balance returns the available funds.
func (a *Account) Balance() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Debit takes amount if the balance covers it.
func (a *Account) Debit(amount int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount < 0 || a.balance < amount {
		return false
	}
	a.balance -= amount
	return true
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance += amount
}
