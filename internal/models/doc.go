// Package models defines the core domain models for settleup.
//
// # Models
//
//   - User: registered account; members, payers and settlement parties are user IDs
//   - Group: a set of members sharing expenses, administered by its creator
//   - Expense: an amount paid by one member and split unevenly among members
//   - Settlement: a payment between two members that reduces what one owes the other
//   - Category, Notification: organisational and inbox records
//
// # Design Principles
//
//  1. Relationships are ID strings, never pointers, so snapshots can be passed around freely
//  2. Amounts are decimals (shopspring/decimal), compared through internal/money
//  3. Models carry no persistence or ledger logic; see internal/storage and internal/ledger
package models
