// Package models holds the GORM row types behind the billing repositories.
// Domain aggregates never carry gorm tags; each model converts to and from its
// aggregate with ToDomain/FromDomain.
//
//   - base.go: id, timestamps and the optimistic-lock version column
//   - identity.go: users
//   - customer.go: customers with their stored paid-invoice totals
//   - invoice.go: invoices and their line items
//   - settings.go: the single company settings row
package models
