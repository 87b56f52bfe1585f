// Package models holds the GORM persistence models of the ledger service.
// Domain types carry no ORM tags; each model converts to and from its
// domain type with ToDomain and FromDomain.
package models
