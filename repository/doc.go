// Package repository provides generic Bun-backed data access for the
// student wellbeing models.
package repository
