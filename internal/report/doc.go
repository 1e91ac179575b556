// Package report summarises recorded sales over a date range.
//
// A Summary is built from any Source (normally *store.Store) and carries the
// figures the back office looks at: revenue, transaction count, average
// sale, tax, discounts, profit, the cash/mobile-money split, per-day totals,
// best-selling products and best customers. WriteText renders it as a plain
// text report with locale-grouped amounts.
package report
