// Package catalog is the fulfillment engine: it keeps product waiting lists
// and, when stock is raised, hands the new units to waiting subscribers in
// arrival order and notifies them.
package catalog
