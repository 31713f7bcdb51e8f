// Package utils provides common utility functions for the inventory-sync application.
// It includes helpers for type conversion of loosely typed feed values and for
// splitting work into batches.
package utils
