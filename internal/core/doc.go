// Package core implements output draining and exit-wait coordination for
// child processes: the drain worker, the shared execution pool, the Waiter
// that combines them into a Result, and the package-level logger.
package core
