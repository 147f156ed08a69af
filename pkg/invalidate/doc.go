// Package invalidate tells page caches to refresh after an activity is
// created. Signals travel over Redis pub/sub or NATS and are sent in the
// background so a slow transport never delays a submission.
package invalidate
