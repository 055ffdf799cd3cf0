// Package watch provides an optional fsnotify wake source for push loops.
//
// Push loops always decide on their own, by comparing modification times,
// whether to send. A Watcher only shortens their wait: when the watched file
// is written or re-created, Notifier.Notify wakes every subscribed loop so it
// polls immediately instead of at the end of its interval.
package watch
