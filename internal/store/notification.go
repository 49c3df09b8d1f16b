package store

import (
	"time"

	"auction-sync/internal/domain"
)

type NotificationState struct {
	Items       []domain.Notification `json:"items"`
	Loading     bool                  `json:"loading"`
	Error       string                `json:"error,omitempty"`
	LastUpdated time.Time             `json:"lastUpdated"`
}

// UnreadCount counts items the user has not read.
func (s NotificationState) UnreadCount() int {
	n := 0
	for _, item := range s.Items {
		if !item.Read {
			n++
		}
	}
	return n
}

// NewItem returns the item currently flagged as newly arrived, if any.
func (s NotificationState) NewItem() (domain.Notification, bool) {
	for _, item := range s.Items {
		if item.IsNew {
			return item, true
		}
	}
	return domain.Notification{}, false
}

func reduceNotification(s NotificationState, action notificationAction, now time.Time) (NotificationState, bool) {
	switch a := action.(type) {
	case NotificationsRequested:
		s.Loading = true
		s.Error = ""
		return s, true
	case NotificationsFetched:
		s.Items = mergeNotificationSnapshot(s.Items, a.Items)
		s.Loading = false
		s.Error = ""
		s.LastUpdated = now
		return s, true
	case NotificationsFetchFailed:
		s.Loading = false
		s.Error = a.Err
		return s, true
	case NotificationOperationFailed:
		s.Error = a.Err
		return s, true
	case NotificationPushed:
		items, ok := mergeNotificationPush(s.Items, a.Item)
		if !ok {
			return s, false
		}
		s.Items = items
		s.LastUpdated = now
		return s, true
	case NotificationMarkedRead:
		idx := indexOfNotification(s.Items, a.ID)
		if idx < 0 {
			return s, false
		}
		items := append([]domain.Notification(nil), s.Items...)
		items[idx].Read = true
		items[idx].IsNew = false
		s.Items = items
		return s, true
	case AllNotificationsMarkedRead:
		items := make([]domain.Notification, len(s.Items))
		for i, item := range s.Items {
			item.Read = true
			item.IsNew = false
			items[i] = item
		}
		s.Items = items
		return s, true
	case NotificationDeleted:
		idx := indexOfNotification(s.Items, a.ID)
		if idx < 0 {
			return s, false
		}
		items := make([]domain.Notification, 0, len(s.Items)-1)
		items = append(items, s.Items[:idx]...)
		items = append(items, s.Items[idx+1:]...)
		s.Items = items
		return s, true
	case NotificationNewStatusCleared:
		s.Items = clearNewStatus(s.Items)
		return s, true
	default:
		return s, false
	}
}

// mergeNotificationSnapshot replaces the list with a polled snapshot. At most
// one item is flagged new: the one at index 0, and only if its id was not in
// the previous list. Stored items carrying a higher version than the
// snapshot's keep their stored content. A repeated id keeps its first
// occurrence.
func mergeNotificationSnapshot(prev, snapshot []domain.Notification) []domain.Notification {
	known := make(map[int64]domain.Notification, len(prev))
	for _, item := range prev {
		known[item.ID] = item
	}

	seen := make(map[int64]struct{}, len(snapshot))
	items := make([]domain.Notification, 0, len(snapshot))
	for i, incoming := range snapshot {
		if _, dup := seen[incoming.ID]; dup {
			continue
		}
		seen[incoming.ID] = struct{}{}

		stored, existed := known[incoming.ID]
		if existed && isStaleVersion(stored.Version, incoming.Version) {
			incoming = stored
		}
		incoming.IsNew = i == 0 && !existed
		items = append(items, incoming)
	}
	return items
}

// mergeNotificationPush applies one pushed notification: every other new flag
// is cleared, the item replaces its namesake in place or is inserted at the
// head, and it becomes the new item. A push older than the stored version is
// rejected.
func mergeNotificationPush(prev []domain.Notification, incoming domain.Notification) ([]domain.Notification, bool) {
	idx := indexOfNotification(prev, incoming.ID)
	if idx >= 0 && isStaleVersion(prev[idx].Version, incoming.Version) {
		return prev, false
	}

	items := clearNewStatus(prev)
	incoming.IsNew = true
	if idx >= 0 {
		items[idx] = incoming
		return items, true
	}
	return append([]domain.Notification{incoming}, items...), true
}

func clearNewStatus(prev []domain.Notification) []domain.Notification {
	items := make([]domain.Notification, len(prev))
	for i, item := range prev {
		item.IsNew = false
		items[i] = item
	}
	return items
}

func indexOfNotification(items []domain.Notification, id int64) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// isStaleVersion reports whether incoming is older than stored. Unversioned
// records (zero) fall back to last-write-wins.
func isStaleVersion(stored, incoming int64) bool {
	return stored > 0 && incoming > 0 && incoming < stored
}
