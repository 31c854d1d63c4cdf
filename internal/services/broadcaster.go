package services

// Notifier delivers fire-and-forget user and admin notifications. Delivery
// failure must never roll back or block the ledger transition behind it, so
// implementations log and move on.
type Notifier interface {
	NotifyUser(userID int64, event string, payload any)
	NotifyAdmin(event string, payload any)
}

type NopNotifier struct{}

func (NopNotifier) NotifyUser(int64, string, any) {}
func (NopNotifier) NotifyAdmin(string, any)       {}
