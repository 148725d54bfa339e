package notify

// SendSuccess, SendError, SendWarning and SendInfo push a notification of their type

func SendSuccess(n Notifier, title, message string) Notification {
	return n.Notify(Notification{Type: Success, Title: title, Message: message})
}

func SendError(n Notifier, title, message string) Notification {
	return n.Notify(Notification{Type: Error, Title: title, Message: message})
}

func SendWarning(n Notifier, title, message string) Notification {
	return n.Notify(Notification{Type: Warning, Title: title, Message: message})
}

func SendInfo(n Notifier, title, message string) Notification {
	return n.Notify(Notification{Type: Info, Title: title, Message: message})
}

// Discard drops every notification
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(n Notification) Notification { return n }
